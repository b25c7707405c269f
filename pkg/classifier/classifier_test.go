package classifier

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mariostorable/friction-engine/pkg/llm"
	"github.com/mariostorable/friction-engine/pkg/models"
	"github.com/mariostorable/friction-engine/pkg/retry"
)

func fastRetry() *retry.Config {
	return &retry.Config{
		MaxRetries:   2,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestClassify_HappyPath(t *testing.T) {
	mock := llm.NewMockLLMClient()
	mock.GenerateResponseFunc = func(ctx context.Context, prompt, system string, temperature float64) (string, error) {
		return `{"summary": "sync failing", "theme_key": "integration_failure", "severity": 4,
			"sentiment": "negative", "root_cause": "webhook timeout", "is_friction": true, "confidence": 0.9}`, nil
	}

	c := New(mock, Config{Retry: fastRetry()}, zap.NewNop())

	judgment, err := c.Classify(context.Background(), "Our sync fails nightly")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if judgment.ThemeKey != models.ThemeIntegrationFailure {
		t.Errorf("theme = %q", judgment.ThemeKey)
	}
	if judgment.Severity != 4 {
		t.Errorf("severity = %d", judgment.Severity)
	}
	if !judgment.IsFriction {
		t.Error("expected friction")
	}
	if judgment.Confidence != 0.9 {
		t.Errorf("confidence = %v", judgment.Confidence)
	}
}

func TestClassify_CodeFencedResponse(t *testing.T) {
	mock := llm.NewMockLLMClient()
	mock.GenerateResponseFunc = func(ctx context.Context, prompt, system string, temperature float64) (string, error) {
		return "```json\n{\"summary\": \"ok\", \"severity\": 2}\n```", nil
	}

	c := New(mock, Config{Retry: fastRetry()}, zap.NewNop())

	judgment, err := c.Classify(context.Background(), "text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if judgment.Severity != 2 {
		t.Errorf("severity = %d", judgment.Severity)
	}
}

func TestClassify_Defaults(t *testing.T) {
	tests := []struct {
		name          string
		response      string
		wantSeverity  int
		wantTheme     string
		wantSentiment string
	}{
		{"missing everything", `{"summary": "x"}`, 3, "other", "neutral"},
		{"severity out of range high", `{"severity": 9}`, 3, "other", "neutral"},
		{"severity out of range low", `{"severity": 0}`, 3, "other", "neutral"},
		{"severity as word", `{"severity": "high"}`, 3, "other", "neutral"},
		{"severity as numeric string", `{"severity": "5"}`, 5, "other", "neutral"},
		{"unknown theme", `{"theme_key": "astrology"}`, 3, "other", "neutral"},
		{"known theme", `{"theme_key": "billing_confusion", "sentiment": "negative"}`, 3, "billing_confusion", "negative"},
		{"junk sentiment", `{"sentiment": "enraged"}`, 3, "other", "neutral"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockLLMClient()
			mock.GenerateResponseFunc = func(ctx context.Context, prompt, system string, temperature float64) (string, error) {
				return tt.response, nil
			}
			c := New(mock, Config{Retry: fastRetry()}, zap.NewNop())

			judgment, err := c.Classify(context.Background(), "text")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if judgment.Severity != tt.wantSeverity {
				t.Errorf("severity = %d, want %d", judgment.Severity, tt.wantSeverity)
			}
			if judgment.ThemeKey != tt.wantTheme {
				t.Errorf("theme = %q, want %q", judgment.ThemeKey, tt.wantTheme)
			}
			if judgment.Sentiment != tt.wantSentiment {
				t.Errorf("sentiment = %q, want %q", judgment.Sentiment, tt.wantSentiment)
			}
		})
	}
}

func TestClassify_UnparsableResponse(t *testing.T) {
	mock := llm.NewMockLLMClient()
	mock.GenerateResponseFunc = func(ctx context.Context, prompt, system string, temperature float64) (string, error) {
		return "I'm sorry, I can't classify this.", nil
	}

	c := New(mock, Config{Retry: fastRetry()}, zap.NewNop())

	_, err := c.Classify(context.Background(), "text")
	if !errors.Is(err, ErrUnparsableResponse) {
		t.Errorf("expected ErrUnparsableResponse, got %v", err)
	}
}

func TestClassify_RetriesOverloadThenSucceeds(t *testing.T) {
	mock := llm.NewMockLLMClient()
	mock.GenerateResponseFunc = func(ctx context.Context, prompt, system string, temperature float64) (string, error) {
		if mock.GenerateResponseCalls < 3 {
			return "", llm.NewError(llm.ErrorTypeOverloaded, "service overloaded", true, errors.New("529"))
		}
		return `{"summary": "fine", "severity": 1}`, nil
	}

	c := New(mock, Config{Retry: fastRetry()}, zap.NewNop())

	judgment, err := c.Classify(context.Background(), "text")
	if err != nil {
		t.Fatalf("unexpected error after retries: %v", err)
	}
	if mock.GenerateResponseCalls != 3 {
		t.Errorf("expected 3 attempts, got %d", mock.GenerateResponseCalls)
	}
	if judgment.Severity != 1 {
		t.Errorf("severity = %d", judgment.Severity)
	}
}

func TestClassify_ExhaustedRetriesSurface(t *testing.T) {
	mock := llm.NewMockLLMClient()
	mock.GenerateResponseFunc = func(ctx context.Context, prompt, system string, temperature float64) (string, error) {
		return "", llm.NewError(llm.ErrorTypeOverloaded, "service overloaded", true, errors.New("529"))
	}

	c := New(mock, Config{Retry: fastRetry()}, zap.NewNop())

	if _, err := c.Classify(context.Background(), "text"); err == nil {
		t.Fatal("expected error")
	}
	if mock.GenerateResponseCalls != 3 {
		t.Errorf("expected full 3-attempt budget, got %d", mock.GenerateResponseCalls)
	}
}

func TestClassify_PermanentErrorNotRetried(t *testing.T) {
	mock := llm.NewMockLLMClient()
	mock.GenerateResponseFunc = func(ctx context.Context, prompt, system string, temperature float64) (string, error) {
		return "", llm.NewError(llm.ErrorTypeAuth, "authentication failed", false, errors.New("401"))
	}

	c := New(mock, Config{Retry: fastRetry()}, zap.NewNop())

	if _, err := c.Classify(context.Background(), "text"); err == nil {
		t.Fatal("expected error")
	}
	if mock.GenerateResponseCalls != 1 {
		t.Errorf("expected single attempt for auth failure, got %d", mock.GenerateResponseCalls)
	}
}

func TestClassify_TruncatesLongInput(t *testing.T) {
	var seenPrompt string
	mock := llm.NewMockLLMClient()
	mock.GenerateResponseFunc = func(ctx context.Context, prompt, system string, temperature float64) (string, error) {
		seenPrompt = prompt
		return `{"summary": "long", "severity": 3}`, nil
	}

	c := New(mock, Config{TruncationLimit: 50, Retry: fastRetry()}, zap.NewNop())

	long := strings.Repeat("a", 200)
	if _, err := c.Classify(context.Background(), long); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(seenPrompt, truncationMarker) {
		t.Error("expected truncation marker in prompt")
	}
	if strings.Contains(seenPrompt, strings.Repeat("a", 51)) {
		t.Error("input not truncated at the cap")
	}
}

func TestTruncate_ShortInputUntouched(t *testing.T) {
	if got := truncate("short", 2000); got != "short" {
		t.Errorf("got %q", got)
	}
}
