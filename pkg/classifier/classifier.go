// Package classifier turns one support record into a friction judgment by
// way of the external text-analysis service.
package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mariostorable/friction-engine/pkg/jsonutil"
	"github.com/mariostorable/friction-engine/pkg/llm"
	"github.com/mariostorable/friction-engine/pkg/models"
	"github.com/mariostorable/friction-engine/pkg/prompts"
	"github.com/mariostorable/friction-engine/pkg/retry"
)

// ErrUnparsableResponse is returned when the service reply contains no
// usable JSON judgment. Callers skip the record and leave it unprocessed;
// they never abort the batch over it.
var ErrUnparsableResponse = errors.New("unparsable classification response")

// truncationMarker is appended whenever input text was cut at the cap.
const truncationMarker = "... [truncated]"

// classificationTemperature keeps judgments near-deterministic.
const classificationTemperature = 0.2

// Judgment is the structured friction judgment for one record.
type Judgment struct {
	Summary    string
	ThemeKey   string
	Severity   int
	Sentiment  string
	RootCause  string
	IsFriction bool
	Confidence float64
}

// Config holds classifier tuning.
type Config struct {
	// TruncationLimit caps input text length in characters.
	TruncationLimit int
	// Retry is the backoff schedule for transient service failures.
	Retry *retry.Config
}

// Classifier submits record text to the text-analysis service and parses
// the response into a Judgment.
type Classifier struct {
	client llm.LLMClient
	cfg    Config
	logger *zap.Logger
}

// New creates a new Classifier.
func New(client llm.LLMClient, cfg Config, logger *zap.Logger) *Classifier {
	if cfg.TruncationLimit <= 0 {
		cfg.TruncationLimit = 2000
	}
	if cfg.Retry == nil {
		cfg.Retry = retry.DefaultConfig()
	}
	return &Classifier{
		client: client,
		cfg:    cfg,
		logger: logger.Named("classifier"),
	}
}

// Classify submits text for classification. Transient service failures
// (overload, connection loss) are retried with exponential backoff up to
// the configured attempt budget; exhausting the budget surfaces the error.
// A response that cannot be parsed returns ErrUnparsableResponse.
func (c *Classifier) Classify(ctx context.Context, text string) (*Judgment, error) {
	input := truncate(text, c.cfg.TruncationLimit)
	prompt := prompts.BuildFrictionClassificationPrompt(input)
	system := prompts.BuildFrictionClassificationSystemMessage()

	var content string
	err := retry.DoIfRetryable(ctx, c.cfg.Retry, func() error {
		out, genErr := c.client.GenerateResponse(ctx, prompt, system, classificationTemperature)
		if genErr != nil {
			return genErr
		}
		content = out
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("classification call: %w", err)
	}

	judgment, err := parseJudgment(content)
	if err != nil {
		c.logger.Warn("discarding unparsable classification response",
			zap.Int("response_len", len(content)),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnparsableResponse, err)
	}

	return judgment, nil
}

// truncate cuts s at limit characters and appends the truncation marker
// when a cut happened.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + truncationMarker
}

// rawJudgment is the loosely-typed wire shape. Every field goes through
// tolerant coercion: models return numbers as strings, strings as numbers,
// and omit keys freely.
type rawJudgment struct {
	Summary    json.RawMessage `json:"summary"`
	ThemeKey   json.RawMessage `json:"theme_key"`
	Severity   json.RawMessage `json:"severity"`
	Sentiment  json.RawMessage `json:"sentiment"`
	RootCause  json.RawMessage `json:"root_cause"`
	IsFriction json.RawMessage `json:"is_friction"`
	Confidence json.RawMessage `json:"confidence"`
}

// parseJudgment extracts the JSON object from a possibly fence-wrapped
// response and normalizes it with the documented defaults:
// severity out of [1,5] -> 3, unknown theme -> other, unknown sentiment ->
// neutral.
func parseJudgment(content string) (*Judgment, error) {
	raw, err := llm.ParseJSONResponse[rawJudgment](content)
	if err != nil {
		return nil, err
	}

	judgment := &Judgment{
		Summary:   jsonutil.FlexibleStringValue(raw.Summary),
		RootCause: jsonutil.FlexibleStringValue(raw.RootCause),
	}

	severity, ok := jsonutil.FlexibleIntValue(raw.Severity)
	if !ok || severity < models.SeverityMin || severity > models.SeverityMax {
		severity = models.SeverityDefault
	}
	judgment.Severity = severity

	theme := jsonutil.FlexibleStringValue(raw.ThemeKey)
	if !models.ValidThemeKey(theme) {
		theme = models.ThemeOther
	}
	judgment.ThemeKey = theme

	sentiment := jsonutil.FlexibleStringValue(raw.Sentiment)
	switch sentiment {
	case models.SentimentNegative, models.SentimentNeutral, models.SentimentPositive:
	default:
		sentiment = models.SentimentNeutral
	}
	judgment.Sentiment = sentiment

	judgment.IsFriction = jsonutil.FlexibleBoolValue(raw.IsFriction, true)

	confidence, ok := jsonutil.FlexibleFloatValue(raw.Confidence)
	if !ok {
		confidence = 0
	}
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	judgment.Confidence = confidence

	return judgment, nil
}
