package llm

import "testing"

func TestExtractJSON_PlainObject(t *testing.T) {
	got, err := ExtractJSON(`{"summary": "billing dispute", "severity": 4}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"summary": "billing dispute", "severity": 4}`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtractJSON_CodeFence(t *testing.T) {
	response := "```json\n{\"theme_key\": \"billing_confusion\"}\n```"
	got, err := ExtractJSON(response)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"theme_key": "billing_confusion"}` {
		t.Errorf("got %q", got)
	}
}

func TestExtractJSON_BareFence(t *testing.T) {
	response := "```\n{\"sentiment\": \"negative\"}\n```"
	got, err := ExtractJSON(response)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"sentiment": "negative"}` {
		t.Errorf("got %q", got)
	}
}

func TestExtractJSON_LeadingProse(t *testing.T) {
	response := `Here is the classification you asked for:
{"summary": "integration timeout", "severity": 5, "nested": {"a": 1}}
Let me know if you need anything else.`
	got, err := ExtractJSON(response)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"summary": "integration timeout", "severity": 5, "nested": {"a": 1}}` {
		t.Errorf("got %q", got)
	}
}

func TestExtractJSON_BracesInsideStrings(t *testing.T) {
	response := `{"summary": "customer wrote {angry} notes", "severity": 2}`
	got, err := ExtractJSON(response)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != response {
		t.Errorf("got %q", got)
	}
}

func TestExtractJSON_NoJSON(t *testing.T) {
	if _, err := ExtractJSON("I could not classify this record."); err == nil {
		t.Error("expected error for prose-only response")
	}
}

func TestExtractJSON_Array(t *testing.T) {
	got, err := ExtractJSON(`[{"a": 1}, {"b": 2}]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `[{"a": 1}, {"b": 2}]` {
		t.Errorf("got %q", got)
	}
}

func TestParseJSONResponse(t *testing.T) {
	type judgment struct {
		Summary  string `json:"summary"`
		Severity int    `json:"severity"`
	}

	got, err := ParseJSONResponse[judgment]("```json\n{\"summary\": \"slow sync\", \"severity\": 3}\n```")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Summary != "slow sync" || got.Severity != 3 {
		t.Errorf("unexpected result: %+v", got)
	}
}

func TestParseJSONResponse_Malformed(t *testing.T) {
	type judgment struct {
		Summary string `json:"summary"`
	}

	if _, err := ParseJSONResponse[judgment](`{"summary": `); err == nil {
		t.Error("expected error for truncated JSON")
	}
}
