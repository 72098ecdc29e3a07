package llm

import (
	"testing"
)

func TestExtractJSON_PlainObject(t *testing.T) {
	input := `{"summary": "ok", "confidence": 0.8}`
	result, err := ExtractJSON(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != input {
		t.Errorf("expected %q, got %q", input, result)
	}
}

func TestExtractJSON_MarkdownFence(t *testing.T) {
	input := "Here is the analysis:\n```json\n{\"summary\": \"ok\"}\n```\nLet me know."
	expected := `{"summary": "ok"}`
	result, err := ExtractJSON(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != expected {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

func TestExtractJSON_ThinkTagsStripped(t *testing.T) {
	input := `<think>
The project mentions a burial site, so cultural sensitivity is high.
</think>
{"cultural_sensitivity": 0.9}`

	expected := `{"cultural_sensitivity": 0.9}`
	result, err := ExtractJSON(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != expected {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

func TestExtractJSON_NestedStructures(t *testing.T) {
	input := `{"strategies": [{"steps": {"order": [1, 2, 3]}}]}`
	result, err := ExtractJSON(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != input {
		t.Errorf("expected %q, got %q", input, result)
	}
}

func TestExtractJSON_BracesInsideStrings(t *testing.T) {
	input := `{"summary": "use {placeholders} carefully", "note": "a \"quoted\" word"}`
	result, err := ExtractJSON(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != input {
		t.Errorf("expected %q, got %q", input, result)
	}
}

func TestExtractJSON_Array(t *testing.T) {
	input := `Some preamble. ["first", "second"]`
	expected := `["first", "second"]`
	result, err := ExtractJSON(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != expected {
		t.Errorf("expected %q, got %q", expected, result)
	}
}

func TestExtractJSON_NoJSON(t *testing.T) {
	_, err := ExtractJSON("The project looks risky and needs community engagement.")
	if err == nil {
		t.Fatal("expected error for response with no JSON")
	}
}

func TestExtractJSON_UnbalancedBraces(t *testing.T) {
	_, err := ExtractJSON(`{"summary": "truncated`)
	if err == nil {
		t.Fatal("expected error for unbalanced JSON")
	}
}

func TestParseJSONResponse(t *testing.T) {
	type analysis struct {
		Summary    string  `json:"summary"`
		Confidence float64 `json:"confidence"`
	}

	result, err := ParseJSONResponse[analysis]("```json\n{\"summary\": \"engage leaders\", \"confidence\": 0.75}\n```")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Summary != "engage leaders" {
		t.Errorf("expected summary %q, got %q", "engage leaders", result.Summary)
	}
	if result.Confidence != 0.75 {
		t.Errorf("expected confidence 0.75, got %v", result.Confidence)
	}
}

func TestParseJSONResponse_TypeMismatch(t *testing.T) {
	type analysis struct {
		Confidence float64 `json:"confidence"`
	}

	_, err := ParseJSONResponse[analysis](`{"confidence": "high"}`)
	if err == nil {
		t.Fatal("expected unmarshal error for mismatched type")
	}
}
