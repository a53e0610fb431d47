package comparison

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"explanation-coach-service/internal/models"
	"explanation-coach-service/internal/service/generation"
	"explanation-coach-service/internal/service/generation/mock"
)

func previousAttempt(t *testing.T, analysisJSON string) models.Attempt {
	t.Helper()
	raw := `{
		"attempt_id": "11111111-1111-1111-1111-111111111111",
		"timestamp": "2026-01-02T03:04:05.000000Z",
		"concept": "Gravity",
		"target_audience": "5-year-old",
		"explanation_text": "Things fall down.",
		"analysis_result": ` + analysisJSON + `,
		"referenced_chunk_ids": [],
		"comparison": null
	}`
	var a models.Attempt
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		t.Fatalf("unmarshal attempt: %v", err)
	}
	return a
}

func TestCompare_Success(t *testing.T) {
	gen := mock.New("```json\n" + `{"improvement_status": "Better", "key_changes": ["Mentioned mass", " "], "encouragement": "Great work!"}` + "\n```")
	o := New(gen, 0)

	prev := previousAttempt(t, `{"summary": "s", "gaps": ["Why do things fall?"]}`)
	res, fallback := o.Compare(context.Background(), prev, Current{
		Concept:         "Gravity",
		ExplanationText: "Mass attracts mass.",
		Analysis:        models.AnalysisResult{Gaps: []string{"No mention of distance"}},
	})

	if fallback {
		t.Fatal("expected a generated comparison")
	}
	want := models.ComparisonResult{
		ImprovementStatus: models.ImprovementBetter,
		KeyChanges:        []string{"Mentioned mass"},
		Encouragement:     "Great work!",
	}
	if !reflect.DeepEqual(res, want) {
		t.Errorf("Compare() = %+v, want %+v", res, want)
	}

	calls := gen.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 generation call, got %d", len(calls))
	}
	call := calls[0]
	if call.MaxTokens != DefaultMaxTokens || call.Purpose != generation.PurposeComparison {
		t.Errorf("unexpected request settings: %+v", call)
	}
	for _, want := range []string{"Things fall down.", "Mass attracts mass.", `["Why do things fall?"]`, `["No mention of distance"]`} {
		if !strings.Contains(call.UserPrompt, want) {
			t.Errorf("user prompt missing %q", want)
		}
	}
}

func TestCompare_PreviousAnalysisStoredAsString(t *testing.T) {
	gen := mock.New(`{"improvement_status": "same", "key_changes": [], "encouragement": "Keep going"}`)
	o := New(gen, 0)

	prev := previousAttempt(t, `"{\"summary\": \"s\", \"gaps\": [\"String-encoded gap\"]}"`)
	if _, fallback := o.Compare(context.Background(), prev, Current{Concept: "Gravity"}); fallback {
		t.Fatal("unexpected fallback")
	}

	if !strings.Contains(gen.Calls()[0].UserPrompt, `["String-encoded gap"]`) {
		t.Errorf("string-encoded gaps not used: %s", gen.Calls()[0].UserPrompt)
	}
}

func TestCompare_PreviousAnalysisUnparseable(t *testing.T) {
	gen := mock.New(`{"improvement_status": "worse", "key_changes": ["Lost the analogy"], "encouragement": "Try again"}`)
	o := New(gen, 0)

	prev := previousAttempt(t, `"not json at all"`)
	res, fallback := o.Compare(context.Background(), prev, Current{Concept: "Gravity"})
	if fallback || res.ImprovementStatus != models.ImprovementWorse {
		t.Fatalf("unexpected result %+v (fallback=%v)", res, fallback)
	}
	if !strings.Contains(gen.Calls()[0].UserPrompt, "Previous Gaps Identified:\n[]") {
		t.Errorf("expected empty previous gaps:\n%s", gen.Calls()[0].UserPrompt)
	}
}

func TestCompare_RecoversWrappedOutput(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		changes []string
	}{
		{
			name:    "prose around object",
			raw:     `Here is my comparison: {"improvement_status": "worse", "key_changes": ["Dropped the analogy"], "encouragement": "Bring it back."} Let me know!`,
			changes: []string{"Dropped the analogy"},
		},
		{
			name:    "fence inside a value",
			raw:     "```json\n" + `{"improvement_status": "worse", "key_changes": ["Pasted a ` + "```" + ` block"], "encouragement": "Bring it back."}` + "\n```",
			changes: []string{"Pasted a ``` block"},
		},
		{
			name:    "invalid object before valid one",
			raw:     `{"note": "draft"} then {"improvement_status": "worse", "key_changes": ["Dropped the analogy"], "encouragement": "Bring it back."}`,
			changes: []string{"Dropped the analogy"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := New(mock.New(tt.raw), 100)
			res, fallback := o.Compare(context.Background(), previousAttempt(t, `{}`), Current{Concept: "Gravity"})
			if fallback {
				t.Fatal("unexpected fallback")
			}
			if res.ImprovementStatus != models.ImprovementWorse || !reflect.DeepEqual(res.KeyChanges, tt.changes) {
				t.Errorf("Compare() = %+v", res)
			}
		})
	}
}

func TestCompare_Fallbacks(t *testing.T) {
	tests := []struct {
		name string
		gen  *mock.Generator
	}{
		{"generation error", mock.NewFailing(errors.New("offline"))},
		{"not json", mock.New("The student improved a lot!")},
		{"unknown status", mock.New(`{"improvement_status": "improved", "key_changes": [], "encouragement": "x"}`)},
		{"missing status", mock.New(`{"key_changes": [], "encouragement": "x"}`)},
		{"bad key changes", mock.New(`{"improvement_status": "better", "key_changes": "one change", "encouragement": "x"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := New(tt.gen, 100)
			res, fallback := o.Compare(context.Background(), previousAttempt(t, `{}`), Current{Concept: "Gravity"})
			if !fallback {
				t.Error("expected fallback")
			}
			if !reflect.DeepEqual(res, FallbackResult()) {
				t.Errorf("Compare() = %+v, want fallback", res)
			}
		})
	}
}
