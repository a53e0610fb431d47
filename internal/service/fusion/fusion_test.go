package fusion

import (
	"reflect"
	"testing"

	"explanation-coach-service/internal/models"
	"explanation-coach-service/internal/service/outcome"
)

const generated = `{
  "summary": "Solid start",
  "gaps": ["No mention of chlorophyll"],
  "suggestions": ["Use an analogy"],
  "follow_up_questions": ["Why are leaves green?"],
  "speaking_metrics": {
    "total_time_seconds": 999,
    "active_speaking_seconds": 900,
    "pause_ratio": 0.9,
    "insight": "Long pauses between ideas",
    "suggestions": ["Keep a steady flow"]
  },
  "filler_analysis": {
    "total_filler_count": 42,
    "filler_density": 0.5,
    "common_fillers": ["actually"],
    "insight": "Lots of hedging",
    "suggestions": ["Pause instead of saying um"]
  },
  "interviewer_followup": {"question": "What if there was no light?", "intent": "depth"}
}`

func TestFuse_ComputedNumbersWin(t *testing.T) {
	pace := &models.SpeakingMetrics{TotalTimeSeconds: 10, ActiveSpeakingSeconds: 7, PauseRatio: 0.3}
	filler := &models.FillerStats{TotalFillerCount: 5, FillerDensity: 0.625, CommonFillers: []string{"um", "like", "so"}}

	res, state := Fuse(generated, filler, pace)
	if state != outcome.Present {
		t.Fatalf("expected PRESENT, got %s", state)
	}

	if res.SpeakingMetrics.TotalTimeSeconds != 10 {
		t.Errorf("TotalTimeSeconds = %v, want 10", res.SpeakingMetrics.TotalTimeSeconds)
	}
	if res.SpeakingMetrics.SpeakingMetrics != *pace {
		t.Errorf("speaking metrics = %+v, want %+v", res.SpeakingMetrics.SpeakingMetrics, *pace)
	}
	if res.SpeakingMetrics.Insight != "Long pauses between ideas" {
		t.Errorf("pace insight not taken from generation: %q", res.SpeakingMetrics.Insight)
	}

	if res.FillerAnalysis.TotalFillerCount != 5 || res.FillerAnalysis.FillerDensity != 0.625 {
		t.Errorf("filler numbers not overwritten: %+v", res.FillerAnalysis.FillerStats)
	}
	if !reflect.DeepEqual(res.FillerAnalysis.CommonFillers, filler.CommonFillers) {
		t.Errorf("CommonFillers = %v, want %v", res.FillerAnalysis.CommonFillers, filler.CommonFillers)
	}
	if !reflect.DeepEqual(res.FillerAnalysis.Suggestions, []string{"Pause instead of saying um"}) {
		t.Errorf("filler suggestions not taken from generation: %v", res.FillerAnalysis.Suggestions)
	}

	if res.Summary != "Solid start" || res.InterviewerFollowup == nil {
		t.Errorf("narrative fields lost: %+v", res)
	}
}

func TestFuse_DefaultsWhenNarrativeMissing(t *testing.T) {
	pace := &models.SpeakingMetrics{TotalTimeSeconds: 20, ActiveSpeakingSeconds: 10, PauseRatio: 0.5}
	filler := &models.FillerStats{TotalFillerCount: 1, FillerDensity: 0.1, CommonFillers: []string{"um"}}

	res, state := Fuse(`{"summary": "ok", "gaps": []}`, filler, pace)
	if state != outcome.Present {
		t.Fatalf("expected PRESENT, got %s", state)
	}
	if res.SpeakingMetrics == nil || res.SpeakingMetrics.Insight != DefaultPaceInsight {
		t.Errorf("expected default pace insight, got %+v", res.SpeakingMetrics)
	}
	if res.FillerAnalysis == nil || res.FillerAnalysis.Insight != DefaultFillerInsight {
		t.Errorf("expected default filler insight, got %+v", res.FillerAnalysis)
	}
	if res.SpeakingMetrics.Suggestions == nil || res.FillerAnalysis.Suggestions == nil {
		t.Error("expected non-nil suggestion lists")
	}
}

func TestFuse_AbsentMetricsPassThrough(t *testing.T) {
	res, state := Fuse(generated, nil, nil)
	if state != outcome.Present {
		t.Fatalf("expected PRESENT, got %s", state)
	}
	if res.SpeakingMetrics.TotalTimeSeconds != 999 {
		t.Errorf("generated pace should pass through, got %v", res.SpeakingMetrics.TotalTimeSeconds)
	}
	if res.FillerAnalysis.TotalFillerCount != 42 {
		t.Errorf("generated filler stats should pass through, got %d", res.FillerAnalysis.TotalFillerCount)
	}

	res, _ = Fuse(`{"summary": "short"}`, nil, nil)
	if res.SpeakingMetrics != nil || res.FillerAnalysis != nil {
		t.Errorf("expected sub-objects omitted, got %+v", res)
	}
}

func TestFuse_UnparseableReturnsFallback(t *testing.T) {
	inputs := []string{
		"",
		"I'm sorry, I cannot help with that.",
		`{"summary": "truncated`,
		`["not", "an", "object"]`,
	}

	for _, raw := range inputs {
		res, state := Fuse(raw, nil, &models.SpeakingMetrics{TotalTimeSeconds: 1})
		if state != outcome.Failed {
			t.Errorf("Fuse(%q) state = %s, want FAILED", raw, state)
		}
		if len(res.Gaps) == 0 {
			t.Errorf("Fuse(%q) fallback has no gaps", raw)
		}
		if !reflect.DeepEqual(res, FallbackResult()) {
			t.Errorf("Fuse(%q) = %+v, want fallback", raw, res)
		}
	}
}

func TestFuse_StripsFencesAndProse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"json fence", "```json\n{\"summary\": \"fenced\"}\n```"},
		{"upper fence", "```JSON\n{\"summary\": \"fenced\"}\n```"},
		{"bare fence", "```\n{\"summary\": \"fenced\"}\n```"},
		{"prose around object", "Here is my analysis:\n{\"summary\": \"fenced\", \"gaps\": [\"a } brace\"]}\nHope it helps!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, state := Fuse(tt.raw, nil, nil)
			if state != outcome.Present {
				t.Fatalf("expected PRESENT, got %s", state)
			}
			if res.Summary != "fenced" {
				t.Errorf("Summary = %q, want %q", res.Summary, "fenced")
			}
		})
	}
}
