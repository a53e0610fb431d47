package prompts

import (
	"strings"
	"testing"

	"explanation-coach-service/internal/models"
)

func TestAnalysis_Minimal(t *testing.T) {
	out, err := Analysis(AnalysisInput{
		Concept:        "Photosynthesis",
		TargetAudience: "5-year-old",
		Explanation:    "Plants eat light.",
	})
	if err != nil {
		t.Fatalf("Analysis() error: %v", err)
	}

	for _, want := range []string{"'Photosynthesis'", "'5-year-old'", `"Plants eat light."`, "Feynman principles"} {
		if !strings.Contains(out, want) {
			t.Errorf("prompt missing %q:\n%s", want, out)
		}
	}
	for _, unwanted := range []string{"Speaking context", "Reference material"} {
		if strings.Contains(out, unwanted) {
			t.Errorf("prompt should not contain %q:\n%s", unwanted, out)
		}
	}
}

func TestAnalysis_WithSpeakingAndReferences(t *testing.T) {
	out, err := Analysis(AnalysisInput{
		Concept:        "Gravity",
		TargetAudience: "teenager",
		Explanation:    "Um, things fall.",
		Filler:         &models.FillerStats{TotalFillerCount: 2, FillerDensity: 0.4, CommonFillers: []string{"um", "like"}},
		Pace:           &models.SpeakingMetrics{TotalTimeSeconds: 10, ActiveSpeakingSeconds: 7, PauseRatio: 0.3},
		References: []models.ScoredChunk{
			{Chunk: models.Chunk{ChunkID: 4, Text: "Mass attracts mass."}, RelevanceScore: 2, Scored: true},
		},
	})
	if err != nil {
		t.Fatalf("Analysis() error: %v", err)
	}

	for _, want := range []string{
		"pause ratio: 0.30",
		"Filler words: 2 (density 0.400), most common: um, like",
		"[chunk 4] Mass attracts mass.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("prompt missing %q:\n%s", want, out)
		}
	}
}

func TestComparison(t *testing.T) {
	out, err := Comparison(ComparisonInput{
		Concept:      "Gravity",
		PreviousText: "old",
		PreviousGaps: []string{"no mass"},
		CurrentText:  "new",
	})
	if err != nil {
		t.Fatalf("Comparison() error: %v", err)
	}

	for _, want := range []string{"Concept: Gravity", `["no mass"]`, `"new"`, "Current Gaps Identified:\n[]"} {
		if !strings.Contains(out, want) {
			t.Errorf("prompt missing %q:\n%s", want, out)
		}
	}
}

func TestSystemPromptsDescribeJSON(t *testing.T) {
	if !strings.Contains(FeynmanSystem, `"filler_analysis"`) {
		t.Error("analysis system prompt should describe filler_analysis")
	}
	if !strings.Contains(ComparisonSystem, `"improvement_status"`) {
		t.Error("comparison system prompt should describe improvement_status")
	}
}
