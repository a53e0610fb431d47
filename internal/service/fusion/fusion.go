// Package fusion merges a generated analysis payload with computed speech
// metrics. Numbers come from computation, narrative comes from generation.
package fusion

import (
	"github.com/rs/zerolog/log"

	"explanation-coach-service/internal/models"
	"explanation-coach-service/internal/service/jsonblock"
	"explanation-coach-service/internal/service/outcome"
)

// Narrative used when the generated payload has no insight for a computed metric.
const (
	DefaultPaceInsight   = "Pace was measured from your recording durations."
	DefaultFillerInsight = "Filler words were counted directly from your explanation."
)

// FallbackResult is returned when the generated payload cannot be parsed.
func FallbackResult() models.AnalysisResult {
	return models.AnalysisResult{
		Summary:           "We couldn't process the AI response correctly. Please try again.",
		Gaps:              []string{"System Error: Invalid JSON response from model"},
		Suggestions:       []string{"Retry the analysis. If this keeps happening, check that the generation model is available."},
		FollowUpQuestions: []string{},
	}
}

// Fuse parses raw and overlays the computed metrics onto it. A nil filler or
// pace leaves the generated sub-object untouched.
//
// The returned state is outcome.Failed when raw could not be parsed; the
// result is then FallbackResult. Otherwise it is outcome.Present.
func Fuse(raw string, filler *models.FillerStats, pace *models.SpeakingMetrics) (models.AnalysisResult, outcome.State) {
	res, ok := parse(raw)
	if !ok {
		log.Warn().
			Int("length", len(raw)).
			Msg("Generated analysis is not valid JSON, using fallback")
		return FallbackResult(), outcome.Failed
	}

	if pace != nil {
		insight, suggestions := "", []string(nil)
		if g := res.SpeakingMetrics; g != nil {
			insight, suggestions = g.Insight, g.Suggestions
		}
		res.SpeakingMetrics = &models.SpeakingMetricsAnalysis{
			SpeakingMetrics: *pace,
			Insight:         orDefault(insight, DefaultPaceInsight),
			Suggestions:     nonNil(suggestions),
		}
	}

	if filler != nil {
		insight, suggestions := "", []string(nil)
		if g := res.FillerAnalysis; g != nil {
			insight, suggestions = g.Insight, g.Suggestions
		}
		computed := *filler
		computed.CommonFillers = append([]string{}, filler.CommonFillers...)
		res.FillerAnalysis = &models.FillerAnalysis{
			FillerStats: computed,
			Insight:     orDefault(insight, DefaultFillerInsight),
			Suggestions: nonNil(suggestions),
		}
	}

	return res, outcome.Present
}

// parse tries the fence-stripped payload first and then each embedded
// top-level object in order.
func parse(raw string) (models.AnalysisResult, bool) {
	for _, candidate := range jsonblock.Candidates(raw) {
		if res, err := models.DecodeAnalysis([]byte(candidate)); err == nil {
			return res, true
		}
	}
	return models.AnalysisResult{}, false
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
