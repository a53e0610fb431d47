// Package comparison asks the generation provider how a new attempt compares
// to a previous one and interprets the answer.
package comparison

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog/log"

	"explanation-coach-service/internal/models"
	"explanation-coach-service/internal/observability/metrics"
	"explanation-coach-service/internal/service/generation"
	"explanation-coach-service/internal/service/jsonblock"
	"explanation-coach-service/internal/service/prompts"
)

// DefaultMaxTokens bounds the comparison generation call.
const DefaultMaxTokens = 800

// FallbackResult is returned whenever a comparison cannot be produced.
func FallbackResult() models.ComparisonResult {
	return models.ComparisonResult{
		ImprovementStatus: models.ImprovementSame,
		KeyChanges:        []string{},
		Encouragement:     "Unable to generate comparison. Continue refining your explanation.",
	}
}

// Current is the attempt being compared against a previous one.
type Current struct {
	Concept         string
	ExplanationText string
	Analysis        models.AnalysisResult
}

// Orchestrator compares attempts through a Generator.
type Orchestrator struct {
	generator generation.Generator
	maxTokens int
	metrics   *metrics.Metrics
}

// New creates an Orchestrator. maxTokens <= 0 uses DefaultMaxTokens.
func New(g generation.Generator, maxTokens int) *Orchestrator {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Orchestrator{
		generator: g,
		maxTokens: maxTokens,
		metrics:   metrics.DefaultMetrics,
	}
}

// Compare never fails: any generation or parse problem yields FallbackResult.
// The boolean reports whether the fallback was used.
func (o *Orchestrator) Compare(ctx context.Context, previous models.Attempt, current Current) (models.ComparisonResult, bool) {
	logger := log.With().
		Str("component", "comparison").
		Str("previousAttemptId", previous.AttemptID).
		Logger()

	concept := current.Concept
	if concept == "" {
		concept = "Unknown Concept"
	}

	userPrompt, err := prompts.Comparison(prompts.ComparisonInput{
		Concept:      concept,
		PreviousText: previous.ExplanationText,
		PreviousGaps: previous.AnalysisResult.Gaps,
		CurrentText:  current.ExplanationText,
		CurrentGaps:  current.Analysis.Gaps,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to render comparison prompt")
		return o.fallback()
	}

	raw, err := o.generator.Generate(ctx, generation.Request{
		Purpose:      generation.PurposeComparison,
		SystemPrompt: prompts.ComparisonSystem,
		UserPrompt:   userPrompt,
		MaxTokens:    o.maxTokens,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Comparison generation failed")
		return o.fallback()
	}

	res, ok := parse(raw)
	if !ok {
		logger.Warn().Int("length", len(raw)).Msg("Comparison response is not usable JSON")
		return o.fallback()
	}

	o.metrics.RecordComparison(res.ImprovementStatus, false)
	logger.Info().
		Str("improvementStatus", res.ImprovementStatus).
		Int("keyChanges", len(res.KeyChanges)).
		Msg("Attempts compared")
	return res, false
}

func (o *Orchestrator) fallback() (models.ComparisonResult, bool) {
	res := FallbackResult()
	o.metrics.RecordComparison(res.ImprovementStatus, true)
	return res, true
}

// parse accepts the first candidate object, fenced or embedded in prose,
// that decodes to a valid comparison.
func parse(raw string) (models.ComparisonResult, bool) {
	for _, candidate := range jsonblock.Candidates(raw) {
		if res, ok := decode(candidate); ok {
			return res, true
		}
	}
	return models.ComparisonResult{}, false
}

func decode(payload string) (models.ComparisonResult, bool) {
	var wire struct {
		ImprovementStatus string          `json:"improvement_status"`
		KeyChanges        json.RawMessage `json:"key_changes"`
		Encouragement     string          `json:"encouragement"`
	}
	if err := json.Unmarshal([]byte(payload), &wire); err != nil {
		return models.ComparisonResult{}, false
	}

	status := strings.ToLower(strings.TrimSpace(wire.ImprovementStatus))
	switch status {
	case models.ImprovementBetter, models.ImprovementSame, models.ImprovementWorse:
	default:
		return models.ComparisonResult{}, false
	}

	changes := []string{}
	if len(wire.KeyChanges) > 0 {
		var list []string
		if err := json.Unmarshal(wire.KeyChanges, &list); err != nil {
			return models.ComparisonResult{}, false
		}
		for _, c := range list {
			if c = strings.TrimSpace(c); c != "" {
				changes = append(changes, c)
			}
		}
	}

	return models.ComparisonResult{
		ImprovementStatus: status,
		KeyChanges:        changes,
		Encouragement:     strings.TrimSpace(wire.Encouragement),
	}, true
}
