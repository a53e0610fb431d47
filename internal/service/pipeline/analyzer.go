// Package pipeline runs a single explanation analysis end to end: reference
// chunking and selection, computed speech metrics, one generation call,
// fusion, optional comparison with a previous attempt, persistence and event
// publication.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"explanation-coach-service/internal/events"
	"explanation-coach-service/internal/models"
	"explanation-coach-service/internal/observability/logging"
	"explanation-coach-service/internal/observability/metrics"
	"explanation-coach-service/internal/service/chunker"
	"explanation-coach-service/internal/service/comparison"
	"explanation-coach-service/internal/service/fusion"
	"explanation-coach-service/internal/service/generation"
	"explanation-coach-service/internal/service/outcome"
	"explanation-coach-service/internal/service/prompts"
	"explanation-coach-service/internal/service/relevance"
	"explanation-coach-service/internal/service/speech"
	"explanation-coach-service/internal/store"
)

var (
	// ErrInvalidRequest is returned for requests without a concept.
	ErrInvalidRequest = errors.New("invalid analysis request")

	// ErrGenerationFailed is returned when the primary generation call fails.
	ErrGenerationFailed = errors.New("analysis generation failed")

	// ErrPersistFailed is returned when the attempt could not be saved.
	ErrPersistFailed = errors.New("attempt could not be saved")
)

// Options tunes the pipeline.
type Options struct {
	DefaultTargetAudience string
	ReferenceChunking     chunker.Options
	TopK                  int
	MaxTokens             int
	ComparisonMaxTokens   int
}

// DefaultOptions returns the standard pipeline settings.
func DefaultOptions() Options {
	return Options{
		DefaultTargetAudience: "5-year-old",
		ReferenceChunking:     chunker.DefaultParagraphOptions(),
		TopK:                  3,
		MaxTokens:             1000,
		ComparisonMaxTokens:   comparison.DefaultMaxTokens,
	}
}

// Publisher receives attempt events. *events.Publisher implements it.
type Publisher interface {
	PublishAttemptSaved(ctx context.Context, ev models.AttemptSaved) error
	PublishAttemptCompared(ctx context.Context, ev models.AttemptCompared) error
}

// Analyzer runs analyses. It is safe for concurrent use when its
// collaborators are.
type Analyzer struct {
	generator generation.Generator
	comparer  *comparison.Orchestrator
	repo      store.Repository
	publisher Publisher
	opts      Options
	metrics   *metrics.Metrics
	newID     func() string
	now       func() time.Time
}

// New creates an Analyzer. publisher may be nil.
func New(g generation.Generator, repo store.Repository, publisher Publisher, opts Options) *Analyzer {
	return &Analyzer{
		generator: g,
		comparer:  comparison.New(g, opts.ComparisonMaxTokens),
		repo:      repo,
		publisher: publisher,
		opts:      opts,
		metrics:   metrics.DefaultMetrics,
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// Analyze runs the pipeline for one request. Only an invalid request, a
// failed primary generation or a failed save are errors; every other
// degraded path is recovered and reported in the response.
func (a *Analyzer) Analyze(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisResponse, error) {
	start := time.Now()

	if strings.TrimSpace(req.Concept) == "" {
		a.metrics.RecordAnalysis(false, "invalid_request", time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: concept is required", ErrInvalidRequest)
	}
	audience := strings.TrimSpace(req.TargetAudience)
	if audience == "" {
		audience = a.opts.DefaultTargetAudience
	}

	attemptID := a.newID()
	logger := logging.WithAttempt(attemptID, req.Concept).With().
		Str("component", "pipeline").
		Logger()

	references := a.selectReferences(req.SourceText, req.Explanation)

	filler, pace := a.computeMetrics(req)

	userPrompt, err := prompts.Analysis(prompts.AnalysisInput{
		Concept:        req.Concept,
		TargetAudience: audience,
		Explanation:    req.Explanation,
		Filler:         filler,
		Pace:           pace,
		References:     references,
	})
	if err != nil {
		a.metrics.RecordAnalysis(false, "prompt", time.Since(start).Seconds())
		return nil, err
	}

	raw, err := a.generator.Generate(ctx, generation.Request{
		Purpose:      generation.PurposeAnalysis,
		SystemPrompt: prompts.FeynmanSystem,
		UserPrompt:   userPrompt,
		MaxTokens:    a.opts.MaxTokens,
	})
	if err != nil {
		logger.Error().Err(err).Str("provider", a.generator.Name()).Msg("Analysis generation failed")
		a.metrics.RecordAnalysis(false, "generation", time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	analysis, fusionState := fusion.Fuse(raw, filler, pace)
	a.metrics.RecordFusion(fusionState.Label())

	attempt := models.Attempt{
		AttemptID:          attemptID,
		Timestamp:          a.now().UTC().Format(models.TimestampLayout),
		Concept:            req.Concept,
		TargetAudience:     audience,
		ExplanationText:    req.Explanation,
		AnalysisResult:     analysis,
		ReferencedChunkIDs: models.ChunkIDs(references),
	}

	// Compared before saving: records are never rewritten.
	var comparedTo string
	var comparisonFallback bool
	if id := strings.TrimSpace(req.PreviousAttemptID); id != "" {
		if previous, ok := a.repo.LoadByID(ctx, id); ok {
			result, fallback := a.comparer.Compare(ctx, previous, comparison.Current{
				Concept:         req.Concept,
				ExplanationText: req.Explanation,
				Analysis:        analysis,
			})
			attempt.Comparison = &result
			comparedTo, comparisonFallback = id, fallback
		} else {
			logger.Warn().Str("previousAttemptId", id).Msg("Previous attempt not found, skipping comparison")
		}
	}

	if err := a.repo.Save(ctx, &attempt); err != nil {
		logger.Error().Err(err).Msg("Failed to save attempt")
		a.metrics.RecordAnalysis(false, "persist", time.Since(start).Seconds())
		return nil, fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}

	a.publish(ctx, attempt, filler, pace, comparedTo, comparisonFallback)

	a.metrics.RecordAnalysis(true, "", time.Since(start).Seconds())
	logger.Info().
		Str("fusion", fusionState.String()).
		Int("references", len(references)).
		Int("gaps", len(analysis.Gaps)).
		Bool("compared", attempt.Comparison != nil).
		Dur("duration", time.Since(start)).
		Msg("Analysis completed")

	return &models.AnalysisResponse{
		AttemptID:        attempt.AttemptID,
		Timestamp:        attempt.Timestamp,
		Analysis:         analysis,
		Comparison:       attempt.Comparison,
		ReferencedChunks: references,
		FusionStatus:     fusionState.Label(),
	}, nil
}

func (a *Analyzer) selectReferences(sourceText, query string) []models.ScoredChunk {
	if strings.TrimSpace(sourceText) == "" {
		return []models.ScoredChunk{}
	}

	chunks := chunker.Chunk(sourceText, a.opts.ReferenceChunking)
	a.metrics.RecordChunks(a.opts.ReferenceChunking.Unit.String(), len(chunks))

	selected := relevance.Select(query, chunks, a.opts.TopK)
	top := 0
	if len(selected) > 0 {
		top = selected[0].RelevanceScore
	}
	a.metrics.RecordSelection(len(selected), top)
	return selected
}

func (a *Analyzer) computeMetrics(req models.AnalysisRequest) (*models.FillerStats, *models.SpeakingMetrics) {
	var (
		filler *models.FillerStats
		pace   *models.SpeakingMetrics
	)

	stats, state := speech.DetectFillers(req.Explanation)
	a.metrics.RecordMetricOutcome("filler", state.Label())
	if state == outcome.Present {
		filler = &stats
	}

	m, state := speech.ComputePace(req.TotalTimeSeconds, req.ActiveSpeakingSeconds)
	a.metrics.RecordMetricOutcome("pace", state.Label())
	if state == outcome.Present {
		pace = &m
	}

	return filler, pace
}

func (a *Analyzer) publish(ctx context.Context, attempt models.Attempt, filler *models.FillerStats, pace *models.SpeakingMetrics, comparedTo string, fallback bool) {
	if a.publisher == nil {
		return
	}
	if err := a.publisher.PublishAttemptSaved(ctx, events.NewAttemptSaved(attempt, filler, pace)); err != nil {
		log.Warn().Err(err).Str("attemptId", attempt.AttemptID).Msg("Failed to publish attempt saved event")
	}
	if comparedTo == "" {
		return
	}
	if err := a.publisher.PublishAttemptCompared(ctx, events.NewAttemptCompared(attempt, comparedTo, fallback)); err != nil {
		log.Warn().Err(err).Str("attemptId", attempt.AttemptID).Msg("Failed to publish attempt compared event")
	}
}
