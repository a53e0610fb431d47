// Package generation defines the interface for text generation providers
// (local models, Gemini, OpenAI-compatible endpoints).
package generation

import (
	"context"
	"errors"
	"time"

	"explanation-coach-service/internal/observability/logging"
	"explanation-coach-service/internal/observability/metrics"
)

// ErrEmptyResponse is returned by providers when the model produced no text.
var ErrEmptyResponse = errors.New("generation returned an empty response")

// Purposes label generation calls in metrics and logs.
const (
	PurposeAnalysis   = "analysis"
	PurposeComparison = "comparison"
)

// Request is a single system+user prompt generation call.
type Request struct {
	Purpose      string
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
}

// Generator produces text for a prompt pair.
type Generator interface {
	// Generate returns the raw model output. It does not interpret it.
	Generate(ctx context.Context, req Request) (string, error)

	// Name identifies the provider.
	Name() string
}

// Instrumented wraps a Generator and records latency and errors.
type Instrumented struct {
	next    Generator
	metrics *metrics.Metrics
}

// WithMetrics wraps g so every call is recorded in m.
func WithMetrics(g Generator, m *metrics.Metrics) *Instrumented {
	return &Instrumented{next: g, metrics: m}
}

// Generate implements Generator.
func (i *Instrumented) Generate(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	out, err := i.next.Generate(ctx, req)
	elapsed := time.Since(start)
	i.metrics.RecordGeneration(i.next.Name(), req.Purpose, err, elapsed.Seconds())

	logger := logging.WithProvider(i.next.Name())
	if err != nil {
		logger.Warn().Err(err).Str("purpose", req.Purpose).Dur("duration", elapsed).Msg("Generation failed")
	} else {
		logger.Debug().Str("purpose", req.Purpose).Int("chars", len(out)).Dur("duration", elapsed).Msg("Generation completed")
	}
	return out, err
}

// Name implements Generator.
func (i *Instrumented) Name() string {
	return i.next.Name()
}
