// Package ollama provides a generation provider backed by a local Ollama server.
package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/rs/zerolog/log"

	"explanation-coach-service/internal/service/generation"
)

// Defaults used when the configuration leaves them empty.
const (
	DefaultHost  = "http://localhost:11434"
	DefaultModel = "llama3.2"
)

// Options configures the Ollama provider.
type Options struct {
	Host        string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// Generator implements generation.Generator against the Ollama generate API.
type Generator struct {
	client      *api.Client
	model       string
	temperature float64
}

// New creates an Ollama generator. It does not contact the server.
func New(opts Options) (*Generator, error) {
	if opts.Host == "" {
		opts.Host = DefaultHost
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}

	host, err := url.Parse(opts.Host)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama host %q: %w", opts.Host, err)
	}

	httpClient := &http.Client{Timeout: opts.Timeout}

	log.Info().
		Str("host", opts.Host).
		Str("model", opts.Model).
		Msg("Ollama generator ready")

	return &Generator{
		client:      api.NewClient(host, httpClient),
		model:       opts.Model,
		temperature: opts.Temperature,
	}, nil
}

// Generate runs a single non-streaming generation in JSON mode.
func (g *Generator) Generate(ctx context.Context, req generation.Request) (string, error) {
	stream := false
	options := map[string]interface{}{
		"temperature": g.temperature,
	}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}

	genReq := &api.GenerateRequest{
		Model:   g.model,
		System:  req.SystemPrompt,
		Prompt:  req.UserPrompt,
		Stream:  &stream,
		Format:  json.RawMessage(`"json"`),
		Options: options,
	}

	var out strings.Builder
	err := g.client.Generate(ctx, genReq, func(resp api.GenerateResponse) error {
		out.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama generate failed: %w", err)
	}

	text := strings.TrimSpace(out.String())
	if text == "" {
		return "", generation.ErrEmptyResponse
	}
	return text, nil
}

// Name implements generation.Generator.
func (g *Generator) Name() string {
	return "ollama"
}
