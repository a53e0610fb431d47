// Package gemini provides a Google Gemini generation provider.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"explanation-coach-service/internal/service/generation"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// ErrMissingAPIKey is returned by New when no API key is provided.
var ErrMissingAPIKey = errors.New("gemini: API key is required")

// Options configures the Gemini provider.
type Options struct {
	APIKey      string
	Model       string
	Temperature float64
	// BaseURL overrides the API endpoint; empty uses the public endpoint.
	BaseURL string
}

// Generator implements generation.Generator using the Gemini API.
type Generator struct {
	client      *genai.Client
	model       string
	temperature float32
}

// New creates a Gemini generator.
func New(ctx context.Context, opts Options) (*Generator, error) {
	if opts.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}

	cfg := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	log.Info().Str("model", opts.Model).Msg("Gemini generator ready")

	return &Generator{
		client:      client,
		model:       opts.Model,
		temperature: float32(opts.Temperature),
	}, nil
}

// Generate sends the system prompt as a system instruction and asks for a
// JSON response.
func (g *Generator) Generate(ctx context.Context, req generation.Request) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.SystemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr(g.temperature),
		ResponseMIMEType:  "application/json",
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.UserPrompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", generation.ErrEmptyResponse
	}
	return text, nil
}

// Name implements generation.Generator.
func (g *Generator) Name() string {
	return "gemini"
}
