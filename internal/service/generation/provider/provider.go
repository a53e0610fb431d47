// Package provider builds the configured generation.Generator.
package provider

import (
	"context"
	"fmt"

	"explanation-coach-service/internal/config"
	"explanation-coach-service/internal/service/generation"
	"explanation-coach-service/internal/service/generation/gemini"
	"explanation-coach-service/internal/service/generation/mock"
	"explanation-coach-service/internal/service/generation/ollama"
	"explanation-coach-service/internal/service/generation/openai"
)

// Supported provider names.
const (
	Mock   = "mock"
	Gemini = "gemini"
	Ollama = "ollama"
	OpenAI = "openai"
)

// New creates the generator named by cfg.Provider.
func New(ctx context.Context, cfg config.GenerationConfig) (generation.Generator, error) {
	switch cfg.Provider {
	case Mock, "":
		return mock.New(), nil
	case Gemini:
		g, err := gemini.New(ctx, gemini.Options{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			BaseURL:     cfg.BaseURL,
		})
		if err != nil {
			return nil, err
		}
		return g, nil
	case Ollama:
		g, err := ollama.New(ollama.Options{
			Host:        cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return g, nil
	case OpenAI:
		g, err := openai.New(openai.Options{
			BaseURL:     cfg.BaseURL,
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
			JSONMode:    cfg.BaseURL == "" || cfg.BaseURL == openai.DefaultBaseURL,
		})
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unsupported generation provider %q", cfg.Provider)
	}
}
