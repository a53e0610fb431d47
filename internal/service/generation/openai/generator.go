// Package openai provides a generation provider for OpenAI-compatible chat
// completion endpoints (OpenAI, llama.cpp server, vLLM, LM Studio).
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"explanation-coach-service/internal/service/generation"
)

// Defaults used when the configuration leaves them empty.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
)

// ErrMissingAPIKey is returned by New when the public endpoint is used without a key.
var ErrMissingAPIKey = errors.New("openai: API key is required for " + DefaultBaseURL)

// Options configures the provider.
type Options struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
	// JSONMode requests response_format json_object. Not every server supports it.
	JSONMode bool
}

// Generator implements generation.Generator over /chat/completions.
type Generator struct {
	baseURL    string
	apiKey     string
	model      string
	temp       float64
	jsonMode   bool
	httpClient *http.Client
}

// New creates an OpenAI-compatible generator. A key is only mandatory for
// the public OpenAI endpoint; self-hosted servers often need none.
func New(opts Options) (*Generator, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.APIKey == "" && opts.BaseURL == DefaultBaseURL {
		return nil, ErrMissingAPIKey
	}

	return &Generator{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		model:      opts.Model,
		temp:       opts.Temperature,
		jsonMode:   opts.JSONMode,
		httpClient: &http.Client{Timeout: opts.Timeout},
	}, nil
}

// Generate implements generation.Generator.
func (g *Generator) Generate(ctx context.Context, req generation.Request) (string, error) {
	reqBody := chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserPrompt},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: g.temp,
		Stream:      false,
	}
	if g.jsonMode {
		reqBody.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	if g.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       string(body),
		}
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	log.Debug().
		Str("model", chatResp.Model).
		Int("promptTokens", chatResp.Usage.PromptTokens).
		Int("completionTokens", chatResp.Usage.CompletionTokens).
		Msg("Chat completion usage")

	if len(chatResp.Choices) == 0 {
		return "", generation.ErrEmptyResponse
	}
	content := strings.TrimSpace(chatResp.Choices[0].Message.Content)
	if content == "" {
		return "", generation.ErrEmptyResponse
	}
	return content, nil
}

// Name implements generation.Generator.
func (g *Generator) Name() string {
	return "openai"
}
