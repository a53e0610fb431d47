package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"explanation-coach-service/internal/service/generation"
)

func TestNew_KeyRequiredOnlyForPublicEndpoint(t *testing.T) {
	if _, err := New(Options{}); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("expected ErrMissingAPIKey, got %v", err)
	}
	if _, err := New(Options{BaseURL: "http://localhost:8000/v1"}); err != nil {
		t.Errorf("self-hosted endpoint should not need a key: %v", err)
	}
}

func TestGenerate_Success(t *testing.T) {
	var got chatRequest
	var auth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"1","model":"m","choices":[{"index":0,"message":{"role":"assistant","content":"  {\"summary\":\"ok\"}\n"}}],"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`)
	}))
	defer srv.Close()

	g, err := New(Options{BaseURL: srv.URL + "/v1/", APIKey: "secret", Model: "m", JSONMode: true})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	out, err := g.Generate(context.Background(), generation.Request{
		SystemPrompt: "sys",
		UserPrompt:   "usr",
		MaxTokens:    800,
	})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if out != `{"summary":"ok"}` {
		t.Errorf("Generate() = %q", out)
	}

	if auth != "Bearer secret" {
		t.Errorf("Authorization = %q", auth)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "usr" {
		t.Errorf("unexpected messages: %+v", got.Messages)
	}
	if got.MaxTokens != 800 {
		t.Errorf("max_tokens = %d, want 800", got.MaxTokens)
	}
	if got.ResponseFormat == nil || got.ResponseFormat.Type != "json_object" {
		t.Errorf("expected json_object response format, got %+v", got.ResponseFormat)
	}
}

func TestGenerate_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, `{"error":"slow down"}`)
	}))
	defer srv.Close()

	g, _ := New(Options{BaseURL: srv.URL})
	_, err := g.Generate(context.Background(), generation.Request{})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests || apiErr.Body != `{"error":"slow down"}` {
		t.Errorf("unexpected APIError: %+v", apiErr)
	}
}

func TestGenerate_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"choices":[]}`)
	}))
	defer srv.Close()

	g, _ := New(Options{BaseURL: srv.URL})
	if _, err := g.Generate(context.Background(), generation.Request{}); !errors.Is(err, generation.ErrEmptyResponse) {
		t.Errorf("expected ErrEmptyResponse, got %v", err)
	}
}
