package provider

import (
	"context"
	"testing"
	"time"

	"explanation-coach-service/internal/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.GenerationConfig
		want    string
		wantErr bool
	}{
		{"empty defaults to mock", config.GenerationConfig{}, "mock", false},
		{"mock", config.GenerationConfig{Provider: Mock}, "mock", false},
		{"ollama", config.GenerationConfig{Provider: Ollama, Timeout: time.Second}, "ollama", false},
		{"openai self-hosted", config.GenerationConfig{Provider: OpenAI, BaseURL: "http://localhost:8080/v1"}, "openai", false},
		{"openai public without key", config.GenerationConfig{Provider: OpenAI}, "", true},
		{"gemini without key", config.GenerationConfig{Provider: Gemini}, "", true},
		{"gemini with key", config.GenerationConfig{Provider: Gemini, APIKey: "k"}, "gemini", false},
		{"unknown", config.GenerationConfig{Provider: "llamacpp"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New(context.Background(), tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got provider %s", g.Name())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if g.Name() != tt.want {
				t.Errorf("Name() = %s, want %s", g.Name(), tt.want)
			}
		})
	}
}
