package mock

import (
	"context"
	"errors"
	"testing"

	"explanation-coach-service/internal/service/generation"
)

func TestGenerator_ScriptedThenDefaults(t *testing.T) {
	g := New("first", "second")
	ctx := context.Background()

	for _, want := range []string{"first", "second"} {
		got, err := g.Generate(ctx, generation.Request{Purpose: generation.PurposeAnalysis})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Errorf("Generate() = %q, want %q", got, want)
		}
	}

	got, _ := g.Generate(ctx, generation.Request{Purpose: generation.PurposeAnalysis})
	if got != DefaultAnalysis {
		t.Errorf("expected default analysis after script, got %q", got)
	}
	got, _ = g.Generate(ctx, generation.Request{Purpose: generation.PurposeComparison})
	if got != DefaultComparison {
		t.Errorf("expected default comparison, got %q", got)
	}

	if n := len(g.Calls()); n != 4 {
		t.Errorf("expected 4 recorded calls, got %d", n)
	}
}

func TestGenerator_Failing(t *testing.T) {
	boom := errors.New("model offline")
	g := NewFailing(boom)

	if _, err := g.Generate(context.Background(), generation.Request{}); !errors.Is(err, boom) {
		t.Errorf("expected %v, got %v", boom, err)
	}
	if len(g.Calls()) != 1 {
		t.Error("failed call should still be recorded")
	}
}

func TestGenerator_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New("x").Generate(ctx, generation.Request{}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestGenerator_ImplementsInterface(t *testing.T) {
	var _ generation.Generator = New()
}
