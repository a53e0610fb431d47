// Package mock provides a scripted generator for tests and for running the
// service without a model.
package mock

import (
	"context"
	"strings"
	"sync"

	"explanation-coach-service/internal/service/generation"
)

// DefaultAnalysis is returned for analysis prompts when nothing is scripted.
const DefaultAnalysis = `{
  "summary": "A clear first pass that covers the main idea.",
  "gaps": ["The explanation does not say why the process matters."],
  "suggestions": ["Use an everyday analogy.", "Define each new term before using it."],
  "follow_up_questions": ["What would happen if one step were missing?"],
  "speaking_clarity": {"issues": [], "suggestions": ["Pause between ideas."]},
  "interviewer_followup": {
    "question": "How would you explain the trade-offs involved?",
    "intent": "Testing depth beyond recall."
  }
}`

// DefaultComparison is returned for comparison prompts when nothing is scripted.
const DefaultComparison = `{
  "improvement_status": "better",
  "key_changes": ["Simplified the vocabulary."],
  "encouragement": "Nice progress, keep going."
}`

// Generator implements generation.Generator with canned responses.
// Scripted responses are returned in order; once exhausted, responses are
// chosen by prompt kind.
type Generator struct {
	mu        sync.Mutex
	responses []string
	err       error
	calls     []generation.Request
}

// New creates a mock generator returning responses in order.
func New(responses ...string) *Generator {
	return &Generator{responses: responses}
}

// NewFailing creates a mock generator that always returns err.
func NewFailing(err error) *Generator {
	return &Generator{err: err}
}

// Generate implements generation.Generator.
func (g *Generator) Generate(ctx context.Context, req generation.Request) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls = append(g.calls, req)

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if g.err != nil {
		return "", g.err
	}
	if len(g.responses) > 0 {
		out := g.responses[0]
		g.responses = g.responses[1:]
		return out, nil
	}
	if req.Purpose == generation.PurposeComparison || strings.Contains(req.SystemPrompt, "improvement_status") {
		return DefaultComparison, nil
	}
	return DefaultAnalysis, nil
}

// Name implements generation.Generator.
func (g *Generator) Name() string {
	return "mock"
}

// Calls returns a copy of every request received so far.
func (g *Generator) Calls() []generation.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]generation.Request(nil), g.calls...)
}
