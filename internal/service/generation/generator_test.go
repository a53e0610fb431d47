package generation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"explanation-coach-service/internal/observability/metrics"
	"explanation-coach-service/internal/service/generation"
	"explanation-coach-service/internal/service/generation/mock"
)

func TestWithMetrics_RecordsErrors(t *testing.T) {
	m := metrics.DefaultMetrics
	errs := m.GenerationErrors.WithLabelValues("mock", "instrumented-test")
	before := testutil.ToFloat64(errs)

	ok := generation.WithMetrics(mock.New("fine"), m)
	out, err := ok.Generate(context.Background(), generation.Request{Purpose: "instrumented-test"})
	if err != nil || out != "fine" {
		t.Fatalf("Generate() = %q, %v", out, err)
	}
	if got := testutil.ToFloat64(errs); got != before {
		t.Errorf("successful call counted as error: %v -> %v", before, got)
	}

	failing := generation.WithMetrics(mock.NewFailing(errors.New("down")), m)
	if _, err := failing.Generate(context.Background(), generation.Request{Purpose: "instrumented-test"}); err == nil {
		t.Fatal("expected error")
	}
	if got := testutil.ToFloat64(errs); got != before+1 {
		t.Errorf("error counter = %v, want %v", got, before+1)
	}
	if failing.Name() != "mock" {
		t.Errorf("Name() = %s", failing.Name())
	}
}
