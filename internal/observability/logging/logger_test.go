package logging

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestInit_JSONWithServiceAndAttempt(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{
		Service:    "coach-test",
		Level:      "DEBUG",
		Format:     "json",
		TimeFormat: time.RFC3339,
		Output:     &buf,
	})
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Fatalf("expected debug level, got %s", zerolog.GlobalLevel())
	}

	logger := WithAttempt("a-1", "gravity")
	logger.Info().Msg("hello")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["service"] != "coach-test" {
		t.Errorf("service = %v, want coach-test", entry["service"])
	}
	if entry["attemptId"] != "a-1" || entry["concept"] != "gravity" {
		t.Errorf("missing attempt fields: %v", entry)
	}
}

func TestInit_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "loud", Output: &buf, TimeFormat: time.RFC3339})

	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Errorf("expected info level, got %s", zerolog.GlobalLevel())
	}
}
