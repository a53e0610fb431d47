// Package config loads service configuration from the environment.
// An optional .env file in the working directory is read first; variables
// already set in the environment take precedence.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full service configuration.
type Config struct {
	Service       ServiceConfig
	Generation    GenerationConfig
	Pipeline      PipelineConfig
	Store         StoreConfig
	Kafka         KafkaConfig
	Observability ObservabilityConfig
}

// ServiceConfig holds service identity and listener settings.
type ServiceConfig struct {
	Principal   string
	HTTPPort    string
	GRPCPort    string
	MetricsPort string
}

// GenerationConfig selects and configures the text generation provider.
type GenerationConfig struct {
	Provider         string // mock, gemini, ollama, openai
	Model            string
	BaseURL          string
	APIKey           string
	MaxTokens        int
	ComparisonTokens int
	Temperature      float64
	Timeout          time.Duration
}

// PipelineConfig holds analysis pipeline tuning.
type PipelineConfig struct {
	DefaultTargetAudience string
	ReferenceChunkChars   int
	ReferenceOverlapChars int
	WindowTokens          int
	WindowOverlapTokens   int
	TopK                  int
	HistoryLimit          int
}

// StoreConfig locates the attempt history file.
type StoreConfig struct {
	Path string
}

// KafkaConfig holds event publishing settings.
type KafkaConfig struct {
	Enabled       bool
	Brokers       string
	TopicSaved    string
	TopicCompared string
	Principal     string
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment, falling back to defaults
// for unset or unparseable values.
func Load() *Config {
	_ = godotenv.Load()

	principal := envOrDefault("SERVICE_PRINCIPAL", "svc-explanation-coach")

	return &Config{
		Service: ServiceConfig{
			Principal:   principal,
			HTTPPort:    envOrDefault("HTTP_PORT", "8080"),
			GRPCPort:    envOrDefault("GRPC_PORT", "50051"),
			MetricsPort: envOrDefault("METRICS_PORT", "9090"),
		},
		Generation: GenerationConfig{
			Provider:         strings.ToLower(envOrDefault("GENERATION_PROVIDER", "mock")),
			Model:            envOrDefault("GENERATION_MODEL", ""),
			BaseURL:          envOrDefault("GENERATION_BASE_URL", ""),
			APIKey:           envOrDefault("GENERATION_API_KEY", ""),
			MaxTokens:        envOrDefaultInt("GENERATION_MAX_TOKENS", 1000),
			ComparisonTokens: envOrDefaultInt("GENERATION_COMPARISON_MAX_TOKENS", 800),
			Temperature:      envOrDefaultFloat("GENERATION_TEMPERATURE", 0.7),
			Timeout:          envOrDefaultDuration("GENERATION_TIMEOUT", 120*time.Second),
		},
		Pipeline: PipelineConfig{
			DefaultTargetAudience: envOrDefault("PIPELINE_DEFAULT_TARGET_AUDIENCE", "5-year-old"),
			ReferenceChunkChars:   envOrDefaultInt("PIPELINE_REFERENCE_CHUNK_CHARS", 1500),
			ReferenceOverlapChars: envOrDefaultInt("PIPELINE_REFERENCE_OVERLAP_CHARS", 200),
			WindowTokens:          envOrDefaultInt("PIPELINE_WINDOW_TOKENS", 700),
			WindowOverlapTokens:   envOrDefaultInt("PIPELINE_WINDOW_OVERLAP_TOKENS", 50),
			TopK:                  envOrDefaultInt("PIPELINE_TOP_K", 3),
			HistoryLimit:          envOrDefaultInt("PIPELINE_HISTORY_LIMIT", 20),
		},
		Store: StoreConfig{
			Path: envOrDefault("STORE_PATH", "data/history/attempts.json"),
		},
		Kafka: KafkaConfig{
			Enabled:       envOrDefaultBool("KAFKA_ENABLED", false),
			Brokers:       envOrDefault("KAFKA_BROKERS", "localhost:9092"),
			TopicSaved:    envOrDefault("KAFKA_TOPIC_ATTEMPT_SAVED", "explanation.attempt.saved"),
			TopicCompared: envOrDefault("KAFKA_TOPIC_ATTEMPT_COMPARED", "explanation.attempt.compared"),
			Principal:     envOrDefault("KAFKA_PRINCIPAL", principal),
		},
		Observability: ObservabilityConfig{
			LogLevel:  envOrDefault("LOG_LEVEL", "info"),
			LogFormat: envOrDefault("LOG_FORMAT", "json"),
		},
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func envOrDefaultFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
