// Package app wires configuration, the analysis pipeline and the transport
// servers into one process.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	grpcapi "explanation-coach-service/internal/api/grpc"
	"explanation-coach-service/internal/config"
	"explanation-coach-service/internal/events"
	httpapi "explanation-coach-service/internal/http"
	"explanation-coach-service/internal/observability"
	"explanation-coach-service/internal/observability/logging"
	"explanation-coach-service/internal/observability/metrics"
	"explanation-coach-service/internal/service/chunker"
	"explanation-coach-service/internal/service/generation"
	"explanation-coach-service/internal/service/generation/provider"
	"explanation-coach-service/internal/service/pipeline"
	"explanation-coach-service/internal/store"
)

// Application holds process-wide state for the service.
type Application struct {
	StartupTime time.Time
	Logger      zerolog.Logger
	Cfg         *config.Config

	Generator generation.Generator
	Store     *store.FileStore
	Publisher *events.Publisher
	Analyzer  *pipeline.Analyzer
	Router    http.Handler

	httpServer    *http.Server
	grpcServer    *grpcapi.Server
	observability *observability.Server
}

// New constructs a new Application from the provided configuration.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	a := &Application{
		Cfg:    cfg,
		Logger: logging.WithComponent("application"),
	}

	g, err := provider.New(ctx, cfg.Generation)
	if err != nil {
		return nil, fmt.Errorf("generation provider: %w", err)
	}
	a.Generator = generation.WithMetrics(g, metrics.DefaultMetrics)

	a.Store = store.NewFileStore(cfg.Store.Path)

	a.Publisher = events.New(&events.Config{
		Enabled:       cfg.Kafka.Enabled,
		Brokers:       SplitBrokers(cfg.Kafka.Brokers),
		TopicSaved:    cfg.Kafka.TopicSaved,
		TopicCompared: cfg.Kafka.TopicCompared,
		Principal:     cfg.Kafka.Principal,
	})

	a.Analyzer = pipeline.New(a.Generator, a.Store, a.Publisher, PipelineOptions(cfg))

	a.Router = httpapi.NewRouter(httpapi.Deps{
		Analyzer: a.Analyzer,
		History:  a.Store,
		Windowing: chunker.Options{
			Unit:    chunker.UnitWords,
			MaxSize: cfg.Pipeline.WindowTokens,
			Overlap: cfg.Pipeline.WindowOverlapTokens,
		},
		TopK:         cfg.Pipeline.TopK,
		HistoryLimit: cfg.Pipeline.HistoryLimit,
	})

	a.httpServer = &http.Server{
		Addr:              ":" + cfg.Service.HTTPPort,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.grpcServer = grpcapi.New(metrics.DefaultMetrics)
	a.observability = observability.NewServer(":" + cfg.Service.MetricsPort)

	a.Logger.Info().
		Str("provider", a.Generator.Name()).
		Str("store", a.Store.Path()).
		Bool("kafka", cfg.Kafka.Enabled).
		Msg("Explanation coach application created")
	return a, nil
}

// PipelineOptions maps configuration onto pipeline settings.
func PipelineOptions(cfg *config.Config) pipeline.Options {
	return pipeline.Options{
		DefaultTargetAudience: cfg.Pipeline.DefaultTargetAudience,
		ReferenceChunking: chunker.Options{
			Unit:    chunker.UnitChars,
			MaxSize: cfg.Pipeline.ReferenceChunkChars,
			Overlap: cfg.Pipeline.ReferenceOverlapChars,
		},
		TopK:                cfg.Pipeline.TopK,
		MaxTokens:           cfg.Generation.MaxTokens,
		ComparisonMaxTokens: cfg.Generation.ComparisonTokens,
	}
}

// SplitBrokers parses a comma-separated broker list, dropping blanks.
func SplitBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// Start binds the listeners and begins serving. It returns once every
// listener is bound; serving continues in the background.
func (a *Application) Start() error {
	startLogger := a.Logger.With().
		Str("method", "Start").
		Logger()

	a.StartupTime = time.Now().UTC()

	lis, err := net.Listen("tcp", ":"+a.Cfg.Service.GRPCPort)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	httpLis, err := net.Listen("tcp", a.httpServer.Addr)
	if err != nil {
		lis.Close()
		return fmt.Errorf("http listen: %w", err)
	}

	a.observability.Start()

	go func() {
		if err := a.grpcServer.Serve(lis); err != nil {
			startLogger.Error().Err(err).Msg("gRPC server stopped")
		}
	}()
	go func() {
		startLogger.Info().Str("addr", a.httpServer.Addr).Msg("Starting HTTP API server")
		if err := a.httpServer.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			startLogger.Error().Err(err).Msg("HTTP API server stopped")
		}
	}()

	a.grpcServer.SetServing(true)
	a.observability.SetReady(true)

	startLogger.Info().
		Time("startupTime", a.StartupTime).
		Msg("Explanation coach service started")
	return nil
}

// Shutdown performs a best-effort cleanup before process exit.
func (a *Application) Shutdown(ctx context.Context) {
	shutdownLogger := a.Logger.With().
		Str("method", "Shutdown").
		Logger()

	shutdownLogger.Info().Msg("Explanation coach service shutting down")

	a.observability.SetReady(false)
	a.grpcServer.SetServing(false)

	if err := a.httpServer.Shutdown(ctx); err != nil {
		shutdownLogger.Warn().Err(err).Msg("HTTP API server shutdown")
	}
	a.grpcServer.Stop()
	if err := a.Publisher.Close(); err != nil {
		shutdownLogger.Warn().Err(err).Msg("Event publisher close")
	}
	if err := a.observability.Shutdown(ctx); err != nil {
		shutdownLogger.Warn().Err(err).Msg("Observability server shutdown")
	}
}
