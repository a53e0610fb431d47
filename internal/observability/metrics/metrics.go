// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "explanation_coach"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Analysis metrics
	AnalysesTotal    prometheus.Counter
	AnalysesFailed   *prometheus.CounterVec
	AnalysisDuration prometheus.Histogram

	// Chunking and selection metrics
	ChunksProduced    *prometheus.CounterVec
	ChunksSelected    prometheus.Histogram
	SelectionTopScore prometheus.Histogram

	// Computed speech metrics and fusion
	MetricOutcomes *prometheus.CounterVec
	FusionOutcomes *prometheus.CounterVec

	// Generation metrics
	GenerationLatency *prometheus.HistogramVec
	GenerationErrors  *prometheus.CounterVec

	// Comparison metrics
	Comparisons *prometheus.CounterVec

	// Store metrics
	StoreOperations  *prometheus.CounterVec
	StoreCorruptions prometheus.Counter
	HistorySize      prometheus.Gauge

	// Kafka publish metrics
	KafkaPublishTotal   *prometheus.CounterVec
	KafkaPublishErrors  *prometheus.CounterVec
	KafkaPublishLatency *prometheus.HistogramVec

	// Transport metrics
	HTTPRequests *prometheus.CounterVec
	RPCsTotal    *prometheus.CounterVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics()

// NewMetrics creates and registers all Prometheus metrics.
// It registers with the default registry, so call it once per process.
func NewMetrics() *Metrics {
	return &Metrics{
		// Analysis metrics
		AnalysesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Total number of explanation analyses started",
		}),
		AnalysesFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_failed_total",
			Help:      "Total number of analyses that returned an error",
		}, []string{"reason"}),
		AnalysisDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "End-to-end analysis duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}),

		// Chunking and selection metrics
		ChunksProduced: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_produced_total",
			Help:      "Total number of chunks produced",
		}, []string{"unit"}),
		ChunksSelected: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reference_chunks_selected",
			Help:      "Number of reference chunks selected per analysis",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
		}),
		SelectionTopScore: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "selection_top_score",
			Help:      "Keyword overlap score of the best reference chunk",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32},
		}),

		// Computed speech metrics and fusion
		MetricOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "speech_metric_outcomes_total",
			Help:      "Outcomes of computed speech metrics",
		}, []string{"metric", "state"}),
		FusionOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fusion_outcomes_total",
			Help:      "Outcomes of fusing generated analysis with computed metrics",
		}, []string{"state"}),

		// Generation metrics
		GenerationLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_latency_seconds",
			Help:      "Text generation latency in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"provider", "purpose"}),
		GenerationErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_errors_total",
			Help:      "Total number of failed generation calls",
		}, []string{"provider", "purpose"}),

		// Comparison metrics
		Comparisons: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comparisons_total",
			Help:      "Attempt comparisons by improvement status",
		}, []string{"status", "fallback"}),

		// Store metrics
		StoreOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Attempt store operations",
		}, []string{"operation", "result"}),
		StoreCorruptions: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_corruptions_total",
			Help:      "Number of times the history file could not be parsed",
		}),
		HistorySize: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "history_attempts",
			Help:      "Number of attempts in the history file after the last write",
		}),

		// Kafka publish metrics
		KafkaPublishTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka messages published",
		}, []string{"topic", "event_type"}),
		KafkaPublishErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		}, []string{"topic", "event_type"}),
		KafkaPublishLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Kafka publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),

		// Transport metrics
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code",
		}, []string{"route", "method", "code"}),
		RPCsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grpc_calls_total",
			Help:      "gRPC calls by method and status code",
		}, []string{"method", "code"}),
	}
}

// RecordAnalysis records a finished analysis. reason is ignored on success.
func (m *Metrics) RecordAnalysis(success bool, reason string, durationSeconds float64) {
	m.AnalysesTotal.Inc()
	m.AnalysisDuration.Observe(durationSeconds)
	if !success {
		m.AnalysesFailed.WithLabelValues(reason).Inc()
	}
}

// RecordChunks records chunks produced in the given size unit.
func (m *Metrics) RecordChunks(unit string, n int) {
	m.ChunksProduced.WithLabelValues(unit).Add(float64(n))
}

// RecordSelection records the number of selected reference chunks and the best score.
func (m *Metrics) RecordSelection(selected, topScore int) {
	m.ChunksSelected.Observe(float64(selected))
	if selected > 0 {
		m.SelectionTopScore.Observe(float64(topScore))
	}
}

// RecordMetricOutcome records whether a speech metric was present or absent.
func (m *Metrics) RecordMetricOutcome(metric, state string) {
	m.MetricOutcomes.WithLabelValues(metric, state).Inc()
}

// RecordFusion records a fusion outcome.
func (m *Metrics) RecordFusion(state string) {
	m.FusionOutcomes.WithLabelValues(state).Inc()
}

// RecordGeneration records a generation call.
func (m *Metrics) RecordGeneration(provider, purpose string, err error, latencySeconds float64) {
	m.GenerationLatency.WithLabelValues(provider, purpose).Observe(latencySeconds)
	if err != nil {
		m.GenerationErrors.WithLabelValues(provider, purpose).Inc()
	}
}

// RecordComparison records a comparison result.
func (m *Metrics) RecordComparison(status string, fallback bool) {
	m.Comparisons.WithLabelValues(status, strconv.FormatBool(fallback)).Inc()
}

// RecordStoreOperation records a store read or write.
func (m *Metrics) RecordStoreOperation(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.StoreOperations.WithLabelValues(operation, result).Inc()
}

// RecordStoreCorruption records an unparseable history file.
func (m *Metrics) RecordStoreCorruption() {
	m.StoreCorruptions.Inc()
}

// SetHistorySize sets the number of stored attempts.
func (m *Metrics) SetHistorySize(n int) {
	m.HistorySize.Set(float64(n))
}

// RecordKafkaPublish records a Kafka publish attempt.
func (m *Metrics) RecordKafkaPublish(topic, eventType string, err error, latencySeconds float64) {
	m.KafkaPublishTotal.WithLabelValues(topic, eventType).Inc()
	m.KafkaPublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic, eventType).Inc()
	}
}

// RecordHTTPRequest records a served HTTP request.
func (m *Metrics) RecordHTTPRequest(route, method string, code int) {
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
}

// RecordRPC records a served gRPC call.
func (m *Metrics) RecordRPC(method, code string) {
	m.RPCsTotal.WithLabelValues(method, code).Inc()
}
