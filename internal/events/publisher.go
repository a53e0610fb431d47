// Package events publishes attempt lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"explanation-coach-service/internal/models"
	"explanation-coach-service/internal/observability/metrics"
)

// Event types carried in the eventType header and payload.
const (
	EventAttemptSaved    = "explanation.attempt.saved"
	EventAttemptCompared = "explanation.attempt.compared"
)

// Publisher publishes attempt events to separate Kafka topics.
// With Kafka disabled it only logs.
type Publisher struct {
	writerSaved    *kafka.Writer
	writerCompared *kafka.Writer
	principal      string
	topicSaved     string
	topicCompared  string
	enabled        bool
	metrics        *metrics.Metrics
}

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers       []string
	TopicSaved    string
	TopicCompared string
	Principal     string
	Enabled       bool
}

// New creates a new Kafka event publisher.
func New(cfg *Config) *Publisher {
	m := metrics.DefaultMetrics

	if cfg == nil {
		log.Info().Msg("Kafka disabled (nil config), using log-only mode")
		return &Publisher{
			enabled: false,
			metrics: m,
		}
	}

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info().Msg("Kafka disabled, using log-only mode")
		return &Publisher{
			principal:     cfg.Principal,
			topicSaved:    cfg.TopicSaved,
			topicCompared: cfg.TopicCompared,
			enabled:       false,
			metrics:       m,
		}
	}

	// Longer dial timeout for DNS resolution in Kubernetes
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}

	transport := &kafka.Transport{
		Dial: dialer.DialFunc,
	}

	newWriter := func(topic string) *kafka.Writer {
		return &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 10 * time.Millisecond,
			WriteTimeout: 10 * time.Second,
			RequiredAcks: kafka.RequireOne,
			Transport:    transport,
		}
	}

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topicSaved", cfg.TopicSaved).
		Str("topicCompared", cfg.TopicCompared).
		Str("principal", cfg.Principal).
		Msg("Kafka publisher initialized")

	return &Publisher{
		writerSaved:    newWriter(cfg.TopicSaved),
		writerCompared: newWriter(cfg.TopicCompared),
		principal:      cfg.Principal,
		topicSaved:     cfg.TopicSaved,
		topicCompared:  cfg.TopicCompared,
		enabled:        true,
		metrics:        m,
	}
}

// PublishAttemptSaved publishes an attempt-saved event keyed by attempt id.
func (p *Publisher) PublishAttemptSaved(ctx context.Context, ev models.AttemptSaved) error {
	return p.publish(ctx, p.writerSaved, p.topicSaved, EventAttemptSaved, ev.AttemptID, ev)
}

// PublishAttemptCompared publishes an attempt-compared event keyed by attempt id.
func (p *Publisher) PublishAttemptCompared(ctx context.Context, ev models.AttemptCompared) error {
	return p.publish(ctx, p.writerCompared, p.topicCompared, EventAttemptCompared, ev.AttemptID, ev)
}

func (p *Publisher) publish(ctx context.Context, writer *kafka.Writer, topic, eventType, key string, event any) error {
	start := time.Now()

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Failed to marshal event")
		return err
	}

	log.Debug().
		Str("principal", p.principal).
		Str("topic", topic).
		Str("key", key).
		RawJSON("payload", payload).
		Msg("Publishing event")

	// If Kafka is disabled, just log
	if !p.enabled || writer == nil {
		p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(eventType)},
			{Key: "principal", Value: []byte(p.principal)},
		},
	}

	if err := writer.WriteMessages(ctx, msg); err != nil {
		log.Error().
			Err(err).
			Str("topic", topic).
			Str("key", key).
			Msg("Failed to write to Kafka")
		p.metrics.RecordKafkaPublish(topic, eventType, err, time.Since(start).Seconds())
		return err
	}

	p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
	return nil
}

// Close closes both Kafka writers.
func (p *Publisher) Close() error {
	var err error
	if p.writerSaved != nil {
		if e := p.writerSaved.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing attempt-saved writer")
			err = e
		}
	}
	if p.writerCompared != nil {
		if e := p.writerCompared.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing attempt-compared writer")
			err = e
		}
	}
	return err
}
