package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/segmentio/kafka-go"

	"explanation-coach-service/internal/events"
	"explanation-coach-service/internal/models"
)

var (
	faint   = color.New(color.Faint)
	saved   = color.New(color.FgCyan, color.Bold)
	better  = color.New(color.FgGreen, color.Bold)
	same    = color.New(color.FgYellow, color.Bold)
	worse   = color.New(color.FgRed, color.Bold)
	errText = color.New(color.FgRed)
)

// Printer serializes event output from concurrent consumers.
type Printer struct {
	mu  sync.Mutex
	out io.Writer
}

func consume(ctx context.Context, brokers []string, topic string, since time.Duration, p *Printer) {
	// Partition reader without a consumer group works through port-forwards.
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:   brokers,
		Topic:     topic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  10e6,
	})
	defer reader.Close()

	if err := reader.SetOffsetAt(ctx, time.Now().Add(-since)); err != nil {
		p.Errorf("seek %s: %v", topic, err)
	}

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.Errorf("read %s: %v", topic, err)
			time.Sleep(time.Second)
			continue
		}
		p.Message(msg)
	}
}

// Message prints one Kafka message, dispatching on its eventType header.
func (p *Printer) Message(msg kafka.Message) {
	eventType := header(msg, "eventType")

	var line string
	switch eventType {
	case events.EventAttemptSaved:
		var ev models.AttemptSaved
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			p.Errorf("decode %s: %v", eventType, err)
			return
		}
		line = formatSaved(ev)
	case events.EventAttemptCompared:
		var ev models.AttemptCompared
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			p.Errorf("decode %s: %v", eventType, err)
			return
		}
		line = formatCompared(ev)
	default:
		line = faint.Sprintf("%s key=%s (unknown event type %q)", msg.Topic, msg.Key, eventType)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, line)
}

// Errorf prints a consumer error.
func (p *Printer) Errorf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	errText.Fprintf(p.out, format+"\n", args...)
}

func formatSaved(ev models.AttemptSaved) string {
	s := fmt.Sprintf("%s %s %s %q for %s, gaps=%d, chunks=%v",
		faint.Sprint(stamp(ev.Timestamp)), saved.Sprint("SAVED   "), ev.AttemptID, ev.Concept, ev.TargetAudience, ev.GapCount, ev.ReferencedChunkIDs)
	if ev.FillerDensity != nil {
		s += fmt.Sprintf(", fillers=%.3f", *ev.FillerDensity)
	}
	if ev.PauseRatio != nil {
		s += fmt.Sprintf(", pauses=%.2f", *ev.PauseRatio)
	}
	return s
}

func formatCompared(ev models.AttemptCompared) string {
	c := same
	switch ev.ImprovementStatus {
	case models.ImprovementBetter:
		c = better
	case models.ImprovementWorse:
		c = worse
	}
	s := fmt.Sprintf("%s %s %s vs %s: %s",
		faint.Sprint(stamp(ev.Timestamp)), saved.Sprint("COMPARED"), ev.AttemptID, ev.PreviousAttemptID, c.Sprint(ev.ImprovementStatus))
	if ev.Fallback {
		s += faint.Sprint(" (fallback)")
	}
	return s
}

func header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func stamp(ms int64) string {
	return time.UnixMilli(ms).UTC().Format("15:04:05.000")
}
