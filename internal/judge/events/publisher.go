// Package events publishes verdict events to Kafka for downstream consumers
// (leaderboards, notification fan-out, audit).
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"judgemicro/internal/judge/model"
	appErr "judgemicro/pkg/errors"
	"judgemicro/pkg/utils/contextkey"
	"judgemicro/pkg/utils/logger"
)

// Config selects the Kafka cluster and topic for verdict events.
type Config struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// VerdictEvent is the published record for one finished evaluation.
type VerdictEvent struct {
	EventID    string        `json:"event_id"`
	TraceID    string        `json:"trace_id,omitempty"`
	Language   string        `json:"language"`
	Status     model.Status  `json:"status"`
	Match      *bool         `json:"match,omitempty"`
	Metrics    model.Metrics `json:"metrics"`
	BatchSize  int           `json:"batch_size,omitempty"`
	BatchIndex int           `json:"batch_index,omitempty"`
	CreatedAt  int64         `json:"created_at"`
}

// messageWriter is the slice of kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher emits verdict events. A nil Publisher is a no-op, so callers
// never need to branch on whether eventing is configured.
type Publisher struct {
	writer messageWriter
	topic  string
}

// NewPublisher builds a Kafka-backed publisher, or nil when disabled.
func NewPublisher(cfg Config) *Publisher {
	if !cfg.Enabled || len(cfg.Brokers) == 0 || cfg.Topic == "" {
		return nil
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &Publisher{writer: w, topic: cfg.Topic}
}

func newPublisherWithWriter(w messageWriter, topic string) *Publisher {
	return &Publisher{writer: w, topic: topic}
}

// PublishVerdict emits one verdict event. Publish failures are reported but
// must never fail the evaluation itself; callers log and move on.
func (p *Publisher) PublishVerdict(ctx context.Context, lang model.Language, v model.Verdict) error {
	if p == nil || p.writer == nil {
		return nil
	}

	event := VerdictEvent{
		EventID:    uuid.NewString(),
		Language:   string(lang),
		Status:     v.Status,
		Match:      v.Match,
		Metrics:    v.Metrics,
		BatchIndex: v.ConfigIndex,
		CreatedAt:  time.Now().Unix(),
	}
	if traceID, ok := ctx.Value(contextkey.TraceID).(string); ok {
		event.TraceID = traceID
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return appErr.Wrapf(err, appErr.EventPublishFailed, "marshal verdict event")
	}
	msg := kafka.Message{
		Key:   []byte(event.EventID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "x-event-type", Value: []byte("verdict")},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		logger.Warn(ctx, "verdict event publish failed", zap.Error(err))
		return appErr.Wrapf(err, appErr.EventPublishFailed, "write verdict event")
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
