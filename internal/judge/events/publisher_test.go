package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/segmentio/kafka-go"

	"judgemicro/internal/judge/model"
	"judgemicro/pkg/utils/contextkey"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestNilPublisherIsNoop(t *testing.T) {
	var p *Publisher
	if err := p.PublishVerdict(context.Background(), model.LanguageC, model.Verdict{}); err != nil {
		t.Fatalf("nil publisher must be a no-op, got %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("nil close: %v", err)
	}
}

func TestNewPublisherDisabled(t *testing.T) {
	if p := NewPublisher(Config{Enabled: false, Brokers: []string{"b:9092"}, Topic: "t"}); p != nil {
		t.Fatal("disabled config must produce a nil publisher")
	}
	if p := NewPublisher(Config{Enabled: true}); p != nil {
		t.Fatal("config without brokers must produce a nil publisher")
	}
}

func TestPublishVerdict(t *testing.T) {
	w := &fakeWriter{}
	p := newPublisherWithWriter(w, "judge.verdicts")

	match := true
	ctx := context.WithValue(context.Background(), contextkey.TraceID, "trace-1")
	v := model.Verdict{
		Status:  model.StatusSuccess,
		Match:   &match,
		Metrics: model.Metrics{WallMS: 12, CompileMS: 500},
	}
	if err := p.PublishVerdict(ctx, model.LanguageCPP, v); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("messages = %d", len(w.msgs))
	}

	var event VerdictEvent
	if err := json.Unmarshal(w.msgs[0].Value, &event); err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}
	if event.Language != "cpp" || event.Status != model.StatusSuccess {
		t.Fatalf("event = %+v", event)
	}
	if event.TraceID != "trace-1" {
		t.Fatalf("trace_id = %q, lost from context", event.TraceID)
	}
	if event.Metrics.CompileMS != 500 {
		t.Fatalf("metrics lost: %+v", event.Metrics)
	}
}

func TestPublishFailureIsReported(t *testing.T) {
	w := &fakeWriter{err: context.DeadlineExceeded}
	p := newPublisherWithWriter(w, "judge.verdicts")
	if err := p.PublishVerdict(context.Background(), model.LanguageC, model.Verdict{Status: model.StatusSuccess}); err == nil {
		t.Fatal("writer failure must surface as an error")
	}
}
