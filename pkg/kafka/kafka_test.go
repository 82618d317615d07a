package kafka

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"rentals/pkg/logger"

	"github.com/segmentio/kafka-go"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Output: io.Discard})
}

type fakeWriter struct {
	mu      sync.Mutex
	written []kafka.Message
	err     error
	closed  bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func header(km kafka.Message, key string) string {
	for _, h := range km.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

// ──────────────────────────────────────────────────────────────
// Messages
// ──────────────────────────────────────────────────────────────

func TestMessageBuilder(t *testing.T) {
	msg, err := NewMessage().
		WithKey("booking-1").
		WithValue(map[string]string{"status": "approved"}).
		WithEventType("booking.status_changed").
		WithCorrelationID("req-1").
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if msg.EventID() == "" {
		t.Error("event id should be generated")
	}
	if msg.EventType() != "booking.status_changed" || msg.CorrelationID() != "req-1" {
		t.Errorf("headers = %v", msg.Headers)
	}

	var decoded map[string]string
	if err := msg.DecodeValue(&decoded); err != nil || decoded["status"] != "approved" {
		t.Errorf("DecodeValue = %v, %v", decoded, err)
	}
}

func TestMessageBuilder_EncodeError(t *testing.T) {
	_, err := NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	if err == nil {
		t.Fatal("expected encode error")
	}
}

func TestRetryCount(t *testing.T) {
	msg := Message{Headers: map[string]string{}}
	for i := 0; i < 12; i++ {
		msg.IncrementRetryCount()
	}
	if msg.RetryCount() != 12 {
		t.Errorf("RetryCount = %d, want 12", msg.RetryCount())
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"tagged transient", NewTransientError("mail api", errors.New("502")), ErrorTypeTransient},
		{"tagged permanent", NewPermanentError("bad payload", nil), ErrorTypePermanent},
		{"deadline", context.DeadlineExceeded, ErrorTypeTransient},
		{"connection reset text", errors.New("read: Connection Reset by peer"), ErrorTypeTransient},
		{"anything else", errors.New("unknown event"), ErrorTypePermanent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError = %v, want %v", got, tt.want)
			}
		})
	}

	if ShouldRetry(NewTransientError("x", nil), 3, 3) {
		t.Error("retries exhausted should not retry")
	}
}

// ──────────────────────────────────────────────────────────────
// Producer
// ──────────────────────────────────────────────────────────────

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w, topic: "rentals.events"}

	var seenTopic string
	p.Use(func(ctx context.Context, msg Message, next MessageHandler) error {
		seenTopic = msg.Topic
		return next(ctx, msg)
	})

	msg, _ := NewMessage().WithKey("p1").WithValue("x").WithEventType("property.published").Build()
	if err := p.Publish(context.Background(), msg); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if seenTopic != "rentals.events" {
		t.Errorf("middleware saw topic %q", seenTopic)
	}
	if len(w.written) != 1 || string(w.written[0].Key) != "p1" {
		t.Fatalf("written = %+v", w.written)
	}
	if header(w.written[0], HeaderEventType) != "property.published" {
		t.Error("event type header not forwarded")
	}
}

func TestProducer_Validation(t *testing.T) {
	p := &Producer{writer: &fakeWriter{}, topic: "t"}

	if err := p.Publish(context.Background(), Message{Value: []byte("x")}); !errors.Is(err, ErrEmptyKey) {
		t.Errorf("expected ErrEmptyKey, got %v", err)
	}
	if err := p.Publish(context.Background(), Message{Key: "k"}); !errors.Is(err, ErrEmptyValue) {
		t.Errorf("expected ErrEmptyValue, got %v", err)
	}

	_ = p.Close()
	if err := p.Publish(context.Background(), Message{Key: "k", Value: []byte("x")}); !errors.Is(err, ErrProducerClosed) {
		t.Errorf("expected ErrProducerClosed, got %v", err)
	}
}

func TestProducer_DeadLettersOnFailure(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	dlq := &fakeWriter{}
	p := &Producer{writer: w, dlqWriter: dlq, topic: "rentals.events"}

	msg, _ := NewMessage().WithKey("k").WithValue("v").Build()
	if err := p.Publish(context.Background(), msg); err == nil {
		t.Fatal("expected publish error")
	}
	if len(dlq.written) != 1 {
		t.Fatalf("dlq written = %d, want 1", len(dlq.written))
	}
	if header(dlq.written[0], HeaderOriginalTopic) != "rentals.events" {
		t.Error("original topic header missing")
	}
	if _, ok := msg.Headers[HeaderDLQError]; ok {
		t.Error("caller's headers must not be mutated")
	}
}

// ──────────────────────────────────────────────────────────────
// Consumer
// ──────────────────────────────────────────────────────────────

type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []int64
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		m := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func (r *fakeReader) commits() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.committed)
}

func runConsumer(t *testing.T, c *Consumer, r *fakeReader, want int) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	deadline := time.After(2 * time.Second)
	for r.commits() < want {
		select {
		case <-deadline:
			cancel()
			t.Fatalf("timed out waiting for %d commits, got %d", want, r.commits())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done
}

func TestConsumer_RetriesTransientThenSucceeds(t *testing.T) {
	r := &fakeReader{queue: []kafka.Message{{Key: []byte("b1"), Value: []byte(`{}`), Offset: 7}}}

	attempts := 0
	c := &Consumer{
		reader:     r,
		topic:      "rentals.events",
		maxRetries: 3,
		log:        testLogger(),
		handler: func(ctx context.Context, msg Message) error {
			attempts++
			if attempts < 3 {
				return NewTransientError("smtp", errors.New("busy"))
			}
			return nil
		},
	}

	runConsumer(t, c, r, 1)

	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestConsumer_PermanentFailureGoesToDLQ(t *testing.T) {
	r := &fakeReader{queue: []kafka.Message{{Key: []byte("b1"), Value: []byte(`nope`), Offset: 1}}}
	dlq := &fakeWriter{}

	attempts := 0
	c := &Consumer{
		reader:     r,
		dlqWriter:  dlq,
		topic:      "rentals.events",
		maxRetries: 3,
		log:        testLogger(),
		handler: func(ctx context.Context, msg Message) error {
			attempts++
			var v map[string]any
			return msg.DecodeValue(&v)
		},
	}

	runConsumer(t, c, r, 1)

	if attempts != 1 {
		t.Errorf("permanent errors must not be retried, attempts = %d", attempts)
	}
	if len(dlq.written) != 1 {
		t.Errorf("dlq written = %d, want 1", len(dlq.written))
	}
}
