package events

import (
	"context"
	"sync"
	"time"

	"rentals/pkg/logger"
)

const publishTimeout = 5 * time.Second

// Dispatcher emits domain events without blocking or failing the caller.
// Publish errors are logged and dropped.
type Dispatcher struct {
	publisher Publisher
	log       *logger.Logger
	wg        sync.WaitGroup
}

func NewDispatcher(publisher Publisher, log *logger.Logger) *Dispatcher {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &Dispatcher{publisher: publisher, log: log}
}

func (d *Dispatcher) Emit(ctx context.Context, eventType, key string, payload any) {
	if d == nil {
		return
	}
	log := d.log.WithContext(ctx)

	event, err := New(ctx, eventType, key, payload)
	if err != nil {
		log.Error("Failed to build event", "event_type", eventType, "key", key, "error", err)
		return
	}

	// Detached from the request so a finished response does not cancel delivery.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer cancel()

		if err := d.publisher.Publish(pubCtx, event); err != nil {
			log.Warn("Failed to publish event",
				"event_type", event.Type,
				"event_id", event.ID,
				"key", event.Key,
				"error", err,
			)
		}
	}()
}

// Close waits for in-flight publishes and closes the publisher.
func (d *Dispatcher) Close() error {
	d.wg.Wait()
	return d.publisher.Close()
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
func (NoopPublisher) Close() error                         { return nil }
