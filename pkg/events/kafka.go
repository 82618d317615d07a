package events

import (
	"context"
	"encoding/json"
	"fmt"

	"rentals/pkg/kafka"
)

type KafkaPublisher struct {
	producer *kafka.Producer
	source   string
}

func NewKafkaPublisher(producer *kafka.Producer, source string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, source: source}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	msg, err := kafka.NewMessage().
		WithKey(event.Key).
		WithValue(event).
		WithHeader(kafka.HeaderEventID, event.ID).
		WithEventType(event.Type).
		WithCorrelationID(event.CorrelationID).
		WithSource(p.source).
		Build()
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// KafkaHandler adapts an event Handler to the kafka consumer.
func KafkaHandler(h Handler) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		var event Event
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return kafka.NewPermanentError(fmt.Sprintf("decode event at offset %d", msg.Offset), err)
		}
		return h(ctx, event)
	}
}
