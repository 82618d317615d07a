package events

import (
	"context"
	"encoding/json"
	"fmt"

	"rentals/pkg/logger"

	"github.com/nats-io/nats.go"
)

// NATSPublisher publishes each event on "<subject>.<event type>".
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

func ConnectNATS(url, clientName string) (*nats.Conn, error) {
	conn, err := nats.Connect(url, nats.Name(clientName), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return conn, nil
}

func NewNATSPublisher(conn *nats.Conn, subject string) *NATSPublisher {
	return &NATSPublisher{conn: conn, subject: subject}
}

func (p *NATSPublisher) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := nats.NewMsg(p.subject + "." + event.Type)
	msg.Data = data
	msg.Header.Set("event-id", event.ID)
	msg.Header.Set("event-type", event.Type)
	return p.conn.PublishMsg(msg)
}

func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

// SubscribeNATS delivers every event under subject to h through a queue
// group, so replicas of the consumer share the load.
func SubscribeNATS(conn *nats.Conn, subject, queue string, h Handler, log *logger.Logger) (*nats.Subscription, error) {
	return conn.QueueSubscribe(subject+".>", queue, func(msg *nats.Msg) {
		var event Event
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			log.Warn("Dropping undecodable NATS event", "subject", msg.Subject, "error", err)
			return
		}

		ctx := logger.ContextWithRequestID(context.Background(), event.CorrelationID)
		if err := h(ctx, event); err != nil {
			log.Error("NATS event handling failed",
				"subject", msg.Subject,
				"event_id", event.ID,
				"error", err,
			)
		}
	})
}
