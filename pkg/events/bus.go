package events

import (
	"fmt"

	"rentals/pkg/kafka"
	kafka_config "rentals/pkg/kafka/config"
	kafka_middleware "rentals/pkg/kafka/middleware"
	"rentals/pkg/logger"
)

const (
	BusKafka = "kafka"
	BusNATS  = "nats"
	BusNone  = "none"
)

// NewPublisher connects the configured bus. "none" yields a publisher that
// drops every event.
func NewPublisher(bus, natsURL, natsSubject, source string, log *logger.Logger) (Publisher, error) {
	switch bus {
	case BusKafka:
		kcfg, err := kafka_config.Load()
		if err != nil {
			return nil, fmt.Errorf("kafka config: %w", err)
		}
		producer, err := kafka.NewProducer(kcfg, log)
		if err != nil {
			return nil, err
		}
		producer.Use(kafka_middleware.LoggingProducerMiddleware(log))
		log.Info("Publishing events to Kafka", "topic", kcfg.Topic, "brokers", kcfg.Brokers)
		return NewKafkaPublisher(producer, source), nil

	case BusNATS:
		conn, err := ConnectNATS(natsURL, source)
		if err != nil {
			return nil, err
		}
		log.Info("Publishing events to NATS", "subject", natsSubject)
		return NewNATSPublisher(conn, natsSubject), nil

	case BusNone, "":
		log.Info("Event bus disabled, events are dropped")
		return NoopPublisher{}, nil
	}
	return nil, fmt.Errorf("unknown event bus %q", bus)
}
