package kafka_middleware

import (
	"context"
	"time"

	"rentals/pkg/kafka"
	"rentals/pkg/logger"
)

func LoggingProducerMiddleware(log *logger.Logger) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)

		fields := []any{
			"topic", msg.Topic,
			"key", msg.Key,
			"event_id", msg.EventID(),
			"event_type", msg.EventType(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if err != nil {
			log.WithContext(ctx).Error("Failed to publish event", append(fields, "error", err)...)
		} else {
			log.WithContext(ctx).Debug("Published event", fields...)
		}
		return err
	}
}

func LoggingConsumerMiddleware(log *logger.Logger) kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		if id := msg.CorrelationID(); id != "" {
			ctx = logger.ContextWithRequestID(ctx, id)
		}

		err := next(ctx, msg)

		fields := []any{
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"event_id", msg.EventID(),
			"event_type", msg.EventType(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if err != nil {
			log.WithContext(ctx).Error("Failed to process event", append(fields, "error", err)...)
		} else {
			log.WithContext(ctx).Info("Processed event", fields...)
		}
		return err
	}
}
