package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	accountsrepository "rentals/internal/accounts/repository"
	"rentals/internal/notifications"
	"rentals/pkg/config"
	"rentals/pkg/events"
	"rentals/pkg/kafka"
	kafka_config "rentals/pkg/kafka/config"
	kafka_middleware "rentals/pkg/kafka/middleware"
	"rentals/pkg/mailer"
)

const (
	ServiceName = "rentals-notifier"
	natsQueue   = "notifier"
)

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	notifier := notifications.NewNotifier(
		accountsrepository.NewMongoUserRepository(cfg),
		accountsrepository.NewMongoOwnerRepository(cfg),
		mailer.New(cfg.MailerSendAPIKey, cfg.MailFromName, cfg.MailFromEmail, cfg.Log),
		cfg.Log,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cfg.EventBus {
	case events.BusKafka:
		runKafka(ctx, cfg, notifier)
	case events.BusNATS:
		runNATS(ctx, cfg, notifier)
	default:
		cfg.Log.Fatal("Notifier needs an event bus", "event_bus", cfg.EventBus)
	}
	cfg.Log.Info("Notifier stopped")
}

func runKafka(ctx context.Context, cfg *config.Config, notifier *notifications.Notifier) {
	kcfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}

	consumer, err := kafka.NewConsumer(kcfg, events.KafkaHandler(notifier.Handle), cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	defer consumer.Close()
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))

	cfg.Log.Info("Consuming events from Kafka", "topic", kcfg.Topic, "group", kcfg.GroupID)
	if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
		cfg.Log.Error("Kafka consumer stopped", "error", err)
	}
}

func runNATS(ctx context.Context, cfg *config.Config, notifier *notifications.Notifier) {
	conn, err := events.ConnectNATS(cfg.NATSURL, ServiceName)
	if err != nil {
		cfg.Log.Fatal("Failed to connect to NATS", "error", err)
	}
	defer conn.Drain()

	sub, err := events.SubscribeNATS(conn, cfg.NATSSubject, natsQueue, notifier.Handle, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to subscribe to NATS", "subject", cfg.NATSSubject, "error", err)
	}
	defer sub.Unsubscribe()

	cfg.Log.Info("Consuming events from NATS", "subject", cfg.NATSSubject, "queue", natsQueue)
	<-ctx.Done()
}
