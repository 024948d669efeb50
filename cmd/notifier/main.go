package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/vn33/ecom-backend/internal/config"
	"github.com/vn33/ecom-backend/internal/logging"
	"github.com/vn33/ecom-backend/internal/mykafka"
	"github.com/vn33/ecom-backend/internal/notify"
)

const (
	groupID       = "notification-service"
	simulateDelay = 5 * time.Second
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	config.MustNonEmpty(configuration.KAFKA_ADDRESS, "KAFKA_ADDRESS")

	logger := logging.New(configuration.LOG_LEVEL)

	notifier := notify.NewNotifier(logger, simulateDelay)
	consumer := notify.NewConsumer(
		[]string{configuration.KAFKA_ADDRESS},
		groupID,
		mykafka.OrderEventsTopic,
		notifier,
		logger,
	)
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("notification worker started", "topic", mykafka.OrderEventsTopic, "group", groupID)
	if err := consumer.Run(ctx); err != nil {
		log.Fatalf("consumer error: %v", err)
	}
	logger.Info("notification worker stopped")
}
