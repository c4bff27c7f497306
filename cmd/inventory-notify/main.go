package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/akilcn01-oss/Inventory-Management/internal/config"
	"github.com/akilcn01-oss/Inventory-Management/internal/logger"
	sqspkg "github.com/akilcn01-oss/Inventory-Management/internal/sqs"
	gfshutdown "github.com/gelmium/graceful-shutdown"
)

const shutdownTimeout = 25 * time.Second

func main() {
	conf, err := config.LoadNotifierFromEnv()
	handleErr("loading config", err)
	logger.InitJSONLogger(conf.DebugMode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sqsClient, err := sqspkg.NewClient(ctx, conf.AWS)
	handleErr("creating SQS client", err)
	consumer := sqspkg.NewConsumer(sqsClient, conf.AWS.SQSQueueURL)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("Consumer error", slog.Any("err", err))
		}
	}()

	slog.Info("Notification service started. Listening for messages...")

	wait := gfshutdown.GracefulShutdown(context.Background(), shutdownTimeout, map[string]gfshutdown.Operation{
		"sqs-consumer": func(ctx context.Context) error {
			cancel()
			select {
			case <-stopped:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})

	os.Exit(<-wait)
}

func handleErr(msg string, err error) {
	if err != nil {
		slog.Error("error while "+msg, slog.Any("err", err))
		os.Exit(1)
	}
}
