package sqs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/akilcn01-oss/Inventory-Management/internal/model"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// ConsumerAPI defines the interface for SQS operations used by Consumer.
type ConsumerAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// EventHandler reacts to one decoded product event. A returned error leaves the message on the queue.
type EventHandler func(ctx context.Context, event model.ProductEvent) error

// Consumer handles consuming product events from AWS SQS.
type Consumer struct {
	client   ConsumerAPI
	queueURL string
	handle   EventHandler
}

// NewConsumer creates a new SQS Consumer with the given client and queue URL.
// Events are passed to LogEvent unless a handler is set with WithHandler.
func NewConsumer(client ConsumerAPI, queueURL string) *Consumer {
	return &Consumer{
		client:   client,
		queueURL: queueURL,
		handle:   LogEvent,
	}
}

// WithHandler replaces the event handler.
func (c *Consumer) WithHandler(h EventHandler) *Consumer {
	c.handle = h
	return c
}

// LogEvent writes the event to the log, raising a warning for low stock.
func LogEvent(_ context.Context, event model.ProductEvent) error {
	attrs := []any{
		slog.String("action", string(event.Action)),
		slog.Int("product_id", event.ProductID),
		slog.String("name", event.Name),
		slog.String("category", event.Category),
		slog.Int("quantity", event.Quantity),
		slog.Float64("price", event.Price),
	}
	slog.Info("Received product notification", attrs...)

	if event.LowStock && event.Action != model.EventActionDeleted {
		slog.Warn("Low stock alert", attrs...)
	}
	return nil
}

// Start begins consuming messages from the SQS queue until the context is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	slog.Info("Starting SQS consumer", slog.String("queueURL", c.queueURL))

	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopping SQS consumer")
			return ctx.Err()
		default:
			if err := c.receiveMessages(ctx); err != nil && ctx.Err() == nil {
				slog.Error("Error receiving messages", slog.Any("err", err))
			}
		}
	}
}

func (c *Consumer) receiveMessages(ctx context.Context) error {
	result, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:              aws.String(c.queueURL),
		MaxNumberOfMessages:   10,
		WaitTimeSeconds:       20, // Long polling
		MessageAttributeNames: []string{ActionAttribute},
	})
	if err != nil {
		return fmt.Errorf("failed to receive messages: %w", err)
	}

	for _, message := range result.Messages {
		if err := c.processMessage(ctx, message); err != nil {
			slog.Error("Error processing message", slog.Any("err", err))
			continue
		}

		// Delete message after successful processing
		if err := c.deleteMessage(ctx, message); err != nil {
			slog.Error("Error deleting message", slog.Any("err", err))
		}
	}

	return nil
}

func (c *Consumer) processMessage(ctx context.Context, message types.Message) error {
	if message.Body == nil {
		return fmt.Errorf("message body is nil")
	}

	var event model.ProductEvent
	if err := json.Unmarshal([]byte(*message.Body), &event); err != nil {
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}
	if event.Action == "" {
		if attr, ok := message.MessageAttributes[ActionAttribute]; ok && attr.StringValue != nil {
			event.Action = model.EventAction(*attr.StringValue)
		}
	}

	if err := c.handle(ctx, event); err != nil {
		return fmt.Errorf("failed to handle %s event for product %d: %w", event.Action, event.ProductID, err)
	}
	return nil
}

func (c *Consumer) deleteMessage(ctx context.Context, message types.Message) error {
	_, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: message.ReceiptHandle,
	})
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}
