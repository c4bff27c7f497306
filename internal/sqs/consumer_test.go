package sqs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/akilcn01-oss/Inventory-Management/internal/model"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMessageBody = `{"action":"created","product_id":123,"name":"Test Product","category":"Electronics","quantity":3,"price":99.99,"low_stock":true}`

// mockSQSConsumerClient is a mock implementation of the SQS client for consumer testing.
type mockSQSConsumerClient struct {
	receiveMessageFunc func(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	deleteMessageFunc  func(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

func (m *mockSQSConsumerClient) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	if m.receiveMessageFunc != nil {
		return m.receiveMessageFunc(ctx, params, optFns...)
	}
	return &sqs.ReceiveMessageOutput{Messages: []types.Message{}}, nil
}

func (m *mockSQSConsumerClient) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	if m.deleteMessageFunc != nil {
		return m.deleteMessageFunc(ctx, params, optFns...)
	}
	return &sqs.DeleteMessageOutput{}, nil
}

func singleMessage(body string) func(context.Context, *sqs.ReceiveMessageInput, ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	return func(_ context.Context, _ *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
		return &sqs.ReceiveMessageOutput{
			Messages: []types.Message{
				{
					Body:          aws.String(body),
					ReceiptHandle: aws.String("test-receipt-handle"),
				},
			},
		}, nil
	}
}

func TestConsumer_processMessage(t *testing.T) {
	t.Run("decodes the event and hands it over", func(t *testing.T) {
		// given
		var got model.ProductEvent
		consumer := NewConsumer(&mockSQSConsumerClient{}, testQueueURL).
			WithHandler(func(_ context.Context, event model.ProductEvent) error {
				got = event
				return nil
			})

		message := types.Message{
			Body:          aws.String(testMessageBody),
			ReceiptHandle: aws.String("test-receipt-handle"),
		}

		// when
		err := consumer.processMessage(context.Background(), message)

		// then
		require.NoError(t, err)
		assert.Equal(t, testEvent(), got)
	})

	t.Run("action falls back to the message attribute", func(t *testing.T) {
		// given
		var got model.ProductEvent
		consumer := NewConsumer(&mockSQSConsumerClient{}, testQueueURL).
			WithHandler(func(_ context.Context, event model.ProductEvent) error {
				got = event
				return nil
			})

		message := types.Message{
			Body: aws.String(`{"product_id":7,"name":"Desk"}`),
			MessageAttributes: map[string]types.MessageAttributeValue{
				ActionAttribute: {DataType: aws.String("String"), StringValue: aws.String("deleted")},
			},
		}

		// when
		err := consumer.processMessage(context.Background(), message)

		// then
		require.NoError(t, err)
		assert.Equal(t, model.EventActionDeleted, got.Action)
		assert.Equal(t, 7, got.ProductID)
	})

	t.Run("default handler logs", func(t *testing.T) {
		consumer := NewConsumer(&mockSQSConsumerClient{}, testQueueURL)

		err := consumer.processMessage(context.Background(), types.Message{Body: aws.String(testMessageBody)})

		require.NoError(t, err)
	})

	t.Run("nil message body", func(t *testing.T) {
		// given
		consumer := NewConsumer(&mockSQSConsumerClient{}, testQueueURL)

		message := types.Message{
			Body:          nil,
			ReceiptHandle: aws.String("test-receipt-handle"),
		}

		// when
		err := consumer.processMessage(context.Background(), message)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "message body is nil")
	})

	t.Run("invalid JSON message body", func(t *testing.T) {
		// given
		consumer := NewConsumer(&mockSQSConsumerClient{}, testQueueURL)

		message := types.Message{
			Body:          aws.String(`{"invalid json`),
			ReceiptHandle: aws.String("test-receipt-handle"),
		}

		// when
		err := consumer.processMessage(context.Background(), message)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to unmarshal message")
	})
}

func TestConsumer_deleteMessage(t *testing.T) {
	t.Run("successful message deletion", func(t *testing.T) {
		// given
		ctx := context.Background()

		mockClient := &mockSQSConsumerClient{
			deleteMessageFunc: func(_ context.Context, params *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
				assert.Equal(t, testQueueURL, *params.QueueUrl)
				assert.Equal(t, "test-receipt-handle", *params.ReceiptHandle)
				return &sqs.DeleteMessageOutput{}, nil
			},
		}

		consumer := NewConsumer(mockClient, testQueueURL)

		// when
		err := consumer.deleteMessage(ctx, types.Message{ReceiptHandle: aws.String("test-receipt-handle")})

		// then
		require.NoError(t, err)
	})

	t.Run("error deleting message", func(t *testing.T) {
		// given
		ctx := context.Background()

		mockClient := &mockSQSConsumerClient{
			deleteMessageFunc: func(_ context.Context, _ *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
				return nil, errors.New("failed to delete")
			},
		}

		consumer := NewConsumer(mockClient, testQueueURL)

		// when
		err := consumer.deleteMessage(ctx, types.Message{ReceiptHandle: aws.String("test-receipt-handle")})

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to delete message")
	})
}

func TestConsumer_receiveMessages(t *testing.T) {
	t.Run("receives, handles and deletes messages", func(t *testing.T) {
		// given
		ctx := context.Background()
		deleted := 0

		mockClient := &mockSQSConsumerClient{
			receiveMessageFunc: func(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
				assert.Equal(t, testQueueURL, *params.QueueUrl)
				assert.Equal(t, int32(10), params.MaxNumberOfMessages)
				assert.Equal(t, int32(20), params.WaitTimeSeconds)
				assert.Equal(t, []string{ActionAttribute}, params.MessageAttributeNames)
				return singleMessage(testMessageBody)(ctx, params, optFns...)
			},
			deleteMessageFunc: func(_ context.Context, _ *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
				deleted++
				return &sqs.DeleteMessageOutput{}, nil
			},
		}

		consumer := NewConsumer(mockClient, testQueueURL)

		// when
		err := consumer.receiveMessages(ctx)

		// then
		require.NoError(t, err)
		assert.Equal(t, 1, deleted)
	})

	t.Run("handles receive message error", func(t *testing.T) {
		// given
		ctx := context.Background()

		mockClient := &mockSQSConsumerClient{
			receiveMessageFunc: func(_ context.Context, _ *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
				return nil, errors.New("failed to receive")
			},
		}

		consumer := NewConsumer(mockClient, testQueueURL)

		// when
		err := consumer.receiveMessages(ctx)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to receive messages")
	})

	t.Run("keeps messages the handler rejects", func(t *testing.T) {
		// given
		ctx := context.Background()
		deleted := 0

		mockClient := &mockSQSConsumerClient{
			receiveMessageFunc: singleMessage(testMessageBody),
			deleteMessageFunc: func(_ context.Context, _ *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
				deleted++
				return &sqs.DeleteMessageOutput{}, nil
			},
		}

		consumer := NewConsumer(mockClient, testQueueURL).
			WithHandler(func(context.Context, model.ProductEvent) error { return errors.New("downstream unavailable") })

		// when
		err := consumer.receiveMessages(ctx)

		// then
		// processing errors are logged but don't stop the consumer
		require.NoError(t, err)
		assert.Zero(t, deleted)
	})

	t.Run("continues processing on invalid message", func(t *testing.T) {
		// given
		mockClient := &mockSQSConsumerClient{
			receiveMessageFunc: singleMessage(`{"invalid json`),
		}

		consumer := NewConsumer(mockClient, testQueueURL)

		// when
		err := consumer.receiveMessages(context.Background())

		// then
		require.NoError(t, err)
	})
}

func TestConsumer_Start(t *testing.T) {
	// given
	ctx, cancel := context.WithCancel(context.Background())
	handled := make(chan model.ProductEvent, 1)

	mockClient := &mockSQSConsumerClient{
		receiveMessageFunc: func(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(5 * time.Millisecond):
			}
			return singleMessage(testMessageBody)(ctx, params, optFns...)
		},
	}

	consumer := NewConsumer(mockClient, testQueueURL).
		WithHandler(func(_ context.Context, event model.ProductEvent) error {
			select {
			case handled <- event:
			default:
			}
			return nil
		})

	done := make(chan error, 1)
	go func() { done <- consumer.Start(ctx) }()

	// when
	select {
	case event := <-handled:
		assert.Equal(t, 123, event.ProductID)
	case <-time.After(2 * time.Second):
		t.Fatal("no event handled")
	}
	cancel()

	// then
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop")
	}
}

func TestNewConsumer(t *testing.T) {
	t.Run("creates consumer successfully", func(t *testing.T) {
		// given
		mockClient := &mockSQSConsumerClient{}

		// when
		consumer := NewConsumer(mockClient, testQueueURL)

		// then
		require.NotNil(t, consumer)
		assert.Equal(t, testQueueURL, consumer.queueURL)
		assert.NotNil(t, consumer.handle)
	})
}
