package sqs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/akilcn01-oss/Inventory-Management/internal/model"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testQueueURL = "https://sqs.us-east-1.amazonaws.com/123456789/test-queue"

// mockSQSClient is a mock implementation of the SQS client for testing.
type mockSQSClient struct {
	sendMessageFunc func(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

func (m *mockSQSClient) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	if m.sendMessageFunc != nil {
		return m.sendMessageFunc(ctx, params, optFns...)
	}
	return &sqs.SendMessageOutput{}, nil
}

func testEvent() model.ProductEvent {
	return model.ProductEvent{
		Action:    model.EventActionCreated,
		ProductID: 123,
		Name:      "Test Product",
		Category:  "Electronics",
		Quantity:  3,
		Price:     99.99,
		LowStock:  true,
	}
}

func TestPublisher_PublishProductEvent(t *testing.T) {
	t.Run("successful message publish", func(t *testing.T) {
		// given
		ctx := context.Background()
		var sent *sqs.SendMessageInput

		mockClient := &mockSQSClient{
			sendMessageFunc: func(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
				sent = params
				return &sqs.SendMessageOutput{
					MessageId: aws.String("test-message-id"),
				}, nil
			},
		}

		publisher := NewPublisher(mockClient, testQueueURL)

		// when
		err := publisher.PublishProductEvent(ctx, testEvent())

		// then
		require.NoError(t, err)
		require.NotNil(t, sent)
		assert.Equal(t, testQueueURL, *sent.QueueUrl)

		var body model.ProductEvent
		require.NoError(t, json.Unmarshal([]byte(*sent.MessageBody), &body))
		assert.Equal(t, testEvent(), body)

		attr, ok := sent.MessageAttributes[ActionAttribute]
		require.True(t, ok)
		assert.Equal(t, "created", *attr.StringValue)
		assert.Equal(t, "String", *attr.DataType)
	})

	t.Run("error sending message", func(t *testing.T) {
		// given
		ctx := context.Background()

		expectedErr := errors.New("failed to send message")
		mockClient := &mockSQSClient{
			sendMessageFunc: func(_ context.Context, _ *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
				return nil, expectedErr
			},
		}

		publisher := NewPublisher(mockClient, testQueueURL)

		// when
		err := publisher.PublishProductEvent(ctx, testEvent())

		// then
		require.Error(t, err)
		assert.ErrorIs(t, err, expectedErr)
		assert.Contains(t, err.Error(), "failed to send message to SQS")
	})
}

func TestNewPublisher(t *testing.T) {
	t.Run("creates publisher successfully", func(t *testing.T) {
		// given
		mockClient := &mockSQSClient{}

		// when
		publisher := NewPublisher(mockClient, testQueueURL)

		// then
		require.NotNil(t, publisher)
		assert.Equal(t, testQueueURL, publisher.queueURL)
	})
}
