package sqs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/akilcn01-oss/Inventory-Management/internal/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// NewClient builds the SQS client shared by the event publisher and consumer.
// Credentials come from the default AWS chain; a non-empty Endpoint points the client at LocalStack.
func NewClient(ctx context.Context, conf config.AWSConfig) (*sqs.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(conf.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for region %s: %w", conf.Region, err)
	}

	return sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
		if conf.Endpoint != "" {
			slog.Debug("Using custom SQS endpoint", slog.String("endpoint", conf.Endpoint))
			o.BaseEndpoint = aws.String(conf.Endpoint)
		}
	}), nil
}
