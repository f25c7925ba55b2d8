// Package awsclients builds the AWS SDK clients the service talks to.
package awsclients

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"social-campaign-backend/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// LoadConfig loads the shared AWS configuration for cfg's region.
func LoadConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	awsCfg, err := awsConfig.LoadDefaultConfig(loadCtx,
		awsConfig.WithRegion(cfg.AWS.Region),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	if cfg.AWS.Endpoint != "" {
		awsCfg.BaseEndpoint = aws.String(cfg.AWS.Endpoint)
	}
	return awsCfg, nil
}

// NewDynamoDB creates the table client. Retries are left to the store
// decorator, so the SDK retries only once.
func NewDynamoDB(awsCfg aws.Config, cfg *config.Config) *dynamodb.Client {
	timeout := 15 * time.Second
	if cfg.IsDevelopment() {
		timeout = 30 * time.Second
	}
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		o.HTTPClient = &http.Client{Timeout: timeout}
		o.RetryMaxAttempts = 1
	})
}

func NewEventBridge(awsCfg aws.Config) *eventbridge.Client {
	return eventbridge.NewFromConfig(awsCfg, func(o *eventbridge.Options) {
		o.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	})
}

// NewS3 creates the asset bucket client. A custom endpoint implies path
// style addressing.
func NewS3(awsCfg aws.Config, cfg *config.Config) *s3.Client {
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Timeout: 60 * time.Second}
		o.UsePathStyle = cfg.AWS.Endpoint != ""
	})
}
