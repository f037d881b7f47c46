// Package notify publishes validation-failure alerts to SNS via an explicit
// handle rather than a package-level singleton.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// Notifier publishes filing-validation alerts to a single SNS topic.
type Notifier struct {
	client   *sns.Client
	topicARN string
}

// New builds a Notifier bound to topicARN in the given AWS region.
func New(ctx context.Context, region, topicARN string) (*Notifier, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("notify: load AWS config: %w", err)
	}
	return &Notifier{client: sns.NewFromConfig(cfg), topicARN: topicARN}, nil
}

// ValidationAlert is the message payload published when a filing's raw-facts
// validation reports at least one ERROR finding.
type ValidationAlert struct {
	Ticker     string    `json:"ticker"`
	FilingType string    `json:"filing_type"`
	Score      float64   `json:"score"`
	Errors     []string  `json:"errors"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PublishValidationFailure sends a ValidationAlert. A nil Notifier is a
// no-op: alerting is best-effort and must never fail the pipeline.
func (n *Notifier) PublishValidationFailure(ctx context.Context, alert ValidationAlert) error {
	if n == nil || n.client == nil {
		return nil
	}
	body, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("notify: marshal alert: %w", err)
	}
	_, err = n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Message:  aws.String(string(body)),
		Subject:  aws.String(fmt.Sprintf("FinSight validation failure: %s %s", alert.Ticker, alert.FilingType)),
	})
	if err != nil {
		return fmt.Errorf("notify: publish failed: %w", err)
	}
	return nil
}
