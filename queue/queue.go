// Package queue provides optional SQS-backed filing-queue intake: an
// upstream ingestion system drops a "new filing available" message and the
// pipeline long-polls for it instead of being invoked directly.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// FilingMessage is the queue payload naming one filing to ingest.
type FilingMessage struct {
	Ticker        string `json:"ticker"`
	FilingType    string `json:"filing_type"`
	SourceURL     string `json:"source_url"`
	FiscalYearEnd string `json:"fiscal_year_end"`
}

// Handler processes one decoded FilingMessage.
type Handler func(msg FilingMessage) error

// Consumer long-polls an SQS queue of filing-intake messages.
type Consumer struct {
	client           *sqs.Client
	queueURL         string
	maxMessages      int32
	healthy          atomic.Bool
	consecutiveFails int32
}

const maxConsecutiveFailures = 3

// New creates a filing-queue consumer for queueURL in the given region.
func New(ctx context.Context, queueURL, region string, maxMessages int32) (*Consumer, error) {
	if maxMessages < 1 || maxMessages > 10 {
		maxMessages = 1
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("queue: load AWS config: %w", err)
	}
	c := &Consumer{client: sqs.NewFromConfig(cfg), queueURL: queueURL, maxMessages: maxMessages}
	c.healthy.Store(true)
	return c, nil
}

// IsHealthy reports whether the consumer is actively polling.
func (c *Consumer) IsHealthy() bool {
	return c.healthy.Load()
}

// Start begins long-polling the queue. Blocks until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context, handler Handler) {
	log.Printf("filing queue consumer started — polling %s (max %d messages/poll)", c.queueURL, c.maxMessages)
	for {
		select {
		case <-ctx.Done():
			c.healthy.Store(false)
			return
		default:
			c.poll(ctx, handler)
		}
	}
}

func (c *Consumer) poll(ctx context.Context, handler Handler) {
	output, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(c.queueURL),
		MaxNumberOfMessages: c.maxMessages,
		WaitTimeSeconds:     20,
		VisibilityTimeout:   30,
	})
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		fails := atomic.AddInt32(&c.consecutiveFails, 1)
		log.Printf("SQS receive error (consecutive: %d): %v — retrying in 5s", fails, err)
		if fails >= maxConsecutiveFailures {
			c.healthy.Store(false)
		}
		time.Sleep(5 * time.Second)
		return
	}

	if atomic.LoadInt32(&c.consecutiveFails) > 0 {
		atomic.StoreInt32(&c.consecutiveFails, 0)
		c.healthy.Store(true)
	}

	for _, msg := range output.Messages {
		payload, err := extractSNSPayload(msg.Body)
		if err != nil {
			log.Printf("failed to extract SNS payload: %v — skipping message", err)
			c.deleteMessage(ctx, msg.ReceiptHandle)
			continue
		}

		var fm FilingMessage
		if err := json.Unmarshal(payload, &fm); err != nil {
			log.Printf("failed to decode filing message: %v — skipping", err)
			c.deleteMessage(ctx, msg.ReceiptHandle)
			continue
		}

		if err := handler(fm); err != nil {
			log.Printf("handler error: %v — message will be retried", err)
			continue
		}
		c.deleteMessage(ctx, msg.ReceiptHandle)
	}
}

func (c *Consumer) deleteMessage(ctx context.Context, receiptHandle *string) {
	_, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: receiptHandle,
	})
	if err != nil {
		log.Printf("failed to delete SQS message: %v", err)
	}
}

// extractSNSPayload unwraps an SNS delivery envelope, falling back to the
// raw body when the message was not SNS-wrapped.
func extractSNSPayload(body *string) ([]byte, error) {
	if body == nil {
		return nil, fmt.Errorf("nil message body")
	}

	var envelope struct {
		Message string `json:"Message"`
		Type    string `json:"Type"`
	}
	if err := json.Unmarshal([]byte(*body), &envelope); err != nil {
		return []byte(*body), nil
	}
	if envelope.Message == "" {
		return []byte(*body), nil
	}
	return []byte(envelope.Message), nil
}
