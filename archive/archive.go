// Package archive stores a filing's raw canonical fact-stream JSON in S3
// for audit and replay, independent of whether the filing successfully
// loads into the warehouse.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Archive is an explicit handle around an S3 client and the bucket/prefix it
// writes raw filings to.
type Archive struct {
	client *s3.Client
	bucket string
	prefix string
}

// New builds an Archive from an AWS region, bucket, and key prefix. prefix
// is normalized to always end in "/".
func New(ctx context.Context, region, bucket, prefix string) (*Archive, error) {
	if prefix == "" {
		prefix = "filings/"
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("archive: load AWS config: %w", err)
	}
	return &Archive{client: s3.NewFromConfig(cfg), bucket: bucket, prefix: prefix}, nil
}

func (a *Archive) key(ticker, filingType string) string {
	ts := time.Now().UTC().Format("20060102T150405Z")
	id := uuid.New().String()[:8]
	return fmt.Sprintf("%s%s/%s/%s_%s.json", a.prefix, ticker, filingType, ts, id)
}

// StoreRawFiling uploads the raw canonical fact-stream payload for one
// filing and returns the S3 key it was written to.
func (a *Archive) StoreRawFiling(ctx context.Context, ticker, filingType string, payload []byte) (string, error) {
	if a == nil || a.client == nil {
		return "", fmt.Errorf("archive: not initialized")
	}
	key := a.key(ticker, filingType)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("archive: upload failed: %w", err)
	}
	return key, nil
}

// StoreValidationReport archives a JSON-encoded value (typically a
// models.Report) alongside the raw filing, for after-the-fact audit of why a
// filing failed validation.
func (a *Archive) StoreValidationReport(ctx context.Context, ticker, filingType string, report any) (string, error) {
	buf, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("archive: marshal report: %w", err)
	}
	key := a.key(ticker, filingType+"-validation")
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("archive: upload report failed: %w", err)
	}
	return key, nil
}
