// Package config centralizes environment-driven configuration, following
// the getEnvWithDefault pattern used throughout the ingestion service this
// pipeline is descended from.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds every environment-derived setting the pipeline needs. It is
// passed explicitly into each stage rather than read from globals scattered
// through the codebase instead of a singleton global.
type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	TaxonomyDir string
	WorkerCount int

	S3Bucket    string
	AWSRegion   string
	ArchiveRaw  bool

	RedisAddr string

	SNSTopicARN string
	SQSQueueURL string
}

// Load reads a .env file if present (ignored if absent) and then
// populates Config from the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// Absence of a .env file is normal in production; only log via the
		// caller if it cares. We don't fail startup on this.
		_ = err
	}

	cfg := &Config{
		DBHost:      getEnvOrDefault("DB_HOST", "localhost"),
		DBPort:      getEnvOrDefault("DB_PORT", "5432"),
		DBUser:      getEnvOrDefault("DB_USER", "finsight"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBName:      getEnvOrDefault("DB_NAME", "finsight"),
		DBSSLMode:   getEnvOrDefault("DB_SSLMODE", "disable"),
		TaxonomyDir: getEnvOrDefault("TAXONOMY_DIR", "taxonomies"),
		WorkerCount: getEnvIntOrDefault("WORKER_COUNT", runtime.NumCPU()),
		S3Bucket:    os.Getenv("S3_BUCKET"),
		AWSRegion:   getEnvOrDefault("AWS_REGION", "us-east-1"),
		ArchiveRaw:  getEnvBoolOrDefault("ARCHIVE_RAW_FILINGS", false),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		SNSTopicARN: os.Getenv("SNS_VALIDATION_TOPIC_ARN"),
		SQSQueueURL: os.Getenv("SQS_FILING_QUEUE_URL"),
	}

	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = 1
	}

	return cfg, nil
}

// ConnString builds a libpq-style DSN, matching
// data-ingestion-service/database/db.go's Connect().
func (c *Config) ConnString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvIntOrDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvBoolOrDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
