package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finsight/archive"
	"finsight/cache"
	"finsight/config"
	"finsight/database"
	"finsight/notify"
	"finsight/pipeline"
	"finsight/queue"
	"finsight/taxonomy"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := database.Initialize(cfg); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	defer database.Close()

	if err := database.RunMigrations(database.MigrationsFS); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	store, warnings, err := taxonomy.NewStore(cfg.TaxonomyDir)
	if err != nil {
		log.Fatalf("failed to load taxonomy store: %v", err)
	}
	for _, w := range warnings {
		log.Printf("taxonomy store: %s", w)
	}

	p := pipeline.New(database.DB, cfg, store)

	if cfg.RedisAddr != "" {
		p.Cache = cache.New(cfg.RedisAddr, "", time.Hour)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.S3Bucket != "" {
		a, err := archive.New(ctx, cfg.AWSRegion, cfg.S3Bucket, "raw-filings")
		if err != nil {
			log.Fatalf("failed to initialize archive: %v", err)
		}
		p.Archive = a
	}

	if cfg.SNSTopicARN != "" {
		n, err := notify.New(ctx, cfg.AWSRegion, cfg.SNSTopicARN)
		if err != nil {
			log.Fatalf("failed to initialize notifier: %v", err)
		}
		p.Notifier = n
	}

	if cfg.SQSQueueURL == "" {
		log.Println("SQS_FILING_QUEUE_URL not set — nothing to consume, exiting")
		return
	}

	consumer, err := queue.New(ctx, cfg.SQSQueueURL, cfg.AWSRegion, 10)
	if err != nil {
		log.Fatalf("failed to initialize filing queue consumer: %v", err)
	}

	go func() {
		log.Println("filing pipeline consumer starting")
		consumer.Start(ctx, func(msg queue.FilingMessage) error {
			return handleFilingMessage(ctx, p, msg)
		})
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down filing pipeline...")
	cancel()

	time.Sleep(500 * time.Millisecond)
	log.Println("filing pipeline exited")
}

// handleFilingMessage retrieves the raw canonical fact-stream document named
// by msg and runs it through Fact Staging, archival, and load. Retrieval is
// a narrow local-file seam (msg.SourceURL is a filesystem path); a
// deployment backed by a real upstream would swap this for an HTTP or S3
// fetch without touching the pipeline call below it.
func handleFilingMessage(ctx context.Context, p *pipeline.Pipeline, msg queue.FilingMessage) error {
	raw, err := os.ReadFile(msg.SourceURL)
	if err != nil {
		return fmt.Errorf("failed to retrieve filing payload for %s/%s: %w", msg.Ticker, msg.FilingType, err)
	}

	parsed, err := p.ParseAndArchive(ctx, msg.Ticker, msg.FilingType, raw)
	if err != nil {
		return err
	}

	score, err := p.ProcessFiling(ctx, parsed)
	if err != nil {
		return err
	}
	log.Printf("processed %s/%s: validation score %.1f", msg.Ticker, msg.FilingType, score)
	return nil
}
