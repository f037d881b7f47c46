// Command replay loads a directory of canonical fact-stream JSON files
// straight through the pipeline, bypassing the SQS queue. It exists for
// local development and backfills: point it at a directory of filings
// fetched ahead of time and it runs them all through RunBatch.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"finsight/config"
	"finsight/database"
	"finsight/models"
	"finsight/pipeline"
	"finsight/staging"
	"finsight/taxonomy"
)

var (
	dir     = flag.String("dir", "", "directory of canonical fact-stream JSON files to load")
	dryRun  = flag.Bool("dry-run", false, "parse and validate without touching the database")
	verbose = flag.Bool("verbose", false, "log per-filing validation scores")
)

func main() {
	flag.Parse()
	if *dir == "" {
		log.Fatal("-dir is required")
	}

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

	entries, err := os.ReadDir(*dir)
	if err != nil {
		log.Fatalf("failed to read %s: %v", *dir, err)
	}

	p := pipeline.New(database.DB, cfg, store)
	ctx := context.Background()

	var raws []struct {
		path string
		data []byte
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(*dir, e.Name()))
		if err != nil {
			log.Printf("skipping %s: %v", e.Name(), err)
			continue
		}
		raws = append(raws, struct {
			path string
			data []byte
		}{path: e.Name(), data: data})
	}
	log.Printf("found %d filing files under %s", len(raws), *dir)

	if *dryRun {
		for _, r := range raws {
			if _, err := staging.Parse(r.data); err != nil {
				log.Printf("%s: %v", r.path, err)
				continue
			}
			log.Printf("%s: OK", r.path)
		}
		return
	}

	var paths []string
	var filings []*models.RawFiling
	for _, r := range raws {
		rf, err := staging.Parse(r.data)
		if err != nil {
			log.Printf("%s: failed schema validation: %v", r.path, err)
			continue
		}
		paths = append(paths, r.path)
		filings = append(filings, rf)
	}

	results := p.RunBatch(ctx, filings)
	var failed int
	for i, res := range results {
		if res.Err != nil {
			failed++
			log.Printf("%s: FAILED: %v", paths[i], res.Err)
			continue
		}
		if *verbose {
			log.Printf("%s: %s/%s validation score %.1f", paths[i], res.Ticker, res.FilingType, res.Score)
		}
	}
	log.Printf("loaded %d/%d filings (%d failed)", len(results)-failed, len(results), failed)
}
