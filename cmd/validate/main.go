// Command validate runs the database validation pass against an
// already-loaded warehouse: normalization-conflict volume, duplicate-fact
// detection, and per-company universal-metric completeness.
package main

import (
	"flag"
	"log"

	"finsight/config"
	"finsight/database"
	"finsight/models"
	"finsight/validator"
)

var showMissingness = flag.Bool("missingness", false, "print a per-metric missing-company breakdown")

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	conflicts, err := database.CountNormalizationConflicts(db)
	if err != nil {
		log.Fatalf("failed to count normalization conflicts: %v", err)
	}

	duplicates, err := database.CountDuplicateFacts(db)
	if err != nil {
		log.Fatalf("failed to count duplicate facts: %v", err)
	}

	companies, err := database.CompanyCompleteness(db)
	if err != nil {
		log.Fatalf("failed to load company completeness: %v", err)
	}

	report := validator.ValidateDatabase(validator.ConflictCount(conflicts), duplicates, companies)

	var errors, warns int
	for _, f := range report.Findings {
		switch f.Severity {
		case models.SeverityError:
			errors++
			log.Printf("ERROR [%s] %s", f.Rule, f.Message)
		case models.SeverityWarning:
			warns++
			log.Printf("WARN  [%s] %s", f.Rule, f.Message)
		}
	}

	if zero := validator.ZeroDataScan(companies); len(zero) > 0 {
		log.Printf("zero-data companies (likely broken ingestion): %v", zero)
	}

	if *showMissingness {
		for metric, count := range validator.MissingnessReport(companies) {
			log.Printf("missingness: %s missing for %d companies", metric, count)
		}
	}

	log.Printf("validation score: %.1f (%d errors, %d warnings across %d companies)",
		report.Score(), errors, warns, len(companies))

	if report.HasErrors() {
		log.Fatal("database validation failed")
	}
}
