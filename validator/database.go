package validator

import (
	"fmt"

	"finsight/models"
)

// ConflictCount summarizes how many normalized_labels a taxonomy has
// assigned to concepts of more than one balance_type (a normalization
// conflict: concepts that should not share a label nonetheless do).
type ConflictCount int

// bankUniversalSubstitutes maps a universal metric to the bank-specific
// concept that substitutes for it when a filer is a financial institution
// (banks report different universal metrics than industrials).
var bankUniversalSubstitutes = map[string]string{
	"inventory":           "", // banks have no inventory; excluded from their completeness check entirely
	"accounts_receivable": "financing_receivables",
	"cost_of_sales":       "interest_expense",
}

// CompanyCompleteness is the per-company input to the completeness check:
// which universal metrics were found, and whether this company is a bank
// (alters which metrics are required per bankUniversalSubstitutes).
type CompanyCompleteness struct {
	Ticker          string
	IsBank          bool
	PresentMetrics  map[string]bool
	UniversalMetrics []string
}

// ValidateDatabase runs the post-load checks: normalization-conflict
// volume, user-facing duplicate facts, and per-company completeness against
// each company's UniversalMetrics list. The list is whatever the caller
// supplies; database.CompanyCompleteness supplies a fixed list that is not
// derived from the taxonomy.
func ValidateDatabase(conflicts ConflictCount, duplicateFactCount int, companies []CompanyCompleteness) *models.Report {
	report := &models.Report{}

	switch {
	case int(conflicts) > 100:
		report.Add(models.Finding{
			Severity: models.SeverityError,
			Rule:     "normalization_conflicts",
			Message:  fmt.Sprintf("%d normalization conflicts exceeds the 100 fail threshold", conflicts),
		})
	case int(conflicts) > 60:
		report.Add(models.Finding{
			Severity: models.SeverityWarning,
			Rule:     "normalization_conflicts",
			Message:  fmt.Sprintf("%d normalization conflicts exceeds the 60 warning threshold", conflicts),
		})
	}

	if duplicateFactCount > 0 {
		report.Add(models.Finding{
			Severity: models.SeverityError,
			Rule:     "user_facing_duplicate",
			Message:  fmt.Sprintf("%d duplicate user-facing facts detected", duplicateFactCount),
		})
	}

	for _, c := range companies {
		checkCompanyCompleteness(report, c)
	}

	return report
}

func checkCompanyCompleteness(report *models.Report, c CompanyCompleteness) {
	var missing []string
	for _, metric := range c.UniversalMetrics {
		if c.PresentMetrics[metric] {
			continue
		}
		if c.IsBank {
			substitute, known := bankUniversalSubstitutes[metric]
			if known {
				if substitute == "" {
					continue // not applicable to banks
				}
				if c.PresentMetrics[substitute] {
					continue
				}
			}
		}
		missing = append(missing, metric)
	}
	if len(missing) == 0 {
		return
	}
	severity := models.SeverityWarning
	if len(missing) > len(c.UniversalMetrics)/2 {
		severity = models.SeverityError
	}
	report.Add(models.Finding{
		Severity: severity,
		Rule:     "completeness",
		Message:  fmt.Sprintf("%s is missing %d universal metrics: %v", c.Ticker, len(missing), missing),
	})
}

// MissingnessReport buckets missing-universal-metric counts by metric name
// across the whole company set, a supplemented diagnostic beyond the raw
// pass/fail score: it tells an operator which metrics are systemically
// under-tagged rather than just which companies failed.
func MissingnessReport(companies []CompanyCompleteness) map[string]int {
	out := make(map[string]int)
	for _, c := range companies {
		for _, metric := range c.UniversalMetrics {
			if !c.PresentMetrics[metric] {
				out[metric]++
			}
		}
	}
	return out
}

// ZeroDataScan reports tickers with no present metrics at all, a
// likely-broken-ingestion signal distinct from ordinary incompleteness.
func ZeroDataScan(companies []CompanyCompleteness) []string {
	var out []string
	for _, c := range companies {
		if len(c.PresentMetrics) == 0 {
			out = append(out, c.Ticker)
		}
	}
	return out
}
