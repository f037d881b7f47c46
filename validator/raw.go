// Package validator implements the validation framework: a raw-facts
// pass run inline by the Warehouse Loader before commit, and a
// database pass run after a filing's full pipeline has landed.
package validator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"finsight/models"
)

// NormalizedValue is the minimal shape the raw-facts pass needs per fact:
// its normalized label and numeric value, already resolved by the
// Normalizer.
type NormalizedValue struct {
	NormalizedLabel string
	ConceptName     string
	ContextID       string
	Value           *decimal.Decimal
}

// criticalConcepts are universal metrics expected in every filing
// regardless of accounting standard ("critical concept presence").
var criticalConcepts = []string{"revenue", "net_income", "total_assets"}

// onePercentOrOneDollar reports whether a and b agree within 1% relative or
// $1 absolute, whichever tolerance is looser (resolving the Open
// Question on balance-sheet tolerance: large balance sheets use the
// relative bound, small ones use the absolute floor).
func onePercentOrOneDollar(a, b decimal.Decimal) bool {
	diff := a.Sub(b).Abs()
	if diff.LessThanOrEqual(decimal.NewFromInt(1)) {
		return true
	}
	denom := a.Abs()
	if denom.IsZero() {
		denom = b.Abs()
	}
	if denom.IsZero() {
		return true
	}
	return diff.Div(denom).LessThanOrEqual(decimal.NewFromFloat(0.01))
}

// ValidateRawFacts runs the pre-commit checks the Warehouse Loader performs
// on a filing's normalized facts before the transaction is committed.
func ValidateRawFacts(facts []NormalizedValue) *models.Report {
	report := &models.Report{}

	byLabel := make(map[string]decimal.Decimal)
	seenContexts := make(map[string]int)
	for _, f := range facts {
		if f.Value != nil {
			byLabel[f.NormalizedLabel] = *f.Value
		}
		seenContexts[f.NormalizedLabel+"|"+f.ContextID]++
	}

	checkAccountingIdentity(report, byLabel)
	checkEPSConsistency(report, byLabel)
	checkCriticalConceptPresence(report, byLabel)
	checkDuplicateFacts(report, seenContexts)

	return report
}

func checkAccountingIdentity(report *models.Report, byLabel map[string]decimal.Decimal) {
	assets, hasAssets := byLabel["total_assets"]
	liabilities, hasLiab := byLabel["total_liabilities"]
	equity, hasEquity := byLabel["stockholders_equity"]
	if !hasAssets || !hasLiab || !hasEquity {
		return
	}
	if !onePercentOrOneDollar(assets, liabilities.Add(equity)) {
		report.Add(models.Finding{
			Severity: models.SeverityError,
			Rule:     "accounting_identity",
			Message:  fmt.Sprintf("total_assets (%s) != total_liabilities + stockholders_equity (%s)", assets.String(), liabilities.Add(equity).String()),
		})
	}
}

func checkEPSConsistency(report *models.Report, byLabel map[string]decimal.Decimal) {
	eps, hasEPS := byLabel["eps_basic"]
	netIncome, hasNI := byLabel["net_income"]
	shares, hasShares := byLabel["shares_basic"]
	if !hasEPS || !hasNI || !hasShares || shares.IsZero() {
		return
	}
	implied := netIncome.Div(shares)
	diff := eps.Sub(implied).Abs()
	denom := implied.Abs()
	if denom.IsZero() {
		return
	}
	if diff.Div(denom).GreaterThan(decimal.NewFromFloat(0.03)) {
		report.Add(models.Finding{
			Severity: models.SeverityWarning,
			Rule:     "eps_consistency",
			Message:  fmt.Sprintf("reported eps_basic (%s) diverges >3%% from net_income/shares (%s)", eps.String(), implied.String()),
		})
	}
}

func checkCriticalConceptPresence(report *models.Report, byLabel map[string]decimal.Decimal) {
	for _, c := range criticalConcepts {
		if _, ok := byLabel[c]; !ok {
			report.Add(models.Finding{
				Severity: models.SeverityWarning,
				Rule:     "critical_concept_missing",
				Message:  fmt.Sprintf("expected concept %q not present in filing", c),
			})
		}
	}
}

func checkDuplicateFacts(report *models.Report, seenContexts map[string]int) {
	for key, count := range seenContexts {
		if count > 1 {
			report.Add(models.Finding{
				Severity: models.SeverityError,
				Rule:     "duplicate_fact",
				Message:  fmt.Sprintf("fact %q reported %d times in the same context", key, count),
			})
		}
	}
}
