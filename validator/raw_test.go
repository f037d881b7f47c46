package validator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func ptr(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

func TestValidateRawFactsAccountingIdentityHolds(t *testing.T) {
	facts := []NormalizedValue{
		{NormalizedLabel: "total_assets", Value: ptr(1000)},
		{NormalizedLabel: "total_liabilities", Value: ptr(600)},
		{NormalizedLabel: "stockholders_equity", Value: ptr(400)},
		{NormalizedLabel: "revenue", Value: ptr(500)},
		{NormalizedLabel: "net_income", Value: ptr(50)},
	}
	report := ValidateRawFacts(facts)
	for _, f := range report.Findings {
		assert.NotEqual(t, "accounting_identity", f.Rule)
	}
}

func TestValidateRawFactsAccountingIdentityViolation(t *testing.T) {
	facts := []NormalizedValue{
		{NormalizedLabel: "total_assets", Value: ptr(1000)},
		{NormalizedLabel: "total_liabilities", Value: ptr(600)},
		{NormalizedLabel: "stockholders_equity", Value: ptr(100)},
	}
	report := ValidateRawFacts(facts)
	assert.True(t, report.HasErrors())
}

func TestValidateRawFactsDuplicateDetection(t *testing.T) {
	facts := []NormalizedValue{
		{NormalizedLabel: "revenue", ContextID: "c1", Value: ptr(100)},
		{NormalizedLabel: "revenue", ContextID: "c1", Value: ptr(100)},
	}
	report := ValidateRawFacts(facts)
	var found bool
	for _, f := range report.Findings {
		if f.Rule == "duplicate_fact" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidateRawFactsEPSConsistency(t *testing.T) {
	facts := []NormalizedValue{
		{NormalizedLabel: "eps_basic", Value: ptr(10)},
		{NormalizedLabel: "net_income", Value: ptr(100)},
		{NormalizedLabel: "shares_basic", Value: ptr(100)},
	}
	report := ValidateRawFacts(facts)
	var found bool
	for _, f := range report.Findings {
		if f.Rule == "eps_consistency" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidateRawFactsCriticalConceptMissing(t *testing.T) {
	report := ValidateRawFacts(nil)
	count := 0
	for _, f := range report.Findings {
		if f.Rule == "critical_concept_missing" {
			count++
		}
	}
	assert.Equal(t, 3, count)
}
