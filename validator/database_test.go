package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateDatabaseConflictThresholds(t *testing.T) {
	report := ValidateDatabase(70, 0, nil)
	assert.False(t, report.HasErrors())
	assert.True(t, len(report.Findings) == 1)

	report = ValidateDatabase(150, 0, nil)
	assert.True(t, report.HasErrors())
}

func TestValidateDatabaseDuplicatesAreAlwaysErrors(t *testing.T) {
	report := ValidateDatabase(0, 1, nil)
	assert.True(t, report.HasErrors())
}

func TestCompanyCompletenessBankSubstitution(t *testing.T) {
	companies := []CompanyCompleteness{
		{
			Ticker:           "BANK",
			IsBank:           true,
			PresentMetrics:   map[string]bool{"financing_receivables": true},
			UniversalMetrics: []string{"accounts_receivable", "inventory"},
		},
	}
	report := ValidateDatabase(0, 0, companies)
	assert.Len(t, report.Findings, 0)
}

func TestCompanyCompletenessMajorityMissingIsError(t *testing.T) {
	companies := []CompanyCompleteness{
		{
			Ticker:           "ACME",
			PresentMetrics:   map[string]bool{},
			UniversalMetrics: []string{"revenue", "net_income", "total_assets"},
		},
	}
	report := ValidateDatabase(0, 0, companies)
	assert.True(t, report.HasErrors())
}

func TestMissingnessReportAndZeroDataScan(t *testing.T) {
	companies := []CompanyCompleteness{
		{Ticker: "A", PresentMetrics: map[string]bool{"revenue": true}, UniversalMetrics: []string{"revenue", "net_income"}},
		{Ticker: "B", PresentMetrics: map[string]bool{}, UniversalMetrics: []string{"revenue", "net_income"}},
	}
	missing := MissingnessReport(companies)
	assert.Equal(t, 2, missing["net_income"])
	assert.Equal(t, 1, missing["revenue"])

	zero := ZeroDataScan(companies)
	assert.Equal(t, []string{"B"}, zero)
}
