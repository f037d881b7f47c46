package database

import (
	"github.com/jmoiron/sqlx"

	"finsight/validator"
)

// universalMetrics are the labels the database validation pass expects to
// find, at minimum, for every company loaded — the completeness check's
// reference set.
var universalMetrics = []string{
	"revenue", "net_income", "total_assets", "total_liabilities",
	"stockholders_equity", "cash_and_equivalents", "operating_cash_flow",
}

// CountNormalizationConflicts counts normalized_label values that a single
// taxonomy has assigned to concepts of more than one balance_type — the
// signal that two concepts which should not have synonymized to the same
// label nonetheless did.
func CountNormalizationConflicts(db *sqlx.DB) (int, error) {
	var n int
	err := db.Get(&n, `
		SELECT COUNT(*) FROM (
			SELECT taxonomy, normalized_label
			FROM dim_concepts
			WHERE normalized_label != '' AND balance_type != ''
			GROUP BY taxonomy, normalized_label
			HAVING COUNT(DISTINCT balance_type) > 1
		) conflicts
	`)
	return n, err
}

// CountDuplicateFacts counts (company, concept, period, dimension) fact
// combinations stored more than once. UpsertFact keys on the filing rather
// than the company, so the same fact loaded under two filings of one
// company is counted here as well.
func CountDuplicateFacts(db *sqlx.DB) (int, error) {
	var n int
	err := db.Get(&n, `
		SELECT COALESCE(SUM(dup_count), 0) FROM (
			SELECT COUNT(*) - 1 AS dup_count
			FROM fact_financial_metrics
			GROUP BY company_id, concept_id, period_id, COALESCE(dimension_id, -1)
			HAVING COUNT(*) > 1
		) dupes
	`)
	return n, err
}

// CompanyCompleteness loads the per-company universal-metric presence data
// the database validation pass needs, one row per company with at least one
// loaded filing. A company counts as a bank if any of its facts resolved
// through the bank-hint normalization source (dim_companies carries no
// explicit industry classification, so this is the only signal on hand).
func CompanyCompleteness(db *sqlx.DB) ([]validator.CompanyCompleteness, error) {
	type companyRow struct {
		Ticker     string `db:"ticker"`
		IsBank     bool   `db:"is_bank"`
		ConceptTag string `db:"normalized_label"`
	}

	var rows []companyRow
	err := db.Select(&rows, `
		SELECT c.ticker AS ticker, dc.normalized_label AS normalized_label,
			EXISTS (
				SELECT 1 FROM fact_financial_metrics bf
				JOIN dim_concepts bc ON bc.id = bf.concept_id
				WHERE bf.company_id = c.id AND bc.normalization_source = 'bank_hint'
			) AS is_bank
		FROM fact_financial_metrics f
		JOIN dim_companies c ON c.id = f.company_id
		JOIN dim_concepts dc ON dc.id = f.concept_id
		WHERE dc.normalized_label = ANY($1)
		GROUP BY c.id, c.ticker, dc.normalized_label
	`, universalMetrics)
	if err != nil {
		return nil, err
	}

	byTicker := make(map[string]*validator.CompanyCompleteness)
	for _, r := range rows {
		cc, ok := byTicker[r.Ticker]
		if !ok {
			cc = &validator.CompanyCompleteness{
				Ticker:           r.Ticker,
				IsBank:           r.IsBank,
				PresentMetrics:   make(map[string]bool),
				UniversalMetrics: universalMetrics,
			}
			byTicker[r.Ticker] = cc
		}
		cc.PresentMetrics[r.ConceptTag] = true
	}

	out := make([]validator.CompanyCompleteness, 0, len(byTicker))
	for _, cc := range byTicker {
		out = append(out, *cc)
	}
	return out, nil
}
