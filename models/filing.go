package models

import "time"

// Filing is the dim_filings row. Idempotent key: (CompanyID, FilingType,
// FiscalYearEnd).
type Filing struct {
	ID               int       `db:"id"`
	CompanyID        int       `db:"company_id"`
	FilingType       string    `db:"filing_type"` // "10-K", "10-Q", "20-F", "ESEF-AR", ...
	FiscalYearEnd    time.Time `db:"fiscal_year_end"`
	SourceURL        string    `db:"source_url"`
	ValidationScore  *float64  `db:"validation_score"`
	CompletenessScore *float64 `db:"completeness_score"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

// Key returns the idempotent natural key for upserts.
func (f Filing) Key() FilingKey {
	return FilingKey{CompanyID: f.CompanyID, FilingType: f.FilingType, FiscalYearEnd: f.FiscalYearEnd}
}

// FilingKey is the natural key of dim_filings.
type FilingKey struct {
	CompanyID     int
	FilingType    string
	FiscalYearEnd time.Time
}
