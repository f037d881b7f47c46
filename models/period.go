package models

import "time"

// PeriodType distinguishes duration facts (income statement, cash flow) from
// instant facts (balance sheet, equity balances).
type PeriodType string

const (
	PeriodDuration PeriodType = "duration"
	PeriodInstant  PeriodType = "instant"
)

// Period is the dim_time_periods row. Instants and durations are separate
// rows even when they share a fiscal year.
type Period struct {
	ID            int        `db:"id"`
	Type          PeriodType `db:"period_type"`
	StartDate     *time.Time `db:"start_date"`
	EndDate       *time.Time `db:"end_date"`
	InstantDate   *time.Time `db:"instant_date"`
	FiscalYear    int        `db:"fiscal_year"`
	FiscalQuarter *int       `db:"fiscal_quarter"`
}

// DerivesFiscalYear implements the fiscal-year boundary rule: an instant or a
// duration-end falling in calendar months 1-3 belongs to the prior fiscal
// year (the filer's fiscal year end is assumed to be in Q1 or earlier,
// consistent with a December-ish fiscal year reported in the following Q1).
func DerivesFiscalYear(reference time.Time) int {
	year := reference.Year()
	if int(reference.Month()) <= 3 {
		return year - 1
	}
	return year
}

// DurationDays returns the whole-day length of a duration period, or 0 for
// an instant / a period missing either boundary.
func (p Period) DurationDays() int {
	if p.Type != PeriodDuration || p.StartDate == nil || p.EndDate == nil {
		return 0
	}
	return int(p.EndDate.Sub(*p.StartDate).Hours() / 24)
}

// IsAnnual reports whether this is a true annual period: a duration of at
// least 30 days* and no fiscal quarter set. (*kept loose deliberately: real
// annual durations run ~360-370 days; the >=30 day floor only needs to
// reject obviously-quarterly spans used by the equity-statement filter.)
func (p Period) IsAnnual() bool {
	if p.FiscalQuarter != nil && *p.FiscalQuarter != 0 {
		return false
	}
	return p.DurationDays() >= 30
}
