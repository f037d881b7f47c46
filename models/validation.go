package models

// Severity is the weight class of a validation finding.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
	SeverityInfo    Severity = "INFO"
)

// SeverityWeight implements the scoring table: ERROR=3,
// WARNING=2, INFO=1.
func SeverityWeight(s Severity) int {
	switch s {
	case SeverityError:
		return 3
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// Finding is a single validation result, either from the raw-facts pass (run
// inline by the Warehouse Loader) or the database pass (run after the full
// pipeline completes).
type Finding struct {
	Severity Severity
	Rule     string
	Message  string
	FilingID *int
	CompanyID *int
}

// Report aggregates findings into the weighted score:
// passed = score >= 0.90.
type Report struct {
	Findings []Finding
}

func (r *Report) Add(f Finding) {
	r.Findings = append(r.Findings, f)
}

func (r *Report) HasErrors() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Score computes the weighted pass/fail score. A report with zero findings
// scores 1.0 (nothing flagged). The denominator treats every finding as if
// it had been an ERROR, so a report containing only INFO findings scores
// 2/3 and one containing only WARNING findings scores 1/3: any finding at
// all puts the score below the 0.90 pass threshold.
func (r *Report) Score() float64 {
	if len(r.Findings) == 0 {
		return 1.0
	}
	var earned, possible int
	for _, f := range r.Findings {
		w := SeverityWeight(f.Severity)
		possible += SeverityWeight(SeverityError)
		earned += SeverityWeight(SeverityError) - w
	}
	if possible == 0 {
		return 1.0
	}
	return float64(earned) / float64(possible)
}

func (r *Report) Passed() bool {
	return r.Score() >= 0.90
}
