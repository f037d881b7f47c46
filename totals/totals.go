// Package totals implements the Calculated-Totals Engine: it
// synthesizes missing universal totals the statement templates and
// validator require, strictly from already-reported components, never by
// inventing data.
package totals

import (
	"regexp"

	"github.com/shopspring/decimal"
)

// LabeledValue is a reported fact's normalized label and value for one
// (company, period), the unit the Calculated-Totals Engine works from.
type LabeledValue struct {
	NormalizedLabel string
	ConceptName     string
	Value           decimal.Decimal
}

// Result is one synthesized total.
type Result struct {
	Metric string
	Value  decimal.Decimal
}

var currentLiabilityPattern = regexp.MustCompile(`(?i)current.*liabilit`)
var noncurrentLiabilityPattern = regexp.MustCompile(`(?i)(noncurrent.*liabilit|liabilit.*noncurrent|long.?term.?debt|long.?term.*liabilit)`)

var revenueComponents = []string{"revenue_from_sale_of_goods", "other_revenue", "revenue_from_contracts", "revenue_from_collaborative_arrangements"}
var bankDepositLabels = []string{"deposits_negotiable_certificates_of_deposit_component", "interest_bearing_domestic_deposit_component", "noninterest_bearing_domestic_deposit_component", "deposit_liabilities_domestic_component", "deposit_liabilities_demand_component"}

func byLabel(values []LabeledValue) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(values))
	for _, v := range values {
		out[v.NormalizedLabel] = v.Value
	}
	return out
}

func sumComponents(values []LabeledValue, labels []string) (decimal.Decimal, int) {
	idx := byLabel(values)
	sum := decimal.Zero
	count := 0
	for _, l := range labels {
		if v, ok := idx[l]; ok {
			sum = sum.Add(v)
			count++
		}
	}
	return sum, count
}

// Revenue sums revenue components when at least 2 report values.
func Revenue(values []LabeledValue) (Result, bool) {
	sum, count := sumComponents(values, revenueComponents)
	if count < 2 {
		return Result{}, false
	}
	return Result{Metric: "revenue", Value: sum}, true
}

// CurrentLiabilities sums concepts matching `Current%Liabilit%` with >= 3
// components, or (for banks) the deposit-liability components.
func CurrentLiabilities(values []LabeledValue) (Result, bool) {
	sum := decimal.Zero
	count := 0
	for _, v := range values {
		if currentLiabilityPattern.MatchString(v.ConceptName) {
			sum = sum.Add(v.Value)
			count++
		}
	}
	if count >= 3 {
		return Result{Metric: "current_liabilities", Value: sum}, true
	}

	depositSum, depositCount := sumComponents(values, bankDepositLabels)
	if depositCount > 0 {
		return Result{Metric: "current_liabilities", Value: depositSum}, true
	}
	return Result{}, false
}

// NoncurrentLiabilities first tries a component sum over concepts matching
// `Noncurrent%Liabilit%` or `Liabilit%Noncurrent`/long-term-debt names with
// >= 2 components,
// falling back to the identity total_liabilities - current_liabilities.
func NoncurrentLiabilities(values []LabeledValue, totalLiabilities, currentLiabilities *decimal.Decimal) (Result, bool) {
	sum := decimal.Zero
	count := 0
	for _, v := range values {
		if noncurrentLiabilityPattern.MatchString(v.ConceptName) {
			sum = sum.Add(v.Value)
			count++
		}
	}
	if count >= 2 {
		return Result{Metric: "noncurrent_liabilities", Value: sum}, true
	}

	if totalLiabilities != nil && currentLiabilities != nil {
		return Result{Metric: "noncurrent_liabilities", Value: totalLiabilities.Sub(*currentLiabilities)}, true
	}
	return Result{}, false
}

// TotalLiabilities: current + noncurrent, else total_assets - stockholders_equity.
func TotalLiabilities(current, noncurrent, totalAssets, stockholdersEquity *decimal.Decimal) (Result, bool) {
	if current != nil && noncurrent != nil {
		return Result{Metric: "total_liabilities", Value: current.Add(*noncurrent)}, true
	}
	if totalAssets != nil && stockholdersEquity != nil {
		return Result{Metric: "total_liabilities", Value: totalAssets.Sub(*stockholdersEquity)}, true
	}
	return Result{}, false
}

// StockholdersEquity: total_assets - total_liabilities.
func StockholdersEquity(totalAssets, totalLiabilities *decimal.Decimal) (Result, bool) {
	if totalAssets == nil || totalLiabilities == nil {
		return Result{}, false
	}
	return Result{Metric: "stockholders_equity", Value: totalAssets.Sub(*totalLiabilities)}, true
}

// AccountsPayableForBank substitutes accrued_liabilities_and_other_liabilities
// when a bank reports it but no AccountsPayableCurrent concept at all.
func AccountsPayableForBank(values []LabeledValue, hasAccountsPayableConcept bool) (Result, bool) {
	if hasAccountsPayableConcept {
		return Result{}, false
	}
	for _, v := range values {
		if v.NormalizedLabel == "accrued_liabilities_and_other_liabilities" {
			return Result{Metric: "accounts_payable", Value: v.Value}, true
		}
	}
	return Result{}, false
}
