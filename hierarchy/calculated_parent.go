package hierarchy

import (
	"github.com/shopspring/decimal"
)

// ChildValue is one child concept's reported value for a (company, period),
// carrying the calculation weight to apply.
type ChildValue struct {
	ConceptID int
	Value     decimal.Decimal
	Weight    decimal.Decimal
}

// ParentComputation is the result of summing a parent's children.
type ParentComputation struct {
	Value decimal.Decimal
}

// ComputeParent sums weight*value across a parent's children. Returns
// ok=false when children is empty (nothing to compute from).
func ComputeParent(children []ChildValue) (ParentComputation, bool) {
	if len(children) == 0 {
		return ParentComputation{}, false
	}
	sum := decimal.Zero
	for _, c := range children {
		sum = sum.Add(c.Value.Mul(c.Weight))
	}
	return ParentComputation{Value: sum}, true
}

// DeviationWithinTolerance compares a reported parent value against a
// computed one, within the shared 1% relative tolerance.
func DeviationWithinTolerance(reported, computed decimal.Decimal) (withinTolerance bool, deviationPct decimal.Decimal) {
	diff := reported.Sub(computed).Abs()
	denom := reported.Abs()
	if denom.IsZero() {
		denom = computed.Abs()
	}
	if denom.IsZero() {
		return true, decimal.Zero
	}
	pct := diff.Div(denom)
	return pct.LessThanOrEqual(decimal.NewFromFloat(0.01)), pct
}
