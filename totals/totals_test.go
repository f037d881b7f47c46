package totals

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestRevenueRequiresAtLeastTwoComponents(t *testing.T) {
	_, ok := Revenue([]LabeledValue{{NormalizedLabel: "revenue_from_sale_of_goods", Value: dec(100)}})
	assert.False(t, ok)

	result, ok := Revenue([]LabeledValue{
		{NormalizedLabel: "revenue_from_sale_of_goods", Value: dec(100)},
		{NormalizedLabel: "other_revenue", Value: dec(20)},
	})
	assert.True(t, ok)
	assert.True(t, result.Value.Equal(dec(120)))
}

func TestCurrentLiabilitiesRequiresThreeMatchingConcepts(t *testing.T) {
	values := []LabeledValue{
		{ConceptName: "CurrentLiabilityA", Value: dec(10)},
		{ConceptName: "CurrentLiabilityB", Value: dec(20)},
	}
	_, ok := CurrentLiabilities(values)
	assert.False(t, ok)

	values = append(values, LabeledValue{ConceptName: "OtherCurrentLiability", Value: dec(5)})
	result, ok := CurrentLiabilities(values)
	assert.True(t, ok)
	assert.True(t, result.Value.Equal(dec(35)))
}

func TestCurrentLiabilitiesFallsBackToBankDeposits(t *testing.T) {
	values := []LabeledValue{
		{NormalizedLabel: "deposit_liabilities_demand_component", Value: dec(500)},
	}
	result, ok := CurrentLiabilities(values)
	assert.True(t, ok)
	assert.True(t, result.Value.Equal(dec(500)))
}

func TestNoncurrentLiabilitiesPrefersComponentSum(t *testing.T) {
	values := []LabeledValue{
		{ConceptName: "LiabilitiesNoncurrent", Value: dec(40)},
		{ConceptName: "LongTermDebtNoncurrent", Value: dec(60)},
	}
	total, current := dec(999), dec(1)
	result, ok := NoncurrentLiabilities(values, &total, &current)
	assert.True(t, ok)
	assert.True(t, result.Value.Equal(dec(100)))
}

func TestNoncurrentLiabilitiesFallsBackToIdentity(t *testing.T) {
	total, current := dec(100), dec(30)
	result, ok := NoncurrentLiabilities(nil, &total, &current)
	assert.True(t, ok)
	assert.True(t, result.Value.Equal(dec(70)))
}

func TestTotalLiabilitiesPrefersComponentSumOverIdentity(t *testing.T) {
	current, noncurrent := dec(30), dec(70)
	assets, equity := dec(1000), dec(400)
	result, ok := TotalLiabilities(&current, &noncurrent, &assets, &equity)
	assert.True(t, ok)
	assert.True(t, result.Value.Equal(dec(100)))
}

func TestTotalLiabilitiesFallsBackToAssetsMinusEquity(t *testing.T) {
	assets, equity := dec(1000), dec(400)
	result, ok := TotalLiabilities(nil, nil, &assets, &equity)
	assert.True(t, ok)
	assert.True(t, result.Value.Equal(dec(600)))
}

func TestAccountsPayableForBankOnlyWhenConceptAbsent(t *testing.T) {
	values := []LabeledValue{{NormalizedLabel: "accrued_liabilities_and_other_liabilities", Value: dec(42)}}
	_, ok := AccountsPayableForBank(values, true)
	assert.False(t, ok)

	result, ok := AccountsPayableForBank(values, false)
	assert.True(t, ok)
	assert.True(t, result.Value.Equal(dec(42)))
}
