package statement

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"finsight/models"
)

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func TestMaterializeIncomeStatementExcludesOCILabels(t *testing.T) {
	items := []models.StatementItem{
		{ConceptID: 1, DisplayOrder: 0},
		{ConceptID: 2, DisplayOrder: 1},
	}
	concepts := map[int]ConceptInfo{
		1: {ID: 1, NormalizedLabel: "revenue"},
		2: {ID: 2, NormalizedLabel: "remeasurement_of_defined_benefit_plans"},
	}
	facts := map[int]map[int]FactInput{
		1: {100: {ConceptID: 1, PeriodID: 100, Value: decPtr(500)}},
		2: {100: {ConceptID: 2, PeriodID: 100, Value: decPtr(10)}},
	}

	out := MaterializeIncomeStatement(items, facts, concepts)
	assert.Len(t, out, 1)
	assert.Equal(t, 1, out[0].ConceptID)
}

func TestMaterializeBalanceSheetAssignsSide(t *testing.T) {
	items := []models.StatementItem{{ConceptID: 1, DisplayOrder: 0}}
	concepts := map[int]ConceptInfo{1: {ID: 1, NormalizedLabel: "total_assets"}}
	facts := map[int]map[int]FactInput{1: {100: {ConceptID: 1, PeriodID: 100, Value: decPtr(1000)}}}

	out := MaterializeBalanceSheet(items, facts, concepts)
	assert.Len(t, out, 1)
	assert.NotNil(t, out[0].Side)
	assert.Equal(t, models.SideAssets, *out[0].Side)
}

func TestMaterializeComprehensiveIncomeFlipsTaxAndReclassification(t *testing.T) {
	items := []models.StatementItem{
		{ConceptID: 1, DisplayOrder: 0},
		{ConceptID: 2, DisplayOrder: 1},
	}
	concepts := map[int]ConceptInfo{
		1: {ID: 1, NormalizedLabel: "tax_on_other_comprehensive_income"},
		2: {ID: 2, NormalizedLabel: "realisation_of_previously_deferred_gains_losses"},
	}
	facts := map[int]map[int]FactInput{
		1: {100: {ConceptID: 1, PeriodID: 100, Value: decPtr(50)}},
		2: {100: {ConceptID: 2, PeriodID: 100, Value: decPtr(30)}},
	}

	out := MaterializeComprehensiveIncome(items, facts, concepts)
	assert.Len(t, out, 2)
	for _, sf := range out {
		assert.True(t, sf.Value.IsNegative())
	}
}

func TestMaterializeComprehensiveIncomeForcesTotalComprehensiveIncomePositive(t *testing.T) {
	items := []models.StatementItem{{ConceptID: 1, DisplayOrder: 0}}
	concepts := map[int]ConceptInfo{1: {ID: 1, NormalizedLabel: "total_comprehensive_income"}}
	facts := map[int]map[int]FactInput{1: {100: {ConceptID: 1, PeriodID: 100, Value: decPtr(-75)}}}

	out := MaterializeComprehensiveIncome(items, facts, concepts)
	assert.Len(t, out, 1)
	assert.True(t, out[0].Value.Equal(decimal.NewFromInt(75)))
}

func TestApplySignCorrectionReversesTaxOnSharebasedPayment(t *testing.T) {
	got := applySignCorrection("tax_on_sharebased_payment", decimal.NewFromInt(40))
	assert.True(t, got.Equal(decimal.NewFromInt(-40)))
}

func TestMaterializeCashFlowSynthesizesBeginningCashFromPriorYear(t *testing.T) {
	items := []models.StatementItem{{ConceptID: 1, DisplayOrder: 9}}
	concepts := map[int]ConceptInfo{1: {ID: 1, NormalizedLabel: "net_change_in_cash"}}
	facts := map[int]map[int]FactInput{1: {100: {ConceptID: 1, PeriodID: 100, Value: decPtr(25)}}}
	prior := &FactInput{ConceptID: 2, PeriodID: 99, Value: decPtr(1000)}

	out := MaterializeCashFlow(items, facts, concepts, prior, nil)
	assert.Len(t, out, 2)
	var foundBeginning bool
	for _, sf := range out {
		if sf.DisplayOrder == OrderBeginningCash {
			foundBeginning = true
			assert.True(t, sf.Value.Equal(decimal.NewFromInt(1000)))
		}
	}
	assert.True(t, foundBeginning)
}

func TestMaterializeCashFlowFallsBackToEarliestInstantWhenNoPriorYear(t *testing.T) {
	items := []models.StatementItem{{ConceptID: 1, DisplayOrder: 9}}
	concepts := map[int]ConceptInfo{1: {ID: 1, NormalizedLabel: "net_change_in_cash"}}
	facts := map[int]map[int]FactInput{1: {100: {ConceptID: 1, PeriodID: 100, Value: decPtr(25)}}}
	earliest := &FactInput{ConceptID: 2, PeriodID: 98, Value: decPtr(500)}

	out := MaterializeCashFlow(items, facts, concepts, nil, earliest)
	var found bool
	for _, sf := range out {
		if sf.DisplayOrder == OrderBeginningCash {
			found = true
			assert.True(t, sf.Value.Equal(decimal.NewFromInt(500)))
		}
	}
	assert.True(t, found)
}

func TestMaterializeEquityStatementAppliesSignCorrectionsAndComponents(t *testing.T) {
	items := []models.StatementItem{{ConceptID: 1, DisplayOrder: 6}}
	concepts := map[int]ConceptInfo{1: {ID: 1, NormalizedLabel: "dividends_paid"}}
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	periods := map[int]models.Period{100: {ID: 100, Type: models.PeriodDuration, StartDate: &start, EndDate: &end, FiscalYear: 2025}}
	facts := map[int]map[int][]FactInput{
		1: {100: {{ConceptID: 1, PeriodID: 100, Value: decPtr(40), Dimensions: models.AxisMembers{models.ComponentsOfEquityAxis: "RetainedEarningsMember"}}}},
	}

	out := MaterializeEquityStatement(items, facts, concepts, periods, nil, nil)
	assert.Len(t, out, 1)
	assert.True(t, out[0].Value.IsNegative())
	assert.NotNil(t, out[0].EquityComponent)
	assert.Equal(t, models.EquityRetainedEarnings, *out[0].EquityComponent)
}

func TestMaterializeEquityStatementSkipsNonAnnualPeriods(t *testing.T) {
	items := []models.StatementItem{{ConceptID: 1, DisplayOrder: 1}}
	concepts := map[int]ConceptInfo{1: {ID: 1, NormalizedLabel: "net_profit_equity"}}
	quarter := 2
	periods := map[int]models.Period{100: {ID: 100, FiscalYear: 2025, FiscalQuarter: &quarter}}
	facts := map[int]map[int][]FactInput{
		1: {100: {{ConceptID: 1, PeriodID: 100, Value: decPtr(10)}}},
	}

	out := MaterializeEquityStatement(items, facts, concepts, periods, nil, nil)
	assert.Len(t, out, 0)
}
