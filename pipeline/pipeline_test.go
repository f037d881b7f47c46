package pipeline

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"finsight/models"
	"finsight/statement"
)

func TestBuildPeriodInstant(t *testing.T) {
	instant := "2024-12-31"
	rf := models.RawFact{PeriodType: "instant", InstantDate: &instant}

	p := buildPeriod(rf, 2024)

	assert.Equal(t, models.PeriodInstant, p.Type)
	assert.Equal(t, 2024, p.FiscalYear)
	if assert.NotNil(t, p.InstantDate) {
		assert.Equal(t, 2024, p.InstantDate.Year())
		assert.Equal(t, 12, int(p.InstantDate.Month()))
	}
	assert.Nil(t, p.StartDate)
	assert.Nil(t, p.EndDate)
}

func TestBuildPeriodDuration(t *testing.T) {
	start, end := "2024-01-01", "2024-12-31"
	rf := models.RawFact{PeriodType: "duration", PeriodStart: &start, PeriodEnd: &end}

	p := buildPeriod(rf, 2024)

	assert.Equal(t, models.PeriodDuration, p.Type)
	if assert.NotNil(t, p.StartDate) && assert.NotNil(t, p.EndDate) {
		assert.Equal(t, 1, int(p.StartDate.Month()))
		assert.Equal(t, 12, int(p.EndDate.Month()))
	}
	assert.Nil(t, p.InstantDate)
}

func TestBuildPeriodMalformedDateIgnored(t *testing.T) {
	bad := "not-a-date"
	rf := models.RawFact{PeriodType: "instant", InstantDate: &bad}

	p := buildPeriod(rf, 2024)

	assert.Nil(t, p.InstantDate)
}

func TestLabelToConceptID(t *testing.T) {
	labels := map[int]string{1: "revenue", 2: "net_income"}

	id, ok := labelToConceptID(labels, "net_income")
	assert.True(t, ok)
	assert.Equal(t, 2, id)

	_, ok = labelToConceptID(labels, "missing")
	assert.False(t, ok)
}

func TestIsEPSLabel(t *testing.T) {
	assert.True(t, isEPSLabel("eps_basic"))
	assert.True(t, isEPSLabel("eps_diluted"))
	assert.False(t, isEPSLabel("revenue"))
}

func TestUsesFixedOrder(t *testing.T) {
	assert.True(t, usesFixedOrder(models.StatementComprehensive))
	assert.True(t, usesFixedOrder(models.StatementCashFlow))
	assert.True(t, usesFixedOrder(models.StatementEquity))
	assert.False(t, usesFixedOrder(models.StatementIncome))
	assert.False(t, usesFixedOrder(models.StatementBalanceSheet))
}

func TestDeclaredStatementFor(t *testing.T) {
	income := statement.PresentationItem{RoleURI: "http://company.com/role/ConsolidatedIncomeStatement"}
	assert.Equal(t, models.StatementIncome, declaredStatementFor(income))

	balance := statement.PresentationItem{RoleURI: "http://company.com/role/BalanceSheet"}
	assert.Equal(t, models.StatementBalanceSheet, declaredStatementFor(balance))

	unknown := statement.PresentationItem{RoleURI: "http://company.com/role/ScheduleOfSomethingElse"}
	assert.Equal(t, models.StatementOther, declaredStatementFor(unknown))
}

func TestCalculationParentsTakesFirstParent(t *testing.T) {
	parent1, parent2 := "ParentA", "ParentB"
	raw := &models.RawFiling{}
	raw.Relationships.Calculation = []models.RawRelationship{
		{Parent: &parent1, Child: "Child"},
		{Parent: &parent2, Child: "Child"},
	}
	conceptIDs := map[string]int{"ParentA": 1, "ParentB": 2, "Child": 3}

	parents := calculationParents(raw, conceptIDs)

	assert.Equal(t, 1, parents[3])
}

func TestCalculationParentsSkipsUnresolvedConcepts(t *testing.T) {
	parent := "Parent"
	raw := &models.RawFiling{}
	raw.Relationships.Calculation = []models.RawRelationship{
		{Parent: &parent, Child: "UnknownChild"},
	}
	conceptIDs := map[string]int{"Parent": 1}

	parents := calculationParents(raw, conceptIDs)

	assert.Empty(t, parents)
}

func TestCalculatedFactCopiesTemplateContext(t *testing.T) {
	template := &models.Fact{CompanyID: 7, FilingID: 9, UnitMeasure: "USD"}
	value := decimal.NewFromInt(100)

	f := calculatedFact(template, 3, 4, value)

	assert.Equal(t, 7, f.CompanyID)
	assert.Equal(t, 9, f.FilingID)
	assert.Equal(t, "USD", f.UnitMeasure)
	assert.Equal(t, 3, f.ConceptID)
	assert.Equal(t, 4, f.PeriodID)
	assert.True(t, f.IsCalculated)
	assert.True(t, f.IsPrimary)
	assert.Equal(t, models.SourceCalculated, f.Source)
	assert.True(t, value.Equal(*f.ValueNumeric))
}

func TestCalculatedFactNilTemplate(t *testing.T) {
	value := decimal.NewFromInt(50)
	f := calculatedFact(nil, 1, 2, value)
	assert.Equal(t, 0, f.CompanyID)
	assert.Equal(t, 1, f.ConceptID)
}

func TestFactValueNilSafe(t *testing.T) {
	assert.Nil(t, factValue(nil))

	v := decimal.NewFromInt(5)
	f := &models.Fact{ValueNumeric: &v}
	assert.True(t, v.Equal(*factValue(f)))
}

func TestComputeMissingTotalsSynthesizesRevenue(t *testing.T) {
	p := &Pipeline{}
	companyID, periodID := 1, 10
	productValue := decimal.NewFromInt(700)
	serviceValue := decimal.NewFromInt(300)

	facts := []*models.Fact{
		{ConceptID: 1, CompanyID: companyID, PeriodID: periodID, ValueNumeric: &productValue},
		{ConceptID: 2, CompanyID: companyID, PeriodID: periodID, ValueNumeric: &serviceValue},
	}
	labels := map[int]string{1: "revenue_from_sale_of_goods", 2: "other_revenue", 3: "revenue"}

	synthesized := p.computeMissingTotals(facts, labels)

	if assert.Len(t, synthesized, 1) {
		assert.Equal(t, 3, synthesized[0].ConceptID)
		assert.True(t, decimal.NewFromInt(1000).Equal(*synthesized[0].ValueNumeric))
		assert.True(t, synthesized[0].IsCalculated)
	}
}

func TestComputeMissingTotalsSkipsWhenAlreadyReported(t *testing.T) {
	p := &Pipeline{}
	reported := decimal.NewFromInt(1000)
	facts := []*models.Fact{
		{ConceptID: 3, PeriodID: 10, ValueNumeric: &reported},
	}
	labels := map[int]string{3: "revenue"}

	synthesized := p.computeMissingTotals(facts, labels)

	assert.Empty(t, synthesized)
}

func TestClassifyHierarchySkipsUnresolvedConcepts(t *testing.T) {
	p := &Pipeline{}
	parent := "Parent"
	raw := &models.RawFiling{}
	raw.Relationships.Calculation = []models.RawRelationship{
		{Parent: &parent, Child: "Missing"},
	}
	conceptIDs := map[string]int{"Parent": 1}

	levels := p.classifyHierarchy(raw, conceptIDs)

	assert.Empty(t, levels)
}

func TestToNormalizedValuesPopulatesLabelAndContext(t *testing.T) {
	v := decimal.NewFromInt(42)
	facts := []*models.Fact{
		{ConceptID: 1, ContextID: "ctx-1", ValueNumeric: &v},
	}
	labels := map[int]string{1: "revenue"}

	values := toNormalizedValues(facts, labels)

	if assert.Len(t, values, 1) {
		assert.Equal(t, "revenue", values[0].NormalizedLabel)
		assert.Equal(t, "revenue", values[0].ConceptName)
		assert.Equal(t, "ctx-1", values[0].ContextID)
		assert.True(t, v.Equal(*values[0].Value))
	}
}

func TestStandardForIFRSAndESEF(t *testing.T) {
	assert.Equal(t, models.StandardIFRS, standardFor("ifrs-full"))
	assert.Equal(t, models.StandardIFRS, standardFor("esef"))
	assert.Equal(t, models.StandardUSGAAP, standardFor("us-gaap"))
	assert.Equal(t, models.StandardUSGAAP, standardFor(""))
}

func TestCompletenessScore(t *testing.T) {
	v := decimal.NewFromInt(1)
	facts := []*models.Fact{
		{ValueNumeric: &v},
		{ValueNumeric: &v},
		{ValueNumeric: nil},
	}

	score := completenessScore(facts)

	assert.InDelta(t, 2.0/3.0, score, 0.01)
}

func TestCompletenessScoreEmpty(t *testing.T) {
	assert.Equal(t, 0.0, completenessScore(nil))
}

func TestStringVal(t *testing.T) {
	assert.Equal(t, "", stringVal(nil))
	s := "x"
	assert.Equal(t, "x", stringVal(&s))
}
