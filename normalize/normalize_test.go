package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"finsight/models"
)

func TestSnakeCaseHandlesAcronymsAndCamel(t *testing.T) {
	assert.Equal(t, "xbrl_format", SnakeCase("XBRLFormat"))
	assert.Equal(t, "net_income", SnakeCase("NetIncome"))
	assert.Equal(t, "assets_current", SnakeCase("AssetsCurrent"))
}

func TestAutoFallbackRewritesKnownSuffixes(t *testing.T) {
	assert.Equal(t, "risk_factors_note", AutoFallbackLabel("RiskFactorsTextBlock"))
	assert.Equal(t, "some_group_section_header", AutoFallbackLabel("SomeGroupAbstract"))
}

func TestAutoFallbackTruncatesAndHashesLongNames(t *testing.T) {
	longName := strings.Repeat("VeryLongConceptNamePart", 10)
	label := AutoFallbackLabel(longName)
	assert.LessOrEqual(t, len(label), maxLabelLength)
	assert.Len(t, label, truncatedLength+8)

	other := strings.Repeat("VeryLongConceptNamePart", 10) + "X"
	label2 := AutoFallbackLabel(other)
	assert.NotEqual(t, label, label2, "distinct long inputs must not collapse to the same label")
}

func TestNormalizeCuratedMapMatch(t *testing.T) {
	n := New(nil)
	res := n.Normalize("us-gaap", "Revenues", "", false)
	assert.Equal(t, "revenue", res.NormalizedLabel)
	assert.Equal(t, models.SourceCuratedMap, res.Source)
}

func TestNormalizeContextOverrideWinsOverCuratedMap(t *testing.T) {
	n := New(nil)
	res := n.Normalize("us-gaap", "CurrentLiabilities", "", false)
	assert.Equal(t, "current_liabilities_ifrs_variant", res.NormalizedLabel)
	assert.Equal(t, models.SourceContextOverride, res.Source)
}

func TestNormalizeResolvesHedgeReserveTransfer(t *testing.T) {
	n := New(nil)
	res := n.Normalize("ifrs-full", "AmountRemovedFromReserveOfCashFlowHedges", "", false)
	assert.Equal(t, "hedge_reserve_transfer", res.NormalizedLabel)
	assert.Equal(t, models.SourceCuratedMap, res.Source)
}

func TestNormalizeBankHintForcesComponentLabel(t *testing.T) {
	n := New(nil)
	res := n.Normalize("us-gaap", "DepositLiabilitiesDemand", "", false)
	assert.Equal(t, models.SourceBankHint, res.Source)
	assert.True(t, strings.HasSuffix(res.NormalizedLabel, "_component"))
}

func TestNormalizeFallsBackForUnknownConcept(t *testing.T) {
	n := New(nil)
	res := n.Normalize("us-gaap", "SomeBrandNewConcept", "", false)
	assert.Equal(t, models.SourceAutoFallback, res.Source)
	assert.Equal(t, "some_brand_new_concept", res.NormalizedLabel)
}

func TestAssignStatementTypePrefersParserHint(t *testing.T) {
	hint := "cash_flow"
	st := AssignStatementType(&hint, "revenue")
	assert.Equal(t, models.StatementCashFlow, st)
}

func TestAssignStatementTypeFallsBackToLabelTable(t *testing.T) {
	st := AssignStatementType(nil, "revenue")
	assert.Equal(t, models.StatementIncome, st)
}

func TestAssignStatementTypeFallsBackToSubstring(t *testing.T) {
	st := AssignStatementType(nil, "some_receivable_asset_detail")
	assert.Equal(t, models.StatementBalanceSheet, st)
}

func TestApplySynonymsLabelTextEquivalencePicksShortestConceptName(t *testing.T) {
	a := &ConceptRef{ConceptName: "SalesRevenueNet", PreferredLabel: "Revenue", NormalizedLabel: "revenue_alt", NormalizationSource: models.SourceAutoFallback}
	b := &ConceptRef{ConceptName: "Revenue", PreferredLabel: "revenue", NormalizedLabel: "revenue", NormalizationSource: models.SourceAutoFallback}
	ApplySynonyms(nil, []*ConceptRef{a, b})
	assert.Equal(t, "revenue", a.NormalizedLabel)
}

func TestApplySynonymsNeverDowngradesAuthoritativeLabel(t *testing.T) {
	a := &ConceptRef{ConceptName: "SalesRevenueNet", PreferredLabel: "Revenue", NormalizedLabel: "revenue_custom", NormalizationSource: models.SourceCuratedMap}
	b := &ConceptRef{ConceptName: "Revenue", PreferredLabel: "revenue", NormalizedLabel: "revenue", NormalizationSource: models.SourceAutoFallback}
	ApplySynonyms(nil, []*ConceptRef{a, b})
	assert.Equal(t, "revenue_custom", a.NormalizedLabel, "curated-map source must not be downgraded by label-synonym pass")
}
