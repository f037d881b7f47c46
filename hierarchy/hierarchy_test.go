package hierarchy

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"finsight/models"
)

func TestClassifyFourLevelTree(t *testing.T) {
	// Assets(4) -> AssetsCurrent(2, parent is L4) -> CashAndEquivalents(1)
	edges := []Edge{
		{ParentID: 1, ChildID: 2, Weight: 1},
		{ParentID: 2, ChildID: 3, Weight: 1},
	}
	classes, warnings := Classify(edges)
	assert.Empty(t, warnings)
	assert.Equal(t, models.HierarchyStatementTotal, classes[1].Level)
	assert.Equal(t, models.HierarchySubtotal, classes[2].Level)
	assert.Equal(t, models.HierarchyDetail, classes[3].Level)
}

func TestClassifyDetectsCycle(t *testing.T) {
	edges := []Edge{
		{ParentID: 1, ChildID: 2, Weight: 1},
		{ParentID: 2, ChildID: 1, Weight: 1},
	}
	_, warnings := Classify(edges)
	assert.NotEmpty(t, warnings)
}

func TestPatternMatchLevelTotalPrefix(t *testing.T) {
	assert.Equal(t, models.HierarchyStatementTotal, PatternMatchLevel("total_assets", nil))
}

func TestPatternMatchLevelUniversalMetricNeverLowered(t *testing.T) {
	existing := models.HierarchyStatementTotal
	level := PatternMatchLevel("revenue", &existing)
	assert.Equal(t, models.HierarchyStatementTotal, level)
}

func TestPatternMatchLevelGroupingSubstring(t *testing.T) {
	assert.Equal(t, models.HierarchySubtotal, PatternMatchLevel("accrued_expenses_current", nil))
}

func TestComputeParentSumsWeightedChildren(t *testing.T) {
	children := []ChildValue{
		{ConceptID: 1, Value: decimal.NewFromInt(100), Weight: decimal.NewFromInt(1)},
		{ConceptID: 2, Value: decimal.NewFromInt(40), Weight: decimal.NewFromInt(-1)},
	}
	result, ok := ComputeParent(children)
	assert.True(t, ok)
	assert.True(t, result.Value.Equal(decimal.NewFromInt(60)))
}

func TestDeviationWithinToleranceFlagsLargeDeviation(t *testing.T) {
	within, pct := DeviationWithinTolerance(decimal.NewFromInt(100), decimal.NewFromInt(80))
	assert.False(t, within)
	assert.True(t, pct.GreaterThan(decimal.NewFromFloat(0.01)))
}
