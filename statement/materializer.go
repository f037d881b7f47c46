package statement

import (
	"strings"

	"github.com/shopspring/decimal"

	"finsight/models"
)

// ConceptInfo is the subset of dim_concepts the materializer needs per
// concept referenced by a statement item or fact.
type ConceptInfo struct {
	ID              int
	NormalizedLabel string
	HierarchyLevel  *models.HierarchyLevel
	ParentConceptID *int
	BalanceType     string
}

// FactInput is one fact_financial_metrics row projected down to what the
// materializer consumes, plus its resolved XBRL dimensions (nil/empty for a
// consolidated fact).
type FactInput struct {
	ConceptID   int
	PeriodID    int
	Value       *decimal.Decimal
	UnitMeasure string
	Dimensions  models.AxisMembers
}

// reclassificationLabels mark OCI items that are reclassification
// adjustments and must be sign-flipped when materialized alongside their
// originating remeasurement.
var reclassificationLabels = []string{"realisation_of_previously_deferred", "reclassification_adjustment"}

func isReclassification(label string) bool {
	lower := strings.ToLower(label)
	for _, s := range reclassificationLabels {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

func isTaxOnOCI(label string) bool {
	lower := strings.ToLower(label)
	return strings.Contains(lower, "tax") && (strings.Contains(lower, "other_comprehensive") || strings.Contains(lower, "oci"))
}

// universalSignCorrectionLabels are equity-statement/cash-flow components
// that XBRL filers sometimes report with the opposite sign of the
// warehouse's convention (value reduces the balance); the materializer
// forces them negative.
var universalSignCorrectionLabels = []string{
	"dividends_paid", "purchase_of_treasury_shares", "hedge_reserve_transfer",
}

// capitalReductionLabel is forced positive by applySignCorrection; in the
// equity statement MaterializeEquityStatement keeps it positive only on the
// treasury_shares component and makes it negative on every other component
// and on the total row.
const capitalReductionLabel = "reduction_of_issued_capital"

// forcedPositiveLabels are always made positive regardless of the sign the
// filer happened to report.
var forcedPositiveLabels = []string{capitalReductionLabel, "total_comprehensive_income"}

// reversedSignLabels carry the opposite sign of their filed value (a tax
// benefit reported as a positive add-back must reduce the equity line it
// feeds).
var reversedSignLabels = []string{"tax_on_sharebased_payment"}

func applySignCorrection(label string, v decimal.Decimal) decimal.Decimal {
	for _, l := range forcedPositiveLabels {
		if label == l {
			return v.Abs()
		}
	}
	for _, l := range universalSignCorrectionLabels {
		if label == l {
			return v.Abs().Neg()
		}
	}
	for _, l := range reversedSignLabels {
		if label == l {
			return v.Neg()
		}
	}
	if isTaxOnOCI(label) {
		return v.Abs().Neg()
	}
	if isReclassification(label) {
		return v.Abs().Neg()
	}
	return v
}

// copyFact builds the base StatementFact common to every statement type,
// nulling the parent back-reference when the parent's own display_order
// sorts after the child's (an inverted presentation edge would otherwise
// make rendering ambiguous).
func copyFact(stmt models.StatementType, item models.StatementItem, fact FactInput, concepts map[int]ConceptInfo) models.StatementFact {
	info := concepts[item.ConceptID]
	parentID := info.ParentConceptID

	out := models.StatementFact{
		FilingID:        0, // set by caller
		ConceptID:       item.ConceptID,
		PeriodID:        fact.PeriodID,
		Statement:       stmt,
		Value:           fact.Value,
		DisplayOrder:    item.DisplayOrder,
		IsHeader:        item.IsHeader,
		HierarchyLevel:  info.HierarchyLevel,
		ParentConceptID: parentID,
	}
	if fact.UnitMeasure != "" {
		u := fact.UnitMeasure
		out.UnitMeasure = &u
	}
	return out
}

// nullParentIfInverted implements the rule: if the parent concept's
// display_order in this statement is greater than the child's own order,
// the parent reference is dropped rather than rendered as a cycle.
func nullParentIfInverted(sf *models.StatementFact, orderByConcept map[int]int) {
	if sf.ParentConceptID == nil {
		return
	}
	parentOrder, ok := orderByConcept[*sf.ParentConceptID]
	if !ok {
		return
	}
	if parentOrder > sf.DisplayOrder {
		sf.ParentConceptID = nil
	}
}

// MaterializeIncomeStatement copies the consolidated fact for each main
// income-statement item, excluding anything routed to comprehensive income
// or cash flow by the Organizer (items passed in are assumed pre-filtered
// to StatementIncome by RouteStatement; this only applies the label-based
// belt-and-suspenders exclusion).
func MaterializeIncomeStatement(items []models.StatementItem, factsByConceptPeriod map[int]map[int]FactInput, concepts map[int]ConceptInfo) []models.StatementFact {
	orderByConcept := orderIndex(items)
	var out []models.StatementFact
	for _, item := range items {
		if looksLikeOCILabel(concepts[item.ConceptID].NormalizedLabel) {
			continue
		}
		for _, fact := range factsByConceptPeriod[item.ConceptID] {
			sf := copyFact(models.StatementIncome, item, fact, concepts)
			nullParentIfInverted(&sf, orderByConcept)
			out = append(out, sf)
		}
	}
	return out
}

// MaterializeBalanceSheet copies the consolidated fact for each main
// balance-sheet item and carries through the side computed by AssignSide.
func MaterializeBalanceSheet(items []models.StatementItem, factsByConceptPeriod map[int]map[int]FactInput, concepts map[int]ConceptInfo) []models.StatementFact {
	orderByConcept := orderIndex(items)
	var out []models.StatementFact
	for _, item := range items {
		info := concepts[item.ConceptID]
		side, ok := AssignSide(info.NormalizedLabel, info.NormalizedLabel)
		for _, fact := range factsByConceptPeriod[item.ConceptID] {
			sf := copyFact(models.StatementBalanceSheet, item, fact, concepts)
			nullParentIfInverted(&sf, orderByConcept)
			if ok {
				s := side
				sf.Side = &s
			} else if item.Side != nil {
				sf.Side = item.Side
			}
			out = append(out, sf)
		}
	}
	return out
}

// MaterializeComprehensiveIncome applies the OCI sign corrections
// (reclassification adjustments and tax-on-OCI are forced negative) on top
// of the general copy rule.
func MaterializeComprehensiveIncome(items []models.StatementItem, factsByConceptPeriod map[int]map[int]FactInput, concepts map[int]ConceptInfo) []models.StatementFact {
	orderByConcept := orderIndex(items)
	var out []models.StatementFact
	for _, item := range items {
		info := concepts[item.ConceptID]
		for _, fact := range factsByConceptPeriod[item.ConceptID] {
			sf := copyFact(models.StatementComprehensive, item, fact, concepts)
			nullParentIfInverted(&sf, orderByConcept)
			if sf.Value != nil {
				corrected := applySignCorrection(info.NormalizedLabel, *sf.Value)
				sf.Value = &corrected
			}
			out = append(out, sf)
		}
	}
	return out
}

// MaterializeCashFlow copies the consolidated fact for each main cash-flow
// item and synthesizes the beginning-of-year cash row: first from the prior
// filing's ending cash (priorYearEndingCash), falling back to this filing's
// earliest-instant cash fact when no prior filing is available.
func MaterializeCashFlow(items []models.StatementItem, factsByConceptPeriod map[int]map[int]FactInput, concepts map[int]ConceptInfo, priorYearEndingCash *FactInput, earliestInstantCash *FactInput) []models.StatementFact {
	orderByConcept := orderIndex(items)
	var out []models.StatementFact
	haveBeginningRow := false
	for _, item := range items {
		for _, fact := range factsByConceptPeriod[item.ConceptID] {
			sf := copyFact(models.StatementCashFlow, item, fact, concepts)
			nullParentIfInverted(&sf, orderByConcept)
			out = append(out, sf)
			if StandardOrder["cash_and_cash_equivalents_at_the_beginning_of_the_year"] == item.DisplayOrder {
				haveBeginningRow = true
			}
		}
	}

	if !haveBeginningRow {
		var source *FactInput
		if priorYearEndingCash != nil {
			source = priorYearEndingCash
		} else if earliestInstantCash != nil {
			source = earliestInstantCash
		}
		if source != nil {
			out = append(out, models.StatementFact{
				ConceptID:    source.ConceptID,
				PeriodID:     source.PeriodID,
				Statement:    models.StatementCashFlow,
				Value:        source.Value,
				DisplayOrder: OrderBeginningCash,
				IsHeader:     false,
			})
		}
	}
	return out
}

// MaterializeEquityStatement materializes the equity roll-forward matrix:
// one row per (concept, period, equity component), applying the universal
// sign corrections, the capital-reduction exception, and synthesizing
// beginning/ending balance rows. Only annual periods are kept.
func MaterializeEquityStatement(
	items []models.StatementItem,
	factsByConceptPeriod map[int]map[int][]FactInput,
	concepts map[int]ConceptInfo,
	periods map[int]models.Period,
	beginningBalance *FactInput,
	endingBalance *FactInput,
) []models.StatementFact {
	orderByConcept := orderIndex(items)
	var out []models.StatementFact

	for _, item := range items {
		info := concepts[item.ConceptID]
		for periodID, facts := range factsByConceptPeriod[item.ConceptID] {
			period, ok := periods[periodID]
			if ok && !period.IsAnnual() {
				continue
			}
			for _, fact := range facts {
				component, hasComponent := models.EquityComponentFor(fact.Dimensions)

				sf := models.StatementFact{
					ConceptID:       item.ConceptID,
					PeriodID:        periodID,
					Statement:       models.StatementEquity,
					DisplayOrder:    item.DisplayOrder,
					IsHeader:        item.IsHeader,
					HierarchyLevel:  info.HierarchyLevel,
					ParentConceptID: info.ParentConceptID,
				}
				if hasComponent {
					c := component
					sf.EquityComponent = &c
				}
				if fact.Value != nil {
					corrected := applySignCorrection(info.NormalizedLabel, *fact.Value)
					if info.NormalizedLabel == capitalReductionLabel && !(hasComponent && component == models.EquityTreasuryShares) {
						corrected = corrected.Neg()
					}
					sf.Value = &corrected
				}
				nullParentIfInverted(&sf, orderByConcept)
				out = append(out, sf)
			}
		}
	}

	if beginningBalance != nil {
		out = append(out, models.StatementFact{
			ConceptID:    beginningBalance.ConceptID,
			PeriodID:     beginningBalance.PeriodID,
			Statement:    models.StatementEquity,
			Value:        beginningBalance.Value,
			DisplayOrder: OrderBeginningEquity,
		})
	}
	if endingBalance != nil {
		out = append(out, models.StatementFact{
			ConceptID:    endingBalance.ConceptID,
			PeriodID:     endingBalance.PeriodID,
			Statement:    models.StatementEquity,
			Value:        endingBalance.Value,
			DisplayOrder: OrderEndingEquity,
		})
	}
	return out
}

func orderIndex(items []models.StatementItem) map[int]int {
	out := make(map[int]int, len(items))
	for _, item := range items {
		out[item.ConceptID] = item.DisplayOrder
	}
	return out
}
