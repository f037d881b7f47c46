// Package normalize implements the Normalizer: it assigns every raw
// XBRL concept a stable, cross-company normalized_label and a statement_type
// using a fixed resolution order, never failing a filing outright — unknown
// concepts fall through to a deterministic auto-fallback label.
package normalize

import (
	"strings"

	"finsight/models"
	"finsight/taxonomy"
)

// contextOverrideKey scopes a context override to a specific concept, since
// the same concept name can carry different economic meaning depending on
// which context it is reported in.
type contextOverrideKey struct {
	Concept string
	Context string
}

// contextOverrides is the small fixed table of concepts that must never
// collide with their usual mapping because their economic meaning differs
// by reporting context.
var contextOverrides = map[contextOverrideKey]string{
	{Concept: "DefinedBenefitPlanAssumptionsUsedDiscountRate", Context: "obligation"}: "pension_discount_rate_obligation",
	{Concept: "DefinedBenefitPlanAssumptionsUsedDiscountRate", Context: "cost"}:       "pension_discount_rate_cost",
	{Concept: "CurrentLiabilities", Context: ""}:                                      "current_liabilities_ifrs_variant",
	{Concept: "OtherComprehensiveIncomeLossNetOfTax", Context: "parent_only"}:         "oci_total_parent",
}

// bankDepositComponents are deposit-liability concepts that must always
// resolve to a component label, never to the aggregate current_liabilities
// label, to avoid double-counting with any reported or calculated total.
var bankDepositComponents = map[string]bool{
	"DepositsNegotiableCertificatesOfDeposit": true,
	"InterestBearingDomesticDeposit":          true,
	"NoninterestBearingDomesticDeposit":       true,
	"DepositLiabilitiesDomestic":              true,
	"DepositLiabilitiesDemand":                true,
}

// labelToStatement maps well-known normalized labels to their statement,
// used as the second-priority statement-type source.
var labelToStatement = map[string]models.StatementType{
	"revenue": models.StatementIncome, "cost_of_sales": models.StatementIncome,
	"gross_profit": models.StatementIncome, "operating_income": models.StatementIncome,
	"net_income": models.StatementIncome, "eps_basic": models.StatementIncome, "eps_diluted": models.StatementIncome,
	"total_assets": models.StatementBalanceSheet, "total_liabilities": models.StatementBalanceSheet,
	"stockholders_equity": models.StatementBalanceSheet, "current_assets": models.StatementBalanceSheet,
	"current_liabilities": models.StatementBalanceSheet, "cash_and_equivalents": models.StatementBalanceSheet,
	"operating_cash_flow": models.StatementCashFlow, "investing_cash_flow": models.StatementCashFlow,
	"financing_cash_flow": models.StatementCashFlow,
	"oci_total": models.StatementComprehensive, "total_comprehensive_income": models.StatementComprehensive,
	"balance_at_the_beginning_of_the_year_equity": models.StatementEquity,
	"balance_at_the_end_of_the_year_equity":       models.StatementEquity,
}

// statementSubstrings is the substring-inference fallback for statement
// type, tried only when neither parser metadata nor the label table decide.
var statementSubstrings = []struct {
	substr string
	stmt   models.StatementType
}{
	{"revenue", models.StatementIncome}, {"expense", models.StatementIncome}, {"income_tax", models.StatementIncome},
	{"earnings_per_share", models.StatementIncome},
	{"asset", models.StatementBalanceSheet}, {"liabilit", models.StatementBalanceSheet}, {"equity", models.StatementBalanceSheet},
	{"cash_flow", models.StatementCashFlow}, {"cashflow", models.StatementCashFlow},
	{"comprehensive_income", models.StatementComprehensive}, {"oci", models.StatementComprehensive},
}

// Result is the Normalizer's output for one concept.
type Result struct {
	NormalizedLabel string
	Source          models.NormalizationSource
	StatementType   models.StatementType
}

// Normalizer resolves raw concept names against the curated map and
// taxonomy store. It carries no mutable state of its own beyond the
// read-only taxonomy handle rather than a singleton global.
type Normalizer struct {
	store *taxonomy.Store

	// curatedLookup inverts taxonomy.CuratedMap for O(1) concept->label
	// lookup.
	curatedLookup map[string]string
}

// New builds a Normalizer over a taxonomy store. Pass a nil store to run in
// pure pattern-matching-fallback mode (no authoritative taxonomy reachable).
func New(store *taxonomy.Store) *Normalizer {
	n := &Normalizer{store: store, curatedLookup: make(map[string]string)}
	for label, concepts := range taxonomy.CuratedMap {
		for _, c := range concepts {
			n.curatedLookup[c] = label
		}
	}
	return n
}

// Normalize assigns a normalized_label to one (taxonomy, concept) pair.
// contextHint is an optional disambiguator for step 1 (e.g. "obligation",
// "cost", "parent_only"); pass "" when none applies. siblingAccepted reports
// whether a child concept accepted by the same curated entry as concept is
// also present in this company's fact set, which suppresses mapping a
// taxonomy-parent concept per the step-2 exception rule.
func (n *Normalizer) Normalize(taxonomyName, concept, contextHint string, siblingAccepted bool) Result {
	// Step 1: context-specific overrides.
	if label, ok := contextOverrides[contextOverrideKey{Concept: concept, Context: contextHint}]; ok {
		return Result{NormalizedLabel: label, Source: models.SourceContextOverride}
	}

	// Step 2: curated explicit map, with the parent/child double-count guard.
	if label, ok := n.curatedLookup[concept]; ok {
		if siblingAccepted && n.store != nil && n.isParentOf(taxonomyName, concept, label) {
			// Fall through: concept is a parent whose accepted child is also
			// present, so the parent must not collapse onto the same label.
		} else {
			return Result{NormalizedLabel: label, Source: models.SourceCuratedMap}
		}
	}

	// Step 3: child-of-taxonomy rule.
	if n.store != nil && n.store.IsChild(taxonomyName, concept) {
		parent, _ := n.store.ParentOf(taxonomyName, concept)
		parentLabel := n.resolveParentLabelForComparison(taxonomyName, parent)
		childLabel := SnakeCase(concept)
		if childLabel == parentLabel {
			childLabel += "_component"
		}
		return Result{NormalizedLabel: childLabel, Source: models.SourceTaxonomyChild}
	}

	// Step 4: bank-specific component hints.
	if bankDepositComponents[concept] {
		return Result{NormalizedLabel: SnakeCase(concept) + "_component", Source: models.SourceBankHint}
	}

	// Step 5: deterministic auto-fallback.
	return Result{NormalizedLabel: AutoFallbackLabel(concept), Source: models.SourceAutoFallback}
}

// CuratedLabelFor returns the label concept would receive from the curated
// map, if any, without running the rest of the resolution order. Callers use
// this to compute, per filing, which concepts would collide on the same
// curated label before calling Normalize — the input siblingAccepted needs.
func (n *Normalizer) CuratedLabelFor(concept string) (string, bool) {
	label, ok := n.curatedLookup[concept]
	return label, ok
}

// isParentOf reports whether concept is itself a calculation-linkbase parent
// whose accepted label matches label (used by the step-2 exception).
func (n *Normalizer) isParentOf(taxonomyName, concept, label string) bool {
	children := n.store.ChildrenOf(taxonomyName, concept)
	if len(children) == 0 {
		return false
	}
	for _, c := range children {
		if n.curatedLookup[c] == label {
			return true
		}
	}
	return false
}

// resolveParentLabelForComparison best-effort-resolves what label the
// parent concept would itself carry, for the "_component" disambiguation
// suffix in step 3. Falls back to snake_case when the parent has no curated
// mapping of its own.
func (n *Normalizer) resolveParentLabelForComparison(taxonomyName, parent string) string {
	if label, ok := n.curatedLookup[parent]; ok {
		return label
	}
	return SnakeCase(parent)
}

// AssignStatementType implements the statement-type resolution order:
// parser-supplied metadata first, then the label table, then substring
// inference.
func AssignStatementType(parserHint *string, normalizedLabel string) models.StatementType {
	if parserHint != nil && *parserHint != "" {
		if st := models.StatementType(*parserHint); isKnownStatement(st) {
			return st
		}
	}
	if st, ok := labelToStatement[normalizedLabel]; ok {
		return st
	}
	lower := strings.ToLower(normalizedLabel)
	for _, rule := range statementSubstrings {
		if strings.Contains(lower, rule.substr) {
			return rule.stmt
		}
	}
	return models.StatementOther
}

func isKnownStatement(st models.StatementType) bool {
	switch st {
	case models.StatementIncome, models.StatementBalanceSheet, models.StatementCashFlow,
		models.StatementComprehensive, models.StatementEquity, models.StatementOther:
		return true
	default:
		return false
	}
}
