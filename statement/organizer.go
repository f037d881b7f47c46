// Package statement implements the Statement Organizer and the
// Statement Fact Materializer: selecting which concepts belong to
// which statement, in what order and on which side, then denormalizing the
// underlying facts into per-statement physical rows with sign corrections
// and synthetic rows applied.
package statement

import (
	"strings"

	"finsight/models"
)

// excludedRoleSubstrings are role-URI fragments that mark an item as
// disclosure/detail rather than a main statement line.
var excludedRoleSubstrings = []string{"detail", "disclosure", "reconciliation", "breakdown", "note", "table", "policy", "schedule"}

// epsOrderOffset is added to an EPS item's raw presentation order so it
// lands after net income and the synthetic "Earnings per share" header
// (display_order >= 15).
const epsOrderOffset = 15

// epsHeaderOrder is the fixed position of the synthetic EPS header.
const epsHeaderOrder = 14

// PresentationItem is the Organizer's input shape: a presentation-linkbase
// edge annotated with the concept it points to.
type PresentationItem struct {
	ConceptID       int
	NormalizedLabel string
	RoleURI         string
	OrderIndex      int
	Source          models.FactSource
	IsSynthetic     bool
	HasConsolidatedFact bool
	HasChildren     bool
}

// coreIncomeStatementWhitelist lists normalized labels that stay in
// income_statement even when reported under a combined income/comprehensive
// role. See DESIGN.md for why this boundary is a fixed list rather than a
// pattern match.
var coreIncomeStatementWhitelist = map[string]bool{
	"revenue": true, "net_income": true, "net_income_including_noncontrolling_interest": true,
	"eps_basic": true, "eps_diluted": true, "gross_profit": true, "operating_income": true,
	"cost_of_sales": true, "operating_expenses": true, "research_development": true,
	"selling_general_admin": true, "income_tax_expense": true, "income_before_tax": true,
}

// roleMatchesStatement implements the role-URI pattern table.
func roleMatchesStatement(roleURI string, stmt models.StatementType) bool {
	lower := strings.ToLower(roleURI)
	for _, excl := range excludedRoleSubstrings {
		if strings.Contains(lower, excl) {
			return false
		}
	}

	switch stmt {
	case models.StatementIncome:
		if strings.Contains(lower, "cashflow") || strings.Contains(lower, "balancesheet") ||
			strings.Contains(lower, "balance sheet") || strings.Contains(lower, "equity") || strings.Contains(lower, "/segment") {
			return false
		}
		return strings.Contains(lower, "incomestatement") || strings.Contains(lower, "incomestatementandstatementofcomprehensiveincome")
	case models.StatementBalanceSheet:
		return strings.Contains(lower, "balancesheet") || strings.Contains(lower, "statementoffinancialposition")
	case models.StatementCashFlow:
		return strings.Contains(lower, "cashflow") || strings.Contains(lower, "statementofcashflows")
	case models.StatementComprehensive:
		return strings.Contains(lower, "statementofcomprehensiveincome") || lower == ""
	case models.StatementEquity:
		return strings.Contains(lower, "equitystatement") || strings.Contains(lower, "statementofchangesinequity") || strings.Contains(lower, "changesinequity")
	default:
		return false
	}
}

// isCombinedIncomeComprehensiveRole reports whether a role URI names a
// combined income-statement-and-comprehensive-income role.
func isCombinedIncomeComprehensiveRole(roleURI string) bool {
	return strings.Contains(strings.ToLower(roleURI), "incomestatementandstatementofcomprehensiveincome")
}

// RouteStatement resolves the final statement_type for a presentation item,
// applying the OCI re-routing exception and the equity-statement
// total_equity exclusion.
func RouteStatement(item PresentationItem, declaredStatement models.StatementType) models.StatementType {
	if declaredStatement == models.StatementEquity &&
		(item.NormalizedLabel == "total_equity" || item.NormalizedLabel == "equity_total") {
		return models.StatementBalanceSheet
	}

	isOCIContent := strings.Contains(strings.ToLower(item.RoleURI), "comprehensiveincome") &&
		!isCombinedIncomeComprehensiveRole(item.RoleURI) ||
		(declaredStatement == models.StatementEquity && strings.Contains(strings.ToLower(item.RoleURI), "comprehensiveincome"))

	if isOCIContent || (isCombinedIncomeComprehensiveRole(item.RoleURI) && looksLikeOCILabel(item.NormalizedLabel)) {
		if coreIncomeStatementWhitelist[item.NormalizedLabel] {
			return models.StatementIncome
		}
		return models.StatementComprehensive
	}

	return declaredStatement
}

func looksLikeOCILabel(label string) bool {
	lower := strings.ToLower(label)
	for _, s := range []string{"comprehensive_income", "oci", "remeasurement", "exchange_differences", "cash_flow_hedge"} {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// IsMainItem implements the selection rule for XBRL-sourced items.
func IsMainItem(item PresentationItem, stmt models.StatementType) bool {
	return roleMatchesStatement(item.RoleURI, stmt)
}

// OrderFor computes the display_order for an XBRL-sourced item, applying
// the EPS offset and handing comprehensive-income/cash-flow/equity-statement
// items off to the standard canonical orderings (callers look those up via
// StandardOrder when stmt requires it).
func OrderFor(item PresentationItem, stmt models.StatementType, isEPS bool) int {
	switch stmt {
	case models.StatementComprehensive, models.StatementCashFlow, models.StatementEquity:
		// Raw order is ignored for these statements; caller must supply the
		// canonical order via StandardOrder instead. OrderFor still returns
		// a value so non-template callers have a deterministic tiebreaker.
		return item.OrderIndex
	case models.StatementIncome:
		if isEPS {
			return epsOrderOffset + item.OrderIndex
		}
		return item.OrderIndex
	default:
		return item.OrderIndex
	}
}

// TemplateOrderBase is added to a standard-template item's order so it
// always sorts after any XBRL-sourced item in the same statement.
const TemplateOrderBase = 10000

// rolePriority ranks presentation sources for the deduplication rule: when
// the same concept appears via multiple roles, the higher-priority role
// wins ("pick the best role by a fixed priority table").
var rolePriority = map[models.FactSource]int{
	models.SourceXBRL:        3,
	models.SourceDimensional: 2,
	models.SourceStandard:    1,
}

// Candidate pairs a presentation item with its computed display order, for
// the dedup pass.
type Candidate struct {
	Item  PresentationItem
	Order int
}

// Deduplicate picks one presentation item per concept when the same concept
// appears through multiple roles, preferring higher rolePriority and, for
// income_statement only, the higher XBRL order_index on ties.
func Deduplicate(stmt models.StatementType, candidates []Candidate) []Candidate {
	best := make(map[int]Candidate)
	for _, c := range candidates {
		existing, ok := best[c.Item.ConceptID]
		if !ok {
			best[c.Item.ConceptID] = c
			continue
		}
		if rolePriority[c.Item.Source] > rolePriority[existing.Item.Source] {
			best[c.Item.ConceptID] = c
			continue
		}
		if rolePriority[c.Item.Source] == rolePriority[existing.Item.Source] &&
			stmt == models.StatementIncome && c.Order > existing.Order {
			best[c.Item.ConceptID] = c
		}
	}
	out := make([]Candidate, 0, len(best))
	for _, c := range best {
		out = append(out, c)
	}
	return out
}
