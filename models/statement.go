package models

import "github.com/shopspring/decimal"

// BalanceSheetSide is the side a balance-sheet statement item/fact sits on.
type BalanceSheetSide string

const (
	SideAssets            BalanceSheetSide = "assets"
	SideLiabilitiesEquity BalanceSheetSide = "liabilities_equity"
)

// StatementItem is the rel_statement_items row: the curated, ordered,
// annotated presentation layer produced by the Statement Organizer.
type StatementItem struct {
	ID          int              `db:"id"`
	FilingID    int              `db:"filing_id"`
	ConceptID   int              `db:"concept_id"`
	Statement   StatementType    `db:"statement_type"`
	DisplayOrder int             `db:"display_order"`
	IsHeader    bool             `db:"is_header"`
	IsMainItem  bool             `db:"is_main_item"`
	RoleURI     *string          `db:"role_uri"`
	Source      FactSource       `db:"source"`
	Side        *BalanceSheetSide `db:"side"`
}

// StatementFact is one denormalized row of a per-statement fact table
// (fact_income_statement, fact_balance_sheet, fact_cash_flow,
// fact_comprehensive_income, fact_equity_statement) produced by the
// Statement Fact Materializer. The statement-specific columns (Side,
// EquityComponent) are populated only for the relevant statement type.
type StatementFact struct {
	ID              int64            `db:"id"`
	FilingID        int              `db:"filing_id"`
	ConceptID       int              `db:"concept_id"`
	PeriodID        int              `db:"period_id"`
	Statement       StatementType    `db:"statement_type"`
	Value           *decimal.Decimal `db:"value_numeric"`
	UnitMeasure     *string          `db:"unit_measure"`
	DisplayOrder    int              `db:"display_order"`
	IsHeader        bool             `db:"is_header"`
	HierarchyLevel  *HierarchyLevel  `db:"hierarchy_level"`
	ParentConceptID *int             `db:"parent_concept_id"`

	// Side is populated only for StatementBalanceSheet rows.
	Side *BalanceSheetSide `db:"side"`

	// EquityComponent is populated only for StatementEquity rows; nil means
	// the total row for (ConceptID, PeriodID).
	EquityComponent *EquityComponent `db:"equity_component"`
}

// StatementFactKey is the upsert key: one component adds EquityComponent to
// the base (FilingID, ConceptID, PeriodID) key.
type StatementFactKey struct {
	FilingID        int
	ConceptID       int
	PeriodID        int
	EquityComponent *EquityComponent
}

func (f StatementFact) Key() StatementFactKey {
	return StatementFactKey{
		FilingID:        f.FilingID,
		ConceptID:       f.ConceptID,
		PeriodID:        f.PeriodID,
		EquityComponent: f.EquityComponent,
	}
}
