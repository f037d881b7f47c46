package database

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"finsight/models"
)

// factBatchSize is the chunk size UpsertFactBatch walks a filing's facts in;
// each fact is still written by its own upsert statement.
const factBatchSize = 500

// Loader implements the Warehouse Loader: it turns a parsed RawFiling and the
// Normalizer's resolved concepts into dim_/fact_/rel_ rows inside a single
// transaction envelope per filing.
type Loader struct {
	tx *sqlx.Tx
}

// NewLoader wraps an open transaction. The caller owns commit/rollback.
func NewLoader(tx *sqlx.Tx) *Loader {
	return &Loader{tx: tx}
}

// GetOrCreateCompany resolves a company by ticker, creating it if absent.
// An existing company's accounting standard is upgraded (never downgraded)
// when a filing under a stronger standard arrives, e.g. a 20-F/ESEF filing
// against a company that was previously seen only under US-GAAP.
func (l *Loader) GetOrCreateCompany(ticker, displayName string, standard models.AccountingStandard) (int, error) {
	var id int
	err := l.tx.Get(&id, `SELECT id FROM dim_companies WHERE ticker = $1`, ticker)
	if err == nil {
		if standard == models.StandardIFRS {
			if _, err := l.tx.Exec(
				`UPDATE dim_companies SET accounting_standard = $1, updated_at = NOW()
				 WHERE id = $2 AND accounting_standard <> $1`, standard, id,
			); err != nil {
				return 0, fmt.Errorf("failed to upgrade company standard: %w", err)
			}
		}
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to look up company %s: %w", ticker, err)
	}

	err = l.tx.Get(&id, `
		INSERT INTO dim_companies (ticker, display_name, accounting_standard)
		VALUES ($1, $2, $3)
		ON CONFLICT (ticker) DO UPDATE SET display_name = EXCLUDED.display_name
		RETURNING id
	`, ticker, displayName, standard)
	if err != nil {
		return 0, fmt.Errorf("failed to create company %s: %w", ticker, err)
	}
	return id, nil
}

// UpsertConcept inserts or updates a dim_concepts row, enforcing the
// never-downgrade rule on NormalizedLabel/StatementType/HierarchyLevel: an
// incoming write only overwrites those fields when its NormalizationSource
// outranks the row's current source.
func (l *Loader) UpsertConcept(c *models.Concept) (int, error) {
	var existing models.Concept
	err := l.tx.Get(&existing, `
		SELECT id, normalized_label, normalization_source, statement_type, hierarchy_level
		FROM dim_concepts WHERE taxonomy = $1 AND concept_name = $2
	`, c.Taxonomy, c.ConceptName)

	if err == sql.ErrNoRows {
		var id int
		err = l.tx.Get(&id, `
			INSERT INTO dim_concepts (
				taxonomy, concept_name, normalized_label, preferred_label, concept_type,
				balance_type, period_type, data_type, is_abstract, statement_type,
				parent_concept_id, calculation_weight, hierarchy_level, normalization_source
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
			ON CONFLICT (taxonomy, concept_name) DO UPDATE SET concept_name = EXCLUDED.concept_name
			RETURNING id
		`, c.Taxonomy, c.ConceptName, c.NormalizedLabel, c.PreferredLabel, c.ConceptType,
			c.BalanceType, c.PeriodType, c.DataType, c.IsAbstract, c.StatementType,
			c.ParentConceptID, c.CalculationWeight, c.HierarchyLevel, c.NormalizationSource)
		if err != nil {
			return 0, fmt.Errorf("failed to insert concept %s/%s: %w", c.Taxonomy, c.ConceptName, err)
		}
		c.ID = id
		return id, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up concept %s/%s: %w", c.Taxonomy, c.ConceptName, err)
	}

	c.ID = existing.ID
	if !c.NormalizationSource.Outranks(existing.NormalizationSource) {
		// Incoming source is weaker than what's already recorded: keep the
		// existing label/statement/hierarchy, but still refresh the
		// structural taxonomy metadata (type/balance/period/data type,
		// abstract flag, parent, weight), which is not subject to the
		// idempotence rule.
		_, err = l.tx.Exec(`
			UPDATE dim_concepts SET
				preferred_label = $1, concept_type = $2, balance_type = $3, period_type = $4,
				data_type = $5, is_abstract = $6, parent_concept_id = $7, calculation_weight = $8
			WHERE id = $9
		`, c.PreferredLabel, c.ConceptType, c.BalanceType, c.PeriodType,
			c.DataType, c.IsAbstract, c.ParentConceptID, c.CalculationWeight, c.ID)
		if err != nil {
			return 0, fmt.Errorf("failed to refresh concept %s/%s: %w", c.Taxonomy, c.ConceptName, err)
		}
		return c.ID, nil
	}

	_, err = l.tx.Exec(`
		UPDATE dim_concepts SET
			normalized_label = $1, preferred_label = $2, concept_type = $3, balance_type = $4,
			period_type = $5, data_type = $6, is_abstract = $7, statement_type = $8,
			parent_concept_id = $9, calculation_weight = $10, hierarchy_level = $11,
			normalization_source = $12
		WHERE id = $13
	`, c.NormalizedLabel, c.PreferredLabel, c.ConceptType, c.BalanceType,
		c.PeriodType, c.DataType, c.IsAbstract, c.StatementType,
		c.ParentConceptID, c.CalculationWeight, c.HierarchyLevel, c.NormalizationSource, c.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to update concept %s/%s: %w", c.Taxonomy, c.ConceptName, err)
	}
	return c.ID, nil
}

// GetOrCreatePeriod resolves a dim_time_periods row by its natural key.
func (l *Loader) GetOrCreatePeriod(p *models.Period) (int, error) {
	var id int
	err := l.tx.Get(&id, `
		INSERT INTO dim_time_periods (period_type, start_date, end_date, instant_date, fiscal_year, fiscal_quarter)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (period_type, start_date, end_date, instant_date)
		DO UPDATE SET fiscal_year = EXCLUDED.fiscal_year, fiscal_quarter = EXCLUDED.fiscal_quarter
		RETURNING id
	`, p.Type, p.StartDate, p.EndDate, p.InstantDate, p.FiscalYear, p.FiscalQuarter)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve period: %w", err)
	}
	p.ID = id
	return id, nil
}

// GetOrCreateFiling resolves the dim_filings row keyed on (company, filing
// type, fiscal year end), refreshing the source URL on re-ingest.
func (l *Loader) GetOrCreateFiling(f *models.Filing) (int, error) {
	var id int
	err := l.tx.Get(&id, `
		INSERT INTO dim_filings (company_id, filing_type, fiscal_year_end, source_url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (company_id, filing_type, fiscal_year_end)
		DO UPDATE SET source_url = EXCLUDED.source_url, updated_at = NOW()
		RETURNING id
	`, f.CompanyID, f.FilingType, f.FiscalYearEnd, f.SourceURL)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve filing: %w", err)
	}
	f.ID = id
	return id, nil
}

// UpdateFilingScores records the post-pipeline validation/completeness
// scores onto dim_filings.
func (l *Loader) UpdateFilingScores(filingID int, validationScore, completenessScore float64) error {
	_, err := l.tx.Exec(`
		UPDATE dim_filings SET validation_score = $1, completeness_score = $2, updated_at = NOW()
		WHERE id = $3
	`, validationScore, completenessScore, filingID)
	if err != nil {
		return fmt.Errorf("failed to update filing scores: %w", err)
	}
	return nil
}

// GetOrCreateDimension resolves a dim_xbrl_dimensions row for a set of
// axis/member pairs, returning (nil, nil) for an undimensioned fact.
func (l *Loader) GetOrCreateDimension(axes models.AxisMembers) (*int, error) {
	if len(axes) == 0 {
		return nil, nil
	}
	canonicalJSON, hash, err := models.CanonicalizeDimensions(axes)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize dimensions: %w", err)
	}
	axis, member := models.PrimaryAxisMember(axes)

	var id int
	err = l.tx.Get(&id, `
		INSERT INTO dim_xbrl_dimensions (dimension_json, dimension_hash, primary_axis, primary_member)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (dimension_hash) DO UPDATE SET dimension_hash = EXCLUDED.dimension_hash
		RETURNING id
	`, canonicalJSON, hash, axis, member)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve dimension set: %w", err)
	}
	return &id, nil
}

// UpsertFact writes a fact_financial_metrics row keyed on (filing, concept,
// period, dimension).
func (l *Loader) UpsertFact(f *models.Fact) error {
	var id int64
	err := l.tx.Get(&id, `
		INSERT INTO fact_financial_metrics (
			company_id, concept_id, period_id, filing_id, dimension_id, value_numeric,
			value_text, unit_measure, decimals, scale, xbrl_format, context_id,
			fact_id_xbrl, source_line, order_index, is_primary, is_calculated, source
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		ON CONFLICT (filing_id, concept_id, period_id, dimension_id) DO UPDATE SET
			value_numeric = EXCLUDED.value_numeric,
			value_text = EXCLUDED.value_text,
			unit_measure = EXCLUDED.unit_measure,
			decimals = EXCLUDED.decimals,
			scale = EXCLUDED.scale,
			xbrl_format = EXCLUDED.xbrl_format,
			context_id = EXCLUDED.context_id,
			fact_id_xbrl = EXCLUDED.fact_id_xbrl,
			source_line = EXCLUDED.source_line,
			order_index = EXCLUDED.order_index,
			is_primary = EXCLUDED.is_primary,
			is_calculated = EXCLUDED.is_calculated,
			source = EXCLUDED.source
		RETURNING id
	`, f.CompanyID, f.ConceptID, f.PeriodID, f.FilingID, f.DimensionID, f.ValueNumeric,
		f.ValueText, f.UnitMeasure, f.Decimals, f.Scale, f.XBRLFormat, f.ContextID,
		f.FactIDXBRL, f.SourceLine, f.OrderIndex, f.IsPrimary, f.IsCalculated, f.Source)
	if err != nil {
		return fmt.Errorf("failed to upsert fact (concept=%d period=%d): %w", f.ConceptID, f.PeriodID, err)
	}
	f.ID = id
	return nil
}

// UpsertFactBatch writes facts in chunks of factBatchSize, one UpsertFact
// statement per fact. Nothing is committed between chunks: the caller's
// surrounding transaction governs atomicity.
func (l *Loader) UpsertFactBatch(facts []*models.Fact) error {
	for i := 0; i < len(facts); i += factBatchSize {
		end := i + factBatchSize
		if end > len(facts) {
			end = len(facts)
		}
		for _, f := range facts[i:end] {
			if err := l.UpsertFact(f); err != nil {
				return err
			}
		}
	}
	return nil
}

// UpsertCalculationRelationship writes a rel_calculation_hierarchy edge.
func (l *Loader) UpsertCalculationRelationship(r *models.CalculationRelationship) error {
	var id int
	err := l.tx.Get(&id, `
		INSERT INTO rel_calculation_hierarchy (
			filing_id, parent_concept_id, child_concept_id, weight, order_index,
			arcrole, priority, source, is_synthetic, confidence
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (filing_id, parent_concept_id, child_concept_id) DO UPDATE SET
			weight = EXCLUDED.weight,
			order_index = EXCLUDED.order_index,
			arcrole = EXCLUDED.arcrole,
			priority = EXCLUDED.priority,
			source = EXCLUDED.source,
			is_synthetic = EXCLUDED.is_synthetic,
			confidence = EXCLUDED.confidence
		RETURNING id
	`, r.FilingID, r.ParentConceptID, r.ChildConceptID, r.Weight, r.OrderIndex,
		r.Arcrole, r.Priority, r.Source, r.IsSynthetic, r.Confidence)
	if err != nil {
		return fmt.Errorf("failed to upsert calculation relationship: %w", err)
	}
	r.ID = id
	return nil
}

// InsertPresentationRelationship writes a rel_presentation_hierarchy row.
// Presentation edges are not deduplicated on a natural key because a child
// concept may legitimately appear under multiple role URIs within a filing.
func (l *Loader) InsertPresentationRelationship(r *models.PresentationRelationship) error {
	var id int
	err := l.tx.Get(&id, `
		INSERT INTO rel_presentation_hierarchy (
			filing_id, parent_concept_id, child_concept_id, order_index, preferred_label,
			statement_type, role_uri, arcrole, priority, source, is_synthetic
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING id
	`, r.FilingID, r.ParentConceptID, r.ChildConceptID, r.OrderIndex, r.PreferredLabel,
		r.StatementType, r.RoleURI, r.Arcrole, r.Priority, r.Source, r.IsSynthetic)
	if err != nil {
		return fmt.Errorf("failed to insert presentation relationship: %w", err)
	}
	r.ID = id
	return nil
}

// InsertFootnote stores an opaque footnote payload.
func (l *Loader) InsertFootnote(filingID, conceptID int, payload string) error {
	_, err := l.tx.Exec(`
		INSERT INTO rel_footnote_references (filing_id, concept_id, payload) VALUES ($1, $2, $3)
	`, filingID, conceptID, payload)
	if err != nil {
		return fmt.Errorf("failed to insert footnote: %w", err)
	}
	return nil
}

// ClearRelationshipsForFiling removes a filing's previously-loaded
// relationship and statement rows before a re-ingest, so a second pass over
// the same filing doesn't leave stale edges from a dropped concept.
func (l *Loader) ClearRelationshipsForFiling(filingID int) error {
	tables := []string{
		"rel_calculation_hierarchy",
		"rel_presentation_hierarchy",
		"rel_footnote_references",
		"rel_statement_items",
	}
	for _, t := range tables {
		if _, err := l.tx.Exec(fmt.Sprintf(`DELETE FROM %s WHERE filing_id = $1`, t), filingID); err != nil {
			return fmt.Errorf("failed to clear %s for filing %d: %w", t, filingID, err)
		}
	}
	return nil
}

// InsertStatementItem writes a rel_statement_items row produced by the
// Statement Organizer.
func (l *Loader) InsertStatementItem(item *models.StatementItem) error {
	var id int
	err := l.tx.Get(&id, `
		INSERT INTO rel_statement_items (
			filing_id, concept_id, statement_type, display_order, is_header,
			is_main_item, role_uri, source, side
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (filing_id, concept_id, statement_type) DO UPDATE SET
			display_order = EXCLUDED.display_order,
			is_header = EXCLUDED.is_header,
			is_main_item = EXCLUDED.is_main_item,
			role_uri = EXCLUDED.role_uri,
			source = EXCLUDED.source,
			side = EXCLUDED.side
		RETURNING id
	`, item.FilingID, item.ConceptID, item.Statement, item.DisplayOrder, item.IsHeader,
		item.IsMainItem, item.RoleURI, item.Source, item.Side)
	if err != nil {
		return fmt.Errorf("failed to insert statement item: %w", err)
	}
	item.ID = id
	return nil
}

// statementFactTable maps a StatementType to its denormalized fact table
// name, the destination the Statement Fact Materializer writes to.
var statementFactTable = map[models.StatementType]string{
	models.StatementIncome:        "fact_income_statement",
	models.StatementBalanceSheet:  "fact_balance_sheet",
	models.StatementCashFlow:      "fact_cash_flow",
	models.StatementComprehensive: "fact_comprehensive_income",
	models.StatementEquity:        "fact_equity_statement",
}

// UpsertStatementFact writes one row of a per-statement fact table. The
// optional Side and EquityComponent columns only exist on
// fact_balance_sheet and fact_equity_statement respectively; callers must
// pass a StatementFact whose Statement field matches the table they intend.
func (l *Loader) UpsertStatementFact(sf *models.StatementFact) error {
	table, ok := statementFactTable[sf.Statement]
	if !ok {
		return fmt.Errorf("no fact table for statement type %q", sf.Statement)
	}

	switch sf.Statement {
	case models.StatementBalanceSheet:
		_, err := l.tx.Exec(fmt.Sprintf(`
			INSERT INTO %s (
				filing_id, concept_id, period_id, value_numeric, unit_measure,
				display_order, is_header, hierarchy_level, parent_concept_id, side
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
			ON CONFLICT (filing_id, concept_id, period_id) DO UPDATE SET
				value_numeric = EXCLUDED.value_numeric,
				unit_measure = EXCLUDED.unit_measure,
				display_order = EXCLUDED.display_order,
				is_header = EXCLUDED.is_header,
				hierarchy_level = EXCLUDED.hierarchy_level,
				parent_concept_id = EXCLUDED.parent_concept_id,
				side = EXCLUDED.side
		`, table), sf.FilingID, sf.ConceptID, sf.PeriodID, sf.Value, sf.UnitMeasure,
			sf.DisplayOrder, sf.IsHeader, sf.HierarchyLevel, sf.ParentConceptID, sf.Side)
		if err != nil {
			return fmt.Errorf("failed to upsert %s row: %w", table, err)
		}
	case models.StatementEquity:
		_, err := l.tx.Exec(fmt.Sprintf(`
			INSERT INTO %s (
				filing_id, concept_id, period_id, value_numeric, unit_measure,
				display_order, is_header, hierarchy_level, parent_concept_id, equity_component
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
			ON CONFLICT (filing_id, concept_id, period_id, equity_component) DO UPDATE SET
				value_numeric = EXCLUDED.value_numeric,
				unit_measure = EXCLUDED.unit_measure,
				display_order = EXCLUDED.display_order,
				is_header = EXCLUDED.is_header,
				hierarchy_level = EXCLUDED.hierarchy_level,
				parent_concept_id = EXCLUDED.parent_concept_id
		`, table), sf.FilingID, sf.ConceptID, sf.PeriodID, sf.Value, sf.UnitMeasure,
			sf.DisplayOrder, sf.IsHeader, sf.HierarchyLevel, sf.ParentConceptID, sf.EquityComponent)
		if err != nil {
			return fmt.Errorf("failed to upsert %s row: %w", table, err)
		}
	default:
		_, err := l.tx.Exec(fmt.Sprintf(`
			INSERT INTO %s (
				filing_id, concept_id, period_id, value_numeric, unit_measure,
				display_order, is_header, hierarchy_level, parent_concept_id
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
			ON CONFLICT (filing_id, concept_id, period_id) DO UPDATE SET
				value_numeric = EXCLUDED.value_numeric,
				unit_measure = EXCLUDED.unit_measure,
				display_order = EXCLUDED.display_order,
				is_header = EXCLUDED.is_header,
				hierarchy_level = EXCLUDED.hierarchy_level,
				parent_concept_id = EXCLUDED.parent_concept_id
		`, table), sf.FilingID, sf.ConceptID, sf.PeriodID, sf.Value, sf.UnitMeasure,
			sf.DisplayOrder, sf.IsHeader, sf.HierarchyLevel, sf.ParentConceptID)
		if err != nil {
			return fmt.Errorf("failed to upsert %s row: %w", table, err)
		}
	}
	return nil
}

// ClearStatementFactsForFiling deletes every per-statement fact table row
// for a filing, the idempotent-reinsert half of the Statement Fact
// Materializer: a re-ingest recomputes synthesized rows (headers,
// beginning/ending balances) from scratch rather than trying to patch them.
func (l *Loader) ClearStatementFactsForFiling(filingID int) error {
	for _, table := range statementFactTable {
		if _, err := l.tx.Exec(fmt.Sprintf(`DELETE FROM %s WHERE filing_id = $1`, table), filingID); err != nil {
			return fmt.Errorf("failed to clear %s for filing %d: %w", table, filingID, err)
		}
	}
	return nil
}

// PriorPeriodFact finds the most recent instant fact for a concept reported
// by companyID in a fiscal year strictly before beforeFiscalYear — the
// cross-filing lookup the Statement Fact Materializer uses to synthesize a
// cash-flow statement's beginning-of-year cash row, or an equity statement's
// beginning balance, from the prior year's filing instead of inventing one.
func (l *Loader) PriorPeriodFact(companyID, conceptID, beforeFiscalYear int) (*models.Fact, bool, error) {
	var f models.Fact
	err := l.tx.Get(&f, `
		SELECT f.* FROM fact_financial_metrics f
		JOIN dim_time_periods p ON p.id = f.period_id
		WHERE f.company_id = $1 AND f.concept_id = $2
		  AND p.period_type = 'instant' AND p.fiscal_year < $3
		ORDER BY p.instant_date DESC
		LIMIT 1
	`, companyID, conceptID, beforeFiscalYear)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up prior-period fact: %w", err)
	}
	return &f, true, nil
}

// AccountingIdentityCheck is the pre-commit Assets = Liabilities + Equity
// check. It reads back the balance-sheet facts just written
// for a period and compares the two sides within a 1% relative tolerance
// (or $1 absolute, whichever is looser, to avoid false positives from
// rounding on near-zero balance sheets).
type AccountingIdentityCheck struct {
	Assets            float64
	LiabilitiesEquity float64
	DeviationPct      float64
	Within1Percent    bool
}

// CheckAccountingIdentity compares the totals tagged as the statement-total
// concepts on each balance-sheet side for a given filing/period.
func (l *Loader) CheckAccountingIdentity(filingID, periodID int) (*AccountingIdentityCheck, error) {
	var assets, liabEquity sql.NullFloat64
	err := l.tx.Get(&assets, `
		SELECT COALESCE(SUM(value_numeric), 0) FROM fact_balance_sheet
		WHERE filing_id = $1 AND period_id = $2 AND side = 'assets' AND hierarchy_level = 4
	`, filingID, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum assets: %w", err)
	}
	err = l.tx.Get(&liabEquity, `
		SELECT COALESCE(SUM(value_numeric), 0) FROM fact_balance_sheet
		WHERE filing_id = $1 AND period_id = $2 AND side = 'liabilities_equity' AND hierarchy_level = 4
	`, filingID, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum liabilities+equity: %w", err)
	}

	a, le := assets.Float64, liabEquity.Float64
	diff := a - le
	if diff < 0 {
		diff = -diff
	}
	denom := a
	if denom == 0 {
		denom = le
	}
	var pct float64
	if denom != 0 {
		pct = diff / denom
	}

	return &AccountingIdentityCheck{
		Assets:            a,
		LiabilitiesEquity: le,
		DeviationPct:      pct,
		Within1Percent:    pct <= 0.01 || diff <= 1.0,
	}, nil
}

// WithTransaction runs fn inside a new transaction against db, committing on
// success and rolling back on error or panic. This is the one-transaction-
// per-filing envelope the pipeline uses to drive the Loader.
func WithTransaction(db *sqlx.DB, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback() //nolint:errcheck
			panic(p)
		}
		if err != nil {
			tx.Rollback() //nolint:errcheck
			return
		}
		err = tx.Commit()
	}()

	err = fn(tx)
	return err
}
