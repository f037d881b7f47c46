// Package pipeline wires the Fact Staging, Normalizer, Warehouse Loader,
// Hierarchy Classifier, Calculated-Totals Engine, Statement Organizer, and
// Statement Fact Materializer into the bounded worker pool that processes a
// batch of filings: one transaction per filing, stages strictly
// ordered within a filing, filings independent across workers — the same
// semaphore-bounded fan-out shape backend/services/financials.go uses to
// backfill many tickers against Polygon.
package pipeline

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"finsight/archive"
	"finsight/cache"
	"finsight/config"
	"finsight/database"
	"finsight/hierarchy"
	"finsight/models"
	"finsight/normalize"
	"finsight/notify"
	"finsight/staging"
	"finsight/statement"
	"finsight/taxonomy"
	"finsight/totals"
	"finsight/validator"
)

// Pipeline holds every dependency a filing needs to move from raw bytes to
// fully materialized statements. Optional dependencies (Cache, Archive,
// Notifier) are nil-safe; the pipeline degrades gracefully without them,
// treating all three as best-effort ancillary infrastructure.
type Pipeline struct {
	DB         *sqlx.DB
	Cfg        *config.Config
	Store      *taxonomy.Store
	Normalizer *normalize.Normalizer
	Cache      *cache.Cache
	Archive    *archive.Archive
	Notifier   *notify.Notifier
}

// New builds a Pipeline from a connection pool and a loaded taxonomy store.
func New(db *sqlx.DB, cfg *config.Config, store *taxonomy.Store) *Pipeline {
	return &Pipeline{DB: db, Cfg: cfg, Store: store, Normalizer: normalize.New(store)}
}

// FilingResult is one filing's outcome, returned to the caller for logging
// or re-queueing decisions.
type FilingResult struct {
	Ticker     string
	FilingType string
	Score      float64
	Err        error
}

// RunBatch processes filings across a bounded worker pool sized to
// cfg.WorkerCount. Filings are independent; each gets its own transaction.
func (p *Pipeline) RunBatch(ctx context.Context, raws []*models.RawFiling) []FilingResult {
	results := make([]FilingResult, len(raws))
	var wg sync.WaitGroup
	sem := make(chan struct{}, p.Cfg.WorkerCount)

	for i, raw := range raws {
		wg.Add(1)
		go func(i int, raw *models.RawFiling) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			score, err := p.ProcessFiling(ctx, raw)
			results[i] = FilingResult{Ticker: raw.Company, FilingType: raw.FilingType, Score: score, Err: err}
			if err != nil {
				log.Printf("filing %s/%s failed: %v", raw.Company, raw.FilingType, err)
			}
		}(i, raw)
	}
	wg.Wait()
	return results
}

// ParseAndArchive runs Fact Staging on a raw payload and, if an Archive is
// configured, stores the raw bytes regardless of validation outcome.
func (p *Pipeline) ParseAndArchive(ctx context.Context, ticker, filingType string, raw []byte) (*models.RawFiling, error) {
	if p.Archive != nil {
		if _, err := p.Archive.StoreRawFiling(ctx, ticker, filingType, raw); err != nil {
			log.Printf("archive upload failed for %s/%s: %v", ticker, filingType, err)
		}
	}
	return staging.Parse(raw)
}

// ProcessFiling runs stages 3-8 against one filing inside a single
// transaction and returns its validation score.
func (p *Pipeline) ProcessFiling(ctx context.Context, raw *models.RawFiling) (float64, error) {
	var score float64
	err := database.WithTransaction(p.DB, func(tx *sqlx.Tx) error {
		loader := database.NewLoader(tx)

		companyID, err := loader.GetOrCreateCompany(raw.Company, raw.Metadata.CompanyName, standardFor(raw.Metadata.Taxonomy))
		if err != nil {
			return err
		}

		filingID, err := loader.GetOrCreateFiling(&models.Filing{
			CompanyID:  companyID,
			FilingType: raw.FilingType,
			SourceURL:  raw.Metadata.SourceURL,
		})
		if err != nil {
			return err
		}

		if err := loader.ClearRelationshipsForFiling(filingID); err != nil {
			return err
		}
		if err := loader.ClearStatementFactsForFiling(filingID); err != nil {
			return err
		}

		load, err := p.loadConceptsAndFacts(loader, raw, companyID, filingID)
		if err != nil {
			return err
		}

		if err := p.loadRelationships(loader, raw, filingID, load.conceptIDs); err != nil {
			return err
		}

		hierarchyLevels := p.classifyHierarchy(raw, load.conceptIDs)
		synthesized := p.computeMissingTotals(load.facts, load.conceptLabels)
		if len(synthesized) > 0 {
			if err := loader.UpsertFactBatch(synthesized); err != nil {
				return err
			}
			load.facts = append(load.facts, synthesized...)
		}

		report := validator.ValidateRawFacts(toNormalizedValues(load.facts, load.conceptLabels))
		if report.HasErrors() && p.Notifier != nil {
			var msgs []string
			for _, f := range report.Findings {
				if f.Severity == models.SeverityError {
					msgs = append(msgs, f.Message)
				}
			}
			_ = p.Notifier.PublishValidationFailure(ctx, notify.ValidationAlert{
				Ticker: raw.Company, FilingType: raw.FilingType, Score: report.Score(), Errors: msgs,
			})
		}

		if err := p.organizeAndMaterialize(loader, raw, companyID, filingID, load, hierarchyLevels); err != nil {
			return err
		}

		score = report.Score()
		completeness := completenessScore(load.facts)
		return loader.UpdateFilingScores(filingID, score, completeness)
	})
	return score, err
}

func standardFor(tax string) models.AccountingStandard {
	if tax == "ifrs-full" || tax == "esef" {
		return models.StandardIFRS
	}
	return models.StandardUSGAAP
}

// filingLoadResult bundles every lookup the later pipeline stages need once
// a filing's concepts and facts have been staged into the warehouse.
type filingLoadResult struct {
	conceptIDs    map[string]int
	conceptLabels map[int]string
	periodIDs     map[string]int
	periods       map[int]models.Period
	dimensionAxes map[int]models.AxisMembers
	facts         []*models.Fact
}

// loadConceptsAndFacts normalizes and upserts every concept and fact in the
// filing, returning lookup maps keyed by raw concept name and the resolved
// ids needed by later stages, plus a conceptID->normalized_label index for
// the Calculated-Totals Engine.
func (p *Pipeline) loadConceptsAndFacts(loader *database.Loader, raw *models.RawFiling, companyID, filingID int) (*filingLoadResult, error) {
	load := &filingLoadResult{
		conceptIDs:    make(map[string]int),
		conceptLabels: make(map[int]string),
		periodIDs:     make(map[string]int),
		periods:       make(map[int]models.Period),
		dimensionAxes: make(map[int]models.AxisMembers),
	}

	siblingAccepted := p.curatedSiblingConcepts(raw.Facts)

	for _, rf := range raw.Facts {
		contextHint := contextHintFor(rf)
		result := p.resolveNormalization(raw.Metadata.Taxonomy, rf, contextHint, siblingAccepted[rf.Concept])

		concept := &models.Concept{
			Taxonomy:            raw.Metadata.Taxonomy,
			ConceptName:         rf.Concept,
			NormalizedLabel:     result.NormalizedLabel,
			StatementType:       result.StatementType,
			NormalizationSource: result.Source,
		}
		if rf.ConceptType != nil {
			concept.ConceptType = *rf.ConceptType
		}
		if rf.ConceptBalance != nil {
			concept.BalanceType = *rf.ConceptBalance
		}
		if rf.ConceptPeriodType != nil {
			concept.PeriodType = *rf.ConceptPeriodType
		}
		if rf.ConceptAbstract != nil {
			concept.IsAbstract = *rf.ConceptAbstract
		}

		conceptID, ok := load.conceptIDs[rf.Concept]
		if !ok {
			id, err := loader.UpsertConcept(concept)
			if err != nil {
				return nil, err
			}
			conceptID = id
			load.conceptIDs[rf.Concept] = conceptID
			load.conceptLabels[conceptID] = result.NormalizedLabel
		}

		periodKey := rf.PeriodType + "|" + stringVal(rf.PeriodStart) + "|" + stringVal(rf.PeriodEnd) + "|" + stringVal(rf.InstantDate)
		periodID, ok := load.periodIDs[periodKey]
		if !ok {
			period := buildPeriod(rf, raw.Year)
			id, err := loader.GetOrCreatePeriod(period)
			if err != nil {
				return nil, err
			}
			periodID = id
			load.periodIDs[periodKey] = periodID
			load.periods[periodID] = *period
		}

		var axes models.AxisMembers
		if len(rf.Dimensions) > 0 {
			axes = make(models.AxisMembers, len(rf.Dimensions))
			for axis, member := range rf.Dimensions {
				for _, m := range member {
					axes[axis] = m
				}
			}
		}
		dimensionID, err := loader.GetOrCreateDimension(axes)
		if err != nil {
			return nil, err
		}
		if dimensionID != nil {
			load.dimensionAxes[*dimensionID] = axes
		}

		fact := &models.Fact{
			CompanyID:    companyID,
			ConceptID:    conceptID,
			PeriodID:     periodID,
			FilingID:     filingID,
			DimensionID:  dimensionID,
			ValueNumeric: rf.ValueNumeric,
			ValueText:    rf.ValueText,
			UnitMeasure:  rf.UnitMeasure,
			Decimals:     rf.Decimals,
			Scale:        rf.ScaleInt,
			XBRLFormat:   rf.XBRLFormat,
			ContextID:    rf.ContextID,
			FactIDXBRL:   rf.FactID,
			SourceLine:   rf.SourceLine,
			OrderIndex:   rf.OrderIndex,
			IsPrimary:    rf.IsPrimary == nil || *rf.IsPrimary,
			Source:       models.SourceXBRL,
		}
		load.facts = append(load.facts, fact)
	}

	if err := loader.UpsertFactBatch(load.facts); err != nil {
		return nil, err
	}
	return load, nil
}

// buildPeriod resolves a RawFact's period fields into a dim_time_periods
// row. Dates that fail to parse are left nil rather than aborting the
// filing — GetOrCreatePeriod's conflict key still distinguishes periods by
// their (possibly nil) date columns.
func buildPeriod(rf models.RawFact, fiscalYear int) *models.Period {
	p := &models.Period{Type: models.PeriodType(rf.PeriodType), FiscalYear: fiscalYear}
	if rf.PeriodStart != nil {
		if t, err := time.Parse("2006-01-02", *rf.PeriodStart); err == nil {
			p.StartDate = &t
		}
	}
	if rf.PeriodEnd != nil {
		if t, err := time.Parse("2006-01-02", *rf.PeriodEnd); err == nil {
			p.EndDate = &t
		}
	}
	if rf.InstantDate != nil {
		if t, err := time.Parse("2006-01-02", *rf.InstantDate); err == nil {
			p.InstantDate = &t
		}
	}
	return p
}

func (p *Pipeline) resolveNormalization(taxonomyName string, rf models.RawFact, contextHint string, siblingAccepted bool) normalize.Result {
	ctx := context.Background()
	if p.Cache != nil {
		if cached, ok := p.Cache.GetResolution(ctx, taxonomyName, rf.Concept, contextHint, siblingAccepted); ok {
			return normalize.Result{NormalizedLabel: cached.NormalizedLabel, Source: models.NormalizationSource(cached.Source)}
		}
	}
	result := p.Normalizer.Normalize(taxonomyName, rf.Concept, contextHint, siblingAccepted)
	if p.Cache != nil {
		p.Cache.SetResolution(ctx, taxonomyName, rf.Concept, contextHint, siblingAccepted, cache.ResolvedLabel{
			NormalizedLabel: result.NormalizedLabel, Source: string(result.Source),
		})
	}
	return result
}

// contextHintFor derives normalize.Normalize's step-1 context disambiguator
// from a raw fact's context id and dimension members — the only signal on
// hand for telling, e.g., a pension discount rate assumption reported
// against the benefit obligation from one reported against net periodic
// cost.
func contextHintFor(rf models.RawFact) string {
	haystack := strings.ToLower(rf.ContextID)
	for _, members := range rf.Dimensions {
		for _, member := range members {
			haystack += " " + strings.ToLower(member)
		}
	}
	switch {
	case strings.Contains(haystack, "obligation"):
		return "obligation"
	case strings.Contains(haystack, "cost"):
		return "cost"
	case strings.Contains(haystack, "parentonly"), strings.Contains(haystack, "parent_only"), strings.Contains(haystack, "parent company"):
		return "parent_only"
	default:
		return ""
	}
}

// curatedSiblingConcepts finds, among this filing's reported concepts, every
// concept that shares a curated label with at least one other reported
// concept — the set the step-2 parent/child double-count exception checks
// before mapping a taxonomy-parent concept onto the same label as an
// accepted child that is also present.
func (p *Pipeline) curatedSiblingConcepts(facts []models.RawFact) map[string]bool {
	byLabel := make(map[string]map[string]bool)
	for _, rf := range facts {
		label, ok := p.Normalizer.CuratedLabelFor(rf.Concept)
		if !ok {
			continue
		}
		if byLabel[label] == nil {
			byLabel[label] = make(map[string]bool)
		}
		byLabel[label][rf.Concept] = true
	}

	siblings := make(map[string]bool)
	for _, concepts := range byLabel {
		if len(concepts) < 2 {
			continue
		}
		for concept := range concepts {
			siblings[concept] = true
		}
	}
	return siblings
}

func (p *Pipeline) loadRelationships(loader *database.Loader, raw *models.RawFiling, filingID int, conceptIDs map[string]int) error {
	for _, rel := range raw.Relationships.Calculation {
		if rel.Parent == nil {
			continue
		}
		parentID, ok1 := conceptIDs[*rel.Parent]
		childID, ok2 := conceptIDs[rel.Child]
		if !ok1 || !ok2 {
			continue
		}
		if err := loader.UpsertCalculationRelationship(&models.CalculationRelationship{
			FilingID: filingID, ParentConceptID: parentID, ChildConceptID: childID,
			Weight: rel.Weight, OrderIndex: rel.OrderIndex, Arcrole: rel.Arcrole,
			Priority: rel.Priority, Source: models.SourceXBRL, Confidence: 1.0,
		}); err != nil {
			return err
		}
	}
	for _, rel := range raw.Relationships.Presentation {
		childID, ok := conceptIDs[rel.Child]
		if !ok {
			continue
		}
		var parentID *int
		if rel.Parent != nil {
			if id, ok := conceptIDs[*rel.Parent]; ok {
				parentID = &id
			}
		}
		if err := loader.InsertPresentationRelationship(&models.PresentationRelationship{
			FilingID: filingID, ParentConceptID: parentID, ChildConceptID: childID,
			OrderIndex: rel.OrderIndex, PreferredLabel: rel.PreferredLabel,
			RoleURI: rel.RoleURI, Arcrole: rel.Arcrole, Priority: rel.Priority, Source: models.SourceXBRL,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) classifyHierarchy(raw *models.RawFiling, conceptIDs map[string]int) map[int]hierarchy.Classification {
	var edges []hierarchy.Edge
	for _, rel := range raw.Relationships.Calculation {
		if rel.Parent == nil {
			continue
		}
		parentID, ok1 := conceptIDs[*rel.Parent]
		childID, ok2 := conceptIDs[rel.Child]
		if !ok1 || !ok2 {
			continue
		}
		edges = append(edges, hierarchy.Edge{ParentID: parentID, ChildID: childID})
	}
	levels, warnings := hierarchy.Classify(edges)
	for _, w := range warnings {
		log.Printf("hierarchy classification warning: %v", w)
	}
	return levels
}

// computeMissingTotals runs the Calculated-Totals Engine per period: when a
// universal total wasn't reported directly, it is synthesized strictly from
// already-reported components and returned as additional is_calculated
// facts carrying the total's own concept and the period, with company,
// filing and unit copied from a template fact of that period.
func (p *Pipeline) computeMissingTotals(facts []*models.Fact, conceptLabels map[int]string) []*models.Fact {
	byPeriod := make(map[int][]*models.Fact)
	for _, f := range facts {
		byPeriod[f.PeriodID] = append(byPeriod[f.PeriodID], f)
	}

	revenueConcept, hasRevenueConcept := labelToConceptID(conceptLabels, "revenue")
	currentLiabConcept, hasCurrentLiabConcept := labelToConceptID(conceptLabels, "current_liabilities")
	noncurrentLiabConcept, hasNoncurrentLiabConcept := labelToConceptID(conceptLabels, "noncurrent_liabilities")
	totalLiabConcept, hasTotalLiabConcept := labelToConceptID(conceptLabels, "total_liabilities")
	equityConcept, hasEquityConcept := labelToConceptID(conceptLabels, "stockholders_equity")
	apConcept, hasAPConcept := labelToConceptID(conceptLabels, "accounts_payable")

	var synthesized []*models.Fact
	for periodID, periodFacts := range byPeriod {
		values := make([]totals.LabeledValue, 0, len(periodFacts))
		byLabel := make(map[string]*models.Fact)
		for _, f := range periodFacts {
			if f.ValueNumeric == nil {
				continue
			}
			label := conceptLabels[f.ConceptID]
			values = append(values, totals.LabeledValue{NormalizedLabel: label, ConceptName: label, Value: *f.ValueNumeric})
			byLabel[label] = f
		}

		if _, ok := byLabel["revenue"]; !ok && hasRevenueConcept {
			if result, ok := totals.Revenue(values); ok {
				synthesized = append(synthesized, calculatedFact(periodFacts[0], revenueConcept, periodID, result.Value))
			}
		}
		if _, ok := byLabel["current_liabilities"]; !ok && hasCurrentLiabConcept {
			if result, ok := totals.CurrentLiabilities(values); ok {
				byLabel["current_liabilities"] = calculatedFact(periodFacts[0], currentLiabConcept, periodID, result.Value)
				synthesized = append(synthesized, byLabel["current_liabilities"])
			}
		}
		if _, ok := byLabel["noncurrent_liabilities"]; !ok && hasNoncurrentLiabConcept {
			if result, ok := totals.NoncurrentLiabilities(values, factValue(byLabel["total_liabilities"]), factValue(byLabel["current_liabilities"])); ok {
				byLabel["noncurrent_liabilities"] = calculatedFact(periodFacts[0], noncurrentLiabConcept, periodID, result.Value)
				synthesized = append(synthesized, byLabel["noncurrent_liabilities"])
			}
		}
		if _, ok := byLabel["total_liabilities"]; !ok && hasTotalLiabConcept {
			if result, ok := totals.TotalLiabilities(factValue(byLabel["current_liabilities"]), factValue(byLabel["noncurrent_liabilities"]), factValue(byLabel["total_assets"]), factValue(byLabel["stockholders_equity"])); ok {
				byLabel["total_liabilities"] = calculatedFact(byLabel["total_assets"], totalLiabConcept, periodID, result.Value)
				synthesized = append(synthesized, byLabel["total_liabilities"])
			}
		}
		if _, ok := byLabel["stockholders_equity"]; !ok && hasEquityConcept {
			if result, ok := totals.StockholdersEquity(factValue(byLabel["total_assets"]), factValue(byLabel["total_liabilities"])); ok {
				synthesized = append(synthesized, calculatedFact(byLabel["total_assets"], equityConcept, periodID, result.Value))
			}
		}
		if hasAPConcept {
			_, hasAP := byLabel["accounts_payable"]
			if result, ok := totals.AccountsPayableForBank(values, hasAP); ok {
				synthesized = append(synthesized, calculatedFact(periodFacts[0], apConcept, periodID, result.Value))
			}
		}
	}
	return synthesized
}

func labelToConceptID(conceptLabels map[int]string, label string) (int, bool) {
	for id, l := range conceptLabels {
		if l == label {
			return id, true
		}
	}
	return 0, false
}

func factValue(f *models.Fact) *decimal.Decimal {
	if f == nil {
		return nil
	}
	return f.ValueNumeric
}

func calculatedFact(template *models.Fact, conceptID, periodID int, value decimal.Decimal) *models.Fact {
	f := &models.Fact{
		ConceptID:    conceptID,
		PeriodID:     periodID,
		ValueNumeric: &value,
		Source:       models.SourceCalculated,
		IsCalculated: true,
		IsPrimary:    true,
	}
	if template != nil {
		f.CompanyID = template.CompanyID
		f.FilingID = template.FilingID
		f.UnitMeasure = template.UnitMeasure
	}
	return f
}

// routableStatements is the fixed order organizeAndMaterialize tries a
// presentation role against to find its declared statement before
// RouteStatement applies the OCI re-routing exception.
var routableStatements = []models.StatementType{
	models.StatementIncome, models.StatementBalanceSheet, models.StatementCashFlow,
	models.StatementComprehensive, models.StatementEquity,
}

func declaredStatementFor(item statement.PresentationItem) models.StatementType {
	for _, stmt := range routableStatements {
		if statement.IsMainItem(item, stmt) {
			return stmt
		}
	}
	return models.StatementOther
}

func isEPSLabel(label string) bool {
	return label == "eps_basic" || label == "eps_diluted"
}

// calculationParents maps each concept to the first parent named for it in
// the calculation linkbase, the provenance ConceptInfo.ParentConceptID needs
// for the Materializer's inverted-parent-order check.
func calculationParents(raw *models.RawFiling, conceptIDs map[string]int) map[int]int {
	parents := make(map[int]int)
	for _, rel := range raw.Relationships.Calculation {
		if rel.Parent == nil {
			continue
		}
		parentID, ok1 := conceptIDs[*rel.Parent]
		childID, ok2 := conceptIDs[rel.Child]
		if !ok1 || !ok2 {
			continue
		}
		if _, exists := parents[childID]; !exists {
			parents[childID] = parentID
		}
	}
	return parents
}

// usesFixedOrder reports whether stmt ignores raw presentation order
// entirely in favor of statement.StandardOrder.
func usesFixedOrder(stmt models.StatementType) bool {
	return stmt == models.StatementComprehensive || stmt == models.StatementCashFlow || stmt == models.StatementEquity
}

// organizeAndMaterialize runs the Statement Organizer over the filing's
// presentation linkbase, persists the curated rel_statement_items rows, then
// runs the Statement Fact Materializer over the resulting items to populate
// the five per-statement fact tables.
func (p *Pipeline) organizeAndMaterialize(loader *database.Loader, raw *models.RawFiling, companyID, filingID int, load *filingLoadResult, levels map[int]hierarchy.Classification) error {
	parentOf := calculationParents(raw, load.conceptIDs)

	concepts := make(map[int]statement.ConceptInfo, len(load.conceptLabels))
	for id, label := range load.conceptLabels {
		info := statement.ConceptInfo{ID: id, NormalizedLabel: label}
		if cls, ok := levels[id]; ok {
			lvl := cls.Level
			info.HierarchyLevel = &lvl
		}
		if parentID, ok := parentOf[id]; ok {
			pid := parentID
			info.ParentConceptID = &pid
		}
		concepts[id] = info
	}

	candidatesByStatement := make(map[models.StatementType][]statement.Candidate)
	for _, rel := range raw.Relationships.Presentation {
		childID, ok := load.conceptIDs[rel.Child]
		if !ok {
			continue
		}
		label := load.conceptLabels[childID]
		item := statement.PresentationItem{
			ConceptID: childID, NormalizedLabel: label, RoleURI: stringVal(rel.RoleURI),
			OrderIndex: rel.OrderIndex, Source: models.SourceXBRL,
		}
		stmt := statement.RouteStatement(item, declaredStatementFor(item))
		if stmt == models.StatementOther {
			continue
		}

		order := statement.OrderFor(item, stmt, isEPSLabel(label))
		if usesFixedOrder(stmt) {
			if canonical, ok := statement.StandardOrder[label]; ok {
				order = canonical
			} else {
				order = statement.TemplateOrderBase + rel.OrderIndex
			}
		}
		candidatesByStatement[stmt] = append(candidatesByStatement[stmt], statement.Candidate{Item: item, Order: order})
	}

	itemsByStatement := make(map[models.StatementType][]models.StatementItem)
	for stmt, candidates := range candidatesByStatement {
		for _, c := range statement.Deduplicate(stmt, candidates) {
			mi := models.StatementItem{
				FilingID: filingID, ConceptID: c.Item.ConceptID, Statement: stmt,
				DisplayOrder: c.Order, IsMainItem: statement.IsMainItem(c.Item, stmt),
				Source: c.Item.Source,
			}
			if c.Item.RoleURI != "" {
				roleURI := c.Item.RoleURI
				mi.RoleURI = &roleURI
			}
			if stmt == models.StatementBalanceSheet {
				if side, ok := statement.AssignSide(concepts[c.Item.ConceptID].NormalizedLabel, concepts[c.Item.ConceptID].NormalizedLabel); ok {
					s := side
					mi.Side = &s
				}
			}
			if err := loader.InsertStatementItem(&mi); err != nil {
				return err
			}
			itemsByStatement[stmt] = append(itemsByStatement[stmt], mi)
		}
	}

	factsByConceptPeriod := make(map[int]map[int]statement.FactInput)
	factsByConceptPeriodMulti := make(map[int]map[int][]statement.FactInput)
	for _, f := range load.facts {
		fi := statement.FactInput{ConceptID: f.ConceptID, PeriodID: f.PeriodID, Value: f.ValueNumeric, UnitMeasure: f.UnitMeasure}
		if f.DimensionID != nil {
			fi.Dimensions = load.dimensionAxes[*f.DimensionID]
		}
		if factsByConceptPeriodMulti[f.ConceptID] == nil {
			factsByConceptPeriodMulti[f.ConceptID] = make(map[int][]statement.FactInput)
		}
		factsByConceptPeriodMulti[f.ConceptID][f.PeriodID] = append(factsByConceptPeriodMulti[f.ConceptID][f.PeriodID], fi)
		if f.DimensionID == nil {
			if factsByConceptPeriod[f.ConceptID] == nil {
				factsByConceptPeriod[f.ConceptID] = make(map[int]statement.FactInput)
			}
			factsByConceptPeriod[f.ConceptID][f.PeriodID] = fi
		}
	}

	var materialized []models.StatementFact
	if items, ok := itemsByStatement[models.StatementIncome]; ok {
		materialized = append(materialized, statement.MaterializeIncomeStatement(items, factsByConceptPeriod, concepts)...)
	}
	if items, ok := itemsByStatement[models.StatementBalanceSheet]; ok {
		materialized = append(materialized, statement.MaterializeBalanceSheet(items, factsByConceptPeriod, concepts)...)
	}
	var comprehensiveFacts []models.StatementFact
	if items, ok := itemsByStatement[models.StatementComprehensive]; ok {
		comprehensiveFacts = statement.MaterializeComprehensiveIncome(items, factsByConceptPeriod, concepts)
		materialized = append(materialized, comprehensiveFacts...)
	}
	if items, ok := itemsByStatement[models.StatementCashFlow]; ok {
		priorCash, earliestCash := p.cashFlowBeginningSources(loader, companyID, raw.Year, load)
		materialized = append(materialized, statement.MaterializeCashFlow(items, factsByConceptPeriod, concepts, priorCash, earliestCash)...)
	}
	if items, ok := itemsByStatement[models.StatementEquity]; ok {
		applyComprehensiveIncomeOverrides(factsByConceptPeriodMulti, comprehensiveFacts, concepts)
		beginning, ending := p.equityBalanceSources(loader, companyID, raw.Year, load)
		materialized = append(materialized, statement.MaterializeEquityStatement(items, factsByConceptPeriodMulti, concepts, load.periods, beginning, ending)...)
	}

	for i := range materialized {
		materialized[i].FilingID = filingID
		if err := loader.UpsertStatementFact(&materialized[i]); err != nil {
			return err
		}
	}
	return nil
}

// cashFlowBeginningSources resolves the two candidate sources for the
// cash-flow statement's synthesized beginning-of-year cash row: the prior
// filing's ending cash balance, and (as a fallback when no prior filing
// exists) this filing's own earliest-instant cash fact.
func (p *Pipeline) cashFlowBeginningSources(loader *database.Loader, companyID, fiscalYear int, load *filingLoadResult) (*statement.FactInput, *statement.FactInput) {
	cashConceptID, ok := labelToConceptID(load.conceptLabels, "cash_and_equivalents")
	if !ok {
		return nil, nil
	}

	var prior *statement.FactInput
	if f, found, err := loader.PriorPeriodFact(companyID, cashConceptID, fiscalYear); err == nil && found {
		prior = &statement.FactInput{ConceptID: f.ConceptID, PeriodID: f.PeriodID, Value: f.ValueNumeric, UnitMeasure: f.UnitMeasure}
	}

	var earliest *statement.FactInput
	var earliestDate time.Time
	for _, f := range load.facts {
		if f.ConceptID != cashConceptID || f.ValueNumeric == nil {
			continue
		}
		period, ok := load.periods[f.PeriodID]
		if !ok || period.Type != models.PeriodInstant || period.InstantDate == nil {
			continue
		}
		if earliest == nil || period.InstantDate.Before(earliestDate) {
			earliest = &statement.FactInput{ConceptID: f.ConceptID, PeriodID: f.PeriodID, Value: f.ValueNumeric, UnitMeasure: f.UnitMeasure}
			earliestDate = *period.InstantDate
		}
	}
	return prior, earliest
}

// equityBalanceSources resolves the equity statement's beginning balance
// (the prior filing's ending total_equity) and ending balance (this
// filing's own latest-instant total_equity fact).
func (p *Pipeline) equityBalanceSources(loader *database.Loader, companyID, fiscalYear int, load *filingLoadResult) (*statement.FactInput, *statement.FactInput) {
	equityConceptID, ok := labelToConceptID(load.conceptLabels, "total_equity")
	if !ok {
		return nil, nil
	}

	var beginning *statement.FactInput
	if f, found, err := loader.PriorPeriodFact(companyID, equityConceptID, fiscalYear); err == nil && found {
		beginning = &statement.FactInput{ConceptID: f.ConceptID, PeriodID: f.PeriodID, Value: f.ValueNumeric, UnitMeasure: f.UnitMeasure}
	}

	var ending *statement.FactInput
	var endingDate time.Time
	for _, f := range load.facts {
		if f.ConceptID != equityConceptID || f.ValueNumeric == nil {
			continue
		}
		period, ok := load.periods[f.PeriodID]
		if !ok || period.Type != models.PeriodInstant || period.InstantDate == nil {
			continue
		}
		if ending == nil || period.InstantDate.After(endingDate) {
			ending = &statement.FactInput{ConceptID: f.ConceptID, PeriodID: f.PeriodID, Value: f.ValueNumeric, UnitMeasure: f.UnitMeasure}
			endingDate = *period.InstantDate
		}
	}
	return beginning, ending
}

// equityOCILabels are the comprehensive-income components the equity
// roll-forward must read post sign-correction, not from the raw warehouse
// fact: a concept reported as one of these can appear in both the
// comprehensive income statement and the equity statement's presentation
// role, and the two must agree on its materialized value.
var equityOCILabels = map[string]bool{
	"other_comprehensive_income": true, "oci_total": true,
	"total_comprehensive_income": true, "comprehensive_income": true,
}

// applyComprehensiveIncomeOverrides replaces the consolidated entries of
// factsByConceptPeriod for equityOCILabels concepts with the already
// sign-corrected values MaterializeComprehensiveIncome produced, so the
// equity statement never reads a pre-correction raw value for them.
func applyComprehensiveIncomeOverrides(factsByConceptPeriod map[int]map[int][]statement.FactInput, comprehensiveFacts []models.StatementFact, concepts map[int]statement.ConceptInfo) {
	for _, cf := range comprehensiveFacts {
		if !equityOCILabels[concepts[cf.ConceptID].NormalizedLabel] {
			continue
		}
		byPeriod, ok := factsByConceptPeriod[cf.ConceptID]
		if !ok {
			continue
		}
		facts, ok := byPeriod[cf.PeriodID]
		if !ok {
			continue
		}
		for i := range facts {
			if facts[i].Dimensions == nil {
				facts[i].Value = cf.Value
			}
		}
	}
}

func toNormalizedValues(facts []*models.Fact, conceptLabels map[int]string) []validator.NormalizedValue {
	out := make([]validator.NormalizedValue, 0, len(facts))
	for _, f := range facts {
		out = append(out, validator.NormalizedValue{
			NormalizedLabel: conceptLabels[f.ConceptID],
			ConceptName:     conceptLabels[f.ConceptID],
			ContextID:       f.ContextID,
			Value:           f.ValueNumeric,
		})
	}
	return out
}

func completenessScore(facts []*models.Fact) float64 {
	if len(facts) == 0 {
		return 0
	}
	var withValue int
	for _, f := range facts {
		if f.ValueNumeric != nil {
			withValue++
		}
	}
	return decimal.NewFromInt(int64(withValue)).Div(decimal.NewFromInt(int64(len(facts)))).InexactFloat64()
}

func stringVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
