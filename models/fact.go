package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// FactSource tags the provenance of a Fact or a relationship row.
type FactSource string

const (
	SourceXBRL        FactSource = "xbrl"
	SourceDimensional FactSource = "dimensional"
	SourceStandard    FactSource = "standard"
	SourceCalculated  FactSource = "calculated_from_children"
)

// Fact is the fact_financial_metrics row. Uniqueness key: (FilingID,
// ConceptID, PeriodID, DimensionID) — DimensionID nil means the consolidated
// (undimensioned) fact.
type Fact struct {
	ID            int64            `db:"id"`
	CompanyID     int              `db:"company_id"`
	ConceptID     int              `db:"concept_id"`
	PeriodID      int              `db:"period_id"`
	FilingID      int              `db:"filing_id"`
	DimensionID   *int             `db:"dimension_id"`
	ValueNumeric  *decimal.Decimal `db:"value_numeric"`
	ValueText     *string          `db:"value_text"`
	UnitMeasure   string           `db:"unit_measure"`
	Decimals      *int             `db:"decimals"`
	Scale         *int             `db:"scale"`
	XBRLFormat    *string          `db:"xbrl_format"`
	ContextID     string           `db:"context_id"`
	FactIDXBRL    *string          `db:"fact_id_xbrl"`
	SourceLine    *int             `db:"source_line"`
	OrderIndex    *int             `db:"order_index"`
	IsPrimary     bool             `db:"is_primary"`
	IsCalculated  bool             `db:"is_calculated"`
	Source        FactSource       `db:"source"`
	CreatedAt     time.Time        `db:"created_at"`
}

// FactKey is the natural upsert key enforced on every fact upsert.
type FactKey struct {
	FilingID    int
	ConceptID   int
	PeriodID    int
	DimensionID *int // nil == consolidated
}

// Key returns this fact's natural key.
func (f Fact) Key() FactKey {
	return FactKey{FilingID: f.FilingID, ConceptID: f.ConceptID, PeriodID: f.PeriodID, DimensionID: f.DimensionID}
}

// IsConsolidated reports whether this fact carries no XBRL dimensions.
func (f Fact) IsConsolidated() bool {
	return f.DimensionID == nil
}

// RawFact is the shape the external XBRL parser emits as its canonical
// fact stream JSON. It is the Fact Staging stage's input type; the
// Normalizer and Warehouse Loader consume it after JSON-schema validation.
type RawFact struct {
	Concept            string             `json:"concept"`
	Taxonomy           string             `json:"taxonomy"`
	NormalizedLabel    *string            `json:"normalized_label,omitempty"`
	ConceptType        *string            `json:"concept_type,omitempty"`
	ConceptBalance     *string            `json:"concept_balance,omitempty"`
	ConceptPeriodType  *string            `json:"concept_period_type,omitempty"`
	ConceptDataType    *string            `json:"concept_data_type,omitempty"`
	ConceptAbstract    *bool              `json:"concept_abstract,omitempty"`
	StatementType      *string            `json:"statement_type,omitempty"`
	ValueNumeric       *decimal.Decimal   `json:"value_numeric,omitempty"`
	ValueText          *string            `json:"value_text,omitempty"`
	UnitMeasure        string             `json:"unit_measure"`
	Decimals           *int               `json:"decimals,omitempty"`
	ScaleInt           *int               `json:"scale_int,omitempty"`
	XBRLFormat         *string            `json:"xbrl_format,omitempty"`
	ContextID          string             `json:"context_id,omitempty"`
	FactID             *string            `json:"fact_id,omitempty"`
	SourceLine         *int               `json:"source_line,omitempty"`
	OrderIndex         *int               `json:"order_index,omitempty"`
	IsPrimary          *bool              `json:"is_primary,omitempty"`
	PeriodType         string             `json:"period_type"`
	PeriodStart        *string            `json:"period_start,omitempty"`
	PeriodEnd          *string            `json:"period_end,omitempty"`
	InstantDate        *string            `json:"instant_date,omitempty"`
	Dimensions         map[string]map[string]string `json:"dimensions,omitempty"`
}

// FilingMetadata is the "metadata" object of the canonical fact stream.
type FilingMetadata struct {
	CompanyName string  `json:"company_name"`
	FilingType  string  `json:"filing_type"`
	Taxonomy    string  `json:"taxonomy,omitempty"`
	SourceURL   string  `json:"source_url,omitempty"`
	CIK         *string `json:"cik,omitempty"`
}

// RawRelationship is one calculation or presentation linkbase edge as
// emitted by the parser, keyed by concept name rather than concept_id (the
// loader resolves names to ids within the taxonomy scope).
type RawRelationship struct {
	Parent         *string `json:"parent,omitempty"`
	Child          string  `json:"child"`
	Weight         float64 `json:"weight,omitempty"`
	OrderIndex     int     `json:"order_index,omitempty"`
	Arcrole        string  `json:"arcrole,omitempty"`
	Priority       int     `json:"priority,omitempty"`
	RoleURI        *string `json:"role_uri,omitempty"`
	PreferredLabel *string `json:"preferred_label,omitempty"`
}

// RawFiling is the full canonical fact-stream document for one filing.
type RawFiling struct {
	Company    string          `json:"company"`
	FilingType string          `json:"filing_type"`
	Year       int             `json:"year"`
	Metadata   FilingMetadata  `json:"metadata"`
	Facts      []RawFact       `json:"facts"`
	Relationships struct {
		Calculation  []RawRelationship `json:"calculation"`
		Presentation []RawRelationship `json:"presentation"`
		// Footnotes are opaque passthrough blobs we store but do not
		// interpret — footnote resolution is outside the core's scope.
		Footnotes []json.RawMessage `json:"footnotes,omitempty"`
	} `json:"relationships"`
}
