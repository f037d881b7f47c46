package models

// CalculationRelationship is the rel_calculation_hierarchy row: a parent =
// Σ(weight * child) edge.
type CalculationRelationship struct {
	ID              int        `db:"id"`
	FilingID        int        `db:"filing_id"`
	ParentConceptID int        `db:"parent_concept_id"`
	ChildConceptID  int        `db:"child_concept_id"`
	Weight          float64    `db:"weight"` // +1 or -1
	OrderIndex      int        `db:"order_index"`
	Arcrole         string     `db:"arcrole"`
	Priority        int        `db:"priority"`
	Source          FactSource `db:"source"`
	IsSynthetic     bool       `db:"is_synthetic"`
	Confidence      float64    `db:"confidence"` // in [0,1]
}

// PresentationRelationship is the rel_presentation_hierarchy row: a display
// order + grouping edge, optionally scoped to a role URI.
type PresentationRelationship struct {
	ID              int           `db:"id"`
	FilingID        int           `db:"filing_id"`
	ParentConceptID *int          `db:"parent_concept_id"`
	ChildConceptID  int           `db:"child_concept_id"`
	OrderIndex      int           `db:"order_index"`
	PreferredLabel  *string       `db:"preferred_label"`
	StatementType   StatementType `db:"statement_type"`
	RoleURI         *string       `db:"role_uri"`
	Arcrole         string        `db:"arcrole"`
	Priority        int           `db:"priority"`
	Source          FactSource    `db:"source"`
	IsSynthetic     bool          `db:"is_synthetic"`
}

// FootnoteReference is the rel_footnote_references row: an opaque passthrough
// of parser-supplied footnote links, stored for audit but not interpreted.
type FootnoteReference struct {
	ID        int    `db:"id"`
	FilingID  int    `db:"filing_id"`
	ConceptID int    `db:"concept_id"`
	Payload   string `db:"payload"` // raw JSON
}
