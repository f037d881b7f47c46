package normalize

import (
	"golang.org/x/text/cases"

	"finsight/models"
	"finsight/taxonomy"
)

var caseFolder = cases.Fold()

// ConceptRef is the minimal view of a dim_concepts row the synonym pass
// needs: enough to decide which concepts in a group are equivalent and
// which currently holds the most authoritative label.
type ConceptRef struct {
	ID                  int
	Taxonomy            string
	ConceptName         string
	NormalizedLabel     string
	PreferredLabel      string
	NormalizationSource models.NormalizationSource
}

// ApplySynonyms runs the post-normalization synonym pass.
// Concepts sharing a taxonomy-published semantic-equivalence group
// adopt the canonical member's normalized_label; absent any published
// group for a taxonomy, concepts sharing a case-folded preferred label are
// treated as equivalent instead. The never-downgrade rule still applies —
// a concept whose current source outranks SourceSemanticSynonym /
// SourceLabelSynonym keeps its existing label.
//
// ApplySynonyms mutates concepts in place and returns the same slice for
// convenience.
func ApplySynonyms(store *taxonomy.Store, concepts []*ConceptRef) []*ConceptRef {
	if store != nil {
		applySemanticEquivalence(store, concepts)
	}
	applyLabelTextEquivalence(store, concepts)
	return concepts
}

func applySemanticEquivalence(store *taxonomy.Store, concepts []*ConceptRef) {
	byTaxonomy := groupByTaxonomy(concepts)
	for tax, group := range byTaxonomy {
		if !store.HasSemanticEquivalence(tax) {
			continue
		}
		for _, c := range group {
			canonical, ok := store.CanonicalSynonym(tax, c.ConceptName)
			if !ok || canonical == c.ConceptName {
				continue
			}
			canonicalLabel := findLabel(group, canonical)
			if canonicalLabel == "" {
				continue
			}
			assignIfAuthorized(c, canonicalLabel, models.SourceSemanticSynonym)
		}
	}
}

// applyLabelTextEquivalence groups concepts (within a taxonomy lacking a
// published semantic-equivalence map) by case-insensitive preferred label
// and makes them share the shortest concept_name's normalized_label.
func applyLabelTextEquivalence(store *taxonomy.Store, concepts []*ConceptRef) {
	byTaxonomy := groupByTaxonomy(concepts)
	for tax, group := range byTaxonomy {
		if store != nil && store.HasSemanticEquivalence(tax) {
			continue
		}
		byLabel := make(map[string][]*ConceptRef)
		for _, c := range group {
			if c.PreferredLabel == "" {
				continue
			}
			key := caseFolder.String(c.PreferredLabel)
			byLabel[key] = append(byLabel[key], c)
		}
		for _, members := range byLabel {
			if len(members) < 2 {
				continue
			}
			canonical := members[0]
			for _, m := range members[1:] {
				if len(m.ConceptName) < len(canonical.ConceptName) {
					canonical = m
				}
			}
			for _, m := range members {
				if m == canonical {
					continue
				}
				assignIfAuthorized(m, canonical.NormalizedLabel, models.SourceLabelSynonym)
			}
		}
	}
}

func assignIfAuthorized(c *ConceptRef, label string, source models.NormalizationSource) {
	if source.Outranks(c.NormalizationSource) {
		c.NormalizedLabel = label
		c.NormalizationSource = source
	}
}

func groupByTaxonomy(concepts []*ConceptRef) map[string][]*ConceptRef {
	out := make(map[string][]*ConceptRef)
	for _, c := range concepts {
		out[c.Taxonomy] = append(out[c.Taxonomy], c)
	}
	return out
}

func findLabel(group []*ConceptRef, conceptName string) string {
	for _, c := range group {
		if c.ConceptName == conceptName {
			return c.NormalizedLabel
		}
	}
	return ""
}
