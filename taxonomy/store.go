// Package taxonomy implements the Taxonomy Store: it loads calculation and
// label linkbases for the taxonomies a corpus uses and serves a process-wide,
// read-only-after-load cache to every pipeline stage.
package taxonomy

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// CalcEdge is one parent->child calculation-linkbase edge as stored in
// <taxonomy>-calc.json.
type CalcEdge struct {
	Parent     string  `json:"parent"`
	Child      string  `json:"child"`
	Weight     float64 `json:"weight"`
	OrderIndex int     `json:"order_index"`
}

type calcFile struct {
	Edges []CalcEdge `json:"edges"`
}

type labelsFile struct {
	Labels              map[string]string   `json:"labels"`
	SemanticEquivalence [][]string          `json:"semantic_equivalence,omitempty"`
}

// Store is the explicit, process-wide taxonomy handle (no
// singleton — passed into every stage that needs it). It is built once at
// startup and never mutated afterward, so concurrent workers may read it
// without locking.
type Store struct {
	// childToParent maps concept_name -> parent concept_name within a single
	// taxonomy's calculation linkbase.
	childToParent map[taxonomyKey]string
	// parentToChildren is the inverse, used by the Normalizer's parent check.
	parentToChildren map[taxonomyKey][]string
	// weights maps (taxonomy, parent, child) -> calculation weight.
	weights map[calcKey]float64
	orders  map[calcKey]int

	preferredLabels map[taxonomyKey]string

	// synonymCanonical maps a concept to the canonical member of its
	// semantic-equivalence group (shortest concept name wins), per taxonomy.
	synonymCanonical map[taxonomyKey]string
}

type taxonomyKey struct {
	Taxonomy string
	Concept  string
}

type calcKey struct {
	Taxonomy string
	Parent   string
	Child    string
}

// NewStore loads every "<taxonomy>-calc.json" / "<taxonomy>-labels.json" pair
// found directly under dir. For a taxonomy missing one of the two files the
// present file is still loaded and the missing one is reported with a
// warning in the warnings slice rather than failing the whole load (TaxonomyMissing downgrades to pattern-matching
// fallback with a WARNING, not an abort).
func NewStore(dir string) (*Store, []string, error) {
	s := &Store{
		childToParent:    make(map[taxonomyKey]string),
		parentToChildren: make(map[taxonomyKey][]string),
		weights:          make(map[calcKey]float64),
		orders:           make(map[calcKey]int),
		preferredLabels:  make(map[taxonomyKey]string),
		synonymCanonical: make(map[taxonomyKey]string),
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read taxonomy directory %s: %w", dir, err)
	}

	var warnings []string
	taxonomies := make(map[string]bool)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		switch {
		case strings.HasSuffix(name, "-calc.json"):
			taxonomies[strings.TrimSuffix(name, "-calc.json")] = true
		case strings.HasSuffix(name, "-labels.json"):
			taxonomies[strings.TrimSuffix(name, "-labels.json")] = true
		}
	}

	for tax := range taxonomies {
		if err := s.loadCalc(dir, tax); err != nil {
			warnings = append(warnings, fmt.Sprintf("taxonomy %s: calculation linkbase unavailable (%v), pattern-matching fallback in effect", tax, err))
		}
		if err := s.loadLabels(dir, tax); err != nil {
			warnings = append(warnings, fmt.Sprintf("taxonomy %s: label linkbase unavailable (%v)", tax, err))
		}
	}

	return s, warnings, nil
}

func (s *Store) loadCalc(dir, taxonomy string) error {
	path := filepath.Join(dir, taxonomy+"-calc.json")
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var cf calcFile
	if err := json.Unmarshal(raw, &cf); err != nil {
		return fmt.Errorf("corrupt calculation linkbase %s: %w", path, err)
	}

	for _, edge := range cf.Edges {
		ck := taxonomyKey{Taxonomy: taxonomy, Concept: edge.Child}
		s.childToParent[ck] = edge.Parent
		pk := taxonomyKey{Taxonomy: taxonomy, Concept: edge.Parent}
		s.parentToChildren[pk] = append(s.parentToChildren[pk], edge.Child)

		key := calcKey{Taxonomy: taxonomy, Parent: edge.Parent, Child: edge.Child}
		s.weights[key] = edge.Weight
		s.orders[key] = edge.OrderIndex
	}
	return nil
}

func (s *Store) loadLabels(dir, taxonomy string) error {
	path := filepath.Join(dir, taxonomy+"-labels.json")
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var lf labelsFile
	if err := json.Unmarshal(raw, &lf); err != nil {
		return fmt.Errorf("corrupt label linkbase %s: %w", path, err)
	}

	for concept, label := range lf.Labels {
		s.preferredLabels[taxonomyKey{Taxonomy: taxonomy, Concept: concept}] = label
	}

	for _, group := range lf.SemanticEquivalence {
		if len(group) == 0 {
			continue
		}
		canonical := group[0]
		for _, c := range group[1:] {
			if len(c) < len(canonical) {
				canonical = c
			}
		}
		for _, c := range group {
			s.synonymCanonical[taxonomyKey{Taxonomy: taxonomy, Concept: c}] = canonical
		}
	}
	return nil
}

// ParentOf returns the calculation-linkbase parent of a concept, if any.
func (s *Store) ParentOf(taxonomy, concept string) (string, bool) {
	p, ok := s.childToParent[taxonomyKey{Taxonomy: taxonomy, Concept: concept}]
	return p, ok
}

// ChildrenOf returns the calculation-linkbase children of a concept.
func (s *Store) ChildrenOf(taxonomy, concept string) []string {
	return s.parentToChildren[taxonomyKey{Taxonomy: taxonomy, Concept: concept}]
}

// IsChild reports whether concept appears as a child anywhere in the
// taxonomy's calculation linkbase.
func (s *Store) IsChild(taxonomy, concept string) bool {
	_, ok := s.childToParent[taxonomyKey{Taxonomy: taxonomy, Concept: concept}]
	return ok
}

// Weight returns the calculation weight for a (parent, child) edge.
func (s *Store) Weight(taxonomy, parent, child string) (float64, bool) {
	w, ok := s.weights[calcKey{Taxonomy: taxonomy, Parent: parent, Child: child}]
	return w, ok
}

// OrderIndex returns the calculation-linkbase order for a (parent, child) edge.
func (s *Store) OrderIndex(taxonomy, parent, child string) (int, bool) {
	o, ok := s.orders[calcKey{Taxonomy: taxonomy, Parent: parent, Child: child}]
	return o, ok
}

// PreferredLabel returns the taxonomy's human-readable label for a concept.
func (s *Store) PreferredLabel(taxonomy, concept string) (string, bool) {
	l, ok := s.preferredLabels[taxonomyKey{Taxonomy: taxonomy, Concept: concept}]
	return l, ok
}

// CanonicalSynonym returns the elected canonical concept name for concept's
// semantic-equivalence group, if the taxonomy publishes one.
func (s *Store) CanonicalSynonym(taxonomy, concept string) (string, bool) {
	c, ok := s.synonymCanonical[taxonomyKey{Taxonomy: taxonomy, Concept: concept}]
	return c, ok
}

// HasSemanticEquivalence reports whether any semantic-equivalence groups
// were published for this taxonomy at all (used to decide whether to fall
// back to label-text equivalence in the Normalizer).
func (s *Store) HasSemanticEquivalence(taxonomy string) bool {
	for k := range s.synonymCanonical {
		if k.Taxonomy == taxonomy {
			return true
		}
	}
	return false
}

// SuggestUnmapped is a diagnostic report, supplementing the core pipeline:
// for every concept that appears as a child in the taxonomy's calculation
// linkbase but has no preferred-label entry, surface it as a candidate
// for a curated-map addition, reshaped here as a library function instead
// of a standalone CLI script.
func (s *Store) SuggestUnmapped(taxonomy string) []string {
	seen := make(map[string]bool)
	var out []string
	for k := range s.childToParent {
		if k.Taxonomy != taxonomy {
			continue
		}
		if _, hasLabel := s.preferredLabels[k]; !hasLabel && !seen[k.Concept] {
			seen[k.Concept] = true
			out = append(out, k.Concept)
		}
	}
	sort.Strings(out)
	return out
}
