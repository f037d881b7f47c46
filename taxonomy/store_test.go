package taxonomy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTaxonomyFixture(t *testing.T, dir string) {
	t.Helper()
	calc := `{"edges":[
		{"parent":"Assets","child":"AssetsCurrent","weight":1,"order_index":0},
		{"parent":"Assets","child":"AssetsNoncurrent","weight":1,"order_index":1}
	]}`
	labels := `{"labels":{"Assets":"Total assets","AssetsCurrent":"Current assets"},
		"semantic_equivalence":[["Revenues","Revenue","SalesRevenueNet"]]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "us-gaap-calc.json"), []byte(calc), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "us-gaap-labels.json"), []byte(labels), 0o644))
}

func TestStoreLoadsCalcAndLabels(t *testing.T) {
	dir := t.TempDir()
	writeTaxonomyFixture(t, dir)

	store, warnings, err := NewStore(dir)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	parent, ok := store.ParentOf("us-gaap", "AssetsCurrent")
	assert.True(t, ok)
	assert.Equal(t, "Assets", parent)

	children := store.ChildrenOf("us-gaap", "Assets")
	assert.ElementsMatch(t, []string{"AssetsCurrent", "AssetsNoncurrent"}, children)

	label, ok := store.PreferredLabel("us-gaap", "Assets")
	assert.True(t, ok)
	assert.Equal(t, "Total assets", label)
}

func TestStoreSemanticEquivalenceCanonical(t *testing.T) {
	dir := t.TempDir()
	writeTaxonomyFixture(t, dir)

	store, _, err := NewStore(dir)
	require.NoError(t, err)

	canonical, ok := store.CanonicalSynonym("us-gaap", "Revenues")
	require.True(t, ok)
	assert.Equal(t, "Revenue", canonical) // shortest of Revenues/Revenue/SalesRevenueNet
	assert.True(t, store.HasSemanticEquivalence("us-gaap"))
}

func TestStoreMissingTaxonomyDirReturnsError(t *testing.T) {
	_, _, err := NewStore(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}

func TestSuggestUnmappedListsChildrenWithoutLabels(t *testing.T) {
	dir := t.TempDir()
	calc := `{"edges":[{"parent":"Assets","child":"AssetsCurrent","weight":1,"order_index":0}]}`
	labels := `{"labels":{}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "us-gaap-calc.json"), []byte(calc), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "us-gaap-labels.json"), []byte(labels), 0o644))

	store, _, err := NewStore(dir)
	require.NoError(t, err)

	unmapped := store.SuggestUnmapped("us-gaap")
	assert.Contains(t, unmapped, "AssetsCurrent")
}
