package vecindex

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codegraph-qa/codegraph/pkg/types"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	idx := newTestIndex(t, 3)
	syms := []*types.Symbol{
		embeddedSymbol("Auth.login", "auth.py", []float32{1, 0, 0}),
		embeddedSymbol("Auth.logout", "auth.py", []float32{0, 1, 0}),
		types.NewSymbol("README", "README.md", types.KindFile, "docs", []string{"login"}),
	}
	syms[0].Weights.Structural = 0.9
	syms[0].DocSummary = "handles login"
	require.NoError(t, idx.Add(syms))
	require.NoError(t, idx.Save(ctx, dir))

	loaded, err := Load(ctx, dir, Options{})
	require.NoError(t, err)

	assert.Equal(t, idx.Len(), loaded.Len())
	assert.Equal(t, idx.IndexedLen(), loaded.IndexedLen())
	assert.Equal(t, 3, loaded.Dimension())

	// get_by_id / get_by_name equivalence
	for _, want := range syms {
		got, ok := loaded.GetByID(want.ID)
		require.True(t, ok, "id %s must survive round trip", want.ID)
		assert.Equal(t, want.Name, got.Name)
		assert.Equal(t, want.Kind, got.Kind)
		assert.Equal(t, want.Dependencies, got.Dependencies)
		assert.Equal(t, want.Weights, got.Weights)
		assert.Equal(t, want.DocSummary, got.DocSummary)
	}

	// search equivalence for a query used before saving
	query := []float32{0.8, 0.2, 0}
	before, err := idx.Search(query, 2)
	require.NoError(t, err)
	after, err := loaded.Search(query, 2)
	require.NoError(t, err)
	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].Symbol.ID, after[i].Symbol.ID)
		assert.InDelta(t, before[i].Similarity, after[i].Similarity, 1e-6)
	}
}

func TestLoadMissingDir(t *testing.T) {
	_, err := Load(context.Background(), t.TempDir(), Options{})
	assert.ErrorIs(t, err, types.ErrIndexNotFound)
}

func TestLoadDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	idx := newTestIndex(t, 2)
	require.NoError(t, idx.Add([]*types.Symbol{embeddedSymbol("a", "a.go", []float32{1, 0})}))
	require.NoError(t, idx.Save(ctx, dir))

	_, err := Load(ctx, dir, Options{Dimension: 768})
	assert.ErrorIs(t, err, types.ErrDimensionMismatch)
}

func TestLoadRebuildsNameMaps(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	idx := newTestIndex(t, 2)
	a := embeddedSymbol("save", "users.go", []float32{1, 0})
	b := embeddedSymbol("save", "orders.go", []float32{0, 1})
	require.NoError(t, idx.Add([]*types.Symbol{a, b}))
	require.NoError(t, idx.Save(ctx, dir))

	loaded, err := Load(ctx, dir, Options{})
	require.NoError(t, err)

	got, ok := loaded.GetByName("save")
	require.True(t, ok)
	assert.Equal(t, a.ID, got.ID, "first-inserted symbol must win after rebuild")
}
