package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codegraph-qa/codegraph/pkg/types"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "symbols.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func makeRecord(internal int, name, path string) Record {
	sym := types.NewSymbol(name, path, types.KindFunction, "func "+name+"() {}",
		[]string{"helper", "Logger.info"})
	sym.Embedding = []float32{0.1, 0.2, 0.3}
	sym.Weights.Structural = 0.7
	return Record{Internal: internal, Symbol: sym}
}

func TestReplaceAndLoadSymbols(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	records := []Record{
		makeRecord(0, "alpha", "a.go"),
		makeRecord(1, "Beta.run", "b.go"),
		makeRecord(2, "gamma", "c.go"),
	}
	require.NoError(t, store.ReplaceSymbols(ctx, records))

	loaded, err := store.LoadSymbols(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 3)

	for i, rec := range loaded {
		assert.Equal(t, i, rec.Internal, "load order must follow internal id")
		want := records[i].Symbol
		assert.Equal(t, want.ID, rec.Symbol.ID)
		assert.Equal(t, want.Name, rec.Symbol.Name)
		assert.Equal(t, want.Kind, rec.Symbol.Kind)
		assert.Equal(t, want.Dependencies, rec.Symbol.Dependencies)
		assert.Equal(t, want.Embedding, rec.Symbol.Embedding)
		assert.Equal(t, want.Weights, rec.Symbol.Weights)
	}

	count, err := store.GetMeta(ctx, MetaSymbolCount)
	require.NoError(t, err)
	assert.Equal(t, "3", count)
}

func TestReplaceSymbolsOverwrites(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.ReplaceSymbols(ctx, []Record{
		makeRecord(0, "old", "old.go"),
	}))
	require.NoError(t, store.ReplaceSymbols(ctx, []Record{
		makeRecord(0, "new", "new.go"),
		makeRecord(1, "newer", "new.go"),
	}))

	loaded, err := store.LoadSymbols(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "new", loaded[0].Symbol.Name)
}

func TestSymbolWithoutEmbedding(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	rec := makeRecord(0, "plain", "p.go")
	rec.Symbol.Embedding = nil
	require.NoError(t, store.ReplaceSymbols(ctx, []Record{rec}))

	loaded, err := store.LoadSymbols(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.False(t, loaded[0].Symbol.HasEmbedding())
}

func TestMetaRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.GetMeta(ctx, MetaDimension)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.SetMeta(ctx, MetaDimension, "768"))
	require.NoError(t, store.SetMeta(ctx, MetaDimension, "384")) // upsert

	val, err := store.GetMeta(ctx, MetaDimension)
	require.NoError(t, err)
	assert.Equal(t, "384", val)
}

func TestVectorSerialization(t *testing.T) {
	vec := []float32{1.5, -2.25, 0, 3.14159}
	assert.Equal(t, vec, DeserializeVector(SerializeVector(vec)))

	assert.Nil(t, SerializeVector(nil))
	assert.Nil(t, DeserializeVector(nil))
}
