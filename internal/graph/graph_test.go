package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codegraph-qa/codegraph/pkg/types"
)

func sym(name, path string, deps ...string) *types.Symbol {
	return types.NewSymbol(name, path, types.KindFunction, "body", deps)
}

func TestResolveFullAndSimpleNames(t *testing.T) {
	login := sym("Auth.login", "auth.py")
	g := Build([]*types.Symbol{login})

	assert.Equal(t, []*types.Symbol{login}, g.Resolve("Auth.login"))
	assert.Equal(t, []*types.Symbol{login}, g.Resolve("login"))
	assert.Nil(t, g.Resolve("Auth"))
}

func TestResolveFanOut(t *testing.T) {
	userSave := sym("User.save", "user.py")
	orderSave := sym("Order.save", "order.py")
	plainSave := sym("save", "util.py")
	g := Build([]*types.Symbol{userSave, orderSave, plainSave})

	// A simple name collects every method suffix plus the bare function,
	// in insertion order.
	got := g.Resolve("save")
	require.Len(t, got, 3)
	assert.Same(t, userSave, got[0])
	assert.Same(t, orderSave, got[1])
	assert.Same(t, plainSave, got[2])

	assert.Equal(t, []*types.Symbol{userSave}, g.Resolve("User.save"))
}

func TestResolveUnknownNameIsEmpty(t *testing.T) {
	g := Build([]*types.Symbol{sym("f", "f.py")})
	assert.Empty(t, g.Resolve("os.path.join"))
}

func TestUnembeddedSymbolsParticipate(t *testing.T) {
	plain := types.NewSymbol("config", "config.yaml", types.KindFile, "raw", nil)
	g := Build([]*types.Symbol{plain})
	assert.Equal(t, []*types.Symbol{plain}, g.Resolve("config"))
}

func TestComputeStructuralWeights(t *testing.T) {
	// hot is referenced by both callers, cold by none.
	hot := sym("hot", "a.py")
	cold := sym("cold", "a.py")
	caller1 := sym("caller1", "b.py", "hot")
	caller2 := sym("caller2", "c.py", "hot")
	symbols := []*types.Symbol{hot, cold, caller1, caller2}

	ComputeStructuralWeights(symbols)

	assert.InDelta(t, 1.0, hot.Weights.Structural, 1e-9, "max in-degree maps to 1.0")
	assert.InDelta(t, 0.3, cold.Weights.Structural, 1e-9, "unreferenced symbols keep the floor")
}

func TestComputeStructuralWeightsCountsSimpleSuffix(t *testing.T) {
	method := sym("User.save", "user.py")
	// One caller references the qualified name, another the simple name.
	qualified := sym("q", "q.py", "User.save")
	simple := sym("s", "s.py", "save")
	symbols := []*types.Symbol{method, qualified, simple}

	ComputeStructuralWeights(symbols)

	// The qualified dep feeds both the "User.save" and "save" buckets and
	// the simple dep feeds "save", so the method collects 3 references
	// against a bucket max of 2 and clamps at the ceiling.
	assert.InDelta(t, 1.0, method.Weights.Structural, 1e-9)
}

func TestComputeStructuralWeightsEmptySet(t *testing.T) {
	assert.NotPanics(t, func() { ComputeStructuralWeights(nil) })
}
