package expander

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codegraph-qa/codegraph/internal/graph"
	"github.com/codegraph-qa/codegraph/pkg/types"
)

func sym(name, path string, deps ...string) *types.Symbol {
	return types.NewSymbol(name, path, types.KindFunction, "body of "+name, deps)
}

func seedList(syms ...*types.Symbol) []types.Candidate {
	seeds := make([]types.Candidate, len(syms))
	for i, s := range syms {
		seeds[i] = types.Candidate{Symbol: s, Similarity: 0.9 - float64(i)*0.001}
	}
	return seeds
}

func findByName(t *testing.T, cands []types.Candidate, name string) types.Candidate {
	t.Helper()
	for _, c := range cands {
		if c.Symbol.Name == name {
			return c
		}
	}
	t.Fatalf("candidate %q not found", name)
	return types.Candidate{}
}

func TestChainDecayCompounds(t *testing.T) {
	// a -> b -> c, distinct files so no locality boost applies.
	a := sym("a", "a.py", "b")
	b := sym("b", "b.py", "c")
	c := sym("c", "c.py")
	g := graph.Build([]*types.Symbol{a, b, c})

	p := DefaultParams()
	p.DecayAlpha = 0.1

	out := Expand([]types.Candidate{{Symbol: a, Similarity: 0.9}}, g, p)
	require.Len(t, out, 3)

	ca := findByName(t, out, "a")
	cb := findByName(t, out, "b")
	cc := findByName(t, out, "c")

	assert.Equal(t, 0, ca.Distance)
	assert.Equal(t, 1, cb.Distance)
	assert.Equal(t, 2, cc.Distance)

	// Exact-name boost applies on both hops (dep string equals the full
	// name); decay compounds from the parent's score, not the seed's.
	wantB := 0.9 * math.Exp(-0.1) * 1.3
	wantC := wantB * math.Exp(-0.2) * 1.3
	assert.InDelta(t, wantB, cb.GraphScore, 1e-9)
	assert.InDelta(t, wantC, cc.GraphScore, 1e-9)
}

func TestChainDecayWithoutNameBoost(t *testing.T) {
	// Dependencies reference the simple suffix of dotted names, so the
	// exact-name boost stays off and the raw decay curve is observable.
	a := sym("a", "a.py", "run")
	b := sym("B.run", "b.py", "stop")
	c := sym("C.stop", "c.py")
	g := graph.Build([]*types.Symbol{a, b, c})

	p := DefaultParams()
	p.DecayAlpha = 0.1

	out := Expand([]types.Candidate{{Symbol: a, Similarity: 0.9}}, g, p)
	require.Len(t, out, 3)

	cb := findByName(t, out, "B.run")
	cc := findByName(t, out, "C.stop")

	wantB := 0.9 * math.Exp(-0.1)
	wantC := wantB * math.Exp(-0.2)
	assert.InDelta(t, wantB, cb.GraphScore, 1e-9)
	assert.InDelta(t, wantC, cc.GraphScore, 1e-9)
}

func TestBoostsOverwriteNotMultiply(t *testing.T) {
	// Candidate is in the same file AND matches the dependency string
	// exactly: the exact-name check runs last, so 1.3 wins, not 1.5*1.3.
	caller := sym("caller", "shared.py", "callee")
	callee := sym("callee", "shared.py")
	g := graph.Build([]*types.Symbol{caller, callee})

	p := DefaultParams()
	p.DecayAlpha = 0.1

	out := Expand([]types.Candidate{{Symbol: caller, Similarity: 1.0}}, g, p)
	cc := findByName(t, out, "callee")
	assert.InDelta(t, math.Exp(-0.1)*1.3, cc.GraphScore, 1e-9)
}

func TestSameFileBoostAlone(t *testing.T) {
	// Same file, but resolved through the simple-name suffix: 1.5 sticks.
	caller := sym("caller", "shared.py", "helper")
	callee := sym("Util.helper", "shared.py")
	g := graph.Build([]*types.Symbol{caller, callee})

	p := DefaultParams()
	p.DecayAlpha = 0.1

	out := Expand([]types.Candidate{{Symbol: caller, Similarity: 1.0}}, g, p)
	cc := findByName(t, out, "Util.helper")
	assert.InDelta(t, math.Exp(-0.1)*1.5, cc.GraphScore, 1e-9)
}

func TestForceFillSparseGraph(t *testing.T) {
	// 50 seeds, no edges at all: the frontier takes the first 40, the
	// force-fill floor tops the set back up with the remaining 10.
	syms := make([]*types.Symbol, 50)
	for i := range syms {
		syms[i] = sym(fmt.Sprintf("s%02d", i), fmt.Sprintf("f%02d.py", i))
	}
	g := graph.Build(syms)

	out := Expand(seedList(syms...), g, DefaultParams())
	assert.Len(t, out, 50)

	seen := make(map[string]bool)
	for _, c := range out {
		assert.Equal(t, 0, c.Distance, "fill candidates are seeds at distance 0")
		assert.Equal(t, c.Similarity, c.GraphScore, "fill score is the seed's own similarity")
		seen[c.Symbol.ID] = true
	}
	assert.Len(t, seen, 50)
}

func TestForceFillStopsAtTarget(t *testing.T) {
	syms := make([]*types.Symbol, 130)
	for i := range syms {
		syms[i] = sym(fmt.Sprintf("s%03d", i), fmt.Sprintf("f%03d.py", i))
	}
	g := graph.Build(syms)

	out := Expand(seedList(syms...), g, DefaultParams())
	// 40 from the frontier, then fill until the 100-node target.
	assert.Len(t, out, 100)
}

func TestForceFillSkippedWhenDense(t *testing.T) {
	// A hub with enough dependencies to clear the floor on its own.
	names := make([]string, 90)
	symbols := make([]*types.Symbol, 0, 91)
	for i := range names {
		names[i] = fmt.Sprintf("leaf%02d", i)
		symbols = append(symbols, sym(names[i], "leaves.py"))
	}
	hub := sym("hub", "hub.py", names...)
	symbols = append(symbols, hub)
	g := graph.Build(symbols)

	out := Expand([]types.Candidate{{Symbol: hub, Similarity: 1.0}}, g, DefaultParams())
	assert.Len(t, out, 91, "dense traversal must not force-fill")
}

func TestMaxNodesCap(t *testing.T) {
	names := make([]string, 200)
	symbols := make([]*types.Symbol, 0, 201)
	for i := range names {
		names[i] = fmt.Sprintf("leaf%03d", i)
		symbols = append(symbols, sym(names[i], "leaves.py"))
	}
	hub := sym("hub", "hub.py", names...)
	symbols = append(symbols, hub)
	g := graph.Build(symbols)

	p := DefaultParams()
	p.MaxNodes = 25

	out := Expand([]types.Candidate{{Symbol: hub, Similarity: 1.0}}, g, p)
	assert.LessOrEqual(t, len(out), 25)
}

func TestMaxHopsStopsExpansion(t *testing.T) {
	// Chain longer than max hops: nodes past the horizon stay unvisited.
	a := sym("n0", "0.py", "n1")
	b := sym("n1", "1.py", "n2")
	c := sym("n2", "2.py", "n3")
	d := sym("n3", "3.py")
	g := graph.Build([]*types.Symbol{a, b, c, d})

	p := DefaultParams()
	p.MaxHops = 2
	p.FillFloor = 0 // isolate traversal behavior

	out := Expand([]types.Candidate{{Symbol: a, Similarity: 1.0}}, g, p)
	assert.Len(t, out, 3, "n3 sits 3 hops out and must not be visited")
}

func TestDuplicateSeedsFirstWriteWins(t *testing.T) {
	a := sym("a", "a.py")
	seeds := []types.Candidate{
		{Symbol: a, Similarity: 0.9},
		{Symbol: a, Similarity: 0.2},
	}
	g := graph.Build([]*types.Symbol{a})

	out := Expand(seeds, g, DefaultParams())
	require.Len(t, out, 1)
	assert.InDelta(t, 0.9, out[0].GraphScore, 1e-9)
}

func TestOutputSortedByGraphScore(t *testing.T) {
	hub := sym("hub", "hub.py", "x", "y", "z")
	x := sym("x", "hub.py") // same-file boost
	y := sym("y", "other.py")
	z := sym("z", "other.py")
	g := graph.Build([]*types.Symbol{hub, x, y, z})

	out := Expand([]types.Candidate{{Symbol: hub, Similarity: 0.5}}, g, DefaultParams())
	for i := 1; i < len(out); i++ {
		assert.GreaterOrEqual(t, out[i-1].GraphScore, out[i].GraphScore)
	}
	assert.Equal(t, "hub", out[0].Symbol.Name)
}

func TestZeroDependenciesIsNormal(t *testing.T) {
	lone := sym("lone", "lone.py")
	g := graph.Build([]*types.Symbol{lone})

	p := DefaultParams()
	p.FillFloor = 0

	out := Expand([]types.Candidate{{Symbol: lone, Similarity: 0.7}}, g, p)
	require.Len(t, out, 1)
	assert.Equal(t, "lone", out[0].Symbol.Name)
}

func TestEmptySeeds(t *testing.T) {
	g := graph.Build(nil)
	assert.Empty(t, Expand(nil, g, DefaultParams()))
}
