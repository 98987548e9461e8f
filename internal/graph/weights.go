package graph

import (
	"strings"

	"github.com/codegraph-qa/codegraph/pkg/types"
)

// ComputeStructuralWeights recomputes Weights.Structural for every symbol
// from the in-degree of name references across the whole set, scaled into
// [0.3, 1.0] so that even unreferenced symbols keep a floor weight.
//
// A dotted dependency name counts for both the full name and its simple
// suffix, and a symbol collects references under both of its registered
// names. This is an exclusive batch pass: it mutates the symbol set and
// must run before the index is built or swapped in, never during serving.
func ComputeStructuralWeights(symbols []*types.Symbol) {
	incoming := make(map[string]int)
	for _, sym := range symbols {
		for _, dep := range sym.Dependencies {
			incoming[dep]++
			if i := strings.LastIndex(dep, "."); i >= 0 {
				incoming[dep[i+1:]]++
			}
		}
	}

	maxCalls := 1
	for _, n := range incoming {
		if n > maxCalls {
			maxCalls = n
		}
	}

	for _, sym := range symbols {
		calls := incoming[sym.Name]
		if strings.Contains(sym.Name, ".") {
			calls += incoming[sym.SimpleName()]
		}
		w := 0.3 + 0.7*float64(calls)/float64(maxCalls)
		// A qualified name collects from two buckets and can overshoot.
		if w > 1 {
			w = 1
		}
		sym.Weights.Structural = w
	}
}
