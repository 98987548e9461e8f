// Package graph provides the in-memory adjacency view over the symbol
// set: a multimap from name strings to the symbols that plausibly satisfy
// them, and the batch structural re-weighting pass.
//
// Dependency names are deliberately ambiguous: a simple name may denote
// methods on several unrelated classes, and a qualified name may shadow a
// simple one. Resolution returns every registered match; disambiguation
// by score happens downstream.
package graph

import (
	"strings"

	"github.com/codegraph-qa/codegraph/pkg/types"
)

// Graph resolves dependency name strings to candidate symbols.
type Graph struct {
	names map[string][]*types.Symbol
}

// Build constructs the name multimap from the full symbol set. Every
// symbol registers under its full name; dotted names additionally
// register under their trailing component. Registration order follows
// the slice, so Resolve returns symbols in insertion order.
func Build(symbols []*types.Symbol) *Graph {
	g := &Graph{names: make(map[string][]*types.Symbol, len(symbols))}
	for _, sym := range symbols {
		g.names[sym.Name] = append(g.names[sym.Name], sym)
		if strings.Contains(sym.Name, ".") {
			simple := sym.SimpleName()
			g.names[simple] = append(g.names[simple], sym)
		}
	}
	return g
}

// Resolve returns all symbols registered under the exact name, full or
// simple, in insertion order. An unknown name returns nil: external
// dependencies and stdlib calls are a normal, non-error outcome.
func (g *Graph) Resolve(name string) []*types.Symbol {
	return g.names[name]
}

// Names returns the number of distinct registered name keys.
func (g *Graph) Names() int {
	return len(g.names)
}
