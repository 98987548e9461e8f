// Package expander grows a bounded candidate set from vector-search seeds
// by walking dependency edges breadth-first with exponential score decay.
//
// Scores compound hop over hop: a candidate two hops out decays from its
// parent's already-decayed score, not from the seed similarity. Locality
// and exact-name heuristics boost edges; a force-fill fallback tops the
// set back up from the seed list when the dependency graph is too sparse
// to feed the context assembler.
package expander

import (
	"math"
	"sort"

	"github.com/codegraph-qa/codegraph/internal/graph"
	"github.com/codegraph-qa/codegraph/pkg/types"
)

// Params bounds one expansion run.
type Params struct {
	// MaxNodes is the hard cap on the visited set.
	MaxNodes int
	// MaxHops stops expansion of nodes at that distance.
	MaxHops int
	// DecayAlpha is the per-hop exponential decay rate.
	DecayAlpha float64
	// SeedCap bounds the initial frontier taken from the seed list.
	SeedCap int
	// FillFloor triggers force-fill when fewer nodes were visited.
	FillFloor int
	// FillTarget is where force-fill stops adding seeds.
	FillTarget int
}

// DefaultParams mirrors the reference tuning: a 150-node cap, 4 hops of
// slow decay, a 40-seed frontier, and an 80/100 force-fill band.
func DefaultParams() Params {
	return Params{
		MaxNodes:   150,
		MaxHops:    4,
		DecayAlpha: 0.1,
		SeedCap:    40,
		FillFloor:  80,
		FillTarget: 100,
	}
}

type queueItem struct {
	sym   *types.Symbol
	dist  int
	score float64
}

// Expand walks dependency edges from the seed candidates and returns the
// visited set sorted by descending graph score. Seeds must already be
// sorted by similarity. Output size never exceeds p.MaxNodes.
func Expand(seeds []types.Candidate, g *graph.Graph, p Params) []types.Candidate {
	visited := make(map[string]*types.Candidate)
	var order []*types.Candidate
	var queue []queueItem

	record := func(sym *types.Symbol, dist int, score float64, similarity float64) *types.Candidate {
		c := &types.Candidate{
			Symbol:     sym,
			Similarity: similarity,
			Distance:   dist,
			GraphScore: score,
		}
		visited[sym.ID] = c
		order = append(order, c)
		return c
	}

	// Seed the frontier from the head of the list; first write wins when
	// two seeds carry the same symbol.
	frontier := seeds
	if p.SeedCap > 0 && len(frontier) > p.SeedCap {
		frontier = frontier[:p.SeedCap]
	}
	for _, seed := range frontier {
		if len(visited) >= p.MaxNodes {
			break
		}
		if _, ok := visited[seed.Symbol.ID]; ok {
			continue
		}
		record(seed.Symbol, 0, seed.Similarity, seed.Similarity)
		queue = append(queue, queueItem{sym: seed.Symbol, dist: 0, score: seed.Similarity})
	}

	// FIFO traversal with compounding decay.
traversal:
	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		if item.dist >= p.MaxHops {
			continue
		}

		for _, dep := range item.sym.Dependencies {
			for _, cand := range g.Resolve(dep) {
				if _, ok := visited[cand.ID]; ok {
					continue
				}
				if len(visited) >= p.MaxNodes {
					break traversal
				}

				// Boosts overwrite rather than multiply: same-file and
				// exact-name together yield the exact-name value.
				boost := 1.0
				if cand.FilePath == item.sym.FilePath {
					boost = 1.5
				}
				if cand.Name == dep {
					boost = 1.3
				}

				newDist := item.dist + 1
				newScore := item.score * math.Exp(-p.DecayAlpha*float64(newDist)) * boost

				record(cand, newDist, newScore, 0)
				queue = append(queue, queueItem{sym: cand, dist: newDist, score: newScore})
			}
		}
	}

	// Force-fill: a sparse or disconnected graph must not starve the
	// assembler. Walk the full seed list, not just the frontier.
	if len(visited) < p.FillFloor {
		for _, seed := range seeds {
			if len(visited) >= p.FillTarget || len(visited) >= p.MaxNodes {
				break
			}
			if _, ok := visited[seed.Symbol.ID]; ok {
				continue
			}
			record(seed.Symbol, 0, seed.Similarity, seed.Similarity)
		}
	}

	results := make([]types.Candidate, len(order))
	for i, c := range order {
		results[i] = *c
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].GraphScore > results[j].GraphScore
	})
	return results
}
