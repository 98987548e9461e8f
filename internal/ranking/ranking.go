// Package ranking turns graph-expanded candidates into a final ordering.
// The structural pass folds each symbol's precomputed reference weight
// into its graph score; an optional reranker can then replace those
// scores with externally computed relevance. Reranking is best-effort
// and never fails a retrieval.
package ranking

import (
	"context"
	"log/slog"
	"sort"

	"github.com/codegraph-qa/codegraph/pkg/types"
)

// Structural weight modulates at most 20% of the final score; a symbol
// nobody references still keeps 80% of its graph score.
const (
	structuralBase  = 0.8
	structuralScale = 0.2
)

// previewLimit bounds the content slice handed to a reranker.
const previewLimit = 300

// Score computes FinalScore for every candidate from its graph score and
// the symbol's structural weight, then re-sorts descending. The sort is
// stable so graph-score ties keep their expansion order.
func Score(cands []types.Candidate) []types.Candidate {
	for i := range cands {
		w := cands[i].Symbol.Weights.Structural
		cands[i].FinalScore = cands[i].GraphScore * (structuralBase + structuralScale*w)
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].FinalScore > cands[j].FinalScore
	})
	return cands
}

// Doc is the projection of a candidate handed to a reranker. Content is
// truncated so batch payloads stay bounded regardless of symbol size.
type Doc struct {
	Name           string
	FilePath       string
	Kind           types.SymbolKind
	DocSummary     string
	ContentPreview string
}

// Reranker scores a batch of candidate documents against a query. Scores
// are returned in document order; their absolute scale does not matter,
// only the ordering, because the caller normalizes across the batch.
type Reranker interface {
	ScoreBatch(ctx context.Context, query string, docs []Doc) ([]float64, error)
}

// Rerank replaces FinalScore with the reranker's min-max-normalized
// relevance and re-sorts. A nil reranker, a scoring error, or a batch of
// the wrong length degrades to the incoming order with a warning; the
// candidates are returned unchanged in that case.
func Rerank(ctx context.Context, r Reranker, query string, cands []types.Candidate, logger *slog.Logger) []types.Candidate {
	if logger == nil {
		logger = slog.Default()
	}
	if r == nil || len(cands) == 0 {
		return cands
	}

	docs := make([]Doc, len(cands))
	for i, c := range cands {
		docs[i] = Doc{
			Name:           c.Symbol.Name,
			FilePath:       c.Symbol.FilePath,
			Kind:           c.Symbol.Kind,
			DocSummary:     c.Symbol.DocSummary,
			ContentPreview: preview(c.Symbol.Content),
		}
	}

	scores, err := r.ScoreBatch(ctx, query, docs)
	if err != nil {
		logger.Warn("reranker failed, keeping graph order", "error", err)
		return cands
	}
	if len(scores) != len(cands) {
		logger.Warn("reranker returned wrong batch size, keeping graph order",
			"want", len(cands), "got", len(scores))
		return cands
	}

	for i, s := range normalize(scores) {
		cands[i].FinalScore = s
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].FinalScore > cands[j].FinalScore
	})
	return cands
}

func preview(content string) string {
	if len(content) > previewLimit {
		return content[:previewLimit]
	}
	return content
}

// normalize min-max scales scores into [0, 1]. A constant batch carries
// no ordering information and maps everything to 0.5.
func normalize(scores []float64) []float64 {
	lo, hi := scores[0], scores[0]
	for _, s := range scores[1:] {
		if s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}

	out := make([]float64, len(scores))
	if hi == lo {
		for i := range out {
			out[i] = 0.5
		}
		return out
	}
	span := hi - lo
	for i, s := range scores {
		out[i] = (s - lo) / span
	}
	return out
}
