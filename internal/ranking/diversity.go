package ranking

import "github.com/codegraph-qa/codegraph/pkg/types"

// SelectDiverse walks the scored candidates in order, drops repeated
// symbol ids, and caps the survivors at max. Order among survivors is
// preserved, so the highest-scored occurrence of each symbol wins.
// A non-positive max disables the cap.
func SelectDiverse(cands []types.Candidate, max int) []types.Candidate {
	seen := make(map[string]struct{}, len(cands))
	out := make([]types.Candidate, 0, len(cands))
	for _, c := range cands {
		if max > 0 && len(out) >= max {
			break
		}
		if _, ok := seen[c.Symbol.ID]; ok {
			continue
		}
		seen[c.Symbol.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}
