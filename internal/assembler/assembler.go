// Package assembler packs ranked candidates into a single context block
// under a hard token budget. Packing is a strict greedy prefix: the first
// entry that would overflow the budget stops assembly entirely, even if a
// later, smaller entry would still fit. That keeps the output a
// deterministic function of the ranking.
package assembler

import (
	"fmt"
	"strings"

	"github.com/codegraph-qa/codegraph/pkg/types"
)

const entrySeparator = "--------------------------------------------------"

// TokenCounter reports the token cost of a piece of text. Implementations
// must be safe for concurrent use.
type TokenCounter interface {
	CountTokens(text string) (int, error)
}

// Context is an assembled context block plus enough metadata for the
// caller to detect truncation.
type Context struct {
	Text            string
	EntriesIncluded int
	TotalCandidates int
	Tokens          int
}

// Truncated reports whether the budget cut off any candidates.
func (c *Context) Truncated() bool {
	return c.EntriesIncluded < c.TotalCandidates
}

// Assembler builds context blocks with a fixed token budget and counter.
type Assembler struct {
	maxTokens int
	counter   TokenCounter
}

// New returns an assembler with the given budget. A nil counter falls
// back to the length heuristic for every entry.
func New(maxTokens int, counter TokenCounter) *Assembler {
	return &Assembler{maxTokens: maxTokens, counter: counter}
}

// Assemble formats candidates in order and accumulates them until the
// next entry would exceed the budget. Entries already accepted stay in
// the output; nothing after the stopping point is considered.
func (a *Assembler) Assemble(cands []types.Candidate) *Context {
	var b strings.Builder
	out := &Context{TotalCandidates: len(cands)}

	for _, c := range cands {
		entry := formatEntry(c.Symbol)
		cost := a.countTokens(entry)
		if out.Tokens+cost > a.maxTokens {
			break
		}
		b.WriteString(entry)
		out.Tokens += cost
		out.EntriesIncluded++
	}

	out.Text = b.String()
	return out
}

func (a *Assembler) countTokens(text string) int {
	if a.counter != nil {
		if n, err := a.counter.CountTokens(text); err == nil {
			return n
		}
	}
	// Heuristic used whenever real tokenization is unavailable.
	return len(text) / 4
}

func formatEntry(s *types.Symbol) string {
	return fmt.Sprintf("\n\n# FILE: %s | NODE: %s (Type: %s)\n%s\n%s\n%s\n",
		s.FilePath, s.Name, s.Kind, entrySeparator, s.Content, entrySeparator)
}
