package types

// Candidate is the ephemeral wrapper a retrieval run attaches to a symbol.
// It is created per query and discarded after the pipeline finishes; it is
// never persisted.
type Candidate struct {
	Symbol *Symbol

	// Similarity is the cosine similarity from the seed vector search,
	// in [-1, 1]. Zero for candidates discovered only by expansion.
	Similarity float64

	// Distance is the hop count from the closest seed (0 for seeds).
	Distance int

	// GraphScore is the distance-decayed, boost-adjusted score assigned
	// during graph expansion.
	GraphScore float64

	// FinalScore folds the structural weight into the graph score, or the
	// reranker's normalized relevance when reranking ran.
	FinalScore float64
}

// Summary is the sanitized projection of a candidate returned when the
// caller wants nodes for user selection instead of raw file content.
type Summary struct {
	ID         string
	Name       string
	FilePath   string
	Kind       SymbolKind
	FinalScore float64
	DocSummary string
}

// Summarize strips a candidate down to its sanitized projection.
func (c *Candidate) Summarize() Summary {
	return Summary{
		ID:         c.Symbol.ID,
		Name:       c.Symbol.Name,
		FilePath:   c.Symbol.FilePath,
		Kind:       c.Symbol.Kind,
		FinalScore: c.FinalScore,
		DocSummary: c.Symbol.DocSummary,
	}
}
