// Package types defines the domain model shared across the retrieval
// engine: code symbols with their dependency names and scoring weights,
// the ephemeral per-query Candidate wrapper, and the error taxonomy used
// at the pipeline boundary.
//
// Symbols are immutable after indexing except for Weights.Structural,
// which a batch re-weighting pass overwrites before an index is swapped
// in (see internal/graph).
package types
