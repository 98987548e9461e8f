package types

import "errors"

// Domain errors surfaced at the retrieval boundary
var (
	// ErrIndexNotFound means no persisted index exists for the project;
	// the caller should prompt a (re)index.
	ErrIndexNotFound = errors.New("no index found for project")

	// ErrEmbeddingFailed is fatal for the current request only: without a
	// query vector there is no search.
	ErrEmbeddingFailed = errors.New("query embedding failed")

	// ErrDimensionMismatch means a vector's length does not match the
	// index's configured embedding dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrRebuildInProgress means an exclusive rebuild already holds the
	// project's build lock.
	ErrRebuildInProgress = errors.New("rebuild already in progress")
)
