// Package vecindex implements the symbol index: an append-only HNSW
// approximate-nearest-neighbor structure over symbol embeddings, plus the
// id and name lookup maps the rest of the engine resolves against.
//
// Embeddings are L2-normalized on insertion so that cosine similarity
// reduces to an inner product. Symbols without an embedding are held in
// the arena (they resolve by id and name, and participate in graph
// expansion) but are never inserted into the ANN structure.
//
// An index persists as two artifacts in one directory: the HNSW graph
// blob (index.hnsw) and the symbol metadata database (symbols.db, see
// internal/storage). On load the lookup maps are always rebuilt from the
// metadata rows; serialized maps are never trusted.
//
// A loaded index is read-only and safe for concurrent readers. Reindexing
// builds a fresh index and swaps the handle (see internal/pipeline).
package vecindex
