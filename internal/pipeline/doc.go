// Package pipeline orchestrates a retrieval run end to end: optional
// query augmentation, query embedding, seed search, graph expansion,
// ranking, diversity filtering, optional reranking, and context
// assembly. It also owns per-project index lifecycle (load, rebuild,
// swap) and a TTL'd response cache.
//
// Optional stages degrade: a failed augmentation or reranker call logs
// a warning and the run continues without it. Embedding is the one
// external call that is fatal, because without a query vector there is
// nothing to search.
package pipeline
