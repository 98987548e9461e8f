// Package storage persists the symbol metadata half of a project index:
// every indexed symbol with its content, dependency names, weights, and
// normalized embedding blob, keyed by the vector index's internal id.
//
// One SQLite database exists per project. The database is written
// wholesale on (re)index and read wholesale on load; the vector index's
// lookup maps are always rebuilt from these rows, never deserialized.
//
// # Build Modes
//
// Two SQLite drivers are supported via build tags:
//
//	CGO_ENABLED=1 go build -tags sqlite_cgo ./...   # mattn/go-sqlite3
//	CGO_ENABLED=0 go build ./...                    # modernc.org/sqlite (default)
//
// The pure Go driver requires no C toolchain and is the default; the cgo
// driver is faster for bulk writes on large projects.
package storage
