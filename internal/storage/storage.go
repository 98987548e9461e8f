package storage

import (
	"context"
	"encoding/binary"
	"errors"
	"math"

	"github.com/codegraph-qa/codegraph/pkg/types"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
)

// Well-known metadata keys
const (
	MetaDimension     = "dimension"
	MetaFormatVersion = "format_version"
	MetaSymbolCount   = "symbol_count"
)

// FormatVersion is the persisted artifact format version. Load refuses
// databases written with a different major format.
const FormatVersion = "1"

// Record pairs a symbol with its internal vector-index id. Records are
// written in internal-id order and read back in the same order so that
// the vector index's reverse maps can be rebuilt deterministically.
type Record struct {
	Internal int
	Symbol   *types.Symbol
}

// SymbolStore persists the full symbol set of one project index.
type SymbolStore interface {
	// ReplaceSymbols atomically replaces the stored symbol set.
	ReplaceSymbols(ctx context.Context, records []Record) error

	// LoadSymbols returns all stored symbols ordered by internal id.
	LoadSymbols(ctx context.Context) ([]Record, error)

	// SetMeta stores an index metadata entry.
	SetMeta(ctx context.Context, key, value string) error

	// GetMeta reads an index metadata entry; ErrNotFound if absent.
	GetMeta(ctx context.Context, key string) (string, error)

	// Close releases the underlying database handle.
	Close() error
}

// SerializeVector converts a float32 slice to a byte blob (little-endian)
func SerializeVector(vector []float32) []byte {
	if len(vector) == 0 {
		return nil
	}
	blob := make([]byte, len(vector)*4)
	for i, v := range vector {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(v))
	}
	return blob
}

// DeserializeVector converts a byte blob back to a float32 slice
func DeserializeVector(blob []byte) []float32 {
	if len(blob) == 0 {
		return nil
	}
	vector := make([]float32, len(blob)/4)
	for i := range vector {
		bits := binary.LittleEndian.Uint32(blob[i*4:])
		vector[i] = math.Float32frombits(bits)
	}
	return vector
}
