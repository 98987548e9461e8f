package types

import (
	"errors"
	"strings"
)

// SymbolKind represents the kind of indexed code unit
type SymbolKind string

const (
	KindFile     SymbolKind = "file"
	KindClass    SymbolKind = "class"
	KindFunction SymbolKind = "function"
	KindMethod   SymbolKind = "method"
)

// Weights holds the precomputed scoring dimensions of a symbol.
// All values live in [0, 1]. Structural is recomputed by the batch
// re-weighting pass; Complexity and TypeBias are set at extraction time.
type Weights struct {
	Structural float64
	Complexity float64
	TypeBias   float64
}

// DefaultWeights returns the weights assigned to a freshly created symbol.
func DefaultWeights() Weights {
	return Weights{
		Structural: 0.5,
		Complexity: 0.5,
		TypeBias:   1.0,
	}
}

// Symbol represents one indexable unit of code extracted from a source
// codebase. Dependencies are plain name strings, not resolved ids: a name
// may match zero, one, or many symbols in the graph.
type Symbol struct {
	// Identification
	ID       string // Unique; derived from (file path, qualified name)
	Name     string // Simple or dotted qualified name, e.g. "Class.method"
	FilePath string // Source-relative path
	Kind     SymbolKind

	// Content
	Content    string // Full body, or truncated preview for classes/files
	DocSummary string

	// Graph edges by name. Duplicates collapse at construction.
	Dependencies []string

	// Embedding vector, or nil if the symbol has not been embedded.
	// Symbols without an embedding are excluded from the vector index
	// but still resolve through the symbol graph.
	Embedding []float32

	Weights Weights
}

// SymbolID derives the deterministic unique id for a symbol.
func SymbolID(filePath, name string) string {
	return filePath + "::" + name
}

// NewSymbol creates a symbol with a derived id, deduplicated dependencies,
// and default weights.
func NewSymbol(name, filePath string, kind SymbolKind, content string, deps []string) *Symbol {
	return &Symbol{
		ID:           SymbolID(filePath, name),
		Name:         name,
		FilePath:     filePath,
		Kind:         kind,
		Content:      content,
		Dependencies: dedupeDeps(deps),
		Weights:      DefaultWeights(),
	}
}

// SimpleName returns the trailing component of a dotted name, or the name
// itself when it is not dotted.
func (s *Symbol) SimpleName() string {
	if i := strings.LastIndex(s.Name, "."); i >= 0 {
		return s.Name[i+1:]
	}
	return s.Name
}

// HasEmbedding reports whether the symbol carries an embedding vector.
func (s *Symbol) HasEmbedding() bool {
	return len(s.Embedding) > 0
}

// ValidateKind checks if the symbol kind is valid
func (s *Symbol) ValidateKind() error {
	switch s.Kind {
	case KindFile, KindClass, KindFunction, KindMethod:
		return nil
	default:
		return errors.New("invalid symbol kind")
	}
}

// Validate performs comprehensive validation of the symbol
func (s *Symbol) Validate() error {
	if s.Name == "" {
		return errors.New("symbol name is required")
	}

	if s.FilePath == "" {
		return errors.New("symbol file path is required")
	}

	if err := s.ValidateKind(); err != nil {
		return err
	}

	if s.ID == "" {
		return errors.New("symbol id is required")
	}

	if w := s.Weights; w.Structural < 0 || w.Structural > 1 ||
		w.Complexity < 0 || w.Complexity > 1 ||
		w.TypeBias < 0 || w.TypeBias > 1 {
		return errors.New("symbol weights must be in [0, 1]")
	}

	return nil
}

// dedupeDeps collapses duplicate dependency names preserving first-seen order.
func dedupeDeps(deps []string) []string {
	if len(deps) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(deps))
	out := make([]string, 0, len(deps))
	for _, d := range deps {
		if d == "" {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out
}
