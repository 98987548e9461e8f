package vecindex

import (
	"fmt"
	"math"
	"sort"

	"github.com/coder/hnsw"

	"github.com/codegraph-qa/codegraph/pkg/types"
)

// Options configures index geometry.
type Options struct {
	// Dimension is the embedding dimension; required.
	Dimension int
	// M is the maximum HNSW neighbor count per layer (0 = default 32).
	M int
	// EfSearch is the HNSW search beam width (0 = default 64).
	EfSearch int
}

func (o Options) withDefaults() Options {
	if o.M == 0 {
		o.M = 32
	}
	if o.EfSearch == 0 {
		o.EfSearch = 64
	}
	return o
}

// Index is the symbol index: an HNSW graph over embedded symbols plus an
// arena of all symbols with id and name lookup maps.
type Index struct {
	opts Options

	graph *hnsw.Graph[int]

	// arena maps internal id -> symbol, for every added symbol.
	// Internal ids are assigned monotonically and never reused.
	arena map[int]*types.Symbol
	next  int

	byID map[string]int
	// byName holds one arbitrary match per name: the first inserted wins.
	byName map[string]int
}

// New creates an empty index.
func New(opts Options) (*Index, error) {
	opts = opts.withDefaults()
	if opts.Dimension <= 0 {
		return nil, fmt.Errorf("%w: dimension %d", types.ErrDimensionMismatch, opts.Dimension)
	}

	g := hnsw.NewGraph[int]()
	g.M = opts.M
	g.EfSearch = opts.EfSearch
	g.Distance = hnsw.CosineDistance

	return &Index{
		opts:   opts,
		graph:  g,
		arena:  make(map[int]*types.Symbol),
		byID:   make(map[string]int),
		byName: make(map[string]int),
	}, nil
}

// Dimension returns the configured embedding dimension.
func (idx *Index) Dimension() int { return idx.opts.Dimension }

// Len returns the total number of symbols in the arena, embedded or not.
func (idx *Index) Len() int { return len(idx.arena) }

// IndexedLen returns the number of symbols in the ANN structure.
func (idx *Index) IndexedLen() int { return idx.graph.Len() }

// Add appends symbols to the index. Symbols without an embedding join the
// arena only. Embedded symbols are L2-normalized in place and inserted
// into the ANN structure. Symbols whose id is already present are
// dropped. The insert is not transactional: an error mid-batch leaves the
// symbols added so far in place.
func (idx *Index) Add(symbols []*types.Symbol) error {
	for _, sym := range symbols {
		if _, exists := idx.byID[sym.ID]; exists {
			continue
		}

		if sym.HasEmbedding() {
			if len(sym.Embedding) != idx.opts.Dimension {
				return fmt.Errorf("%w: symbol %s has %d, index wants %d",
					types.ErrDimensionMismatch, sym.ID, len(sym.Embedding), idx.opts.Dimension)
			}
			normalize(sym.Embedding)
		}

		internal := idx.next
		idx.next++

		idx.arena[internal] = sym
		idx.byID[sym.ID] = internal
		if _, taken := idx.byName[sym.Name]; !taken {
			idx.byName[sym.Name] = internal
		}

		if sym.HasEmbedding() {
			idx.graph.Add(hnsw.MakeNode(internal, sym.Embedding))
		}
	}
	return nil
}

// Search returns at most k candidates ordered by descending cosine
// similarity to the query vector. An empty index returns an empty slice.
func (idx *Index) Search(query []float32, k int) ([]types.Candidate, error) {
	if k <= 0 || idx.graph.Len() == 0 {
		return nil, nil
	}
	if len(query) != idx.opts.Dimension {
		return nil, fmt.Errorf("%w: query has %d, index wants %d",
			types.ErrDimensionMismatch, len(query), idx.opts.Dimension)
	}

	q := make([]float32, len(query))
	copy(q, query)
	normalize(q)

	if k > idx.graph.Len() {
		k = idx.graph.Len()
	}

	neighbors := idx.graph.Search(q, k)
	results := make([]types.Candidate, 0, len(neighbors))
	for _, node := range neighbors {
		sym, ok := idx.arena[node.Key]
		if !ok {
			continue
		}
		results = append(results, types.Candidate{
			Symbol:     sym,
			Similarity: dot(q, node.Value),
		})
	}

	// HNSW returns ascending distance, which for cosine distance is
	// descending similarity already; keep the guarantee explicit.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	return results, nil
}

// GetByID returns the symbol with the given unique id.
func (idx *Index) GetByID(id string) (*types.Symbol, bool) {
	internal, ok := idx.byID[id]
	if !ok {
		return nil, false
	}
	return idx.arena[internal], true
}

// GetByName returns one symbol registered under the name. When several
// symbols share a name the first inserted wins; disambiguation is the
// symbol graph's job.
func (idx *Index) GetByName(name string) (*types.Symbol, bool) {
	internal, ok := idx.byName[name]
	if !ok {
		return nil, false
	}
	return idx.arena[internal], true
}

// All returns every symbol in insertion order.
func (idx *Index) All() []*types.Symbol {
	out := make([]*types.Symbol, 0, len(idx.arena))
	for internal := 0; internal < idx.next; internal++ {
		if sym, ok := idx.arena[internal]; ok {
			out = append(out, sym)
		}
	}
	return out
}

// normalize scales v to unit L2 norm in place. Zero vectors are left
// untouched.
func normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
}

// dot computes the inner product of two equal-length vectors. Under L2
// normalization this is the cosine similarity, in [-1, 1].
func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
