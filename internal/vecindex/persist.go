package vecindex

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/codegraph-qa/codegraph/internal/storage"
	"github.com/codegraph-qa/codegraph/pkg/types"
)

const (
	// IndexFileName holds the serialized HNSW graph structure.
	IndexFileName = "index.hnsw"
	// SymbolsFileName holds the symbol metadata database.
	SymbolsFileName = "symbols.db"
)

// Save persists the index into dir as two artifacts: the HNSW structure
// blob and the symbol metadata database. load(save(x)) is observationally
// equivalent to x for every public operation.
func (idx *Index) Save(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, IndexFileName))
	if err != nil {
		return fmt.Errorf("create index blob: %w", err)
	}
	if err := idx.graph.Export(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("export hnsw graph: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close index blob: %w", err)
	}

	store, err := storage.Open(filepath.Join(dir, SymbolsFileName))
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	records := make([]storage.Record, 0, len(idx.arena))
	for internal := 0; internal < idx.next; internal++ {
		sym, ok := idx.arena[internal]
		if !ok {
			continue
		}
		records = append(records, storage.Record{Internal: internal, Symbol: sym})
	}

	if err := store.ReplaceSymbols(ctx, records); err != nil {
		return err
	}
	if err := store.SetMeta(ctx, storage.MetaFormatVersion, storage.FormatVersion); err != nil {
		return err
	}
	if err := store.SetMeta(ctx, storage.MetaDimension, strconv.Itoa(idx.opts.Dimension)); err != nil {
		return err
	}
	return nil
}

// Load reads a persisted index from dir. The two artifacts load
// concurrently; every id/name lookup map is rebuilt from the symbol rows
// rather than deserialized. A missing directory or artifact yields
// types.ErrIndexNotFound.
func Load(ctx context.Context, dir string, opts Options) (*Index, error) {
	dbPath := filepath.Join(dir, SymbolsFileName)
	blobPath := filepath.Join(dir, IndexFileName)
	for _, p := range []string{dbPath, blobPath} {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", types.ErrIndexNotFound, dir)
		}
	}

	var (
		records []storage.Record
		dim     int
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		store, err := storage.Open(dbPath)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		version, err := store.GetMeta(gctx, storage.MetaFormatVersion)
		if err != nil {
			return fmt.Errorf("read format version: %w", err)
		}
		if version != storage.FormatVersion {
			return fmt.Errorf("unsupported index format version %q", version)
		}

		dimStr, err := store.GetMeta(gctx, storage.MetaDimension)
		if err != nil {
			return fmt.Errorf("read dimension: %w", err)
		}
		dim, err = strconv.Atoi(dimStr)
		if err != nil {
			return fmt.Errorf("parse dimension %q: %w", dimStr, err)
		}

		records, err = store.LoadSymbols(gctx)
		return err
	})

	var blob *os.File
	g.Go(func() error {
		var err error
		blob, err = os.Open(blobPath)
		if err != nil {
			return fmt.Errorf("open index blob: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		if blob != nil {
			_ = blob.Close()
		}
		return nil, err
	}
	defer func() { _ = blob.Close() }()

	if opts.Dimension != 0 && opts.Dimension != dim {
		return nil, fmt.Errorf("%w: persisted %d, configured %d",
			types.ErrDimensionMismatch, dim, opts.Dimension)
	}
	opts.Dimension = dim

	idx, err := New(opts)
	if err != nil {
		return nil, err
	}
	if err := idx.graph.Import(bufio.NewReader(blob)); err != nil {
		return nil, fmt.Errorf("import hnsw graph: %w", err)
	}

	for _, rec := range records {
		idx.arena[rec.Internal] = rec.Symbol
		idx.byID[rec.Symbol.ID] = rec.Internal
		if _, taken := idx.byName[rec.Symbol.Name]; !taken {
			idx.byName[rec.Symbol.Name] = rec.Internal
		}
		if rec.Internal >= idx.next {
			idx.next = rec.Internal + 1
		}
	}

	return idx, nil
}
