package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/codegraph-qa/codegraph/internal/config"
	"github.com/codegraph-qa/codegraph/internal/graph"
	"github.com/codegraph-qa/codegraph/internal/vecindex"
	"github.com/codegraph-qa/codegraph/pkg/types"
)

// handle is one project's immutable serving state. Retrieval reads a
// handle; a rebuild constructs a fresh one and swaps the pointer, so
// in-flight queries keep the index they started with.
type handle struct {
	index *vecindex.Index
	graph *graph.Graph
}

// project tracks one project's handle and its exclusive rebuild lock.
type project struct {
	loadMu  sync.Mutex
	current atomic.Pointer[handle]
	rebuild rebuildLock
}

// Manager owns per-project index lifecycle: lazy load from disk, full
// rebuild from a fresh symbol set, and the handle swap in between.
type Manager struct {
	baseDir string
	opts    vecindex.Options

	mu       sync.Mutex
	projects map[string]*project

	onSwap func(projectID string)
	logger *slog.Logger
}

func newManager(cfg *config.Config, onSwap func(string), logger *slog.Logger) *Manager {
	return &Manager{
		baseDir: cfg.Index.Dir,
		opts: vecindex.Options{
			Dimension: cfg.Index.Dimension,
			M:         cfg.Index.M,
			EfSearch:  cfg.Index.EfSearch,
		},
		projects: make(map[string]*project),
		onSwap:   onSwap,
		logger:   logger.With("component", "manager"),
	}
}

func (m *Manager) getProject(projectID string) *project {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[projectID]
	if !ok {
		p = &project{}
		m.projects[projectID] = p
	}
	return p
}

func (m *Manager) projectDir(projectID string) string {
	return filepath.Join(m.baseDir, projectID)
}

// Handle returns the project's serving state, loading the persisted
// index on first access. Concurrent first accesses serialize on the
// load; later accesses are a single atomic read.
func (m *Manager) Handle(ctx context.Context, projectID string) (*handle, error) {
	p := m.getProject(projectID)
	if h := p.current.Load(); h != nil {
		return h, nil
	}

	p.loadMu.Lock()
	defer p.loadMu.Unlock()
	if h := p.current.Load(); h != nil {
		return h, nil
	}

	idx, err := vecindex.Load(ctx, m.projectDir(projectID), m.opts)
	if err != nil {
		return nil, err
	}
	h := &handle{index: idx, graph: graph.Build(idx.All())}
	p.current.Store(h)

	m.logger.Info("project index loaded",
		"project", projectID, "symbols", idx.Len(), "indexed", idx.IndexedLen())
	return h, nil
}

// Rebuild replaces a project's index from a fresh symbol set: structural
// weights are recomputed over the whole set, the new index is persisted
// into the project directory, and the serving handle is swapped only
// after the persist succeeds. Readers are never blocked; a concurrent
// rebuild of the same project fails with types.ErrRebuildInProgress.
//
// The rebuild lock is per process. A base directory must have a single
// writing process; concurrent rebuilds from separate processes are not
// coordinated.
func (m *Manager) Rebuild(ctx context.Context, projectID string, symbols []*types.Symbol) error {
	p := m.getProject(projectID)
	if !p.rebuild.TryAcquire() {
		return fmt.Errorf("%w: project %s", types.ErrRebuildInProgress, projectID)
	}
	defer p.rebuild.Release()

	graph.ComputeStructuralWeights(symbols)

	idx, err := vecindex.New(m.opts)
	if err != nil {
		return err
	}
	if err := idx.Add(symbols); err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	// Persist into a staging directory and promote it, so a failed save
	// never corrupts the last good on-disk index.
	dir := m.projectDir(projectID)
	staging := dir + ".rebuild"
	if err := os.RemoveAll(staging); err != nil {
		return fmt.Errorf("clear staging dir: %w", err)
	}
	if err := idx.Save(ctx, staging); err != nil {
		_ = os.RemoveAll(staging)
		return err
	}
	if err := promote(staging, dir); err != nil {
		_ = os.RemoveAll(staging)
		return err
	}

	p.current.Store(&handle{index: idx, graph: graph.Build(idx.All())})
	if m.onSwap != nil {
		m.onSwap(projectID)
	}

	m.logger.Info("project index rebuilt",
		"project", projectID, "symbols", idx.Len(), "indexed", idx.IndexedLen())
	return nil
}

// promote moves the staged artifacts over the current ones. Each file
// rename is atomic and the project directory itself is never removed, so
// a concurrent load from another process finds a complete artifact set
// rather than a missing index.
func promote(staging, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create project dir: %w", err)
	}
	for _, name := range []string{vecindex.IndexFileName, vecindex.SymbolsFileName} {
		if err := os.Rename(filepath.Join(staging, name), filepath.Join(dir, name)); err != nil {
			return fmt.Errorf("promote %s: %w", name, err)
		}
	}
	return os.RemoveAll(staging)
}
