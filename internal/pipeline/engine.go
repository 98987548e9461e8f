package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/codegraph-qa/codegraph/internal/assembler"
	"github.com/codegraph-qa/codegraph/internal/config"
	"github.com/codegraph-qa/codegraph/internal/expander"
	"github.com/codegraph-qa/codegraph/internal/ranking"
	"github.com/codegraph-qa/codegraph/pkg/types"
)

// Mode selects what a retrieval run produces.
type Mode string

const (
	// ModeContext runs the full pipeline and returns an assembled
	// context block.
	ModeContext Mode = "context"
	// ModeRawCandidates stops after diversity filtering and returns
	// sanitized candidate summaries for user selection. Reranking and
	// assembly are skipped.
	ModeRawCandidates Mode = "raw_candidates"
)

// Embedder turns text into an embedding vector. The dimension must match
// the index's configured dimension.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// HypotheticalGenerator produces a hypothetical answer document for a
// query. Best-effort: callers treat any error as "no augmentation".
type HypotheticalGenerator interface {
	Generate(ctx context.Context, query string) (string, error)
}

// Result is the outcome of one retrieval run.
type Result struct {
	Mode Mode

	// Context is set in ModeContext.
	Context *assembler.Context
	// Candidates is set in ModeRawCandidates.
	Candidates []types.Summary

	SeedCount     int
	ExpandedCount int
	Augmented     bool
	CacheHit      bool
	Duration      time.Duration
}

// Engine is the retrieval pipeline over a set of managed projects.
type Engine struct {
	cfg       *config.Config
	manager   *Manager
	embedder  Embedder
	generator HypotheticalGenerator
	reranker  ranking.Reranker
	assembler *assembler.Assembler
	cache     *responseCache
	retry     RetryConfig
	logger    *slog.Logger
}

// Collaborators are the external services a pipeline consumes. Embedder
// is required; the rest are optional and their absence disables the
// corresponding stage.
type Collaborators struct {
	Embedder  Embedder
	Generator HypotheticalGenerator
	Reranker  ranking.Reranker
	Tokens    assembler.TokenCounter
	Logger    *slog.Logger
}

// NewEngine creates a pipeline from configuration and collaborators.
func NewEngine(cfg *config.Config, c Collaborators) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if c.Embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "pipeline")

	e := &Engine{
		cfg:       cfg,
		embedder:  c.Embedder,
		generator: c.Generator,
		reranker:  c.Reranker,
		assembler: assembler.New(cfg.Assemble.MaxTokens, c.Tokens),
		cache: newResponseCache(cfg.Retrieve.CacheSize,
			time.Duration(cfg.Retrieve.CacheTTLSeconds)*time.Second),
		retry:  DefaultRetryConfig(),
		logger: logger,
	}
	e.manager = newManager(cfg, e.invalidate, logger)
	return e, nil
}

// Manager exposes the project index manager for rebuilds.
func (e *Engine) Manager() *Manager {
	return e.manager
}

// Retrieve runs the pipeline for one query against one project.
//
// Zero seeds is a valid outcome and yields an empty result, not an
// error. A missing project index yields types.ErrIndexNotFound; a failed
// query embedding yields types.ErrEmbeddingFailed.
func (e *Engine) Retrieve(ctx context.Context, projectID, query string, mode Mode) (*Result, error) {
	start := time.Now()

	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}
	switch mode {
	case "":
		mode = ModeContext
	case ModeContext, ModeRawCandidates:
	default:
		return nil, fmt.Errorf("unsupported retrieval mode: %s", mode)
	}

	key := cacheKey(projectID, query, mode)
	if cached := e.cache.get(key); cached != nil {
		cached.CacheHit = true
		cached.Duration = time.Since(start)
		return cached, nil
	}

	handle, err := e.manager.Handle(ctx, projectID)
	if err != nil {
		return nil, err
	}

	result := &Result{Mode: mode}

	// Optional augmentation: a hypothetical answer document tends to
	// embed closer to the code that answers the query than the query
	// itself does.
	text := query
	if e.cfg.Retrieve.UseHyDE && e.generator != nil {
		doc, err := retryWithBackoff(ctx, e.retry, func() (string, error) {
			return e.generator.Generate(ctx, query)
		})
		if err != nil {
			e.logger.Warn("query augmentation failed, using raw query",
				"project", projectID, "error", err)
		} else if doc != "" {
			text += "\n" + doc
			result.Augmented = true
		}
	}

	vector, err := retryWithBackoff(ctx, e.retry, func() ([]float32, error) {
		return e.embedder.Embed(ctx, text)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrEmbeddingFailed, err)
	}

	seeds, err := handle.index.Search(vector, e.cfg.Retrieve.SeedK)
	if err != nil {
		return nil, fmt.Errorf("seed search: %w", err)
	}
	result.SeedCount = len(seeds)

	if len(seeds) == 0 {
		// Zero seeds is still a complete run: the result carries an empty
		// payload of the requested shape, never a nil one.
		switch mode {
		case ModeRawCandidates:
			result.Candidates = summarize(nil)
		case ModeContext:
			result.Context = e.assembler.Assemble(nil)
		}
		e.finish(result, start)
		e.cache.put(key, result)
		return result, nil
	}

	expanded := expander.Expand(seeds, handle.graph, expander.Params{
		MaxNodes:   e.cfg.Expand.MaxNodes,
		MaxHops:    e.cfg.Expand.MaxHops,
		DecayAlpha: e.cfg.Expand.DecayAlpha,
		SeedCap:    e.cfg.Expand.SeedCap,
		FillFloor:  e.cfg.Expand.FillFloor,
		FillTarget: e.cfg.Expand.FillTarget,
	})
	result.ExpandedCount = len(expanded)

	scored := ranking.Score(expanded)
	filtered := ranking.SelectDiverse(scored, e.cfg.Retrieve.MaxCandidates)

	switch mode {
	case ModeRawCandidates:
		result.Candidates = summarize(filtered)
	case ModeContext:
		reranked := ranking.Rerank(ctx, e.retryingReranker(), query, filtered, e.logger)
		result.Context = e.assembler.Assemble(reranked)
	}

	e.finish(result, start)
	e.cache.put(key, result)
	return result, nil
}

func (e *Engine) finish(result *Result, start time.Time) {
	result.Duration = time.Since(start)
	e.logger.Debug("retrieval finished",
		"mode", result.Mode,
		"seeds", result.SeedCount,
		"expanded", result.ExpandedCount,
		"augmented", result.Augmented,
		"duration", result.Duration)
}

// retryingReranker wraps the configured reranker with backoff, or
// returns nil when no reranker is configured.
func (e *Engine) retryingReranker() ranking.Reranker {
	if e.reranker == nil {
		return nil
	}
	return &retryReranker{inner: e.reranker, retry: e.retry}
}

type retryReranker struct {
	inner ranking.Reranker
	retry RetryConfig
}

func (r *retryReranker) ScoreBatch(ctx context.Context, query string, docs []ranking.Doc) ([]float64, error) {
	return retryWithBackoff(ctx, r.retry, func() ([]float64, error) {
		return r.inner.ScoreBatch(ctx, query, docs)
	})
}

// invalidate drops cached responses after an index swap.
func (e *Engine) invalidate(projectID string) {
	e.cache.purge()
	e.logger.Debug("retrieval cache invalidated", "project", projectID)
}

func summarize(cands []types.Candidate) []types.Summary {
	out := make([]types.Summary, len(cands))
	for i := range cands {
		out[i] = cands[i].Summarize()
	}
	return out
}

// copyResult deep-copies a result for cache storage and retrieval.
func copyResult(src *Result) *Result {
	if src == nil {
		return nil
	}
	dst := *src
	if src.Context != nil {
		ctx := *src.Context
		dst.Context = &ctx
	}
	if src.Candidates != nil {
		dst.Candidates = make([]types.Summary, len(src.Candidates))
		copy(dst.Candidates, src.Candidates)
	}
	return &dst
}
