// Package config holds the engine configuration: index geometry, graph
// expansion tuning, and context assembly budgets. Values load from a YAML
// file with zero-value fields backfilled from defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all tunables for the retrieval engine.
type Config struct {
	Index    IndexConfig    `yaml:"index"`
	Expand   ExpandConfig   `yaml:"expand"`
	Retrieve RetrieveConfig `yaml:"retrieve"`
	Assemble AssembleConfig `yaml:"assemble"`
}

// IndexConfig holds vector index configuration.
type IndexConfig struct {
	// Dir is the base directory holding one subdirectory per project.
	Dir string `yaml:"dir"`
	// Dimension is the embedding dimension, fixed per deployment.
	Dimension int `yaml:"dimension"`
	// M and EfSearch tune the HNSW graph.
	M        int `yaml:"m"`
	EfSearch int `yaml:"ef_search"`
}

// ExpandConfig holds graph expansion tuning.
type ExpandConfig struct {
	MaxNodes   int     `yaml:"max_nodes"`
	MaxHops    int     `yaml:"max_hops"`
	DecayAlpha float64 `yaml:"decay_alpha"`
	SeedCap    int     `yaml:"seed_cap"`
	FillFloor  int     `yaml:"fill_floor"`
	FillTarget int     `yaml:"fill_target"`
}

// RetrieveConfig holds pipeline-level retrieval configuration.
type RetrieveConfig struct {
	// SeedK is how many seeds the vector search returns.
	SeedK int `yaml:"seed_k"`
	// MaxCandidates caps the final candidate set after diversity filtering.
	MaxCandidates int `yaml:"max_candidates"`
	// UseHyDE enables query augmentation when a generator is configured.
	UseHyDE bool `yaml:"use_hyde"`
	// CacheSize is the retrieval response cache capacity (0 disables).
	CacheSize int `yaml:"cache_size"`
	// CacheTTLSeconds bounds how long a cached response stays valid.
	CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
}

// AssembleConfig holds context assembly configuration.
type AssembleConfig struct {
	MaxTokens int `yaml:"max_tokens"`
}

// Default returns the default configuration, mirroring the reference
// deployment: 768-dim embeddings, slow decay over 4 hops, 150 seeds, and
// a 120k-token context window.
func Default() *Config {
	return &Config{
		Index: IndexConfig{
			Dir:       ".codegraph",
			Dimension: 768,
			M:         32,
			EfSearch:  64,
		},
		Expand: ExpandConfig{
			MaxNodes:   150,
			MaxHops:    4,
			DecayAlpha: 0.1,
			SeedCap:    40,
			FillFloor:  80,
			FillTarget: 100,
		},
		Retrieve: RetrieveConfig{
			SeedK:           150,
			MaxCandidates:   80,
			UseHyDE:         true,
			CacheSize:       1000,
			CacheTTLSeconds: 3600,
		},
		Assemble: AssembleConfig{
			MaxTokens: 120000,
		},
	}
}

// Load reads configuration from a YAML file. Fields left at their zero
// value take the default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults backfills zero-value fields from Default().
func (c *Config) applyDefaults() {
	def := Default()

	if c.Index.Dir == "" {
		c.Index.Dir = def.Index.Dir
	}
	if c.Index.Dimension == 0 {
		c.Index.Dimension = def.Index.Dimension
	}
	if c.Index.M == 0 {
		c.Index.M = def.Index.M
	}
	if c.Index.EfSearch == 0 {
		c.Index.EfSearch = def.Index.EfSearch
	}

	if c.Expand.MaxNodes == 0 {
		c.Expand.MaxNodes = def.Expand.MaxNodes
	}
	if c.Expand.MaxHops == 0 {
		c.Expand.MaxHops = def.Expand.MaxHops
	}
	if c.Expand.DecayAlpha == 0 {
		c.Expand.DecayAlpha = def.Expand.DecayAlpha
	}
	if c.Expand.SeedCap == 0 {
		c.Expand.SeedCap = def.Expand.SeedCap
	}
	if c.Expand.FillFloor == 0 {
		c.Expand.FillFloor = def.Expand.FillFloor
	}
	if c.Expand.FillTarget == 0 {
		c.Expand.FillTarget = def.Expand.FillTarget
	}

	if c.Retrieve.SeedK == 0 {
		c.Retrieve.SeedK = def.Retrieve.SeedK
	}
	if c.Retrieve.MaxCandidates == 0 {
		c.Retrieve.MaxCandidates = def.Retrieve.MaxCandidates
	}
	if c.Retrieve.CacheSize == 0 {
		c.Retrieve.CacheSize = def.Retrieve.CacheSize
	}
	if c.Retrieve.CacheTTLSeconds == 0 {
		c.Retrieve.CacheTTLSeconds = def.Retrieve.CacheTTLSeconds
	}

	if c.Assemble.MaxTokens == 0 {
		c.Assemble.MaxTokens = def.Assemble.MaxTokens
	}
}

// Validate checks cross-field consistency.
func (c *Config) Validate() error {
	if c.Index.Dimension <= 0 {
		return fmt.Errorf("index.dimension must be positive, got %d", c.Index.Dimension)
	}
	if c.Expand.DecayAlpha < 0 {
		return fmt.Errorf("expand.decay_alpha must be non-negative, got %g", c.Expand.DecayAlpha)
	}
	if c.Expand.MaxHops < 0 {
		return fmt.Errorf("expand.max_hops must be non-negative, got %d", c.Expand.MaxHops)
	}
	if c.Expand.MaxNodes <= 0 {
		return fmt.Errorf("expand.max_nodes must be positive, got %d", c.Expand.MaxNodes)
	}
	if c.Retrieve.SeedK <= 0 {
		return fmt.Errorf("retrieve.seed_k must be positive, got %d", c.Retrieve.SeedK)
	}
	if c.Assemble.MaxTokens <= 0 {
		return fmt.Errorf("assemble.max_tokens must be positive, got %d", c.Assemble.MaxTokens)
	}
	return nil
}
