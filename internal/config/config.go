// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/randalmurphy/doc-chunker/internal/chunk"
	"github.com/randalmurphy/doc-chunker/internal/confidence"
	"github.com/randalmurphy/doc-chunker/internal/detect"
)

// RepoConfigFile is the per-repository config file name.
const RepoConfigFile = ".doc-chunker.yaml"

// Config holds global configuration
type Config struct {
	Chunking ChunkingConfig `yaml:"chunking"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Cache    CacheConfig    `yaml:"cache"`
	Storage  StorageConfig  `yaml:"storage"`
	Indexing IndexingConfig `yaml:"indexing"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ChunkingConfig struct {
	MaxChunkSize      int `yaml:"max_chunk_size"`
	MinChunkSize      int `yaml:"min_chunk_size"`
	ContextLines      int `yaml:"context_lines"`
	SingleUnitContext int `yaml:"single_unit_context"`
	RelatedGap        int `yaml:"related_gap"`
	BraceScanCap      int `yaml:"brace_scan_cap"`
	BackwardScanCap   int `yaml:"backward_scan_cap"`
	ForwardScanCap    int `yaml:"forward_scan_cap"`
	ParagraphMinLines int `yaml:"paragraph_min_lines"`
}

type ScoringConfig struct {
	Weights     confidence.Weights `yaml:"weights"`
	Calibration CalibrationConfig  `yaml:"calibration"`
	// Thresholds overrides base thresholds by documentation type, e.g.
	// api_documentation: 0.5
	Thresholds map[string]float64 `yaml:"thresholds,omitempty"`
}

type CalibrationConfig struct {
	Policy string                            `yaml:"policy"` // identity|platt
	Params map[string]confidence.PlattParams `yaml:"params,omitempty"`
}

type CacheConfig struct {
	Backend    string        `yaml:"backend"` // none|memory|redis
	MaxEntries int           `yaml:"max_entries"`
	EvictCount int           `yaml:"evict_count"`
	RedisURL   string        `yaml:"redis_url"`
	TTL        time.Duration `yaml:"ttl"`
}

type StorageConfig struct {
	SQLitePath string `yaml:"sqlite_path"`
}

type IndexingConfig struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
	Workers int      `yaml:"workers"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"` // error|warn|info|debug
	MetricsPath string `yaml:"metrics_path"`
}

// RepoConfig holds per-repository configuration
type RepoConfig struct {
	Name    string   `yaml:"name"`
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	dataDir := defaultDataDir()
	opts := chunk.DefaultOptions()
	return &Config{
		Chunking: ChunkingConfig{
			MaxChunkSize:      opts.MaxChunkSize,
			MinChunkSize:      opts.MinChunkSize,
			ContextLines:      opts.ContextLines,
			SingleUnitContext: opts.SingleUnitContext,
			RelatedGap:        opts.RelatedGap,
			BraceScanCap:      opts.BraceScanCap,
			BackwardScanCap:   opts.Detect.BackwardScanCap,
			ForwardScanCap:    opts.Detect.ForwardScanCap,
			ParagraphMinLines: opts.ParagraphMinLines,
		},
		Scoring: ScoringConfig{
			Weights:     confidence.DefaultWeights(),
			Calibration: CalibrationConfig{Policy: "identity"},
		},
		Cache: CacheConfig{
			Backend:    "memory",
			MaxEntries: 1000,
			EvictCount: 100,
			RedisURL:   "redis://localhost:6379",
			TTL:        24 * time.Hour,
		},
		Storage: StorageConfig{
			SQLitePath: filepath.Join(dataDir, "chunks.db"),
		},
		Indexing: IndexingConfig{
			Include: []string{"**/*.rs", "**/*.py", "**/*.js", "**/*.jsx", "**/*.ts", "**/*.tsx"},
			Exclude: []string{"**/node_modules/**", "**/target/**", "**/.git/**", "**/__pycache__/**", "**/dist/**"},
			Workers: 4,
		},
		Logging: LoggingConfig{
			Level:       "info",
			MetricsPath: filepath.Join(dataDir, "metrics.jsonl"),
		},
	}
}

func defaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".doc-chunker"
	}
	return filepath.Join(homeDir, ".local", "share", "doc-chunker")
}

// DefaultPath returns the global config location.
func DefaultPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory config
		return ".doc-chunker-config.yaml"
	}
	return filepath.Join(homeDir, ".config", "doc-chunker", "config.yaml")
}

// LoadConfig loads config from file or returns defaults
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the config as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate reports every problem found in the config.
func (c *Config) Validate() error {
	var errs []error

	ch := c.Chunking
	if ch.MinChunkSize < 0 {
		errs = append(errs, errors.New("chunking.min_chunk_size must not be negative"))
	}
	if ch.MaxChunkSize <= ch.MinChunkSize {
		errs = append(errs, fmt.Errorf("chunking.max_chunk_size (%d) must exceed min_chunk_size (%d)", ch.MaxChunkSize, ch.MinChunkSize))
	}
	for name, v := range map[string]int{
		"context_lines":       ch.ContextLines,
		"single_unit_context": ch.SingleUnitContext,
		"related_gap":         ch.RelatedGap,
	} {
		if v < 0 {
			errs = append(errs, fmt.Errorf("chunking.%s must not be negative", name))
		}
	}
	for name, v := range map[string]int{
		"brace_scan_cap":      ch.BraceScanCap,
		"backward_scan_cap":   ch.BackwardScanCap,
		"forward_scan_cap":    ch.ForwardScanCap,
		"paragraph_min_lines": ch.ParagraphMinLines,
	} {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("chunking.%s must be positive", name))
		}
	}

	if err := c.Scoring.Weights.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("scoring.weights: %w", err))
	}
	if _, err := c.Scoring.policy(); err != nil {
		errs = append(errs, fmt.Errorf("scoring.calibration: %w", err))
	}
	if _, err := c.Scoring.thresholds(); err != nil {
		errs = append(errs, fmt.Errorf("scoring.thresholds: %w", err))
	}

	switch c.Cache.Backend {
	case "", "none", "memory":
	case "redis":
		if c.Cache.RedisURL == "" {
			errs = append(errs, errors.New("cache.redis_url is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("cache.backend %q is not one of none, memory, redis", c.Cache.Backend))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, errors.New("cache.ttl must not be negative"))
	}

	if c.Indexing.Workers < 0 {
		errs = append(errs, errors.New("indexing.workers must not be negative"))
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// ChunkOptions converts the chunking section to engine options.
func (c *Config) ChunkOptions() chunk.Options {
	ch := c.Chunking
	return chunk.Options{
		MaxChunkSize:      ch.MaxChunkSize,
		MinChunkSize:      ch.MinChunkSize,
		ContextLines:      ch.ContextLines,
		SingleUnitContext: ch.SingleUnitContext,
		RelatedGap:        ch.RelatedGap,
		BraceScanCap:      ch.BraceScanCap,
		ParagraphMinLines: ch.ParagraphMinLines,
		Detect: detect.Options{
			BackwardScanCap: ch.BackwardScanCap,
			ForwardScanCap:  ch.ForwardScanCap,
		},
	}
}

// Scorer builds the confidence scorer described by the scoring section.
func (c *Config) Scorer() (*confidence.Scorer, error) {
	if err := c.Scoring.Weights.Validate(); err != nil {
		return nil, err
	}
	policy, err := c.Scoring.policy()
	if err != nil {
		return nil, err
	}
	thresholds, err := c.Scoring.thresholds()
	if err != nil {
		return nil, err
	}
	return confidence.NewScorer(
		confidence.WithWeights(c.Scoring.Weights),
		confidence.WithCalibration(policy),
		confidence.WithThresholds(thresholds),
	), nil
}

func (s ScoringConfig) policy() (confidence.CalibrationPolicy, error) {
	return confidence.ParseCalibration(s.Calibration.Policy, s.Calibration.Params)
}

func (s ScoringConfig) thresholds() (confidence.Thresholds, error) {
	t := confidence.DefaultThresholds()
	if len(s.Thresholds) == 0 {
		return t, nil
	}
	base := make(map[confidence.DocType]float64, len(t.Base))
	for k, v := range t.Base {
		base[k] = v
	}
	for name, v := range s.Thresholds {
		doc := confidence.DocType(name)
		if _, ok := base[doc]; !ok {
			return t, fmt.Errorf("unknown documentation type %q", name)
		}
		if v < 0 || v > 1 {
			return t, fmt.Errorf("threshold for %s must be within [0,1], got %v", name, v)
		}
		base[doc] = v
	}
	t.Base = base
	return t, nil
}

// ParseLevel maps a logging level name to a slog level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "error":
		return slog.LevelError, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	default:
		return slog.LevelInfo, fmt.Errorf("logging.level %q is not one of error, warn, info, debug", level)
	}
}

// LoadRepoConfig loads .doc-chunker.yaml from repo root. A missing file
// yields an empty config so the global include and exclude lists apply.
func LoadRepoConfig(repoPath string) (*RepoConfig, error) {
	path := filepath.Join(repoPath, RepoConfigFile)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &RepoConfig{Name: filepath.Base(repoPath)}, nil
		}
		return nil, err
	}

	var wrapper struct {
		DocChunker RepoConfig `yaml:"doc-chunker"`
	}

	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if wrapper.DocChunker.Name == "" {
		wrapper.DocChunker.Name = filepath.Base(repoPath)
	}

	return &wrapper.DocChunker, nil
}

// Patterns returns the include and exclude globs for a repository, letting
// non-empty repo lists replace the global ones.
func (c *Config) Patterns(repo *RepoConfig) (include, exclude []string) {
	include, exclude = c.Indexing.Include, c.Indexing.Exclude
	if repo == nil {
		return include, exclude
	}
	if len(repo.Include) > 0 {
		include = repo.Include
	}
	if len(repo.Exclude) > 0 {
		exclude = repo.Exclude
	}
	return include, exclude
}
