package main

import (
	"fmt"

	"github.com/randalmurphy/doc-chunker/internal/cache"
	"github.com/randalmurphy/doc-chunker/internal/chunk"
	"github.com/randalmurphy/doc-chunker/internal/metrics"
)

func newEngine() (*chunk.Engine, error) {
	scorer, err := cfg.Scorer()
	if err != nil {
		return nil, fmt.Errorf("invalid scoring config: %w", err)
	}
	return chunk.NewEngine(cfg.ChunkOptions(), scorer, logger), nil
}

// openCache returns the configured result cache. An unreachable Redis is
// logged and chunking continues uncached.
func openCache() (chunk.ResultCache, func()) {
	switch cfg.Cache.Backend {
	case "memory":
		return cache.NewMemoryCache(cfg.Cache.MaxEntries, cfg.Cache.EvictCount), func() {}
	case "redis":
		rc, err := cache.NewRedisCache(cfg.Cache.RedisURL, cfg.Cache.TTL)
		if err != nil {
			logger.Warn("redis cache unavailable, continuing without cache", "error", err)
			return nil, func() {}
		}
		return rc, func() { _ = rc.Close() }
	default:
		return nil, func() {}
	}
}

// openMetrics returns the metrics logger, or nil when the log cannot be
// opened. A nil logger discards events.
func openMetrics() *metrics.Logger {
	if cfg.Logging.MetricsPath == "" {
		return nil
	}
	m, err := metrics.NewLogger(cfg.Logging.MetricsPath)
	if err != nil {
		logger.Warn("metrics disabled", "path", cfg.Logging.MetricsPath, "error", err)
		return nil
	}
	return m
}
