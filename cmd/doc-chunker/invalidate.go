// cmd/doc-chunker/invalidate.go
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/randalmurphy/doc-chunker/internal/cache"
)

var invalidateCmd = &cobra.Command{
	Use:   "invalidate",
	Short: "Clear cached chunk results from Redis",
	Long: `Deletes every chunk result stored in the shared Redis cache. Run it after
changing chunking or scoring settings so stale results are not served.`,
	Args: cobra.NoArgs,
	RunE: runInvalidate,
}

func init() {
	rootCmd.AddCommand(invalidateCmd)
}

func runInvalidate(cmd *cobra.Command, args []string) error {
	if cfg.Cache.RedisURL == "" {
		return fmt.Errorf("cache.redis_url is not configured")
	}

	redisCache, err := cache.NewRedisCache(cfg.Cache.RedisURL, cfg.Cache.TTL)
	if err != nil {
		return err
	}
	defer redisCache.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	removed, err := redisCache.Invalidate(ctx)
	if err != nil {
		return fmt.Errorf("invalidate failed: %w", err)
	}

	m := openMetrics()
	defer m.Close()
	m.LogCacheInvalidate("redis", removed)

	fmt.Printf("Removed %d cached results\n", removed)
	return nil
}
