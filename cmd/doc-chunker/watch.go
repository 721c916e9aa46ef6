package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/randalmurphy/doc-chunker/internal/config"
	"github.com/randalmurphy/doc-chunker/internal/indexer"
	"github.com/randalmurphy/doc-chunker/internal/store"
	"github.com/randalmurphy/doc-chunker/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [repo-path...]",
	Short: "Watch repositories and re-index on changes",
	Long:  `Run a daemon that polls repositories and incrementally re-indexes the ones whose files changed.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runWatch,
}

var watchInterval string

func init() {
	watchCmd.Flags().StringVar(&watchInterval, "interval", "60s", "Check interval (e.g., 30s, 5m)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	interval, err := time.ParseDuration(watchInterval)
	if err != nil {
		return fmt.Errorf("invalid interval: %w", err)
	}

	var repos []watch.Repo
	for _, arg := range args {
		absPath, err := resolveRepo(arg)
		if err != nil {
			logger.Warn("skipping repo", "path", arg, "error", err)
			continue
		}
		repoCfg, err := config.LoadRepoConfig(absPath)
		if err != nil {
			logger.Warn("skipping repo", "path", absPath, "error", err)
			continue
		}
		include, exclude := cfg.Patterns(repoCfg)
		repos = append(repos, watch.Repo{
			Name:    repoCfg.Name,
			Path:    absPath,
			Include: include,
			Exclude: exclude,
		})
	}

	if len(repos) == 0 {
		return fmt.Errorf("no valid repos found")
	}

	st, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	engine, err := newEngine()
	if err != nil {
		return err
	}
	resultCache, closeCache := openCache()
	defer closeCache()
	m := openMetrics()
	defer m.Close()

	idx := indexer.New(engine, indexer.Options{
		Workers:     cfg.Indexing.Workers,
		Cache:       resultCache,
		Store:       st,
		Metrics:     m,
		Incremental: true,
		Logger:      logger,
	})

	daemon := watch.NewDaemon(repos, interval, idx, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	if err := daemon.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
