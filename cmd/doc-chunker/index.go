// cmd/doc-chunker/index.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/randalmurphy/doc-chunker/internal/config"
	"github.com/randalmurphy/doc-chunker/internal/indexer"
	"github.com/randalmurphy/doc-chunker/internal/store"
)

var indexCmd = &cobra.Command{
	Use:   "index [repo-path]",
	Short: "Chunk every matching file in a repository and store the chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndex,
}

var (
	indexIncremental bool
	indexWorkers     int
	indexNoProgress  bool
)

func init() {
	indexCmd.Flags().BoolVar(&indexIncremental, "incremental", false, "Only index changed files")
	indexCmd.Flags().IntVar(&indexWorkers, "workers", 0, "Parallel workers (defaults to indexing.workers)")
	indexCmd.Flags().BoolVar(&indexNoProgress, "no-progress", false, "Disable the progress bar")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	absPath, err := resolveRepo(args[0])
	if err != nil {
		return err
	}

	repoCfg, err := config.LoadRepoConfig(absPath)
	if err != nil {
		return fmt.Errorf("failed to load repo config: %w", err)
	}
	include, exclude := cfg.Patterns(repoCfg)

	files, err := indexer.Discover(absPath, include, exclude)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Printf("No files in %s match the include patterns.\n", absPath)
		return nil
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

	workers := indexWorkers
	if workers <= 0 {
		workers = cfg.Indexing.Workers
	}

	opts := indexer.Options{
		Workers:     workers,
		Cache:       resultCache,
		Store:       st,
		Metrics:     m,
		Incremental: indexIncremental,
		Logger:      logger,
	}
	if !indexNoProgress {
		bar := progressbar.NewOptions(len(files),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetDescription("Indexing"),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(os.Stderr)
			}),
		)
		opts.Progress = func(string) { _ = bar.Add(1) }
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Indexing %s (%s), %d files...\n", repoCfg.Name, absPath, len(files))

	result, err := indexer.New(engine, opts).Index(ctx, repoCfg.Name, files)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	fmt.Printf("\nIndexing complete in %s:\n", result.Duration.Round(time.Millisecond))
	fmt.Printf("  Files processed: %d\n", result.FilesProcessed)
	fmt.Printf("  Files skipped:   %d\n", result.FilesSkipped)
	fmt.Printf("  Files pruned:    %d\n", result.FilesPruned)
	fmt.Printf("  Chunks created:  %d\n", result.ChunksCreated)
	if result.ChunksCreated > 0 {
		fmt.Printf("  Coverage:        %.0f%%\n", result.Stats.Coverage*100)
	}

	if len(result.Errors) > 0 {
		fmt.Printf("  Errors: %d\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("    - %v\n", e)
		}
	}

	return nil
}

func resolveRepo(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}
	info, err := os.Stat(absPath)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("repository not found: %s", absPath)
	}
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", absPath)
	}
	return absPath, nil
}
