// cmd/doc-chunker/status.go
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/randalmurphy/doc-chunker/internal/config"
	"github.com/randalmurphy/doc-chunker/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status [repo-path]",
	Short: "Show what is stored for a repository",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	absPath, err := resolveRepo(args[0])
	if err != nil {
		return err
	}
	repoCfg, err := config.LoadRepoConfig(absPath)
	if err != nil {
		return fmt.Errorf("failed to load repo config: %w", err)
	}

	if _, err := os.Stat(cfg.Storage.SQLitePath); os.IsNotExist(err) {
		fmt.Printf("No index found. Run 'doc-chunker index %s' to create one.\n", args[0])
		return nil
	}

	st, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	stats, err := st.Stats(context.Background(), repoCfg.Name)
	if err != nil {
		return err
	}

	coverage := 0.0
	if stats.Chunks > 0 {
		coverage = float64(stats.DocumentedChunks) / float64(stats.Chunks) * 100
	}

	fmt.Println("Index Status:")
	fmt.Printf("  Repository: %s\n", repoCfg.Name)
	fmt.Printf("  Database:   %s\n", cfg.Storage.SQLitePath)
	fmt.Printf("  Files:      %d\n", stats.Files)
	fmt.Printf("  Chunks:     %d\n", stats.Chunks)
	fmt.Printf("  Documented: %d (%.0f%%)\n", stats.DocumentedChunks, coverage)

	return nil
}
