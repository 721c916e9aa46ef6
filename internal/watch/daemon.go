// Package watch re-indexes repositories when their source files change.
package watch

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/randalmurphy/doc-chunker/internal/indexer"
)

// Runner indexes a set of files. *indexer.Indexer satisfies it.
type Runner interface {
	Index(ctx context.Context, repo string, files []indexer.SourceFile) (*indexer.Result, error)
}

// Repo defines a repository to watch.
type Repo struct {
	Name    string
	Path    string
	Include []string
	Exclude []string
}

// Daemon polls repositories and re-indexes the ones whose file set changed.
type Daemon struct {
	repos        []Repo
	interval     time.Duration
	runner       Runner
	logger       *slog.Logger
	fingerprints map[string]string // repo name -> last indexed fingerprint
}

// NewDaemon creates a new watch daemon.
func NewDaemon(repos []Repo, interval time.Duration, runner Runner, logger *slog.Logger) *Daemon {
	if logger == nil {
		logger = slog.Default()
	}
	return &Daemon{
		repos:        repos,
		interval:     interval,
		runner:       runner,
		logger:       logger,
		fingerprints: make(map[string]string),
	}
}

// Run syncs every repository once, then again on each tick until ctx is done.
func (d *Daemon) Run(ctx context.Context) error {
	d.logger.Info("starting watch daemon", "interval", d.interval, "repos", len(d.repos))

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.syncAll(ctx)

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("daemon shutting down")
			return ctx.Err()
		case <-ticker.C:
			d.syncAll(ctx)
		}
	}
}

func (d *Daemon) syncAll(ctx context.Context) {
	for _, repo := range d.repos {
		if _, err := d.syncRepo(ctx, repo); err != nil {
			d.logger.Error("sync failed", "repo", repo.Name, "error", err)
		}
	}
}

// syncRepo indexes repo when its fingerprint differs from the last indexed
// one and reports whether it did.
func (d *Daemon) syncRepo(ctx context.Context, repo Repo) (bool, error) {
	files, err := indexer.Discover(repo.Path, repo.Include, repo.Exclude)
	if err != nil {
		return false, err
	}

	current, err := fingerprint(files)
	if err != nil {
		return false, fmt.Errorf("fingerprint: %w", err)
	}
	if current == d.fingerprints[repo.Name] {
		d.logger.Debug("repo unchanged", "name", repo.Name)
		return false, nil
	}

	d.logger.Info("repo changed, indexing", "name", repo.Name, "files", len(files))

	result, err := d.runner.Index(ctx, repo.Name, files)
	if err != nil {
		return false, fmt.Errorf("indexing failed: %w", err)
	}

	d.logger.Info("sync complete",
		"repo", repo.Name,
		"files", result.FilesProcessed,
		"skipped", result.FilesSkipped,
		"chunks", result.ChunksCreated,
	)

	d.fingerprints[repo.Name] = current
	return true, nil
}

// fingerprint hashes the path, size and modification time of every file.
func fingerprint(files []indexer.SourceFile) (string, error) {
	h := sha256.New()
	for _, f := range files {
		info, err := os.Stat(f.Path)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(h, "%s\x00%d\x00%d\n", f.Rel, info.Size(), info.ModTime().UnixNano())
	}
	return fmt.Sprintf("%x", h.Sum(nil)[:8]), nil
}
