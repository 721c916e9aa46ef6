package indexer

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/randalmurphy/doc-chunker/internal/chunk"
	"github.com/randalmurphy/doc-chunker/internal/metrics"
	"github.com/randalmurphy/doc-chunker/internal/store"
)

// Store persists the chunks of indexed files.
type Store interface {
	FileHash(ctx context.Context, repo, filePath string) (string, error)
	ReplaceFile(ctx context.Context, rec store.FileRecord, chunks []chunk.Chunk) error
	Prune(ctx context.Context, repo string, keep []string) (int, error)
}

// Options configures an Indexer. Every field is optional.
type Options struct {
	Workers int
	Cache   chunk.ResultCache
	Store   Store
	Metrics *metrics.Logger
	// Incremental skips files whose content hash matches the stored one.
	Incremental bool
	// Progress is called once per discovered file after it is handled.
	Progress func(path string)
	Logger   *slog.Logger
}

// Indexer coordinates the indexing pipeline: file discovery, chunking,
// and storage.
type Indexer struct {
	engine *chunk.Engine
	opts   Options
	logger *slog.Logger
}

// New creates an indexer around engine.
func New(engine *chunk.Engine, opts Options) *Indexer {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{engine: engine, opts: opts, logger: logger}
}

// Result contains statistics from an indexing run.
type Result struct {
	FilesProcessed int
	FilesSkipped   int
	FilesPruned    int
	ChunksCreated  int
	Stats          chunk.Stats
	Errors         []error
	Duration       time.Duration
}

// Discover lists the files under root selected by include and exclude,
// sorted by relative path for deterministic processing.
func Discover(root string, include, exclude []string) ([]SourceFile, error) {
	var files []SourceFile
	err := NewWalker(include, exclude).Walk(root, func(f SourceFile) error {
		files = append(files, f)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk failed: %w", err)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Rel < files[j].Rel })
	return files, nil
}

// Index chunks every file in files. Per-file failures are collected in
// Result.Errors and do not stop the run.
func (idx *Indexer) Index(ctx context.Context, repo string, files []SourceFile) (*Result, error) {
	start := time.Now()
	result := &Result{}

	var (
		mu       sync.Mutex
		all      []chunk.Chunk
		relPaths = make([]string, 0, len(files))
	)

	// Worker pool bounded by a semaphore
	semaphore := make(chan struct{}, idx.opts.Workers)
	g, gctx := errgroup.WithContext(ctx)

	for _, file := range files {
		file := file
		g.Go(func() error {
			select {
			case semaphore <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-semaphore }()

			chunks, skipped, err := idx.indexFile(gctx, repo, file)

			mu.Lock()
			defer mu.Unlock()
			relPaths = append(relPaths, file.Rel)
			switch {
			case err != nil:
				result.Errors = append(result.Errors, err)
				idx.opts.Metrics.LogError("index", err.Error())
			case skipped:
				result.FilesSkipped++
			default:
				result.FilesProcessed++
				all = append(all, chunks...)
			}
			if idx.opts.Progress != nil {
				idx.opts.Progress(file.Path)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, fmt.Errorf("indexing cancelled: %w", err)
	}

	if idx.opts.Store != nil {
		pruned, err := idx.opts.Store.Prune(ctx, repo, relPaths)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("prune: %w", err))
		}
		result.FilesPruned = pruned
	}

	result.ChunksCreated = len(all)
	result.Stats = chunk.Summarize(all)
	result.Duration = time.Since(start)

	idx.logger.Info("indexing complete",
		"repo", repo,
		"files", result.FilesProcessed,
		"skipped", result.FilesSkipped,
		"chunks", result.ChunksCreated,
		"errors", len(result.Errors),
		"duration", result.Duration,
	)
	idx.opts.Metrics.LogRun(repo, result.FilesProcessed, result.FilesSkipped, result.ChunksCreated,
		result.Stats.DocumentedChunks, len(result.Errors), result.Duration.Milliseconds())

	return result, nil
}

// indexFile chunks and stores one file. Panics are recovered and reported
// as chunk.ErrInternal so one bad file cannot stop the run.
func (idx *Indexer) indexFile(ctx context.Context, repo string, file SourceFile) (chunks []chunk.Chunk, skipped bool, err error) {
	rel, lang := file.Rel, file.Language.String()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: %w: %v", rel, chunk.ErrInternal, r)
			chunks, skipped = nil, false
		}
	}()

	source, err := os.ReadFile(file.Path)
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", rel, err)
	}
	content := string(source)
	hash := computeFileHash(source)

	if idx.opts.Incremental && idx.opts.Store != nil {
		stored, err := idx.opts.Store.FileHash(ctx, repo, rel)
		switch {
		case err == nil && stored == hash:
			idx.logger.Debug("file unchanged", "path", rel)
			return nil, true, nil
		case err != nil && !errors.Is(err, store.ErrNotFound):
			return nil, false, fmt.Errorf("lookup %s: %w", rel, err)
		}
	}

	begin := time.Now()
	chunks, cacheHit := idx.engine.ParseCached(ctx, idx.opts.Cache, content, lang, rel)
	latency := time.Since(begin)

	if idx.opts.Store != nil {
		rec := store.FileRecord{
			Repo:        repo,
			FilePath:    rel,
			Language:    lang,
			ContentHash: hash,
		}
		if err := idx.opts.Store.ReplaceFile(ctx, rec, chunks); err != nil {
			return nil, false, fmt.Errorf("store %s: %w", rel, err)
		}
	}

	stats := chunk.Summarize(chunks)
	idx.opts.Metrics.LogParse(rel, lang, stats.TotalChunks, stats.DocumentedChunks,
		stats.AvgConfidence, latency.Milliseconds(), cacheHit)
	idx.logger.Debug("indexed file", "path", rel, "chunks", len(chunks))

	return chunks, false, nil
}

// computeFileHash returns the hex SHA-256 of file content.
func computeFileHash(content []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(content))
}
