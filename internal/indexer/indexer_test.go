package indexer

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphy/doc-chunker/internal/cache"
	"github.com/randalmurphy/doc-chunker/internal/chunk"
	"github.com/randalmurphy/doc-chunker/internal/metrics"
	"github.com/randalmurphy/doc-chunker/internal/pattern"
	"github.com/randalmurphy/doc-chunker/internal/store"
)

const libRS = `/// Adds two integers and returns the sum.
///
/// # Arguments
/// * a - the first operand
/// * b - the second operand
pub fn add(a: i32, b: i32) -> i32 {
    a + b
}

/// Multiplies two integers and returns the product.
pub fn multiply(a: i32, b: i32) -> i32 {
    a * b
}
`

const appPY = `def greet(name):
    """Return a friendly greeting for name."""
    return "Hello, " + name


class Counter:
    """Counts things."""

    def __init__(self):
        self.count = 0

    def increment(self):
        self.count += 1
        return self.count
`

func writeTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "lib.rs"), []byte(libRS), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.py"), []byte(appPY), 0644))
	return root
}

func newTestSQLite(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "chunks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newEngine() *chunk.Engine {
	return chunk.NewEngine(chunk.DefaultOptions(), nil, nil)
}

func TestIndexChunksTree(t *testing.T) {
	root := writeTree(t)
	db := newTestSQLite(t)
	metricsPath := filepath.Join(t.TempDir(), "metrics.jsonl")
	ml, err := metrics.NewLogger(metricsPath)
	require.NoError(t, err)
	defer ml.Close()

	var progressed atomic.Int32
	idx := New(newEngine(), Options{
		Workers:  2,
		Cache:    cache.NewMemoryCache(100, 10),
		Store:    db,
		Metrics:  ml,
		Progress: func(string) { progressed.Add(1) },
	})

	files, err := Discover(root, nil, nil)
	require.NoError(t, err)
	require.Len(t, files, 2)

	ctx := context.Background()
	result, err := idx.Index(ctx, "demo", files)
	require.NoError(t, err)

	assert.Empty(t, result.Errors)
	assert.Equal(t, 2, result.FilesProcessed)
	assert.GreaterOrEqual(t, result.ChunksCreated, 3)
	assert.Equal(t, result.ChunksCreated, result.Stats.TotalChunks)
	assert.Positive(t, result.Stats.DocumentedChunks)
	assert.Equal(t, int32(2), progressed.Load())

	st, err := db.Stats(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, 2, st.Files)
	assert.Equal(t, result.ChunksCreated, st.Chunks)

	stored, err := db.Chunks(ctx, "demo", "src/lib.rs")
	require.NoError(t, err)
	require.NotEmpty(t, stored)
	assert.Equal(t, "src/lib.rs", stored[0].FilePath)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"event":"index_run"`)
	assert.Contains(t, string(data), `"file":"app.py"`)
}

func TestIndexIncrementalSkipsUnchanged(t *testing.T) {
	root := writeTree(t)
	db := newTestSQLite(t)
	idx := New(newEngine(), Options{Workers: 2, Store: db, Incremental: true})
	ctx := context.Background()

	files, err := Discover(root, nil, nil)
	require.NoError(t, err)

	first, err := idx.Index(ctx, "demo", files)
	require.NoError(t, err)
	assert.Equal(t, 2, first.FilesProcessed)

	require.NoError(t, os.WriteFile(filepath.Join(root, "app.py"), []byte(appPY+"\n\ndef extra():\n    return 1\n"), 0644))

	second, err := idx.Index(ctx, "demo", files)
	require.NoError(t, err)
	assert.Equal(t, 1, second.FilesSkipped)
	assert.Equal(t, 1, second.FilesProcessed)
}

func TestIndexPrunesDeletedFiles(t *testing.T) {
	root := writeTree(t)
	db := newTestSQLite(t)
	idx := New(newEngine(), Options{Store: db})
	ctx := context.Background()

	files, err := Discover(root, nil, nil)
	require.NoError(t, err)
	_, err = idx.Index(ctx, "demo", files)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(root, "app.py")))
	files, err = Discover(root, nil, nil)
	require.NoError(t, err)

	result, err := idx.Index(ctx, "demo", files)
	require.NoError(t, err)
	assert.Equal(t, 1, result.FilesPruned)

	paths, err := db.Files(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, []string{"src/lib.rs"}, paths)
}

func TestIndexCollectsFileErrors(t *testing.T) {
	root := writeTree(t)
	idx := New(newEngine(), Options{Workers: 1})

	files := []SourceFile{
		{Path: filepath.Join(root, "app.py"), Rel: "app.py", Language: pattern.Python},
		{Path: filepath.Join(root, "missing.rs"), Rel: "missing.rs", Language: pattern.Rust},
	}

	result, err := idx.Index(context.Background(), "demo", files)
	require.NoError(t, err)
	assert.Equal(t, 1, result.FilesProcessed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Error(), "missing.rs")
}

type panicStore struct{}

func (panicStore) FileHash(context.Context, string, string) (string, error) {
	return "", store.ErrNotFound
}

func (panicStore) ReplaceFile(context.Context, store.FileRecord, []chunk.Chunk) error {
	panic("corrupt state")
}

func (panicStore) Prune(context.Context, string, []string) (int, error) { return 0, nil }

func TestIndexRecoversPanics(t *testing.T) {
	root := writeTree(t)
	idx := New(newEngine(), Options{Store: panicStore{}})

	result, err := idx.Index(context.Background(), "demo", []SourceFile{
		{Path: filepath.Join(root, "src", "lib.rs"), Rel: "src/lib.rs", Language: pattern.Rust},
	})
	require.NoError(t, err)

	require.Len(t, result.Errors, 1)
	assert.ErrorIs(t, result.Errors[0], chunk.ErrInternal)
	assert.Equal(t, 0, result.FilesProcessed)
}

func TestComputeFileHash(t *testing.T) {
	// Test that the same content produces the same hash
	content1 := []byte("def hello():\n    return 'Hello'\n")
	content2 := []byte("def hello():\n    return 'Hello'\n")
	content3 := []byte("def goodbye():\n    return 'Goodbye'\n")

	hash1 := computeFileHash(content1)
	hash2 := computeFileHash(content2)
	hash3 := computeFileHash(content3)

	// Same content should produce same hash
	require.Equal(t, hash1, hash2)

	// Different content should produce different hash
	require.NotEqual(t, hash1, hash3)

	// Hash should be 64 hex characters (SHA-256 = 32 bytes = 64 hex)
	require.Len(t, hash1, 64)

	// Hash should be valid hex
	for _, c := range hash1 {
		require.True(t, (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f'),
			"hash should be lowercase hex")
	}
}
