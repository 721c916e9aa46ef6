package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphy/doc-chunker/internal/chunk"
)

var _ chunk.ResultCache = (*MemoryCache)(nil)
var _ chunk.ResultCache = (*RedisCache)(nil)

func TestMemoryCacheGetSet(t *testing.T) {
	c := NewMemoryCache(10, 2)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	want := []chunk.Chunk{{Name: "add"}}
	require.NoError(t, c.Set(ctx, "k", want))

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)

	require.NoError(t, c.Delete(ctx, "k"))
	_, ok, _ = c.Get(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCacheIsolatesCallers(t *testing.T) {
	c := NewMemoryCache(10, 2)
	ctx := context.Background()

	stored := []chunk.Chunk{{
		Name:     "add",
		Metadata: chunk.Metadata{Units: []chunk.UnitSummary{{Name: "add", DeclarationLine: 2}}},
	}}
	require.NoError(t, c.Set(ctx, "k", stored))
	stored[0].Name = "changed after set"
	stored[0].Metadata.Units[0].Name = "changed after set"

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	got[0].Name = "changed after get"
	got[0].Metadata.Units[0].DeclarationLine = 99

	again, _, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "add", again[0].Name)
	assert.Equal(t, chunk.UnitSummary{Name: "add", DeclarationLine: 2}, again[0].Metadata.Units[0])
}

func TestMemoryCacheEvictsOldest(t *testing.T) {
	c := NewMemoryCache(4, 2)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("k%d", i), nil))
	}
	// Overwrite keeps k0 the oldest.
	require.NoError(t, c.Set(ctx, "k0", []chunk.Chunk{{Name: "new"}}))
	assert.Equal(t, 4, c.Len())

	require.NoError(t, c.Set(ctx, "k4", nil))
	assert.Equal(t, 3, c.Len())

	tests := []struct {
		key  string
		want bool
	}{
		{"k0", false},
		{"k1", false},
		{"k2", true},
		{"k3", true},
		{"k4", true},
	}
	for _, tt := range tests {
		_, ok, _ := c.Get(ctx, tt.key)
		assert.Equal(t, tt.want, ok, tt.key)
	}
}

func TestMemoryCacheDefaults(t *testing.T) {
	c := NewMemoryCache(0, 0)
	assert.Equal(t, 1000, c.maxEntries)
	assert.Equal(t, 100, c.evictCount)

	c = NewMemoryCache(5, 50)
	assert.Equal(t, 5, c.evictCount)
}

func TestMemoryCacheClear(t *testing.T) {
	c := NewMemoryCache(10, 1)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "a", nil))
	require.NoError(t, c.Set(ctx, "b", nil))

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCacheConcurrent(t *testing.T) {
	c := NewMemoryCache(50, 5)
	ctx := context.Background()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				key := fmt.Sprintf("w%d-%d", w, i)
				_ = c.Set(ctx, key, []chunk.Chunk{{Name: key}})
				_, _, _ = c.Get(ctx, key)
			}
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 50)
}

func TestMemoryCacheWithEngine(t *testing.T) {
	e := chunk.NewEngine(chunk.DefaultOptions(), nil, nil)
	c := NewMemoryCache(10, 1)
	content := "/// Doc\npub fn f() -> i32 { 1 }"

	first, hit := e.ParseCached(context.Background(), c, content, "rust", "f.rs")
	assert.False(t, hit)
	assert.Equal(t, 1, c.Len())

	second, hit := e.ParseCached(context.Background(), c, content, "rust", "f.rs")
	assert.True(t, hit)
	assert.Equal(t, first, second)
}
