package cache

import (
	"context"
	"sync"

	"github.com/randalmurphy/doc-chunker/internal/chunk"
)

// MemoryCache is a bounded in-process result cache. When full it evicts the
// evictCount oldest entries in one sweep.
type MemoryCache struct {
	mu         sync.RWMutex
	entries    map[string][]chunk.Chunk
	order      []string
	maxEntries int
	evictCount int
}

// NewMemoryCache creates a memory cache holding at most maxEntries results.
func NewMemoryCache(maxEntries, evictCount int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	if evictCount <= 0 {
		evictCount = max(1, maxEntries/10)
	}
	evictCount = min(evictCount, maxEntries)
	return &MemoryCache{
		entries:    make(map[string][]chunk.Chunk),
		order:      make([]string, 0, maxEntries),
		maxEntries: maxEntries,
		evictCount: evictCount,
	}
}

// Get returns a copy of the cached chunks for key.
func (c *MemoryCache) Get(_ context.Context, key string) ([]chunk.Chunk, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	chunks, ok := c.entries[key]
	return chunk.CloneChunks(chunks), ok, nil
}

// Set stores a copy of chunks under key. Overwriting a key keeps its age.
func (c *MemoryCache) Set(_ context.Context, key string, chunks []chunk.Chunk) error {
	chunks = chunk.CloneChunks(chunks)
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.entries[key] = chunks
		return nil
	}
	if len(c.entries) >= c.maxEntries {
		c.evictOldest()
	}
	c.entries[key] = chunks
	c.order = append(c.order, key)
	return nil
}

// Delete removes key.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok {
		return nil
	}
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// Clear drops every entry.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]chunk.Chunk)
	c.order = c.order[:0]
}

// Len returns the number of cached results.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *MemoryCache) evictOldest() {
	n := min(c.evictCount, len(c.order))
	for _, key := range c.order[:n] {
		delete(c.entries, key)
	}
	c.order = append(c.order[:0], c.order[n:]...)
}
