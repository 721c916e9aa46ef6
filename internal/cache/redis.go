// Package cache provides chunk result caches.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/randalmurphy/doc-chunker/internal/chunk"
)

// KeyPrefix namespaces chunk results in Redis.
const KeyPrefix = "chunks:"

// RedisCache provides caching via Redis.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a new Redis cache. A zero ttl stores results without
// expiry.
func NewRedisCache(url string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &RedisCache{client: client, ttl: ttl}, nil
}

// Get retrieves the chunks stored for key.
func (c *RedisCache) Get(ctx context.Context, key string) ([]chunk.Chunk, bool, error) {
	val, err := c.client.Get(ctx, KeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var chunks []chunk.Chunk
	if err := json.Unmarshal(val, &chunks); err != nil {
		return nil, false, fmt.Errorf("decode cached chunks: %w", err)
	}
	return chunks, true, nil
}

// Set stores chunks under key with the cache TTL.
func (c *RedisCache) Set(ctx context.Context, key string, chunks []chunk.Chunk) error {
	data, err := json.Marshal(chunks)
	if err != nil {
		return fmt.Errorf("encode chunks: %w", err)
	}
	return c.client.Set(ctx, KeyPrefix+key, data, c.ttl).Err()
}

// Delete removes a value from cache.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, KeyPrefix+key).Err()
}

// DeletePattern removes all keys matching pattern and returns how many were
// removed.
func (c *RedisCache) DeletePattern(ctx context.Context, pattern string) (int, error) {
	removed := 0
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, iter.Err()
}

// Invalidate removes every cached chunk result.
func (c *RedisCache) Invalidate(ctx context.Context) (int, error) {
	return c.DeletePattern(ctx, KeyPrefix+"*")
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
