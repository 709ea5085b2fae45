package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// cacheEntry represents a cached value with its own expiration.
type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e *cacheEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// MemoryCache is a bounded in-memory implementation of Cache.
// The LRU evicts by size and by maxTTL; shorter per-entry TTLs are checked on read.
type MemoryCache struct {
	lru    *expirable.LRU[string, *cacheEntry]
	maxTTL time.Duration
}

// NewMemoryCache creates an LRU cache holding at most size entries for at most maxTTL.
func NewMemoryCache(size int, maxTTL time.Duration) *MemoryCache {
	return &MemoryCache{
		lru:    expirable.NewLRU[string, *cacheEntry](size, nil, maxTTL),
		maxTTL: maxTTL,
	}
}

// Get retrieves a value by key.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	entry, ok := c.lru.Get(key)
	if !ok {
		return nil, ErrCacheMiss
	}
	if entry.isExpired() {
		c.lru.Remove(key)
		return nil, ErrCacheMiss
	}

	result := make([]byte, len(entry.value))
	copy(result, entry.value)
	return result, nil
}

// Set stores a value with the given TTL, capped at the cache's maxTTL.
func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 || ttl > c.maxTTL {
		ttl = c.maxTTL
	}

	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	c.lru.Add(key, &cacheEntry{value: valueCopy, expiresAt: time.Now().Add(ttl)})
	return nil
}

// Delete removes values by key.
func (c *MemoryCache) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		c.lru.Remove(key)
	}
	return nil
}

// Exists checks if a key exists and is not expired.
func (c *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	entry, ok := c.lru.Peek(key)
	return ok && !entry.isExpired(), nil
}

// GetOrSet retrieves a value or computes and stores it if missing.
func (c *MemoryCache) GetOrSet(ctx context.Context, key string, ttl time.Duration, fn func() ([]byte, error)) ([]byte, error) {
	if value, err := c.Get(ctx, key); err == nil {
		return value, nil
	}

	value, err := fn()
	if err != nil {
		return nil, err
	}

	if err := c.Set(ctx, key, value, ttl); err != nil {
		return nil, err
	}
	return value, nil
}

// Clear removes all entries from the cache.
func (c *MemoryCache) Clear(ctx context.Context) error {
	c.lru.Purge()
	return nil
}

// Len returns the number of entries, expired ones included until evicted.
func (c *MemoryCache) Len() int {
	return c.lru.Len()
}

// Close is a no-op; the LRU's expiry goroutine is not stoppable.
func (c *MemoryCache) Close() error {
	return nil
}

var _ Cache = (*MemoryCache)(nil)
