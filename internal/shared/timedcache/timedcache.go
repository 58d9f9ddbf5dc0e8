// Package timedcache provides a small in-memory cache with a fixed TTL per
// cache instance. Entries expire lazily: a stale entry is skipped on read and
// stays in memory until it is overwritten or the cache is purged.
package timedcache

import (
	"sync"
	"time"
)

// Cache stores values of type T for up to a fixed duration after insertion.
// All methods are safe for concurrent use. Create instances with New.
type Cache[T any] struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]entry[T]
}

type entry[T any] struct {
	value      T
	insertedAt time.Time
}

// New returns an empty cache whose entries stay fresh for ttl after
// insertion. A non-positive ttl makes every entry immediately stale.
func New[T any](ttl time.Duration) *Cache[T] {
	return &Cache[T]{
		ttl:     ttl,
		entries: make(map[string]entry[T]),
	}
}

// Get returns the fresh value stored under key. The boolean is false when the
// key is absent or its entry has outlived the TTL.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || time.Since(e.insertedAt) >= c.ttl {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Put stores value under key, restarting the TTL for that key.
func (c *Cache[T]) Put(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[T]{value: value, insertedAt: time.Now()}
}

// Purge discards every entry, fresh and stale alike.
func (c *Cache[T]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[T])
}
