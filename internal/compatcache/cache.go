// Resonance - Vibe Compatibility Engine
// Copyright 2026 Kindred Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kindredapp/resonance

package compatcache

import (
	"sync"
	"time"

	"github.com/kindredapp/resonance/internal/clock"
	"github.com/kindredapp/resonance/internal/metrics"
)

// Stats tracks cache performance counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
}

// entry holds a cached value with its creation time and fixed expiry.
type entry[T any] struct {
	value     T
	createdAt time.Time
	expiresAt time.Time
}

// Cache is a time-boxed, size-bounded cache. Entries expire after a fixed
// TTL; an expired entry is a logical miss and is removed on read. On write
// at capacity the entry nearest expiration is evicted first.
//
// The check-capacity, evict, insert sequence runs atomically under the
// cache mutex. Safe for concurrent use.
type Cache[T any] struct {
	mu       sync.Mutex
	entries  map[string]entry[T]
	ttl      time.Duration
	capacity int
	clk      clock.Clock
	name     string

	hits      int64
	misses    int64
	evictions int64
}

// New creates a cache holding at most capacity entries, each valid for ttl.
// A nil clk defaults to the system clock. The name labels the cache's
// metric series.
func New[T any](capacity int, ttl time.Duration, clk clock.Clock, name string) *Cache[T] {
	if clk == nil {
		clk = clock.System{}
	}
	return &Cache[T]{
		entries:  make(map[string]entry[T], capacity),
		ttl:      ttl,
		capacity: capacity,
		clk:      clk,
		name:     name,
	}
}

// Get returns the cached value for key. Expired entries are removed and
// reported as a miss.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses++
		metrics.CacheMisses.WithLabelValues(c.name).Inc()
		var zero T
		return zero, false
	}

	if !c.clk.Now().Before(e.expiresAt) {
		delete(c.entries, key)
		c.misses++
		c.evictions++
		metrics.CacheMisses.WithLabelValues(c.name).Inc()
		metrics.CacheEvictions.WithLabelValues(c.name).Inc()
		var zero T
		return zero, false
	}

	c.hits++
	metrics.CacheHits.WithLabelValues(c.name).Inc()
	return e.value, true
}

// Set stores value under key. When the cache is at capacity and key is not
// already present, the entry nearest expiration is evicted to make room.
func (c *Cache[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clk.Now()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.capacity {
		c.evictNearestExpiryLocked()
	}

	c.entries[key] = entry[T]{
		value:     value,
		createdAt: now,
		expiresAt: now.Add(c.ttl),
	}
}

// Delete removes key from the cache.
func (c *Cache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear removes all entries.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[T], c.capacity)
}

// Sweep removes every expired entry and returns the number purged.
func (c *Cache[T]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clk.Now()
	purged := 0
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
			purged++
		}
	}
	c.evictions += int64(purged)
	metrics.CacheEvictions.WithLabelValues(c.name).Add(float64(purged))
	return purged
}

// Len returns the current entry count.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// GetStats returns a snapshot of the cache counters.
func (c *Cache[T]) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Size:      len(c.entries),
	}
}

// evictNearestExpiryLocked removes the entry closest to expiring.
// Must be called with c.mu held.
func (c *Cache[T]) evictNearestExpiryLocked() {
	var victim string
	var nearest time.Time
	first := true

	for key, e := range c.entries {
		if first || e.expiresAt.Before(nearest) {
			victim = key
			nearest = e.expiresAt
			first = false
		}
	}

	if !first {
		delete(c.entries, victim)
		c.evictions++
		metrics.CacheEvictions.WithLabelValues(c.name).Inc()
	}
}
