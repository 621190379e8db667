// Package aggregator fans out fetches across the configured event sources,
// normalizes and merges the results, and serves them through a single-slot
// TTL cache.
package aggregator

import (
	"sync"
	"time"

	"github.com/SVatsa12/teamforge/internal/domain"
)

// Cache is the single global slot holding one merged, unfiltered result set.
// The slot is replaced atomically; readers never observe a partial write.
// It is injectable so tests can control and reset it directly.
type Cache struct {
	mu        sync.RWMutex
	data      []domain.NormalizedEvent
	fetchedAt time.Time
	ttl       time.Duration
}

// NewCache creates a cache with the given TTL.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{ttl: ttl}
}

// Get returns the cached set and whether it is still fresh.
func (c *Cache) Get() ([]domain.NormalizedEvent, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.fetchedAt.IsZero() || time.Since(c.fetchedAt) >= c.ttl {
		return nil, false
	}

	out := make([]domain.NormalizedEvent, len(c.data))
	copy(out, c.data)
	return out, true
}

// Set replaces the slot with a fresh result set.
func (c *Cache) Set(data []domain.NormalizedEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data = data
	c.fetchedAt = time.Now()
}

// Reset clears the slot, forcing the next read to refetch.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data = nil
	c.fetchedAt = time.Time{}
}
