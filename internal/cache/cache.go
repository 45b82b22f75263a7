// Package cache provides the bounded in-memory TTL caches that sit in front
// of the upstream market data providers. Each endpoint gets its own cache
// with a TTL tuned to how fast the underlying data moves.
package cache

import (
	"sync"
	"time"
)

type entry struct {
	value   any
	addedAt time.Time
}

// Cache is a mutex-guarded map with per-cache TTL and a max entry bound.
// Expired entries are removed lazily on Get; when the bound is hit the
// oldest entry is evicted on Set.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	maxSize int

	now func() time.Time // overridable for tests
}

// New creates a cache holding at most maxSize entries for ttl each.
func New(ttl time.Duration, maxSize int) *Cache {
	return &Cache{
		entries: make(map[string]entry),
		ttl:     ttl,
		maxSize: maxSize,
		now:     time.Now,
	}
}

// Get returns the cached value for key, or false if absent or expired.
// An expired entry is deleted before returning.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.addedAt) >= c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key, evicting the oldest entry first when the
// cache is full.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldestLocked()
	}
	c.entries[key] = entry{value: value, addedAt: c.now()}
}

// Len returns the number of entries currently held, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Purge drops all entries.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

func (c *Cache) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	first := true
	for k, e := range c.entries {
		if first || e.addedAt.Before(oldestAt) {
			oldestKey, oldestAt = k, e.addedAt
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
	}
}

// Caches bundles the per-endpoint caches used by the stock service.
type Caches struct {
	Snapshot     *Cache
	PriceOnly    *Cache
	Technicals   *Cache
	Correlation  *Cache
	Seasonality  *Cache
	History      *Cache
	SupplyDemand *Cache
}

// NewCaches builds the endpoint cache set with production TTLs and bounds.
func NewCaches() *Caches {
	return &Caches{
		Snapshot:     New(120*time.Second, 300),
		PriceOnly:    New(10*time.Second, 300),
		Technicals:   New(4*time.Minute, 300),
		Correlation:  New(12*time.Minute, 180),
		Seasonality:  New(20*time.Minute, 220),
		History:      New(120*time.Second, 320),
		SupplyDemand: New(6*time.Minute, 320),
	}
}
