package iris

import (
	"sync"
	"time"
)

// stationCache is a simple in-memory TTL cache for station lookups.
type stationCache struct {
	mu      sync.RWMutex
	entries map[string]stationCacheEntry
	ttl     time.Duration
}

type stationCacheEntry struct {
	stations  []Station
	expiresAt time.Time
}

// newStationCache creates a cache with the given TTL.
func newStationCache(ttl time.Duration) *stationCache {
	c := &stationCache{
		entries: make(map[string]stationCacheEntry),
		ttl:     ttl,
	}
	// Background cleanup every 5 minutes
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			c.cleanup()
		}
	}()
	return c
}

// get retrieves a cached station list if it exists and hasn't expired.
func (c *stationCache) get(pattern string) ([]Station, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[pattern]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.stations, true
}

// set stores a station list in the cache.
func (c *stationCache) set(pattern string, stations []Station) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[pattern] = stationCacheEntry{
		stations:  stations,
		expiresAt: time.Now().Add(c.ttl),
	}
}

func (c *stationCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for k, v := range c.entries {
		if now.After(v.expiresAt) {
			delete(c.entries, k)
		}
	}
}
