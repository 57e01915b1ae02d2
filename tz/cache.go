package tz

import (
	"sort"
	"sync"
	"time"
)

// CacheEntry is one resolved location or a remembered failure.
type CacheEntry struct {
	Location   *time.Location
	Err        error
	ExpiresAt  time.Time
	AccessedAt time.Time
}

// LocationCache memoises TZID lookups. Entries expire after TTL and the
// least recently used entries are evicted once MaxEntries is exceeded.
type LocationCache struct {
	entries    map[string]*CacheEntry
	mutex      sync.RWMutex
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
	hits       int
	misses     int
}

// CacheConfig holds configuration for the location cache
type CacheConfig struct {
	TTL        time.Duration // How long entries stay valid
	MaxEntries int           // Maximum number of entries before eviction
}

// DefaultCacheConfig keeps lookups for an hour; zone data does not change
// while a process runs.
var DefaultCacheConfig = CacheConfig{
	TTL:        time.Hour,
	MaxEntries: 512,
}

// NewLocationCache creates a cache with the given configuration.
func NewLocationCache(config CacheConfig) *LocationCache {
	return &LocationCache{
		entries:    make(map[string]*CacheEntry),
		ttl:        config.TTL,
		maxEntries: config.MaxEntries,
		now:        time.Now,
	}
}

// Get returns a cached lookup for tzid if it exists and hasn't expired.
func (c *LocationCache) Get(tzid string) (CacheEntry, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.entries[tzid]
	if !exists {
		c.misses++
		return CacheEntry{}, false
	}
	now := c.now()
	if now.After(entry.ExpiresAt) {
		delete(c.entries, tzid)
		c.misses++
		return CacheEntry{}, false
	}
	entry.AccessedAt = now
	c.hits++
	return *entry, true
}

// Set stores the outcome of a lookup.
func (c *LocationCache) Set(tzid string, loc *time.Location, err error) {
	now := c.now()
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries[tzid] = &CacheEntry{
		Location:   loc,
		Err:        err,
		ExpiresAt:  now.Add(c.ttl),
		AccessedAt: now,
	}
	if c.maxEntries > 0 && len(c.entries) > c.maxEntries {
		c.cleanup(now)
	}
}

// cleanup removes expired entries and then the oldest entries if still
// over the limit. The caller holds the write lock.
func (c *LocationCache) cleanup(now time.Time) {
	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
		}
	}
	if len(c.entries) <= c.maxEntries {
		return
	}

	type keyAccess struct {
		key        string
		accessedAt time.Time
	}
	list := make([]keyAccess, 0, len(c.entries))
	for key, entry := range c.entries {
		list = append(list, keyAccess{key: key, accessedAt: entry.AccessedAt})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].accessedAt.Before(list[j].accessedAt) })

	excess := len(c.entries) - c.maxEntries
	for i := 0; i < excess && i < len(list); i++ {
		delete(c.entries, list[i].key)
	}
}

// Stats returns cache statistics
func (c *LocationCache) Stats() CacheStats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	expired := 0
	now := c.now()
	for _, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			expired++
		}
	}
	return CacheStats{
		TotalEntries:   len(c.entries),
		ExpiredEntries: expired,
		ActiveEntries:  len(c.entries) - expired,
		Hits:           c.hits,
		Misses:         c.misses,
	}
}

// CacheStats provides information about cache performance
type CacheStats struct {
	TotalEntries   int
	ExpiredEntries int
	ActiveEntries  int
	Hits           int
	Misses         int
}
