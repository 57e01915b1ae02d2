package recurrence

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"sync"
	"time"

	"github.com/cyp0633/libical/ical"
)

// CacheStats describes the range cache.
type CacheStats struct {
	Entries int
	Hits    uint64
	Misses  uint64
}

type cacheEntry struct {
	result     bool
	expiresAt  time.Time
	accessedAt time.Time
}

// rangeCache remembers HasOccurrenceInRange answers. Keys hash the
// component's properties, so editing a component never returns a stale
// answer. Expired entries are dropped lazily.
type rangeCache struct {
	mu           sync.Mutex
	entries      map[string]*cacheEntry
	ttl          time.Duration
	maxEntries   int
	hits, misses uint64
	now          func() time.Time
}

func newRangeCache(ttl time.Duration, maxEntries int) *rangeCache {
	return &rangeCache{
		entries:    make(map[string]*cacheEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func cacheKey(comp *ical.Component, rangeStart, rangeEnd time.Time) string {
	h := sha256.New()
	write := func(s string) {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}
	write(comp.Name)
	for _, p := range comp.Properties {
		write(p.Name)
		for _, param := range p.Params {
			write(param.Name)
			for _, v := range param.Values {
				write(v)
			}
		}
		write(p.RawValue)
	}
	write(rangeStart.Format(time.RFC3339Nano))
	write(rangeEnd.Format(time.RFC3339Nano))
	return hex.EncodeToString(h.Sum(nil))
}

func (c *rangeCache) get(key string) (bool, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	now := c.now()
	if !ok || now.After(entry.expiresAt) {
		delete(c.entries, key)
		c.misses++
		return false, false
	}
	entry.accessedAt = now
	c.hits++
	return entry.result, true
}

func (c *rangeCache) set(key string, result bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	c.entries[key] = &cacheEntry{result: result, expiresAt: now.Add(c.ttl), accessedAt: now}
	if len(c.entries) > c.maxEntries {
		c.evict(now)
	}
}

// evict drops expired entries, then the least recently used ones until the
// cache is back under its limit.
func (c *rangeCache) evict(now time.Time) {
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
	over := len(c.entries) - c.maxEntries
	if over <= 0 {
		return
	}
	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, func(a, b string) int {
		return c.entries[a].accessedAt.Compare(c.entries[b].accessedAt)
	})
	for _, key := range keys[:over] {
		delete(c.entries, key)
	}
}

func (c *rangeCache) stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{Entries: len(c.entries), Hits: c.hits, Misses: c.misses}
}

// CacheStats reports the range cache counters. It is zero when caching is
// disabled.
func (e *Engine) CacheStats() CacheStats {
	if e.cache == nil {
		return CacheStats{}
	}
	return e.cache.stats()
}
