package enrichment

import (
	"sync"
	"time"
)

type cacheEntry struct {
	summary   string
	expiresAt time.Time
}

// TTLCache memoizes article summaries by URL so a story that recurs across
// briefings (still developing, re-surfaced by another agent) isn't
// re-fetched and re-summarized every time.
type TTLCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
}

// NewTTLCache builds a cache whose entries expire after ttl.
func NewTTLCache(ttl time.Duration) *TTLCache {
	return &TTLCache{entries: make(map[string]cacheEntry), ttl: ttl}
}

// Get returns the cached summary for url, if present and unexpired.
func (c *TTLCache) Get(url string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[url]
	if !ok || time.Now().After(e.expiresAt) {
		return "", false
	}
	return e.summary, true
}

// Set stores summary for url with the cache's configured TTL.
func (c *TTLCache) Set(url, summary string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[url] = cacheEntry{summary: summary, expiresAt: time.Now().Add(c.ttl)}
}
