package pipeline

import (
	"crypto/sha256"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// cacheEntry is a cached retrieval result with an absolute expiry.
type cacheEntry struct {
	result    *Result
	expiresAt time.Time
}

// responseCache is a bounded LRU of retrieval results with per-entry
// TTL. Results are deep-copied on both store and fetch so cached data
// can never be mutated by a caller.
type responseCache struct {
	mu    sync.RWMutex
	lru   *lru.Cache[[32]byte, *cacheEntry]
	ttl   time.Duration
	clock func() time.Time
}

func newResponseCache(size int, ttl time.Duration) *responseCache {
	if size <= 0 {
		return nil
	}
	cache, err := lru.New[[32]byte, *cacheEntry](size)
	if err != nil {
		// Unreachable with a positive size.
		panic(err)
	}
	return &responseCache{lru: cache, ttl: ttl, clock: time.Now}
}

// cacheKey is deterministic over the request fields that change the
// response. Augmentation text is excluded: it is derived from the query
// and not stable across generator calls.
func cacheKey(projectID, query string, mode Mode) [32]byte {
	var b strings.Builder
	b.WriteString(projectID)
	b.WriteString("|")
	b.WriteString(string(mode))
	b.WriteString("|")
	b.WriteString(query)
	return sha256.Sum256([]byte(b.String()))
}

// get returns a copy of the cached result, or nil on miss or expiry.
func (c *responseCache) get(key [32]byte) *Result {
	if c == nil {
		return nil
	}
	now := c.clock()

	c.mu.RLock()
	entry, found := c.lru.Get(key)
	if !found {
		c.mu.RUnlock()
		return nil
	}
	if now.After(entry.expiresAt) {
		c.mu.RUnlock()
		c.mu.Lock()
		c.lru.Remove(key)
		c.mu.Unlock()
		return nil
	}
	result := copyResult(entry.result)
	c.mu.RUnlock()

	return result
}

// put stores a copy of the result under the key.
func (c *responseCache) put(key [32]byte, result *Result) {
	if c == nil {
		return
	}
	entry := &cacheEntry{
		result:    copyResult(result),
		expiresAt: c.clock().Add(c.ttl),
	}
	c.mu.Lock()
	c.lru.Add(key, entry)
	c.mu.Unlock()
}

// purge drops every cached entry. Called after an index swap; the cache
// is not project-partitioned, so invalidation clears everything.
func (c *responseCache) purge() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.lru.Purge()
	c.mu.Unlock()
}
