package client

import (
	"slices"
	"sync"
	"time"
)

// Cache tags for catalog views.
const (
	TagMovies          = "movies"
	TagMovieCategories = "movie-categories"
	TagGenres          = "genres"
	TagCasts           = "casts"
	TagUsers           = "users"
)

type cacheEntry struct {
	data      []byte
	tags      []string
	expiresAt time.Time
}

// QueryCache holds raw response bodies of list views for a TTL. Entries are
// tagged with the views they belong to and dropped by Invalidate. A
// non-positive TTL disables caching.
type QueryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
	// gens counts invalidations per tag.
	gens map[string]uint64
}

func NewQueryCache(ttl time.Duration) *QueryCache {
	return &QueryCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
		gens:    make(map[string]uint64),
	}
}

func (c *QueryCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return slices.Clone(entry.data), true
}

func (c *QueryCache) Set(key string, data []byte, tags ...string) {
	c.mu.Lock()
	c.setLocked(key, data, tags)
	c.mu.Unlock()
}

// Generation identifies the invalidation state of tags. Take it before
// fetching and pass it to SetAt.
func (c *QueryCache) Generation(tags ...string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generationLocked(tags)
}

// SetAt stores data only if none of tags was invalidated since gen was
// taken, so a response fetched before a mutation is not cached after it.
func (c *QueryCache) SetAt(gen uint64, key string, data []byte, tags ...string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generationLocked(tags) != gen {
		return false
	}
	c.setLocked(key, data, tags)
	return c.ttl > 0
}

func (c *QueryCache) generationLocked(tags []string) uint64 {
	var g uint64
	for _, tag := range tags {
		g += c.gens[tag]
	}
	return g
}

func (c *QueryCache) setLocked(key string, data []byte, tags []string) {
	if c.ttl <= 0 {
		return
	}
	c.entries[key] = cacheEntry{
		data:      slices.Clone(data),
		tags:      slices.Clone(tags),
		expiresAt: c.now().Add(c.ttl),
	}
}

// Invalidate drops every entry carrying any of tags and reports how many
// were removed.
func (c *QueryCache) Invalidate(tags ...string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, tag := range tags {
		c.gens[tag]++
	}
	n := 0
	for key, entry := range c.entries {
		for _, tag := range tags {
			if slices.Contains(entry.tags, tag) {
				delete(c.entries, key)
				n++
				break
			}
		}
	}
	return n
}

func (c *QueryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
