package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/ppiankov/jyutdb/internal/model"
)

// MemoryCache keeps decoded partitions in memory with expiry
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache creates a new memory cache
func NewMemoryCache(defaultTTL time.Duration, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		cache: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get returns a private copy of the cached partition. Callers mutate what they
// load, so the cached value itself is never handed out.
func (c *MemoryCache) Get(key string) (*model.Database, bool) {
	if val, found := c.cache.Get(key); found {
		return val.(*model.Database).Clone(), true
	}
	return nil, false
}

// Set stores a copy of db; a zero ttl uses the cache default
func (c *MemoryCache) Set(key string, db *model.Database, ttl time.Duration) {
	if ttl == 0 {
		ttl = gocache.DefaultExpiration
	}
	c.cache.Set(key, db.Clone(), ttl)
}

// Delete removes a value from the cache
func (c *MemoryCache) Delete(key string) {
	c.cache.Delete(key)
}

// Clear removes all values from the cache
func (c *MemoryCache) Clear() {
	c.cache.Flush()
}

// Len returns the number of cached partitions, expired ones included until cleanup
func (c *MemoryCache) Len() int {
	return c.cache.ItemCount()
}
