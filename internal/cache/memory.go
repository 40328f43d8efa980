package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/ppiankov/factline/internal/model"
)

// MemoryCache keeps records in-process with per-entry TTLs, backed by
// go-cache. Records are stored as-is, no serialization round trip.
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache creates a new memory cache
func NewMemoryCache(defaultTTL time.Duration, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		cache: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get retrieves a record from the cache
func (c *MemoryCache) Get(key string) (*model.Record, bool) {
	if val, found := c.cache.Get(key); found {
		return val.(*model.Record), true
	}
	return nil, false
}

// Set stores a record in the cache with the given TTL
func (c *MemoryCache) Set(key string, rec *model.Record, ttl time.Duration) error {
	c.cache.Set(key, rec, ttl)
	return nil
}

// Delete removes a record from the cache
func (c *MemoryCache) Delete(key string) error {
	c.cache.Delete(key)
	return nil
}

// Clear removes all records from the cache
func (c *MemoryCache) Clear() error {
	c.cache.Flush()
	return nil
}
