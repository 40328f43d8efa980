package cache

import (
	"time"

	"github.com/ppiankov/factline/internal/model"
)

// LayeredCache layers the memory cache over the disk cache: hits
// promote, writes go to both.
type LayeredCache struct {
	memory Cache
	disk   Cache
}

// NewLayeredCache creates a new layered cache
func NewLayeredCache(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *LayeredCache {
	return &LayeredCache{
		memory: NewMemoryCache(memoryTTL, 10*time.Minute),
		disk:   NewDiskCache(diskDir, diskTTL),
	}
}

// Get checks memory first, then disk. A disk hit is promoted to memory
// so the next lookup skips the file read.
func (c *LayeredCache) Get(key string) (*model.Record, bool) {
	if rec, found := c.memory.Get(key); found {
		return rec, true
	}

	if rec, found := c.disk.Get(key); found {
		c.memory.Set(key, rec, 0) // default TTL
		return rec, true
	}

	return nil, false
}

// Set stores a record in both caches
func (c *LayeredCache) Set(key string, rec *model.Record, ttl time.Duration) error {
	if err := c.memory.Set(key, rec, ttl); err != nil {
		return err
	}
	return c.disk.Set(key, rec, ttl)
}

// Delete removes a record from both caches
func (c *LayeredCache) Delete(key string) error {
	c.memory.Delete(key)
	c.disk.Delete(key)
	return nil
}

// Clear removes all records from both caches
func (c *LayeredCache) Clear() error {
	c.memory.Clear()
	c.disk.Clear()
	return nil
}
