// Package resultcache caches recent query result sets behind an LRU
// eviction policy: container/list + map bookkeeping, an RWMutex
// fast-path-then-write-path Get, keyed by a query fingerprint and capped
// by result-object count.
package resultcache

import (
	"container/list"
	"fmt"
	"sync"
	"time"

	"github.com/spacedb/spacedb/pkg/geom"
)

// Cache holds recent get_by_shape/get_by_id result sets, keyed by a caller-
// supplied fingerprint (typically a hash of the space name, resolution, and
// query shape/id).
type Cache struct {
	maxObjects  int64
	usedObjects int64
	entries     map[string]*cacheEntry
	lru         *list.List
	mu          sync.RWMutex
}

type cacheEntry struct {
	key          string
	objects      []geom.SpaceSetObject
	size         int64
	element      *list.Element
	lastAccessed time.Time
	accessCount  int
}

// New creates a Cache limited to maxObjects total cached result objects
// across all entries. Set to 0 for unlimited.
func New(maxObjects int64) *Cache {
	return &Cache{
		maxObjects: maxObjects,
		entries:    make(map[string]*cacheEntry),
		lru:        list.New(),
	}
}

// Get retrieves a cached result set or computes it with loader on a miss.
// A hit moves the entry to the front of the LRU list.
func (c *Cache) Get(key string, loader func() ([]geom.SpaceSetObject, error)) ([]geom.SpaceSetObject, error) {
	c.mu.RLock()
	if entry, ok := c.entries[key]; ok {
		c.mu.RUnlock()

		c.mu.Lock()
		entry.lastAccessed = time.Now()
		entry.accessCount++
		c.lru.MoveToFront(entry.element)
		c.mu.Unlock()

		return entry.objects, nil
	}
	c.mu.RUnlock()

	objects, err := loader()
	if err != nil {
		return nil, fmt.Errorf("resultcache: load %q: %w", key, err)
	}

	if err := c.Add(key, objects); err != nil {
		return objects, nil
	}
	return objects, nil
}

// Add inserts or replaces a cached result set, evicting least-recently-used
// entries to make room if the cache has a positive maxObjects.
func (c *Cache) Add(key string, objects []geom.SpaceSetObject) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok {
		c.usedObjects -= entry.size
		entry.objects = objects
		entry.size = int64(len(objects))
		entry.lastAccessed = time.Now()
		entry.accessCount++
		c.usedObjects += entry.size
		c.lru.MoveToFront(entry.element)
		return nil
	}

	size := int64(len(objects))
	if c.maxObjects > 0 && size > c.maxObjects {
		return fmt.Errorf("resultcache: result set too large for cache (%d objects > %d max)", size, c.maxObjects)
	}

	if c.maxObjects > 0 {
		for c.usedObjects+size > c.maxObjects && c.lru.Len() > 0 {
			c.evictLRU()
		}
	}

	entry := &cacheEntry{
		key:          key,
		objects:      objects,
		size:         size,
		lastAccessed: time.Now(),
		accessCount:  1,
	}
	entry.element = c.lru.PushFront(entry)
	c.entries[key] = entry
	c.usedObjects += size
	return nil
}

// evictLRU removes the least-recently-used entry. Must be called with
// c.mu held.
func (c *Cache) evictLRU() {
	elem := c.lru.Back()
	if elem == nil {
		return
	}
	entry := elem.Value.(*cacheEntry)
	c.lru.Remove(elem)
	delete(c.entries, entry.key)
	c.usedObjects -= entry.size
}

// Remove explicitly evicts key, if present.
func (c *Cache) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok {
		c.lru.Remove(entry.element)
		delete(c.entries, key)
		c.usedObjects -= entry.size
	}
}

// Clear empties the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
	c.lru.Init()
	c.usedObjects = 0
}

// Stats reports cache occupancy and access counters.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var totalAccess int
	for _, entry := range c.entries {
		totalAccess += entry.accessCount
	}
	return Stats{
		EntryCount:  len(c.entries),
		UsedObjects: c.usedObjects,
		MaxObjects:  c.maxObjects,
		TotalAccess: totalAccess,
	}
}

// Stats holds cache performance metrics.
type Stats struct {
	EntryCount  int
	UsedObjects int64
	MaxObjects  int64
	TotalAccess int
}
