package manifest

import (
	"sync"
)

// Cache provides thread-safe caching of decoded manifests keyed by content
// digest
type Cache struct {
	mu    sync.RWMutex
	items map[string]*Manifest
}

// NewCache creates a new cache instance
func NewCache() *Cache {
	return &Cache{
		items: make(map[string]*Manifest),
	}
}

// Get retrieves a copy of a cached manifest
// Returns the manifest and true if found, nil and false otherwise
func (c *Cache) Get(key string) (*Manifest, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	m, found := c.items[key]
	if !found {
		return nil, false
	}
	return m.clone(), true
}

// Set stores a copy of m in the cache
func (c *Cache) Set(key string, m *Manifest) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = m.clone()
}

// Clear removes all values from the cache
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*Manifest)
}

// Size returns the number of items in the cache
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}
