package typesig

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/chazu/bindgraph/pkg/metrics"
)

// DefaultCacheSize is the number of signatures a Cache keeps by default
const DefaultCacheSize = 4096

// Cache provides thread-safe caching of parse results, evicting the least
// recently used signature when full. Failed parses are not cached.
type Cache struct {
	items *lru.Cache[string, Info]
}

// NewCache creates a cache holding up to size parse results
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	items, err := lru.New[string, Info](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create parse cache: %w", err)
	}
	return &Cache{items: items}, nil
}

// Parse returns the parse result for sig, parsing it on a cache miss. The
// returned Info is a copy, so callers may modify it freely.
func (c *Cache) Parse(sig string) (Info, error) {
	if cached, found := c.items.Get(sig); found {
		metrics.RecordCacheHit()
		return cached.Clone(), nil
	}
	metrics.RecordCacheMiss()

	info, err := parseRecorded(sig)
	if err != nil {
		return Info{}, err
	}

	c.items.Add(sig, info.Clone())
	return info, nil
}

// Get retrieves a cached parse result
// Returns the value and true if found, zero value and false otherwise
func (c *Cache) Get(sig string) (Info, bool) {
	info, found := c.items.Peek(sig)
	if !found {
		return Info{}, false
	}
	return info.Clone(), true
}

// Delete removes a signature from the cache
func (c *Cache) Delete(sig string) {
	c.items.Remove(sig)
}

// Clear removes all entries from the cache
func (c *Cache) Clear() {
	c.items.Purge()
}

// Size returns the number of entries in the cache
func (c *Cache) Size() int {
	return c.items.Len()
}

// parseRecorded parses sig and records the outcome
func parseRecorded(sig string) (Info, error) {
	info, err := Parse(sig)
	switch {
	case err != nil:
		metrics.RecordParse(metrics.ResultError)
	case info.IsBusted:
		metrics.RecordParse(metrics.ResultBusted)
	default:
		metrics.RecordParse(metrics.ResultSuccess)
	}
	return info, err
}
