package cache

import (
	"sort"
	"sync"
)

// MarkerCache maps objective keys to the host handles of their spawned map markers
type MarkerCache struct {
	mu      sync.RWMutex
	markers map[string]string
}

// NewMarkerCache creates a new MarkerCache
func NewMarkerCache() *MarkerCache {
	return &MarkerCache{
		markers: make(map[string]string),
	}
}

// Get retrieves a marker handle by objective key
func (c *MarkerCache) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.markers[key]
	return h, ok
}

// Set stores a marker handle for an objective key
func (c *MarkerCache) Set(key, handle string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.markers[key] = handle
}

// Delete removes a key and returns the handle it held
func (c *MarkerCache) Delete(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.markers[key]
	delete(c.markers, key)
	return h, ok
}

// Keys returns the cached objective keys in sorted order
func (c *MarkerCache) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.markers))
	for k := range c.markers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c *MarkerCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.markers)
}

// Reset clears the cache and returns every handle it held
func (c *MarkerCache) Reset() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	handles := make([]string, 0, len(c.markers))
	for _, h := range c.markers {
		handles = append(handles, h)
	}
	sort.Strings(handles)
	c.markers = make(map[string]string)
	return handles
}
