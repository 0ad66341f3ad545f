package carquery

import (
	"net/url"
	"sync"
)

// Cache memoizes successful lookups for the life of the process, keyed on
// the request parameters. It is safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string][]byte)}
}

// Key is the stable cache key for params: the encoded query with keys sorted.
func Key(params url.Values) string {
	return params.Encode()
}

func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.entries[key]
	return b, ok
}

func (c *Cache) Put(key string, payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = payload
}

// Len reports the number of cached responses.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
