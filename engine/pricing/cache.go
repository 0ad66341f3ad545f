package pricing

import (
	"strconv"
	"strings"
	"sync"
)

// CacheKey is the lowercase "year-make-model-trim" key prices are cached under.
func CacheKey(year int, mk, model, trim string) string {
	return strings.ToLower(strconv.Itoa(year) + "-" + mk + "-" + model + "-" + trim)
}

// Cache maps price keys to a price or to nil for "no price available".
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*float64
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*float64)}
}

// Get returns the cached price and whether the key was present at all.
func (c *Cache) Get(key string) (*float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.entries[key]
	return p, ok
}

func (c *Cache) Put(key string, price *float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = price
}
