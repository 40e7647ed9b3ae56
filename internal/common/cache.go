package common

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Cache is an in-memory, expiring store of V values keyed by string.
type Cache[V any] struct {
	items *cache.Cache
}

// NewCache returns a cache whose entries expire after ttl by default. Expired
// entries are evicted every cleanup interval.
func NewCache[V any](ttl, cleanup time.Duration) *Cache[V] {
	return &Cache[V]{items: cache.New(ttl, cleanup)}
}

// Set stores v under key for ttl, or for the cache default when ttl is omitted.
func (c *Cache[V]) Set(key string, v V, ttl ...time.Duration) {
	d := cache.DefaultExpiration
	if len(ttl) > 0 {
		d = ttl[0]
	}
	c.items.Set(key, v, d)
}

func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V

	item, ok := c.items.Get(key)
	if !ok {
		return zero, false
	}

	v, ok := item.(V)
	if !ok {
		return zero, false
	}

	return v, true
}

func (c *Cache[V]) Delete(key string) {
	c.items.Delete(key)
}

func (c *Cache[V]) Flush() {
	c.items.Flush()
}

func (c *Cache[V]) Len() int {
	return c.items.ItemCount()
}

func CacheKeyUserByID(id string) string {
	return "user_by_id:" + id
}
