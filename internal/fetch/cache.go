package fetch

import (
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/zeebo/xxh3"
)

// Cache holds raw analytics snapshots for a bounded window so repeated
// renders with identical parameters skip the network. Entries are immutable
// once stored; concurrent renders racing on the same key is harmless
// (last-writer-wins over identical values).
type Cache struct {
	c   *gocache.Cache
	ttl time.Duration
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{c: gocache.New(ttl, ttl), ttl: ttl}
}

func (c *Cache) Get(key string) (Payload, bool) {
	v, ok := c.c.Get(key)
	if !ok {
		return Payload{}, false
	}
	p, ok := v.(Payload)
	return p, ok
}

func (c *Cache) Put(key string, p Payload) {
	c.c.Set(key, p, c.ttl)
}

// cacheKey is a structural hash of the full parameter tuple, token included,
// so no two users ever share a snapshot. The encoded query is already
// canonical (url.Values.Encode sorts keys).
func cacheKey(query string) string {
	h := xxh3.Hash128([]byte(query))
	return fmt.Sprintf("%016x%016x", h.Hi, h.Lo)
}
