// Package cache implements the response-cache collaborator over go-cache,
// adding the prefix eviction the pack lifecycle needs.
package cache

import (
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"packsync/internal/domain"
)

// ResponseCache stores cached content responses keyed by request path.
type ResponseCache struct {
	c *gocache.Cache
}

// New builds a cache whose entries expire after defaultTTL (0 means no
// expiry).
func New(defaultTTL time.Duration) *ResponseCache {
	return &ResponseCache{c: gocache.New(defaultTTL, 10*time.Minute)}
}

func (r *ResponseCache) Set(key string, value []byte) {
	r.c.Set(key, value, gocache.DefaultExpiration)
}

func (r *ResponseCache) Get(key string) ([]byte, bool) {
	v, ok := r.c.Get(key)
	if !ok {
		return nil, false
	}
	return v.([]byte), true
}

// EvictMatching removes every entry whose key starts with prefix and
// returns how many were dropped.
func (r *ResponseCache) EvictMatching(prefix string) int {
	n := 0
	for key := range r.c.Items() {
		if strings.HasPrefix(key, prefix) {
			r.c.Delete(key)
			n++
		}
	}
	return n
}

var _ domain.CacheStore = (*ResponseCache)(nil)
