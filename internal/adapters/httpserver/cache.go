package httpserver

import (
	"fmt"
	"sync"
	"time"

	"github.com/glamourpk/glamour/internal/domain"
)

type cacheEntry struct {
	items   []domain.Product
	total   int64
	expires time.Time
}

// listingCache memoizes public catalog listings for a short TTL. Any product
// write invalidates the whole cache; listings are cheap to rebuild.
type listingCache struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[string]cacheEntry
}

func newListingCache(ttl time.Duration) *listingCache {
	return &listingCache{ttl: ttl, m: map[string]cacheEntry{}}
}

func cacheKey(f domain.ProductFilter) string {
	feat, act := "", ""
	if f.Featured != nil {
		feat = fmt.Sprintf("%t", *f.Featured)
	}
	if f.Active != nil {
		act = fmt.Sprintf("%t", *f.Active)
	}
	return fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s|%s|%d|%d",
		f.Category, f.Type, f.Collection, f.Slug, f.Query, f.Sort, feat, act, f.Page, f.PageSize)
}

func (c *listingCache) get(f domain.ProductFilter) ([]domain.Product, int64, bool) {
	c.mu.RLock()
	e, ok := c.m[cacheKey(f)]
	c.mu.RUnlock()
	if !ok || time.Now().After(e.expires) {
		return nil, 0, false
	}
	return e.items, e.total, true
}

func (c *listingCache) put(f domain.ProductFilter, items []domain.Product, total int64) {
	c.mu.Lock()
	c.m[cacheKey(f)] = cacheEntry{items: items, total: total, expires: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *listingCache) invalidate() {
	c.mu.Lock()
	c.m = map[string]cacheEntry{}
	c.mu.Unlock()
}
