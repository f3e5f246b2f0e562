package httpserver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glamourpk/glamour/internal/domain"
)

func TestListingCache(t *testing.T) {
	c := newListingCache(time.Minute)
	f := domain.ProductFilter{Category: "women", Page: 1, PageSize: 20}

	_, _, ok := c.get(f)
	assert.False(t, ok)

	items := []domain.Product{{Name: "Red Lipstick"}}
	c.put(f, items, 1)

	got, total, ok := c.get(f)
	require.True(t, ok)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Red Lipstick", got[0].Name)

	// a different filter is a different entry
	other := f
	other.Page = 2
	_, _, ok = c.get(other)
	assert.False(t, ok)

	c.invalidate()
	_, _, ok = c.get(f)
	assert.False(t, ok)
}

func TestListingCacheExpiry(t *testing.T) {
	c := newListingCache(10 * time.Millisecond)
	f := domain.ProductFilter{Page: 1, PageSize: 20}
	c.put(f, nil, 0)

	_, _, ok := c.get(f)
	assert.True(t, ok)

	time.Sleep(20 * time.Millisecond)
	_, _, ok = c.get(f)
	assert.False(t, ok)
}

func TestCacheKeyDistinguishesFlags(t *testing.T) {
	tr := true
	fa := false
	a := domain.ProductFilter{Featured: &tr}
	b := domain.ProductFilter{Featured: &fa}
	cNil := domain.ProductFilter{}
	assert.NotEqual(t, cacheKey(a), cacheKey(b))
	assert.NotEqual(t, cacheKey(a), cacheKey(cNil))
}

func TestCacheKeyDistinguishesSlug(t *testing.T) {
	a := domain.ProductFilter{Slug: "red-lipstick", Page: 1, PageSize: 20}
	b := domain.ProductFilter{Slug: "silk-serum", Page: 1, PageSize: 20}
	assert.NotEqual(t, cacheKey(a), cacheKey(b))
}
