package fetch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheRoundTrip(t *testing.T) {
	c := NewCache(time.Hour)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	p := Payload{Raw: []byte(`{"analytics":{}}`), Analytics: Analytics{}}
	c.Put("k", p)
	got, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, p.Raw, got.Raw)
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache(10 * time.Millisecond)
	c.Put("k", Payload{Raw: []byte("{}")})

	time.Sleep(30 * time.Millisecond)
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestCacheKeyIsStructural(t *testing.T) {
	a := cacheKey("access_token=a&entity=1")
	b := cacheKey("access_token=a&entity=1")
	other := cacheKey("access_token=b&entity=1")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, other)
	assert.Len(t, a, 32)
}
