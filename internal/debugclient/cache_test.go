package debugclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectCachePutGet(t *testing.T) {
	c := newObjectCache(2)
	c.Put("cid-a", "value-a")

	v, ok := c.Get("cid-a")
	require := assert.New(t)
	require.True(ok)
	require.Equal("value-a", v)
}

func TestObjectCacheMissing(t *testing.T) {
	c := newObjectCache(2)
	_, ok := c.Get("nope")
	assert.False(t, ok)
	assert.False(t, c.Has("nope"))
}

func TestObjectCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := newObjectCache(2)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3) // evicts "a"

	assert.False(t, c.Has("a"))
	assert.True(t, c.Has("b"))
	assert.True(t, c.Has("c"))
	assert.Equal(t, 2, c.Len())
}

func TestObjectCacheGetPromotesRecency(t *testing.T) {
	c := newObjectCache(2)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Get("a")   // "a" is now most recently used
	c.Put("c", 3) // evicts "b", not "a"

	assert.True(t, c.Has("a"))
	assert.False(t, c.Has("b"))
	assert.True(t, c.Has("c"))
}

func TestObjectCacheDefaultsCapacityWhenNonPositive(t *testing.T) {
	c := newObjectCache(0)
	assert.Equal(t, defaultCacheCapacity, c.capacity)
}
