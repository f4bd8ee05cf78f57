package translate

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKeyIsDeterministicAndLangSensitive(t *testing.T) {
	a := CacheKey("ja", "zh", "hello")
	b := CacheKey("ja", "zh", "hello")
	c := CacheKey("ja", "en", "hello")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.db")
	c, err := OpenCache(path, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCacheGetMissReturnsFalse(t *testing.T) {
	c := openTestCache(t)
	_, ok := c.Get(CacheKey("ja", "zh", "nope"))
	assert.False(t, ok)
}

func TestCachePutThenGetRoundTrips(t *testing.T) {
	c := openTestCache(t)
	key := CacheKey("ja", "zh", "こんにちは")
	c.Put(key, "你好")

	text, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, "你好", text)
}

func TestCachePutOverwritesOnKeyCollision(t *testing.T) {
	c := openTestCache(t)
	key := CacheKey("ja", "zh", "x")
	c.Put(key, "first")
	c.Put(key, "second")

	text, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, "second", text)
}
