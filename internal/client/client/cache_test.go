package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryCache_SetGetExpire(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	c := NewQueryCache(time.Minute)
	c.now = func() time.Time { return now }

	c.Set("k", []byte("v"), TagMovies)
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("k")
	require.False(t, ok)
	assert.Equal(t, 0, c.Len(), "expired entry must be evicted on read")
}

func TestQueryCache_ReturnsCopies(t *testing.T) {
	c := NewQueryCache(time.Minute)
	data := []byte("abc")
	c.Set("k", data)
	data[0] = 'x'

	got, _ := c.Get("k")
	got[1] = 'y'

	again, _ := c.Get("k")
	assert.Equal(t, []byte("abc"), again)
}

func TestQueryCache_InvalidateByTag(t *testing.T) {
	c := NewQueryCache(time.Minute)
	c.Set("list", []byte("1"), TagMovies)
	c.Set("by-genre", []byte("2"), TagMovies, TagMovieCategories)
	c.Set("genres", []byte("3"), TagGenres)

	assert.Equal(t, 1, c.Invalidate(TagMovieCategories))
	_, ok := c.Get("by-genre")
	assert.False(t, ok)

	assert.Equal(t, 1, c.Invalidate(TagMovies, TagMovieCategories))
	assert.Equal(t, 1, c.Len())
	_, ok = c.Get("genres")
	assert.True(t, ok)
}

func TestQueryCache_DisabledWithZeroTTL(t *testing.T) {
	c := NewQueryCache(0)
	c.Set("k", []byte("v"))
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestQueryCache_SetAtDropsFillsOlderThanInvalidate(t *testing.T) {
	c := NewQueryCache(time.Minute)

	gen := c.Generation(TagMovies, TagMovieCategories)
	c.Invalidate(TagMovieCategories)

	assert.False(t, c.SetAt(gen, "/movie/movies", []byte(`stale`), TagMovies, TagMovieCategories))
	_, ok := c.Get("/movie/movies")
	assert.False(t, ok)

	gen = c.Generation(TagMovies)
	c.Invalidate(TagGenres)
	require.True(t, c.SetAt(gen, "/movie/movies", []byte(`fresh`), TagMovies), "other tags do not block the fill")
	raw, ok := c.Get("/movie/movies")
	require.True(t, ok)
	assert.Equal(t, "fresh", string(raw))
}
