package apitest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedMovie_ResolvesGenres(t *testing.T) {
	b := New(t)
	drama := b.SeedGenre("Drama")

	m := b.SeedMovie(Movie{Title: "Solaris", GenreIDs: []string{drama.ID, "missing"}})

	require.Len(t, m.Genres, 1)
	assert.Equal(t, "Drama", m.Genres[0].Name)

	stored := b.Movies()
	require.Len(t, stored, 1)
	assert.Equal(t, m.Genres, stored[0].Genres)
}
