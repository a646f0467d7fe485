package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/streamdesk/internal/client/client"
	"github.com/dmitrijs2005/streamdesk/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalogClient struct {
	Calls     []string
	GotParams client.ListMoviesParams
	GotTerm   string
	GotID     string
	GotInput  client.MovieInput
	MoviesRet *client.Page[client.Movie]
	MovieRet  *client.Movie
	GenresRet []client.Genre
	CastsRet  []client.Cast
	AssetsRet []client.VideoAsset
	Err       error
}

func (f *fakeCatalogClient) ListMovies(ctx context.Context, p client.ListMoviesParams) (*client.Page[client.Movie], error) {
	f.Calls = append(f.Calls, "ListMovies")
	f.GotParams = p
	return f.MoviesRet, f.Err
}

func (f *fakeCatalogClient) SearchMovies(ctx context.Context, term string, p client.ListMoviesParams) (*client.Page[client.Movie], error) {
	f.Calls = append(f.Calls, "SearchMovies")
	f.GotTerm, f.GotParams = term, p
	return f.MoviesRet, f.Err
}

func (f *fakeCatalogClient) GetMovie(ctx context.Context, id string) (*client.Movie, error) {
	f.Calls = append(f.Calls, "GetMovie")
	f.GotID = id
	return f.MovieRet, f.Err
}

func (f *fakeCatalogClient) CreateMovie(ctx context.Context, in client.MovieInput) (*client.Movie, error) {
	f.Calls = append(f.Calls, "CreateMovie")
	f.GotInput = in
	return f.MovieRet, f.Err
}

func (f *fakeCatalogClient) UpdateMovie(ctx context.Context, id string, in client.MovieInput) (*client.Movie, error) {
	f.Calls = append(f.Calls, "UpdateMovie")
	f.GotID, f.GotInput = id, in
	return f.MovieRet, f.Err
}

func (f *fakeCatalogClient) DeleteMovie(ctx context.Context, id string) error {
	f.Calls = append(f.Calls, "DeleteMovie")
	f.GotID = id
	return f.Err
}

func (f *fakeCatalogClient) ListGenres(ctx context.Context) ([]client.Genre, error) {
	f.Calls = append(f.Calls, "ListGenres")
	return f.GenresRet, f.Err
}

func (f *fakeCatalogClient) ListCasts(ctx context.Context) ([]client.Cast, error) {
	f.Calls = append(f.Calls, "ListCasts")
	return f.CastsRet, f.Err
}

func (f *fakeCatalogClient) ListVideoAssets(ctx context.Context, movieID string) ([]client.VideoAsset, error) {
	f.Calls = append(f.Calls, "ListVideoAssets")
	f.GotID = movieID
	return f.AssetsRet, f.Err
}

func validMovie() client.MovieInput {
	return client.MovieInput{Title: "Mirror", ReleaseYear: 1975, DurationMinutes: 108}
}

func TestCatalog_ListClampsPage(t *testing.T) {
	fc := &fakeCatalogClient{MoviesRet: &client.Page[client.Movie]{}}
	svc := NewCatalogService(fc)

	_, err := svc.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, client.ListMoviesParams{Page: 1, Limit: PageSize}, fc.GotParams)
}

func TestCatalog_SearchRequiresTerm(t *testing.T) {
	fc := &fakeCatalogClient{}
	svc := NewCatalogService(fc)

	_, err := svc.Search(context.Background(), "   ", 1)
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Empty(t, fc.Calls)

	_, err = svc.Search(context.Background(), " stalker ", 2)
	require.NoError(t, err)
	assert.Equal(t, "stalker", fc.GotTerm)
	assert.Equal(t, 2, fc.GotParams.Page)
}

func TestCatalog_IDRequired(t *testing.T) {
	fc := &fakeCatalogClient{}
	svc := NewCatalogService(fc)
	ctx := context.Background()

	_, err := svc.Get(ctx, "")
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.ErrorIs(t, svc.Delete(ctx, " "), common.ErrValidation)
	_, err = svc.Assets(ctx, "")
	assert.ErrorIs(t, err, common.ErrValidation)
	_, err = svc.Update(ctx, "", validMovie())
	assert.ErrorIs(t, err, common.ErrValidation)

	assert.Empty(t, fc.Calls)
}

func TestCatalog_CreateValidatesMovie(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*client.MovieInput)
		wantMsg string
	}{
		{"missing title", func(m *client.MovieInput) { m.Title = "" }, "title is required"},
		{"year too early", func(m *client.MovieInput) { m.ReleaseYear = 1700 }, "releaseyear must be at least 1888"},
		{"year too late", func(m *client.MovieInput) { m.ReleaseYear = 2500 }, "releaseyear must be at most 2100"},
		{"zero duration", func(m *client.MovieInput) { m.DurationMinutes = 0 }, "durationminutes must be greater than 0"},
		{"bad poster url", func(m *client.MovieInput) { m.PosterURL = "poster" }, "posterurl must be a valid url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeCatalogClient{}
			svc := NewCatalogService(fc)

			in := validMovie()
			tt.mutate(&in)
			_, err := svc.Create(context.Background(), in)
			require.ErrorIs(t, err, common.ErrValidation)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Empty(t, fc.Calls)
		})
	}
}

func TestCatalog_Delegates(t *testing.T) {
	fc := &fakeCatalogClient{
		MovieRet:  &client.Movie{ID: "m1"},
		GenresRet: []client.Genre{{ID: "g1", Name: "Drama"}},
		CastsRet:  []client.Cast{{ID: "c1", Name: "Margarita Terekhova"}},
		AssetsRet: []client.VideoAsset{{ID: "a1", Status: client.AssetDone}},
	}
	svc := NewCatalogService(fc)
	ctx := context.Background()

	m, err := svc.Create(ctx, validMovie())
	require.NoError(t, err)
	assert.Equal(t, "m1", m.ID)

	_, err = svc.Update(ctx, "m1", validMovie())
	require.NoError(t, err)
	_, err = svc.Get(ctx, "m1")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, "m1"))

	genres, err := svc.Genres(ctx)
	require.NoError(t, err)
	assert.Len(t, genres, 1)

	casts, err := svc.Casts(ctx)
	require.NoError(t, err)
	assert.Len(t, casts, 1)

	assets, err := svc.Assets(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, client.AssetDone, assets[0].Status)

	assert.Equal(t, []string{
		"CreateMovie", "UpdateMovie", "GetMovie", "DeleteMovie",
		"ListGenres", "ListCasts", "ListVideoAssets",
	}, fc.Calls)
}
