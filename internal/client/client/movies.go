package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// ListMoviesParams filter and page the movie list.
type ListMoviesParams struct {
	Page  int
	Limit int
	// Sort is a backend sort key such as "createdAt" or "-rating".
	Sort string
}

func (p ListMoviesParams) query() url.Values {
	q := pageQuery(p.Page, p.Limit)
	if p.Sort != "" {
		q.Set("sort", p.Sort)
	}
	return q
}

func pageQuery(page, limit int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}

func (c *APIClient) ListMovies(ctx context.Context, p ListMoviesParams) (*Page[Movie], error) {
	var out Page[Movie]
	if err := c.getCached(ctx, "/movie/movies", p.query(), &out, TagMovies); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListMoviesByGenre is the movie-category view of the catalog.
func (c *APIClient) ListMoviesByGenre(ctx context.Context, genreID string, p ListMoviesParams) (*Page[Movie], error) {
	var out Page[Movie]
	path := "/movie/movies/genre/" + url.PathEscape(genreID)
	if err := c.getCached(ctx, path, p.query(), &out, TagMovies, TagMovieCategories); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) SearchMovies(ctx context.Context, term string, p ListMoviesParams) (*Page[Movie], error) {
	q := p.query()
	q.Set("q", strings.TrimSpace(term))

	var out Page[Movie]
	if err := c.getCached(ctx, "/movie/movies/search", q, &out, TagMovies); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) GetMovie(ctx context.Context, id string) (*Movie, error) {
	var m Movie
	if err := c.getCached(ctx, "/movie/movies/"+url.PathEscape(id), nil, &m, TagMovies); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *APIClient) CreateMovie(ctx context.Context, in MovieInput) (*Movie, error) {
	var m Movie
	if err := c.do(ctx, http.MethodPost, "/movie/movies", nil, in, &m); err != nil {
		return nil, err
	}
	c.InvalidateCatalog()
	return &m, nil
}

func (c *APIClient) UpdateMovie(ctx context.Context, id string, in MovieInput) (*Movie, error) {
	var m Movie
	if err := c.do(ctx, http.MethodPut, "/movie/movies/"+url.PathEscape(id), nil, in, &m); err != nil {
		return nil, err
	}
	c.InvalidateCatalog()
	return &m, nil
}

func (c *APIClient) DeleteMovie(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/movie/movies/"+url.PathEscape(id), nil, nil, nil); err != nil {
		return err
	}
	c.InvalidateCatalog()
	return nil
}
