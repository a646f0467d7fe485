package client

import (
	"context"
	"net/http"
	"net/url"
)

func (c *APIClient) ListGenres(ctx context.Context) ([]Genre, error) {
	var out []Genre
	if err := c.getCached(ctx, "/movie/genres", nil, &out, TagGenres); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *APIClient) CreateGenre(ctx context.Context, name string) (*Genre, error) {
	var g Genre
	if err := c.do(ctx, http.MethodPost, "/movie/genres", nil, Genre{Name: name}, &g); err != nil {
		return nil, err
	}
	c.cache.Invalidate(TagGenres, TagMovieCategories)
	return &g, nil
}

func (c *APIClient) DeleteGenre(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/movie/genres/"+url.PathEscape(id), nil, nil, nil); err != nil {
		return err
	}
	c.cache.Invalidate(TagGenres, TagMovieCategories)
	return nil
}

func (c *APIClient) ListCasts(ctx context.Context) ([]Cast, error) {
	var out []Cast
	if err := c.getCached(ctx, "/movie/casts", nil, &out, TagCasts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *APIClient) CreateCast(ctx context.Context, in Cast) (*Cast, error) {
	var out Cast
	if err := c.do(ctx, http.MethodPost, "/movie/casts", nil, in, &out); err != nil {
		return nil, err
	}
	c.cache.Invalidate(TagCasts)
	return &out, nil
}

func (c *APIClient) DeleteCast(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/movie/casts/"+url.PathEscape(id), nil, nil, nil); err != nil {
		return err
	}
	c.cache.Invalidate(TagCasts, TagMovies)
	return nil
}
