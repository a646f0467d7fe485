package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"
)

// PresignMovie asks the file service for a short-lived upload target.
func (c *APIClient) PresignMovie(ctx context.Context, in PresignRequest) (*PresignResult, error) {
	var out PresignResult
	if err := c.do(ctx, http.MethodPost, "/file/files/presign-movie", nil, in, &out); err != nil {
		return nil, err
	}
	if out.UploadURL == "" || out.BlobURL == "" {
		return nil, errors.New("presign: backend returned an incomplete upload target")
	}
	return &out, nil
}

// CreateVideoAsset registers an uploaded blob as a video asset of a movie.
func (c *APIClient) CreateVideoAsset(ctx context.Context, in VideoAsset) (*VideoAsset, error) {
	var out VideoAsset
	if err := c.do(ctx, http.MethodPost, "/movie/video-assets", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListVideoAssets returns every asset of a movie. Never cached: callers
// poll it to observe transcoding.
func (c *APIClient) ListVideoAssets(ctx context.Context, movieID string) ([]VideoAsset, error) {
	var out []VideoAsset
	if err := c.do(ctx, http.MethodGet, "/movie/video-assets/movie/"+url.PathEscape(movieID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
