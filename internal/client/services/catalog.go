package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/streamdesk/internal/client/client"
	"github.com/dmitrijs2005/streamdesk/internal/common"
)

// PageSize is the number of movies per listed page.
const PageSize = 20

type CatalogClient interface {
	ListMovies(ctx context.Context, p client.ListMoviesParams) (*client.Page[client.Movie], error)
	SearchMovies(ctx context.Context, term string, p client.ListMoviesParams) (*client.Page[client.Movie], error)
	GetMovie(ctx context.Context, id string) (*client.Movie, error)
	CreateMovie(ctx context.Context, in client.MovieInput) (*client.Movie, error)
	UpdateMovie(ctx context.Context, id string, in client.MovieInput) (*client.Movie, error)
	DeleteMovie(ctx context.Context, id string) error
	ListGenres(ctx context.Context) ([]client.Genre, error)
	ListCasts(ctx context.Context) ([]client.Cast, error)
	ListVideoAssets(ctx context.Context, movieID string) ([]client.VideoAsset, error)
}

type CatalogService interface {
	List(ctx context.Context, page int) (*client.Page[client.Movie], error)
	Search(ctx context.Context, term string, page int) (*client.Page[client.Movie], error)
	Get(ctx context.Context, id string) (*client.Movie, error)
	Create(ctx context.Context, in client.MovieInput) (*client.Movie, error)
	Update(ctx context.Context, id string, in client.MovieInput) (*client.Movie, error)
	Delete(ctx context.Context, id string) error
	Genres(ctx context.Context) ([]client.Genre, error)
	Casts(ctx context.Context) ([]client.Cast, error)
	Assets(ctx context.Context, movieID string) ([]client.VideoAsset, error)
}

type catalogService struct {
	client CatalogClient
}

func NewCatalogService(client CatalogClient) CatalogService {
	return &catalogService{client: client}
}

func pageParams(page int) client.ListMoviesParams {
	if page < 1 {
		page = 1
	}
	return client.ListMoviesParams{Page: page, Limit: PageSize}
}

func (c *catalogService) List(ctx context.Context, page int) (*client.Page[client.Movie], error) {
	return c.client.ListMovies(ctx, pageParams(page))
}

func (c *catalogService) Search(ctx context.Context, term string, page int) (*client.Page[client.Movie], error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, fmt.Errorf("%w: search term is required", common.ErrValidation)
	}
	return c.client.SearchMovies(ctx, term, pageParams(page))
}

func (c *catalogService) Get(ctx context.Context, id string) (*client.Movie, error) {
	if err := requireID("movie id", id); err != nil {
		return nil, err
	}
	return c.client.GetMovie(ctx, id)
}

func (c *catalogService) Create(ctx context.Context, in client.MovieInput) (*client.Movie, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	return c.client.CreateMovie(ctx, in)
}

func (c *catalogService) Update(ctx context.Context, id string, in client.MovieInput) (*client.Movie, error) {
	if err := requireID("movie id", id); err != nil {
		return nil, err
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	return c.client.UpdateMovie(ctx, id, in)
}

func (c *catalogService) Delete(ctx context.Context, id string) error {
	if err := requireID("movie id", id); err != nil {
		return err
	}
	return c.client.DeleteMovie(ctx, id)
}

func (c *catalogService) Genres(ctx context.Context) ([]client.Genre, error) {
	return c.client.ListGenres(ctx)
}

func (c *catalogService) Casts(ctx context.Context) ([]client.Cast, error) {
	return c.client.ListCasts(ctx)
}

func (c *catalogService) Assets(ctx context.Context, movieID string) ([]client.VideoAsset, error) {
	if err := requireID("movie id", movieID); err != nil {
		return nil, err
	}
	return c.client.ListVideoAssets(ctx, movieID)
}
