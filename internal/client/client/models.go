package client

import "time"

// AssetStatus is the transcoding state of a video asset. It is driven by the
// backend's transcoding pipeline and only observed by this client.
type AssetStatus string

const (
	AssetPending    AssetStatus = "pending"
	AssetProcessing AssetStatus = "processing"
	AssetDone       AssetStatus = "done"
	AssetFailed     AssetStatus = "failed"
)

type Genre struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Cast struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

type Movie struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	ReleaseYear     int       `json:"releaseYear,omitempty"`
	DurationMinutes int       `json:"durationMinutes,omitempty"`
	Rating          float64   `json:"rating,omitempty"`
	PosterURL       string    `json:"posterUrl,omitempty"`
	Genres          []Genre   `json:"genres,omitempty"`
	Casts           []Cast    `json:"casts,omitempty"`
	CreatedAt       time.Time `json:"createdAt,omitempty"`
}

// MovieInput is the body of movie create and update calls.
type MovieInput struct {
	Title           string   `json:"title" validate:"required,max=200"`
	Description     string   `json:"description,omitempty" validate:"max=5000"`
	ReleaseYear     int      `json:"releaseYear" validate:"gte=1888,lte=2100"`
	DurationMinutes int      `json:"durationMinutes" validate:"gt=0,lte=1440"`
	PosterURL       string   `json:"posterUrl,omitempty" validate:"omitempty,url"`
	GenreIDs        []string `json:"genreIds,omitempty"`
	CastIDs         []string `json:"castIds,omitempty"`
}

type VideoAsset struct {
	ID         string      `json:"id,omitempty"`
	MovieID    string      `json:"movieId"`
	Resolution string      `json:"resolution"`
	Format     string      `json:"format"`
	URL        string      `json:"url"`
	Status     AssetStatus `json:"status"`
}

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// RegisterInput is the body of account registration.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Name     string `json:"name" validate:"required,max=100"`
}

// PresignRequest asks the file service for an upload target.
type PresignRequest struct {
	MovieID     string `json:"movieId"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
}

// PresignResult is a short-lived upload target plus the stable URL the
// blob will be reachable at. Headers lists extra headers the storage
// expects on the PUT, if the backend sends any.
type PresignResult struct {
	UploadURL string            `json:"uploadUrl"`
	BlobURL   string            `json:"blobUrl"`
	Headers   map[string]string `json:"headers,omitempty"`
}

// Page is one page of a list endpoint.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
