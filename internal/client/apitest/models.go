package apitest

// Wire shapes served by the fake backend.

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

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
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	ReleaseYear     int      `json:"releaseYear,omitempty"`
	DurationMinutes int      `json:"durationMinutes,omitempty"`
	PosterURL       string   `json:"posterUrl,omitempty"`
	Genres          []Genre  `json:"genres,omitempty"`
	Casts           []Cast   `json:"casts,omitempty"`
	GenreIDs        []string `json:"genreIds,omitempty"`
	CastIDs         []string `json:"castIds,omitempty"`
}

type VideoAsset struct {
	ID         string `json:"id"`
	MovieID    string `json:"movieId"`
	Resolution string `json:"resolution"`
	Format     string `json:"format"`
	URL        string `json:"url"`
	Status     string `json:"status"`
}

type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Blob is what storage recorded for one PUT.
type Blob struct {
	ID          string
	BlobType    string
	ContentType string
	Size        int
}
