package apitest

import (
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Movies returns the stored movies in creation order.
func (b *Backend) Movies() []Movie {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.moviesLocked(func(*Movie) bool { return true })
}

// SeedMovie stores a movie directly and returns it with its new id. Genre
// and cast ids are resolved against the seeded genres and casts.
func (b *Backend) SeedMovie(m Movie) Movie {
	m = b.resolve(m)

	b.mu.Lock()
	defer b.mu.Unlock()
	m.ID = uuid.NewString()
	b.movies[m.ID] = &m
	b.order = append(b.order, m.ID)
	return m
}

// SeedGenre stores a genre directly and returns it with its new id.
func (b *Backend) SeedGenre(name string) Genre {
	b.mu.Lock()
	defer b.mu.Unlock()
	g := Genre{ID: uuid.NewString(), Name: name}
	b.genres[g.ID] = &g
	return g
}

func (b *Backend) moviesLocked(keep func(*Movie) bool) []Movie {
	out := make([]Movie, 0, len(b.order))
	for _, id := range b.order {
		if m, ok := b.movies[id]; ok && keep(m) {
			out = append(out, *m)
		}
	}
	return out
}

func (b *Backend) handleListMovies(w http.ResponseWriter, r *http.Request) {
	if b.enter(w, RouteListMovies) {
		return
	}
	b.mu.Lock()
	movies := b.moviesLocked(func(*Movie) bool { return true })
	b.mu.Unlock()

	page, limit := pageParams(r)
	writeJSON(w, http.StatusOK, paginate(movies, page, limit))
}

func (b *Backend) handleSearchMovies(w http.ResponseWriter, r *http.Request) {
	if b.enter(w, RouteSearchMovies) {
		return
	}
	q := strings.ToLower(r.URL.Query().Get("q"))

	b.mu.Lock()
	movies := b.moviesLocked(func(m *Movie) bool {
		return strings.Contains(strings.ToLower(m.Title), q)
	})
	b.mu.Unlock()

	page, limit := pageParams(r)
	writeJSON(w, http.StatusOK, paginate(movies, page, limit))
}

func (b *Backend) handleMoviesByGenre(w http.ResponseWriter, r *http.Request) {
	if b.enter(w, RouteMoviesGenre) {
		return
	}
	genreID := chi.URLParam(r, "genreID")

	b.mu.Lock()
	movies := b.moviesLocked(func(m *Movie) bool {
		return slices.Contains(m.GenreIDs, genreID)
	})
	b.mu.Unlock()

	page, limit := pageParams(r)
	writeJSON(w, http.StatusOK, paginate(movies, page, limit))
}

func (b *Backend) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	if b.enter(w, RouteGetMovie) {
		return
	}

	b.mu.Lock()
	m, ok := b.movies[chi.URLParam(r, "id")]
	var out Movie
	if ok {
		out = *m
	}
	b.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "movie not found")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) handleCreateMovie(w http.ResponseWriter, r *http.Request) {
	if b.enter(w, RouteCreateMovie) {
		return
	}

	var in Movie
	if !decode(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Title) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"statusCode": http.StatusBadRequest,
			"message":    []string{"title should not be empty"},
		})
		return
	}

	writeJSON(w, http.StatusCreated, b.SeedMovie(in))
}

func (b *Backend) handleUpdateMovie(w http.ResponseWriter, r *http.Request) {
	if b.enter(w, RouteUpdateMovie) {
		return
	}

	var in Movie
	if !decode(w, r, &in) {
		return
	}
	in = b.resolve(in)

	b.mu.Lock()
	defer b.mu.Unlock()

	id := chi.URLParam(r, "id")
	if _, ok := b.movies[id]; !ok {
		writeError(w, http.StatusNotFound, "movie not found")
		return
	}
	in.ID = id
	b.movies[id] = &in
	writeJSON(w, http.StatusOK, in)
}

func (b *Backend) handleDeleteMovie(w http.ResponseWriter, r *http.Request) {
	if b.enter(w, RouteDeleteMovie) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	id := chi.URLParam(r, "id")
	if _, ok := b.movies[id]; !ok {
		writeError(w, http.StatusNotFound, "movie not found")
		return
	}
	delete(b.movies, id)
	delete(b.assets, id)
	w.WriteHeader(http.StatusNoContent)
}

// resolve fills the embedded genres and casts from their ids.
func (b *Backend) resolve(m Movie) Movie {
	b.mu.Lock()
	defer b.mu.Unlock()

	m.Genres, m.Casts = nil, nil
	for _, id := range m.GenreIDs {
		if g, ok := b.genres[id]; ok {
			m.Genres = append(m.Genres, *g)
		}
	}
	for _, id := range m.CastIDs {
		if c, ok := b.casts[id]; ok {
			m.Casts = append(m.Casts, *c)
		}
	}
	return m
}

func (b *Backend) handleListGenres(w http.ResponseWriter, r *http.Request) {
	if b.enter(w, RouteListGenres) {
		return
	}
	b.mu.Lock()
	out := make([]Genre, 0, len(b.genres))
	for _, g := range b.genres {
		out = append(out, *g)
	}
	b.mu.Unlock()

	slices.SortFunc(out, func(a, b Genre) int { return strings.Compare(a.Name, b.Name) })
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) handleCreateGenre(w http.ResponseWriter, r *http.Request) {
	if b.enter(w, RouteCreateGenre) {
		return
	}
	var in Genre
	if !decode(w, r, &in) {
		return
	}
	writeJSON(w, http.StatusCreated, b.SeedGenre(in.Name))
}

func (b *Backend) handleDeleteGenre(w http.ResponseWriter, r *http.Request) {
	if b.enter(w, RouteDeleteGenre) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	id := chi.URLParam(r, "id")
	if _, ok := b.genres[id]; !ok {
		writeError(w, http.StatusNotFound, "genre not found")
		return
	}
	delete(b.genres, id)
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) handleListCasts(w http.ResponseWriter, r *http.Request) {
	if b.enter(w, RouteListCasts) {
		return
	}
	b.mu.Lock()
	out := make([]Cast, 0, len(b.casts))
	for _, c := range b.casts {
		out = append(out, *c)
	}
	b.mu.Unlock()

	slices.SortFunc(out, func(a, b Cast) int { return strings.Compare(a.Name, b.Name) })
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) handleCreateCast(w http.ResponseWriter, r *http.Request) {
	if b.enter(w, RouteCreateCast) {
		return
	}
	var in Cast
	if !decode(w, r, &in) {
		return
	}
	in.ID = uuid.NewString()

	b.mu.Lock()
	b.casts[in.ID] = &in
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, in)
}

func (b *Backend) handleDeleteCast(w http.ResponseWriter, r *http.Request) {
	if b.enter(w, RouteDeleteCast) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	id := chi.URLParam(r, "id")
	if _, ok := b.casts[id]; !ok {
		writeError(w, http.StatusNotFound, "cast not found")
		return
	}
	delete(b.casts, id)
	w.WriteHeader(http.StatusNoContent)
}
