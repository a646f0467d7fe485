// Package apitest runs an in-memory fake of the storefront backend (auth,
// movie, file and user services plus blob storage) for tests.
//
// Every handler counts its calls under a "METHOD /pattern" key and can be
// made to fail with SetFault. Access tokens are real HS256 JWTs; they can be
// expired on demand to exercise the refresh path.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Route keys accepted by Calls and SetFault.
const (
	RouteLogin        = "POST /auth/login"
	RouteRefresh      = "POST /auth/refresh"
	RouteLogout       = "POST /auth/logout"
	RouteRegister     = "POST /users"
	RouteMe           = "GET /users/me"
	RouteListUsers    = "GET /users"
	RouteDeleteUser   = "DELETE /users/{id}"
	RouteListMovies   = "GET /movie/movies"
	RouteSearchMovies = "GET /movie/movies/search"
	RouteMoviesGenre  = "GET /movie/movies/genre/{genreID}"
	RouteGetMovie     = "GET /movie/movies/{id}"
	RouteCreateMovie  = "POST /movie/movies"
	RouteUpdateMovie  = "PUT /movie/movies/{id}"
	RouteDeleteMovie  = "DELETE /movie/movies/{id}"
	RouteListGenres   = "GET /movie/genres"
	RouteCreateGenre  = "POST /movie/genres"
	RouteDeleteGenre  = "DELETE /movie/genres/{id}"
	RouteListCasts    = "GET /movie/casts"
	RouteCreateCast   = "POST /movie/casts"
	RouteDeleteCast   = "DELETE /movie/casts/{id}"
	RouteCreateAsset  = "POST /movie/video-assets"
	RouteListAssets   = "GET /movie/video-assets/movie/{movieID}"
	RoutePresign      = "POST /file/files/presign-movie"
	RoutePutBlob      = "PUT /storage/{blobID}"
)

// Seeded admin account.
const (
	AdminEmail    = "admin@example.com"
	AdminPassword = "correct-horse"
)

// StorageFault selects how blob storage answers PUTs.
type StorageFault int

const (
	StorageOK StorageFault = iota
	// StorageCORS answers like a storage account whose CORS rules reject
	// the caller's origin.
	StorageCORS
	StorageServerError
)

type Backend struct {
	URL string

	server *httptest.Server
	secret []byte

	mu           sync.Mutex
	calls        map[string]int
	faults       map[string]int
	unauthorized int
	onRefresh    func()
	storageFault StorageFault

	users    map[string]*account
	access   map[string]string // access token -> email
	refresh  map[string]string // refresh token -> email
	movies   map[string]*Movie
	order    []string
	genres   map[string]*Genre
	casts    map[string]*Cast
	assets   map[string][]*VideoAsset
	blobs    map[string]Blob
	presigns map[string]string // blob id -> signature

	assetPolls      int
	transcodeAfter  int
	transcodeStatus string
}

type account struct {
	User
	password string
}

// New starts the fake backend and stops it when the test ends.
func New(t testing.TB) *Backend {
	t.Helper()

	b := &Backend{
		secret:          []byte("apitest-secret"),
		calls:           make(map[string]int),
		faults:          make(map[string]int),
		users:           make(map[string]*account),
		access:          make(map[string]string),
		refresh:         make(map[string]string),
		movies:          make(map[string]*Movie),
		genres:          make(map[string]*Genre),
		casts:           make(map[string]*Cast),
		assets:          make(map[string][]*VideoAsset),
		blobs:           make(map[string]Blob),
		presigns:        make(map[string]string),
		transcodeAfter:  1,
		transcodeStatus: "processing",
	}
	b.SeedUser(AdminEmail, AdminPassword, "Admin", "admin")

	b.server = httptest.NewServer(b.routes())
	b.URL = b.server.URL
	t.Cleanup(b.server.Close)
	return b
}

func (b *Backend) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/auth/login", b.handleLogin)
	r.Post("/auth/refresh", b.handleRefresh)
	r.Post("/users", b.handleRegister)
	r.Put("/storage/{blobID}", b.handlePutBlob)

	r.Group(func(r chi.Router) {
		r.Use(b.requireAuth)

		r.Post("/auth/logout", b.handleLogout)
		r.Get("/users/me", b.handleMe)
		r.Get("/users", b.handleListUsers)
		r.Delete("/users/{id}", b.handleDeleteUser)

		r.Route("/movie", func(r chi.Router) {
			r.Get("/movies", b.handleListMovies)
			r.Get("/movies/search", b.handleSearchMovies)
			r.Get("/movies/genre/{genreID}", b.handleMoviesByGenre)
			r.Get("/movies/{id}", b.handleGetMovie)
			r.Post("/movies", b.handleCreateMovie)
			r.Put("/movies/{id}", b.handleUpdateMovie)
			r.Delete("/movies/{id}", b.handleDeleteMovie)

			r.Get("/genres", b.handleListGenres)
			r.Post("/genres", b.handleCreateGenre)
			r.Delete("/genres/{id}", b.handleDeleteGenre)

			r.Get("/casts", b.handleListCasts)
			r.Post("/casts", b.handleCreateCast)
			r.Delete("/casts/{id}", b.handleDeleteCast)

			r.Post("/video-assets", b.handleCreateAsset)
			r.Get("/video-assets/movie/{movieID}", b.handleListAssets)
		})

		r.Post("/file/files/presign-movie", b.handlePresign)
	})

	return r
}

// Calls reports how many times the route was hit, faults included.
func (b *Backend) Calls(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[route]
}

// TotalCalls sums Calls over routes.
func (b *Backend) TotalCalls(routes ...string) int {
	n := 0
	for _, r := range routes {
		n += b.Calls(r)
	}
	return n
}

// SetFault makes route answer with status until cleared with status 0.
func (b *Backend) SetFault(route string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if status == 0 {
		delete(b.faults, route)
		return
	}
	b.faults[route] = status
}

// Unauthorized reports how many requests were rejected with 401 for a
// missing, unknown or expired access token.
func (b *Backend) Unauthorized() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.unauthorized
}

// OnRefresh installs a hook run at the start of every refresh call,
// before the token is checked. Tests use it to hold a refresh in flight.
func (b *Backend) OnRefresh(fn func()) {
	b.mu.Lock()
	b.onRefresh = fn
	b.mu.Unlock()
}

// WaitUnauthorized blocks until at least n 401s were served or timeout
// elapses.
func (b *Backend) WaitUnauthorized(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if b.Unauthorized() >= n {
			return true
		}
		time.Sleep(2 * time.Millisecond)
	}
	return false
}

// enter counts a call to route and writes the configured fault, if any.
// It returns true when the handler must stop.
func (b *Backend) enter(w http.ResponseWriter, route string) bool {
	b.mu.Lock()
	b.calls[route]++
	status := b.faults[route]
	b.mu.Unlock()

	if status != 0 {
		writeError(w, status, "injected fault")
		return true
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"statusCode": status, "message": msg})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return false
	}
	return true
}

func pageParams(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	return page, limit
}

func paginate[T any](items []T, page, limit int) Page[T] {
	start := (page - 1) * limit
	if start > len(items) {
		start = len(items)
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return Page[T]{Items: items[start:end], Total: len(items), Page: page, Limit: limit}
}
