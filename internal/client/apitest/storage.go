package apitest

import (
	"io"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// SetStorageFault changes how blob storage answers subsequent PUTs.
func (b *Backend) SetStorageFault(f StorageFault) {
	b.mu.Lock()
	b.storageFault = f
	b.mu.Unlock()
}

// Blob returns what storage recorded for the blob id.
func (b *Backend) Blob(id string) (Blob, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	blob, ok := b.blobs[id]
	return blob, ok
}

// Assets returns the video assets registered for a movie.
func (b *Backend) Assets(movieID string) []VideoAsset {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]VideoAsset, 0, len(b.assets[movieID]))
	for _, a := range b.assets[movieID] {
		out = append(out, *a)
	}
	return out
}

// TranscodeAfter makes pending assets switch to status once the asset
// list of their movie has been polled n times.
func (b *Backend) TranscodeAfter(n int, status string) {
	b.mu.Lock()
	b.transcodeAfter = n
	b.transcodeStatus = status
	b.mu.Unlock()
}

func (b *Backend) handlePresign(w http.ResponseWriter, r *http.Request) {
	if b.enter(w, RoutePresign) {
		return
	}

	var req struct {
		MovieID     string `json:"movieId"`
		FileName    string `json:"fileName"`
		ContentType string `json:"contentType"`
	}
	if !decode(w, r, &req) {
		return
	}

	id := req.MovieID + "-" + uuid.NewString() + path.Ext(req.FileName)
	sig := uuid.NewString()

	b.mu.Lock()
	b.presigns[id] = sig
	b.mu.Unlock()

	blobURL := b.URL + "/storage/" + id
	writeJSON(w, http.StatusOK, map[string]any{
		"uploadUrl": blobURL + "?sig=" + sig,
		"blobUrl":   blobURL,
		"headers":   map[string]string{"x-ms-version": "2023-11-03"},
	})
}

func (b *Backend) handlePutBlob(w http.ResponseWriter, r *http.Request) {
	if b.enter(w, RoutePutBlob) {
		return
	}

	b.mu.Lock()
	fault := b.storageFault
	b.mu.Unlock()

	switch fault {
	case StorageCORS:
		w.Header().Set("x-ms-error-code", "CorsPreflightFailure")
		w.WriteHeader(http.StatusForbidden)
		return
	case StorageServerError:
		w.Header().Set("x-ms-error-code", "InternalError")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	id := chi.URLParam(r, "blobID")
	b.mu.Lock()
	sig, ok := b.presigns[id]
	b.mu.Unlock()
	if !ok || r.URL.Query().Get("sig") != sig {
		w.Header().Set("x-ms-error-code", "AuthenticationFailed")
		w.WriteHeader(http.StatusForbidden)
		return
	}
	if r.Header.Get("x-ms-blob-type") != "BlockBlob" {
		w.Header().Set("x-ms-error-code", "MissingRequiredHeader")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	n, err := io.Copy(io.Discard, r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	b.blobs[id] = Blob{
		ID:          id,
		BlobType:    r.Header.Get("x-ms-blob-type"),
		ContentType: r.Header.Get("Content-Type"),
		Size:        int(n),
	}
	b.mu.Unlock()
	w.WriteHeader(http.StatusCreated)
}

func (b *Backend) handleCreateAsset(w http.ResponseWriter, r *http.Request) {
	if b.enter(w, RouteCreateAsset) {
		return
	}

	var in VideoAsset
	if !decode(w, r, &in) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.movies[in.MovieID]; !ok {
		writeError(w, http.StatusNotFound, "movie not found")
		return
	}
	in.ID = uuid.NewString()
	if in.Status == "" {
		in.Status = "pending"
	}
	b.assets[in.MovieID] = append(b.assets[in.MovieID], &in)
	writeJSON(w, http.StatusCreated, in)
}

func (b *Backend) handleListAssets(w http.ResponseWriter, r *http.Request) {
	if b.enter(w, RouteListAssets) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	movieID := chi.URLParam(r, "movieID")
	b.assetPolls++
	if b.transcodeAfter > 0 && b.assetPolls >= b.transcodeAfter {
		for _, a := range b.assets[movieID] {
			if a.Status == "pending" {
				a.Status = b.transcodeStatus
			}
		}
	}

	out := make([]VideoAsset, 0, len(b.assets[movieID]))
	for _, a := range b.assets[movieID] {
		out = append(out, *a)
	}
	writeJSON(w, http.StatusOK, out)
}
