package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/streamdesk/internal/client/client"
	"github.com/dmitrijs2005/streamdesk/internal/client/upload"
	"github.com/dmitrijs2005/streamdesk/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	Calls  int
	GotReq upload.Request
	Ret    *upload.Result
	Err    error
}

func (f *fakeRunner) Run(ctx context.Context, req upload.Request, observer upload.Observer) (*upload.Result, error) {
	f.Calls++
	f.GotReq = req
	if observer != nil {
		observer(upload.Progress{Step: upload.StepCompleted, Percent: 100})
	}
	return f.Ret, f.Err
}

func writeFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("movie bytes"), 0o600))
	return path
}

func TestUpload_ValidatesBeforeRunning(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		in   UploadInput
	}{
		{"missing path", UploadInput{Movie: validMovie(), Resolution: "1080p"}},
		{"missing file", UploadInput{Path: filepath.Join(dir, "nope.mp4"), Movie: validMovie(), Resolution: "1080p"}},
		{"directory", UploadInput{Path: dir, Movie: validMovie(), Resolution: "1080p"}},
		{"bad resolution", UploadInput{Path: writeFile(t, "a.mp4"), Movie: validMovie(), Resolution: "8k"}},
		{"bad movie", UploadInput{Path: writeFile(t, "b.mp4"), Movie: client.MovieInput{}, Resolution: "1080p"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRunner{}
			svc := NewUploadService(r)

			_, err := svc.Upload(context.Background(), tt.in, nil)
			require.ErrorIs(t, err, common.ErrValidation)
			assert.Equal(t, 0, r.Calls)
		})
	}
}

func TestUpload_RunsPipeline(t *testing.T) {
	r := &fakeRunner{Ret: &upload.Result{BlobURL: "https://blob/x.mkv"}}
	svc := NewUploadService(r)
	path := writeFile(t, "Feature.MKV")

	var seen []upload.Progress
	res, err := svc.Upload(context.Background(), UploadInput{
		Path:       "  " + path + " ",
		Movie:      validMovie(),
		Resolution: "720p",
	}, func(p upload.Progress) { seen = append(seen, p) })
	require.NoError(t, err)

	assert.Equal(t, "https://blob/x.mkv", res.BlobURL)
	assert.Equal(t, 1, r.Calls)
	assert.Equal(t, "mkv", r.GotReq.Format, "format defaults to the extension")
	assert.Equal(t, "720p", r.GotReq.Resolution)
	assert.Equal(t, "Feature.MKV", r.GotReq.File.Name)
	assert.Equal(t, int64(len("movie bytes")), r.GotReq.File.Size)
	assert.Len(t, seen, 1)
}
