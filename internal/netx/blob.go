// Package netx holds the raw HTTP transfer to object storage. Storage URLs
// are presigned, so these requests never carry the API bearer token.
package netx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	BlobTypeHeader  = "x-ms-blob-type"
	ErrorCodeHeader = "x-ms-error-code"
	BlockBlob       = "BlockBlob"
)

// ErrCrossOrigin reports that storage refused the request under its CORS
// rules.
var ErrCrossOrigin = errors.New("storage rejected cross-origin request")

var corsCodes = []string{
	"CorsPreflightFailure",
	"CorsPreflightRequestRejected",
	"CorsNotEnabled",
}

// StorageError is a non-2xx answer from object storage.
type StorageError struct {
	StatusCode int
	Code       string
	Body       string
}

func (e *StorageError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("storage put failed: %d %s", e.StatusCode, e.Code)
	}
	return fmt.Sprintf("storage put failed: %d %s", e.StatusCode, strings.TrimSpace(e.Body))
}

func (e *StorageError) Is(target error) bool {
	if target != ErrCrossOrigin {
		return false
	}
	for _, c := range corsCodes {
		if strings.EqualFold(e.Code, c) {
			return true
		}
	}
	return false
}

// PutBlob uploads size bytes from body to a presigned block-blob URL.
// header entries are added to the request after the defaults, so the
// presign response can override the content type.
//
// Non-empty bodies are sent with "Expect: 100-continue": a transport with
// ExpectContinueTimeout set (http.DefaultTransport has one) does not read
// body until storage accepts the request, so a rejection costs no upload.
func PutBlob(ctx context.Context, hc *http.Client, url string, body io.Reader, size int64, contentType string, header map[string]string) error {
	if hc == nil {
		hc = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, body)
	if err != nil {
		return err
	}
	req.ContentLength = size
	req.Header.Set(BlobTypeHeader, BlockBlob)
	if size > 0 {
		req.Header.Set("Expect", "100-continue")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	for k, v := range header {
		req.Header.Set(k, v)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &StorageError{
			StatusCode: resp.StatusCode,
			Code:       resp.Header.Get(ErrorCodeHeader),
			Body:       string(b),
		}
	}
	return nil
}
