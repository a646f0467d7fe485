package upload

import (
	"context"
	"io"
	"net/http"
	"net/http/httptrace"
	"sync/atomic"

	"github.com/dmitrijs2005/streamdesk/internal/client/client"
	"github.com/dmitrijs2005/streamdesk/internal/filex"
	"github.com/dmitrijs2005/streamdesk/internal/netx"
)

// Transfer moves a local file to a presigned target, calling onSent with
// the running byte count. Errors wrapping netx.ErrCrossOrigin trigger the
// simulated fallback.
type Transfer interface {
	Put(ctx context.Context, target *client.PresignResult, src filex.Source, onSent func(int64)) error
}

// HTTPTransfer PUTs the file straight to object storage.
//
// Byte progress is only reported once storage answered "100 Continue", so
// a request refused up front never shows transfer progress. When storage
// skips the interim response the body is still sent after the transport's
// ExpectContinueTimeout, without live progress.
type HTTPTransfer struct {
	Client *http.Client
}

func (h HTTPTransfer) Put(ctx context.Context, target *client.PresignResult, src filex.Source, onSent func(int64)) error {
	f, err := src.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	body := &countingReader{r: f, onRead: onSent}
	ctx = httptrace.WithClientTrace(ctx, &httptrace.ClientTrace{
		Got100Continue: func() { body.accepted.Store(true) },
	})
	return netx.PutBlob(ctx, h.Client, target.UploadURL, body, src.Size, src.ContentType, target.Headers)
}

type countingReader struct {
	r        io.Reader
	n        atomic.Int64
	accepted atomic.Bool
	onRead   func(int64)
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		total := c.n.Add(int64(n))
		if c.onRead != nil && c.accepted.Load() {
			c.onRead(total)
		}
	}
	return n, err
}
