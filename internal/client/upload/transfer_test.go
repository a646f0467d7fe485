package upload

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/streamdesk/internal/client/apitest"
	"github.com/dmitrijs2005/streamdesk/internal/client/client"
)

func presign(t *testing.T, f *fixture) *client.PresignResult {
	t.Helper()
	movie, err := f.api.CreateMovie(context.Background(), f.request().Movie)
	require.NoError(t, err)
	target, err := f.api.PresignMovie(context.Background(), client.PresignRequest{
		MovieID:     movie.ID,
		FileName:    f.source.Name,
		ContentType: f.source.ContentType,
	})
	require.NoError(t, err)
	return target
}

type sentLog struct {
	mu   sync.Mutex
	sent []int64
}

func (s *sentLog) add(n int64) {
	s.mu.Lock()
	s.sent = append(s.sent, n)
	s.mu.Unlock()
}

func (s *sentLog) all() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.sent...)
}

func TestHTTPTransfer_ReportsBytesAfterStorageAccepts(t *testing.T) {
	f := newFixture(t)
	target := presign(t, f)

	var log sentLog
	require.NoError(t, HTTPTransfer{}.Put(context.Background(), target, f.source, log.add))

	sent := log.all()
	require.NotEmpty(t, sent)
	assert.Equal(t, f.source.Size, sent[len(sent)-1])
}

func TestHTTPTransfer_CrossOriginRejectionSendsNoBytes(t *testing.T) {
	f := newFixture(t)
	target := presign(t, f)
	f.backend.SetStorageFault(apitest.StorageCORS)

	var log sentLog
	err := HTTPTransfer{}.Put(context.Background(), target, f.source, log.add)

	require.ErrorIs(t, err, ErrCrossOrigin)
	assert.Empty(t, log.all())
}
