package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/streamdesk/internal/client/apitest"
	"github.com/dmitrijs2005/streamdesk/internal/client/session"
	"github.com/dmitrijs2005/streamdesk/internal/logging"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, b *apitest.Backend) *APIClient {
	t.Helper()

	c, err := New(Options{
		BaseURL:  b.URL,
		Session:  session.New(session.NewMemoryStore(), logging.Nop()),
		Logger:   logging.Nop(),
		Timeout:  5 * time.Second,
		CacheTTL: time.Minute,
	})
	require.NoError(t, err)
	return c
}

// loggedInClient returns a client whose session holds a fresh admin pair.
func loggedInClient(t *testing.T, b *apitest.Backend) *APIClient {
	t.Helper()

	c := newTestClient(t, b)
	access, refresh := b.IssueTokens(apitest.AdminEmail)
	require.NoError(t, c.Session().Set(context.Background(), session.Credential{
		AccessToken:  access,
		RefreshToken: refresh,
	}))
	return c
}

func newStubServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}
