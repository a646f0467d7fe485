package client

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/streamdesk/internal/client/apitest"
	"github.com/dmitrijs2005/streamdesk/internal/client/session"
	"github.com/dmitrijs2005/streamdesk/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransport_AttachesBearerAfterLogin(t *testing.T) {
	b := apitest.New(t)
	c := newTestClient(t, b)
	ctx := context.Background()

	require.NoError(t, c.Login(ctx, apitest.AdminEmail, apitest.AdminPassword))

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, apitest.AdminEmail, me.Email)
	assert.Equal(t, 0, b.Unauthorized())
	assert.Equal(t, 0, b.Calls(apitest.RouteRefresh))
}

func TestTransport_ExpiredTokenRefreshesAndResendsOnce(t *testing.T) {
	b := apitest.New(t)
	c := loggedInClient(t, b)
	ctx := context.Background()
	before := c.Session().AccessToken()

	b.ExpireAccessTokens()

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, apitest.AdminEmail, me.Email)

	assert.Equal(t, 1, b.Calls(apitest.RouteRefresh))
	assert.Equal(t, 1, b.Unauthorized())
	assert.Equal(t, 1, b.Calls(apitest.RouteMe), "only the resend reaches the handler")
	assert.NotEqual(t, before, c.Session().AccessToken())
}

func TestTransport_ResendReplaysBody(t *testing.T) {
	b := apitest.New(t)
	c := loggedInClient(t, b)
	ctx := context.Background()

	b.ExpireAccessTokens()

	g, err := c.CreateGenre(ctx, "Noir")
	require.NoError(t, err)
	assert.Equal(t, "Noir", g.Name)
	assert.Equal(t, 1, b.Calls(apitest.RouteCreateGenre), "first attempt is rejected before the handler")
}

func TestTransport_ConcurrentUnauthorizedShareOneRefresh(t *testing.T) {
	const n = 8

	b := apitest.New(t)
	c := loggedInClient(t, b)
	ctx := context.Background()

	b.ExpireAccessTokens()
	b.OnRefresh(func() { b.WaitUnauthorized(n, 2*time.Second) })

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = c.Me(ctx)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "request %d", i)
	}
	assert.Equal(t, n, b.Unauthorized())
	assert.Equal(t, 1, b.Calls(apitest.RouteRefresh))
	assert.Equal(t, n, b.Calls(apitest.RouteMe))
}

func TestTransport_FailedRefreshClearsSessionAndReturnsOriginal401(t *testing.T) {
	const n = 5

	b := apitest.New(t)
	c := loggedInClient(t, b)
	ctx := context.Background()

	var cleared atomic.Int32
	var reason atomic.Value
	c.Session().OnCleared(func(r session.ClearReason) {
		cleared.Add(1)
		reason.Store(r)
	})

	b.ExpireAccessTokens()
	b.SetFault(apitest.RouteRefresh, http.StatusUnauthorized)
	b.OnRefresh(func() { b.WaitUnauthorized(n, 2*time.Second) })

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = c.Me(ctx)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnauthorized)
		assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
		assert.Contains(t, err.Error(), "token expired", "waiters see the original response, not the refresh failure")
	}
	assert.False(t, c.Session().IsAuthenticated())
	assert.Equal(t, 1, b.Calls(apitest.RouteRefresh))
	assert.Equal(t, int32(1), cleared.Load())
	assert.Equal(t, session.ReasonRefreshFailed, reason.Load())
}

func TestTransport_NoRefreshTokenMeansNoRefreshCall(t *testing.T) {
	b := apitest.New(t)
	c := newTestClient(t, b)

	_, err := c.Me(context.Background())
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
	assert.Equal(t, 0, b.Calls(apitest.RouteRefresh))
}

func TestTransport_SecondUnauthorizedIsPropagated(t *testing.T) {
	b := apitest.New(t)
	c := loggedInClient(t, b)

	// Every token the backend mints is rejected by the route itself.
	b.SetFault(apitest.RouteMe, http.StatusUnauthorized)
	b.ExpireAccessTokens()

	_, err := c.Me(context.Background())
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
	assert.Equal(t, 1, b.Calls(apitest.RouteRefresh))
	assert.Equal(t, 1, b.Calls(apitest.RouteMe), "the resend is the only attempt that reached the handler")
	assert.True(t, c.Session().IsAuthenticated(), "a rejected resend does not clear the session")
}

func TestTransport_CallerAuthorizationIsNeverRefreshed(t *testing.T) {
	b := apitest.New(t)
	c := loggedInClient(t, b)

	req, err := http.NewRequest(http.MethodGet, b.URL+"/users/me", nil)
	require.NoError(t, err)
	req.Header.Set(common.AuthorizationHeaderName, common.BearerToken("caller-token"))

	resp, err := c.http.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, 0, b.Calls(apitest.RouteRefresh))
}

type headerRecorder struct {
	mu      sync.Mutex
	headers []http.Header
	next    http.RoundTripper
}

func (h *headerRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	h.mu.Lock()
	h.headers = append(h.headers, req.Header.Clone())
	h.mu.Unlock()
	return h.next.RoundTrip(req)
}

func TestTransport_RetryCarriesNewTokenAndRequestID(t *testing.T) {
	b := apitest.New(t)
	rec := &headerRecorder{next: http.DefaultTransport}

	c, err := New(Options{BaseURL: b.URL, Session: session.New(nil, nil), Transport: rec})
	require.NoError(t, err)
	access, refresh := b.IssueTokens(apitest.AdminEmail)
	require.NoError(t, c.Session().Set(context.Background(), session.Credential{AccessToken: access, RefreshToken: refresh}))

	b.ExpireAccessTokens()
	_, err = c.Me(context.Background())
	require.NoError(t, err)

	// me (401), refresh, me (resend)
	require.Len(t, rec.headers, 3)
	first, resend := rec.headers[0], rec.headers[2]

	assert.Equal(t, common.BearerToken(access), first.Get(common.AuthorizationHeaderName))
	assert.Equal(t, common.BearerToken(c.Session().AccessToken()), resend.Get(common.AuthorizationHeaderName))
	assert.NotEqual(t, first.Get(common.AuthorizationHeaderName), resend.Get(common.AuthorizationHeaderName))

	assert.NotEmpty(t, first.Get(common.RequestIDHeaderName))
	assert.Equal(t, first.Get(common.RequestIDHeaderName), resend.Get(common.RequestIDHeaderName))
	assert.Empty(t, rec.headers[1].Get(common.AuthorizationHeaderName), "refresh goes out unauthenticated")
}
