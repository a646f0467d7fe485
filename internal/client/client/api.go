package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/streamdesk/internal/client/session"
	"github.com/dmitrijs2005/streamdesk/internal/logging"
	"golang.org/x/sync/singleflight"
)

const (
	refreshKey     = "refresh"
	refreshTimeout = 15 * time.Second
)

// Options configure an APIClient.
type Options struct {
	// BaseURL is the API gateway root, e.g. "https://api.example.com".
	BaseURL string
	// Session supplies and receives the credential pair. Required.
	Session *session.Session
	Logger  logging.Logger
	// Transport is the underlying round tripper; http.DefaultTransport if nil.
	Transport http.RoundTripper
	// Timeout bounds each API call. Zero means no client-side timeout.
	Timeout time.Duration
	// CacheTTL is how long catalog list views are cached. Zero disables it.
	CacheTTL time.Duration
}

// APIClient talks to the auth, movie, file and user services.
type APIClient struct {
	baseURL *url.URL
	http    *http.Client
	raw     *http.Client
	session *session.Session
	cache   *QueryCache
	logger  logging.Logger

	refreshGroup singleflight.Group
}

func New(opts Options) (*APIClient, error) {
	if opts.Session == nil {
		return nil, errors.New("client: session is required")
	}
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("client: invalid base url %q", opts.BaseURL)
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.Transport == nil {
		opts.Transport = http.DefaultTransport
	}

	c := &APIClient{
		baseURL: base,
		session: opts.Session,
		cache:   NewQueryCache(opts.CacheTTL),
		logger:  opts.Logger,
		raw:     &http.Client{Transport: opts.Transport, Timeout: opts.Timeout},
	}
	c.http = &http.Client{
		Transport: &authTransport{
			base:    opts.Transport,
			session: opts.Session,
			refresh: c.Refresh,
			logger:  opts.Logger,
		},
		Timeout: opts.Timeout,
	}
	return c, nil
}

// Session returns the session this client authenticates with.
func (c *APIClient) Session() *session.Session {
	return c.session
}

// Cache exposes the catalog view cache.
func (c *APIClient) Cache() *QueryCache {
	return c.cache
}

// InvalidateCatalog drops cached movie list and movie category views.
func (c *APIClient) InvalidateCatalog() {
	c.cache.Invalidate(TagMovies, TagMovieCategories)
}

// Refresh obtains a new credential pair from the refresh endpoint.
// Concurrent callers share one in-flight call. On any failure the session
// is cleared with session.ReasonRefreshFailed.
func (c *APIClient) Refresh(ctx context.Context) (session.Credential, error) {
	v, err, shared := c.refreshGroup.Do(refreshKey, func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()
		return c.refreshCredential(rctx)
	})
	if shared {
		c.logger.Debug(ctx, "joined in-flight token refresh")
	}
	if err != nil {
		return session.Credential{}, err
	}
	return v.(session.Credential), nil
}

func (c *APIClient) refreshCredential(ctx context.Context) (session.Credential, error) {
	cred, err := c.requestRefresh(ctx)
	if err != nil {
		if cerr := c.session.Clear(ctx, session.ReasonRefreshFailed); cerr != nil {
			c.logger.Error(ctx, "failed to clear session after refresh failure", "err", cerr)
		}
		return session.Credential{}, err
	}
	if err := c.session.Set(ctx, cred); err != nil {
		c.logger.Warn(ctx, "refreshed credential not persisted", "err", err)
	}
	c.logger.Info(ctx, "access token refreshed")
	return cred, nil
}

func (c *APIClient) requestRefresh(ctx context.Context) (session.Credential, error) {
	refreshToken := c.session.RefreshToken()
	if refreshToken == "" {
		return session.Credential{}, ErrNoRefreshToken
	}

	var pair tokenPair
	in := map[string]string{"refreshToken": refreshToken}
	if err := c.send(ctx, c.raw, http.MethodPost, "/auth/refresh", nil, in, &pair); err != nil {
		return session.Credential{}, fmt.Errorf("refresh: %w", err)
	}
	if pair.AccessToken == "" {
		return session.Credential{}, fmt.Errorf("refresh: %w", session.ErrEmptyAccessToken)
	}
	if pair.RefreshToken == "" {
		pair.RefreshToken = refreshToken
	}
	return session.Credential{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

// do performs an authenticated JSON call.
func (c *APIClient) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	return c.send(ctx, c.http, method, path, query, in, out)
}

// getCached serves a GET from the query cache, filling it on a miss.
func (c *APIClient) getCached(ctx context.Context, path string, query url.Values, out any, tags ...string) error {
	key := path
	if len(query) > 0 {
		key += "?" + query.Encode()
	}
	if raw, ok := c.cache.Get(key); ok {
		return json.Unmarshal(raw, out)
	}

	gen := c.cache.Generation(tags...)
	raw, err := c.exchange(ctx, c.http, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	c.cache.SetAt(gen, key, raw, tags...)
	return nil
}

func (c *APIClient) send(ctx context.Context, hc *http.Client, method, path string, query url.Values, in, out any) error {
	raw, err := c.exchange(ctx, hc, method, path, query, in)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// exchange issues the request and returns the raw 2xx body.
func (c *APIClient) exchange(ctx context.Context, hc *http.Client, method, path string, query url.Values, in any) ([]byte, error) {
	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeAPIError(resp)
		c.logger.Debug(ctx, "api call failed", "method", method, "path", path, "status", apiErr.StatusCode, "message", apiErr.Message)
		return nil, apiErr
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrUnavailable, err)
	}
	return raw, nil
}
