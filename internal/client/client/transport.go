package client

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/dmitrijs2005/streamdesk/internal/client/session"
	"github.com/dmitrijs2005/streamdesk/internal/common"
	"github.com/dmitrijs2005/streamdesk/internal/logging"
	"github.com/google/uuid"
)

type retriedKey struct{}

// refreshFunc returns a valid credential pair, refreshing it if needed.
// Implementations must de-duplicate concurrent calls.
type refreshFunc func(ctx context.Context) (session.Credential, error)

// authTransport attaches the session's bearer token and recovers from an
// expired access token once per request.
type authTransport struct {
	base    http.RoundTripper
	session *session.Session
	refresh refreshFunc
	logger  logging.Logger
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	callerAuth := req.Header.Get(common.AuthorizationHeaderName) != ""

	out := req.Clone(req.Context())
	if out.Header.Get(common.RequestIDHeaderName) == "" {
		out.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	}

	sentToken := ""
	if !callerAuth {
		if sentToken = t.session.AccessToken(); sentToken != "" {
			out.Header.Set(common.AuthorizationHeaderName, common.BearerToken(sentToken))
		}
	}

	resp, err := t.base.RoundTrip(out)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}
	if callerAuth || isRetried(req) {
		return resp, nil
	}

	ctx := req.Context()

	// Keep the original 401 so it can be handed back if recovery fails.
	orig, err := bufferResponse(resp)
	if err != nil {
		return nil, err
	}

	token, err := t.validToken(ctx, sentToken)
	if err != nil {
		t.logger.Warn(ctx, "token refresh failed, returning original response",
			"method", req.Method, "url", req.URL.Redacted(), "err", err)
		return orig, nil
	}

	retry, err := t.retryRequest(out, token)
	if err != nil {
		t.logger.Warn(ctx, "request body cannot be replayed, returning original response",
			"method", req.Method, "url", req.URL.Redacted(), "err", err)
		return orig, nil
	}

	t.logger.Debug(ctx, "resending request after token refresh", "method", req.Method, "url", req.URL.Redacted())
	return t.base.RoundTrip(retry)
}

// validToken returns an access token newer than sentToken. When another
// request already completed a refresh, its token is reused without a new
// network call.
func (t *authTransport) validToken(ctx context.Context, sentToken string) (string, error) {
	if current := t.session.AccessToken(); current != "" && current != sentToken {
		return current, nil
	}
	cred, err := t.refresh(ctx)
	if err != nil {
		return "", err
	}
	return cred.AccessToken, nil
}

func (t *authTransport) retryRequest(sent *http.Request, token string) (*http.Request, error) {
	ctx := context.WithValue(sent.Context(), retriedKey{}, true)
	retry := sent.Clone(ctx)

	if sent.Body != nil && sent.Body != http.NoBody {
		if sent.GetBody == nil {
			return nil, errBodyNotReplayable
		}
		body, err := sent.GetBody()
		if err != nil {
			return nil, err
		}
		retry.Body = body
	}

	retry.Header.Set(common.AuthorizationHeaderName, common.BearerToken(token))
	return retry, nil
}

func isRetried(req *http.Request) bool {
	v, _ := req.Context().Value(retriedKey{}).(bool)
	return v
}

func bufferResponse(resp *http.Response) (*http.Response, error) {
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(raw))
	return resp, nil
}
