// Package client is the REST client for the streaming storefront backend.
//
// # Overview
//
// The package provides:
//  1. An authenticating http.RoundTripper (see authTransport) that attaches
//     the session's bearer token, and on a 401 performs one de-duplicated
//     token refresh before resending the original request exactly once.
//  2. APIClient, the typed surface over the auth, movie, file and user
//     services: login/register/logout, movie CRUD and search, genres,
//     casts, accounts, video assets and presigned movie uploads.
//  3. QueryCache, a tagged TTL cache for catalog list views which mutations
//     invalidate by tag.
//
// # Error Handling
//
// Non-2xx responses become *APIError carrying the status code and the
// backend message. Common conditions match sentinel errors with errors.Is:
// ErrUnauthorized, ErrNotFound, ErrUnavailable, ErrNoRefreshToken.
//
// # Concurrency & Contexts
//
// APIClient is safe for concurrent use. All operations accept a
// context.Context; refreshes run detached from the first caller's
// cancellation so that concurrent waiters are not failed by it.
package client
