package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/streamdesk/internal/client/session"
)

// Login exchanges email and password for a credential pair and stores it
// in the session.
func (c *APIClient) Login(ctx context.Context, email, password string) error {
	in := map[string]string{"email": email, "password": password}

	var pair tokenPair
	if err := c.send(ctx, c.raw, http.MethodPost, "/auth/login", nil, in, &pair); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	cred := session.Credential{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}
	if err := c.session.Set(ctx, cred); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	return nil
}

// Register creates a new account. It does not log the account in.
func (c *APIClient) Register(ctx context.Context, in RegisterInput) (*User, error) {
	var u User
	if err := c.send(ctx, c.raw, http.MethodPost, "/users", nil, in, &u); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return &u, nil
}

// Logout revokes the refresh token on the backend and clears the session.
// The session is cleared even when the backend call fails; that failure is
// logged, not returned.
func (c *APIClient) Logout(ctx context.Context) error {
	if rt := c.session.RefreshToken(); rt != "" {
		in := map[string]string{"refreshToken": rt}
		if err := c.do(ctx, http.MethodPost, "/auth/logout", nil, in, nil); err != nil {
			c.logger.Warn(ctx, "backend logout failed", "err", err)
		}
	}
	c.cache.Invalidate(TagUsers)
	return c.session.Clear(ctx, session.ReasonLogout)
}

// Me returns the profile of the logged-in account.
func (c *APIClient) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListUsers returns a page of accounts. Admin only.
func (c *APIClient) ListUsers(ctx context.Context, page, limit int) (*Page[User], error) {
	var out Page[User]
	if err := c.getCached(ctx, "/users", pageQuery(page, limit), &out, TagUsers); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteUser removes an account. Admin only.
func (c *APIClient) DeleteUser(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/users/"+id, nil, nil, nil); err != nil {
		return err
	}
	c.cache.Invalidate(TagUsers)
	return nil
}
