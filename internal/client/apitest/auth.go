package apitest

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const accessTTL = 15 * time.Minute

type ctxKey struct{}

type tokenClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// SeedUser registers an account directly, bypassing the HTTP surface.
func (b *Backend) SeedUser(email, password, name, role string) User {
	b.mu.Lock()
	defer b.mu.Unlock()

	u := User{ID: uuid.NewString(), Email: email, Name: name, Role: role}
	b.users[email] = &account{User: u, password: password}
	return u
}

// IssueTokens mints a fresh access/refresh pair for a seeded account, as a
// successful login would.
func (b *Backend) IssueTokens(email string) (accessToken, refreshToken string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	acc, ok := b.users[email]
	if !ok {
		return "", ""
	}
	return b.issueLocked(acc.User)
}

// ExpireAccessTokens invalidates every access token issued so far.
// Refresh tokens stay valid.
func (b *Backend) ExpireAccessTokens() {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.access)
}

// RevokeRefreshTokens invalidates every refresh token issued so far.
func (b *Backend) RevokeRefreshTokens() {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.refresh)
}

func (b *Backend) issueLocked(u User) (string, string) {
	now := time.Now()
	claims := tokenClaims{
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(accessTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.secret)
	if err != nil {
		panic(err)
	}

	refresh := uuid.NewString()
	b.access[signed] = u.Email
	b.refresh[refresh] = u.Email
	return signed, refresh
}

func (b *Backend) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")

		b.mu.Lock()
		email, valid := b.access[token]
		acc := b.users[email]
		if !ok || !valid || acc == nil {
			b.unauthorized++
			b.mu.Unlock()
			writeError(w, http.StatusUnauthorized, "token expired")
			return
		}
		user := acc.User
		b.mu.Unlock()

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, user)))
	})
}

func currentUser(r *http.Request) User {
	u, _ := r.Context().Value(ctxKey{}).(User)
	return u
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	if b.enter(w, RouteLogin) {
		return
	}

	var req loginRequest
	if !decode(w, r, &req) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	acc, ok := b.users[req.Email]
	if !ok || acc.password != req.Password {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	access, refresh := b.issueLocked(acc.User)
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: access, RefreshToken: refresh})
}

func (b *Backend) handleRefresh(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	hook := b.onRefresh
	b.mu.Unlock()
	if hook != nil {
		hook()
	}

	if b.enter(w, RouteRefresh) {
		return
	}

	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if !decode(w, r, &req) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	email, ok := b.refresh[req.RefreshToken]
	acc := b.users[email]
	if !ok || acc == nil {
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	delete(b.refresh, req.RefreshToken)

	access, refresh := b.issueLocked(acc.User)
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: access, RefreshToken: refresh})
}

func (b *Backend) handleLogout(w http.ResponseWriter, r *http.Request) {
	if b.enter(w, RouteLogout) {
		return
	}

	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	token, _ := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	b.mu.Lock()
	delete(b.access, token)
	delete(b.refresh, req.RefreshToken)
	b.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) handleRegister(w http.ResponseWriter, r *http.Request) {
	if b.enter(w, RouteRegister) {
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"statusCode": http.StatusBadRequest,
			"message":    []string{"email should not be empty", "password should not be empty"},
		})
		return
	}

	b.mu.Lock()
	_, exists := b.users[req.Email]
	b.mu.Unlock()
	if exists {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}

	writeJSON(w, http.StatusCreated, b.SeedUser(req.Email, req.Password, req.Name, "user"))
}

func (b *Backend) handleMe(w http.ResponseWriter, r *http.Request) {
	if b.enter(w, RouteMe) {
		return
	}
	writeJSON(w, http.StatusOK, currentUser(r))
}

func (b *Backend) handleListUsers(w http.ResponseWriter, r *http.Request) {
	if b.enter(w, RouteListUsers) {
		return
	}
	if currentUser(r).Role != "admin" {
		writeError(w, http.StatusForbidden, "admin only")
		return
	}

	b.mu.Lock()
	users := make([]User, 0, len(b.users))
	for _, acc := range b.users {
		users = append(users, acc.User)
	}
	b.mu.Unlock()

	page, limit := pageParams(r)
	writeJSON(w, http.StatusOK, paginate(users, page, limit))
}

func (b *Backend) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if b.enter(w, RouteDeleteUser) {
		return
	}
	if currentUser(r).Role != "admin" {
		writeError(w, http.StatusForbidden, "admin only")
		return
	}

	id := chi.URLParam(r, "id")
	b.mu.Lock()
	defer b.mu.Unlock()
	for email, acc := range b.users {
		if acc.ID == id {
			delete(b.users, email)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, "user not found")
}
