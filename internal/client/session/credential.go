package session

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/streamdesk/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoCredential        = errors.New("no stored credential")
	ErrMalformedCredential = errors.New("malformed stored credential")
	ErrEmptyAccessToken    = errors.New("access token is empty")
)

// Credential is the access/refresh token pair issued by the auth backend.
type Credential struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Claims is the display-only view of an access token. It is decoded
// without signature verification; the backend stays the authority.
type Claims struct {
	UserID    string
	Email     string
	Name      string
	Role      string
	ExpiresAt time.Time
}

// IsAdmin reports whether the token carries the admin role.
func (c Claims) IsAdmin() bool {
	return c.Role == "admin"
}

// Expired reports whether the token expiry is known and not after now.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

type tokenClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// ParseClaims decodes the payload of a JWT access token.
func ParseClaims(accessToken string) (Claims, error) {
	tc := &tokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, tc); err != nil {
		return Claims{}, errors.Join(common.ErrMalformedToken, err)
	}

	c := Claims{UserID: tc.Subject, Email: tc.Email, Name: tc.Name, Role: tc.Role}
	if tc.ExpiresAt != nil {
		c.ExpiresAt = tc.ExpiresAt.Time
	}
	return c, nil
}
