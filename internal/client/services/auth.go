package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/streamdesk/internal/client/client"
	"github.com/dmitrijs2005/streamdesk/internal/client/session"
	"github.com/dmitrijs2005/streamdesk/internal/common"
)

// AuthClient is the part of the API client AuthService uses.
type AuthClient interface {
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, in client.RegisterInput) (*client.User, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*client.User, error)
	Session() *session.Session
}

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: validate credentials, authenticate and keep the token pair in
//     the session.
//   - Register: validate and create an account; does not log in.
//   - Logout: clear the session, telling the backend when possible.
//   - WhoAmI: the backend profile plus the decoded token claims.
//
// Passwords are passed as byte slices and wiped after use.
type AuthService interface {
	Login(ctx context.Context, email string, password []byte) error
	Register(ctx context.Context, email, name string, password []byte) (*client.User, error)
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) (*Profile, error)
}

// Profile is what WhoAmI reports.
type Profile struct {
	User   client.User
	Claims session.Claims
}

type loginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type authService struct {
	client AuthClient
}

func NewAuthService(client AuthClient) AuthService {
	return &authService{client: client}
}

func (a *authService) Login(ctx context.Context, email string, password []byte) error {
	defer common.WipeByteArray(password)

	in := loginInput{Email: strings.TrimSpace(email), Password: string(password)}
	if err := validateStruct(in); err != nil {
		return err
	}

	if err := a.client.Login(ctx, in.Email, in.Password); err != nil {
		return fmt.Errorf("login error: %w", err)
	}
	return nil
}

func (a *authService) Register(ctx context.Context, email, name string, password []byte) (*client.User, error) {
	defer common.WipeByteArray(password)

	in := client.RegisterInput{
		Email:    strings.TrimSpace(email),
		Name:     strings.TrimSpace(name),
		Password: string(password),
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	u, err := a.client.Register(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("register error: %w", err)
	}
	return u, nil
}

func (a *authService) Logout(ctx context.Context) error {
	if !a.client.Session().IsAuthenticated() {
		return common.ErrNotAuthenticated
	}
	return a.client.Logout(ctx)
}

// WhoAmI fails with common.ErrNotAuthenticated without a network call when
// the session is empty.
func (a *authService) WhoAmI(ctx context.Context) (*Profile, error) {
	s := a.client.Session()
	if !s.IsAuthenticated() {
		return nil, common.ErrNotAuthenticated
	}

	u, err := a.client.Me(ctx)
	if err != nil {
		return nil, err
	}

	// The access token may have been refreshed by Me; decode the live one.
	claims, err := s.Claims()
	if err != nil {
		return nil, err
	}
	return &Profile{User: *u, Claims: claims}, nil
}
