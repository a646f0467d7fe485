package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/streamdesk/internal/common"
	"github.com/dmitrijs2005/streamdesk/internal/logging"
)

// ClearReason says why a session was cleared.
type ClearReason string

const (
	ReasonLogout        ClearReason = "logout"
	ReasonRefreshFailed ClearReason = "refresh_failed"
	ReasonMalformed     ClearReason = "malformed"
)

type Session struct {
	mu        sync.RWMutex
	cred      *Credential
	store     Store
	logger    logging.Logger
	onCleared []func(ClearReason)
}

func New(store Store, logger logging.Logger) *Session {
	if store == nil {
		store = NewMemoryStore()
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Session{store: store, logger: logger}
}

// Load restores the persisted credential. An absent or malformed entry
// leaves the session logged out; only storage failures are returned.
func (s *Session) Load(ctx context.Context) error {
	c, err := s.store.Load(ctx)
	switch {
	case err == nil:
		s.mu.Lock()
		s.cred = &c
		s.mu.Unlock()
		return nil
	case errors.Is(err, ErrNoCredential):
		return nil
	case errors.Is(err, ErrMalformedCredential):
		s.logger.Warn(ctx, "discarding malformed stored credential", "err", err)
		if cerr := s.store.Clear(ctx); cerr != nil {
			return fmt.Errorf("clear malformed credential: %w", cerr)
		}
		return nil
	default:
		return fmt.Errorf("load credential: %w", err)
	}
}

// Credential returns a copy of the live pair.
func (s *Session) Credential() (Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cred == nil {
		return Credential{}, false
	}
	return *s.cred, true
}

func (s *Session) AccessToken() string {
	c, _ := s.Credential()
	return c.AccessToken
}

func (s *Session) RefreshToken() string {
	c, _ := s.Credential()
	return c.RefreshToken
}

func (s *Session) IsAuthenticated() bool {
	_, ok := s.Credential()
	return ok
}

// Set replaces the live pair and persists it. The in-memory pair is updated
// even when persisting fails, so in-flight requests keep working; the
// persistence error is still returned.
func (s *Session) Set(ctx context.Context, c Credential) error {
	if c.AccessToken == "" {
		return ErrEmptyAccessToken
	}

	s.mu.Lock()
	s.cred = &c
	s.mu.Unlock()

	if err := s.store.Save(ctx, c); err != nil {
		return fmt.Errorf("persist credential: %w", err)
	}
	return nil
}

// Clear drops the pair and removes it from the store. OnCleared hooks run
// only when a live pair was actually dropped, so concurrent failures that
// race to clear notify once.
func (s *Session) Clear(ctx context.Context, reason ClearReason) error {
	s.mu.Lock()
	wasSet := s.cred != nil
	s.cred = nil
	var hooks []func(ClearReason)
	if wasSet {
		hooks = append(hooks, s.onCleared...)
	}
	s.mu.Unlock()

	err := s.store.Clear(ctx)

	for _, fn := range hooks {
		fn(reason)
	}

	if err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}

// OnCleared registers fn to be called after every Clear.
func (s *Session) OnCleared(fn func(ClearReason)) {
	s.mu.Lock()
	s.onCleared = append(s.onCleared, fn)
	s.mu.Unlock()
}

// Claims decodes the current access token.
func (s *Session) Claims() (Claims, error) {
	c, ok := s.Credential()
	if !ok {
		return Claims{}, common.ErrNotAuthenticated
	}
	return ParseClaims(c.AccessToken)
}
