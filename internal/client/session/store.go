package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/streamdesk/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/streamdesk/internal/common"
	"github.com/dmitrijs2005/streamdesk/internal/dbx"
)

// Store persists a single credential pair.
//
// Load returns ErrNoCredential when nothing is stored and
// ErrMalformedCredential when the stored entry cannot be decoded.
type Store interface {
	Load(ctx context.Context) (Credential, error)
	Save(ctx context.Context, c Credential) error
	Clear(ctx context.Context) error
}

// SQLiteStore keeps the credential under common.CredentialKey in the
// metadata table of the state database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

func (s *SQLiteStore) Load(ctx context.Context) (Credential, error) {
	raw, err := metadata.NewSQLiteRepository(s.db).Get(ctx, common.CredentialKey)
	if errors.Is(err, common.ErrorNotFound) {
		return Credential{}, ErrNoCredential
	}
	if err != nil {
		return Credential{}, err
	}
	return decodeCredential(raw)
}

// Save writes the credential and its timestamp in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, c Credential) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode credential: %w", err)
	}
	savedAt := []byte(strconv.FormatInt(s.now().Unix(), 10))

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, common.CredentialKey, raw); err != nil {
			return err
		}
		return repo.Set(ctx, common.CredentialSavedAtKey, savedAt)
	})
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	return metadata.NewSQLiteRepository(s.db).Delete(ctx, common.CredentialKey, common.CredentialSavedAtKey)
}

// MemoryStore keeps the credential in process memory only; used for
// ephemeral sessions and tests.
type MemoryStore struct {
	mu  sync.Mutex
	raw []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(ctx context.Context) (Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.raw == nil {
		return Credential{}, ErrNoCredential
	}
	return decodeCredential(m.raw)
}

func (m *MemoryStore) Save(ctx context.Context, c Credential) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.raw = raw
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.raw = nil
	m.mu.Unlock()
	return nil
}

func decodeCredential(raw []byte) (Credential, error) {
	var c Credential
	if err := json.Unmarshal(raw, &c); err != nil {
		return Credential{}, errors.Join(ErrMalformedCredential, err)
	}
	if c.AccessToken == "" {
		return Credential{}, ErrMalformedCredential
	}
	return c, nil
}
