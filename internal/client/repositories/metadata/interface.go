// Package metadata stores small named values (the persisted credential and
// its bookkeeping) in the local state database.
package metadata

import (
	"context"
)

// Repository is a key/value store over the metadata table.
// Get returns common.ErrorNotFound when the key is absent.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	Clear(ctx context.Context) error
}
