package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no value is stored under a key.
var ErrNotFound = errors.New("key not found")

// KV is durable local key/value storage for small string values such as
// session credentials. Implementations must be safe for concurrent use.
type KV interface {
	// Get returns the value stored under key, or an error wrapping
	// ErrNotFound when there is none.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every key owned by this storage.
	Clear(ctx context.Context) error
}
