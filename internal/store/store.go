// internal/store/store.go
//
// Persistent key/value surface used by the library package.
// Two keys live here: the serialized library and the score.
// Backends: SQLite (default), Redis, and an in-memory map.

package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when a key has never been written.
var ErrNotFound = errors.New("store: key not found")

// Store defines the persistence interface for named string values.
// Implementations may be backed by memory (memory.go), SQLite, or Redis.
type Store interface {
	// Get returns the value stored under key.
	// Returns ErrNotFound if the key is absent.
	Get(ctx context.Context, key string) (string, error)

	// Set writes value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Close releases the backend connection.
	Close() error
}
