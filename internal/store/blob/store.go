// Package blob stores opaque values under string keys. The user collection
// lives in a single blob; the session token and its signing key live in two
// more next to it.
//
// Backends: SQLite (default), PostgreSQL, Redis, S3-compatible object storage
// and an in-process map.
package blob

import "context"

// UpdateFunc receives the current value (nil when the key is absent) and
// returns the value to store. Returning an error aborts the update without
// writing; the error is passed back to the caller of Update unchanged.
type UpdateFunc func(current []byte) ([]byte, error)

// Store is a key-value blob store.
type Store interface {
	// Get returns (nil, nil) when key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set creates or replaces the value under key.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Update performs a read-modify-write of key, as atomically as the
	// backend allows.
	Update(ctx context.Context, key string, fn UpdateFunc) error
	Close() error
}
