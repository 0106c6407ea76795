// Package kvstore defines the external KV store contract that the
// tag-tree engine consumes: opaque byte values, no knowledge of tags.
// Drivers in this module's subpackages (memorykv, rediskv) implement it;
// physical connection pooling, sharding across nodes, and persistence
// are the driver's concern, not this package's.
package kvstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key is absent. It is never a
// "store unavailable" condition — callers distinguish it from other
// errors to tell a clean miss from a transient failure.
var ErrNotFound = errors.New("kvstore: key not found")

// Store is the minimal contract a backing cache (e.g. memcached, Redis)
// must satisfy. Values are opaque blobs; the store never interprets
// them. A TTL of 0 means "no expiry".
type Store interface {
	// Get fetches the value at key. Returns ErrNotFound if absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// GetMulti fetches every key present in keys. Keys absent from the
	// store are simply absent from the result map — no error.
	GetMulti(ctx context.Context, keys []string) (map[string][]byte, error)

	// Set stores value at key with the given TTL (0 = no expiry).
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// SetMulti stores every entry with the same TTL.
	SetMulti(ctx context.Context, entries map[string][]byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// Closer is implemented by drivers that hold resources (connections,
// background goroutines) needing explicit teardown.
type Closer interface {
	Close() error
}
