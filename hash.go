package ttcache

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Hasher turns a cache key or tag name into the string used in the KV
// store's key layout. It is generalized into a named interface rather
// than a bare func value, so it composes with Config the same way a
// serializer does.
type Hasher interface {
	Hash(s string) string
}

// IdentityHasher returns its input unchanged. This is the default: cache
// keys and tag names are already opaque strings from the core's point
// of view, so no hashing is required for correctness — only for key
// shortening or namespace hygiene, which callers opt into via XXHasher.
type IdentityHasher struct{}

// Hash implements Hasher.
func (IdentityHasher) Hash(s string) string { return s }

// XXHasher hashes with a fast non-cryptographic 64-bit hash
// (cespare/xxhash), deterministic across processes — this is also what
// backs ShardingTag's stableHash, so a store configured with XXHasher
// and a codebase that uses ShardingTag are hashing with the same
// primitive.
type XXHasher struct{}

// Hash implements Hasher.
func (XXHasher) Hash(s string) string {
	return strconv.FormatUint(xxhash.Sum64String(s), 16)
}

// stableHash is the deterministic routing hash ShardingTag resolves
// with. It is independent of the configured Hasher: a
// sharding tag's bucket must never move just because the cache's key
// hasher changed.
func stableHash(s string) uint64 {
	return xxhash.Sum64String(s)
}
