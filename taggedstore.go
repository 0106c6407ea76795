package ttcache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/ttcache/ttcache/kvstore"
	"github.com/ttcache/ttcache/serializer"
)

// Stats are cumulative counters for a TaggedStore's activity, exported
// for the ambient observability stack.
type Stats struct {
	Hits             int64
	Misses           int64
	Rotations        int64
	ReadonlyFallback int64
}

// TaggedStore wraps a plain kvstore.Store with tag-fingerprint
// bookkeeping: tagged reads that validate fingerprints before
// returning a value, and tag rotation that invalidates without ever
// scanning the store. It has no notion of call nesting
// or request scope; that lives one layer up, in the tagtree-aware
// façade.
type TaggedStore struct {
	store      kvstore.Store
	serializer serializer.Serializer
	hasher     Hasher

	hits             int64
	misses           int64
	rotations        int64
	readonlyFallback int64
}

// NewTaggedStore builds a TaggedStore over store, encoding values with
// ser and hashing keys and tag names with hasher.
func NewTaggedStore(store kvstore.Store, ser serializer.Serializer, hasher Hasher) *TaggedStore {
	if hasher == nil {
		hasher = IdentityHasher{}
	}
	return &TaggedStore{store: store, serializer: ser, hasher: hasher}
}

// Stats returns a snapshot of this store's cumulative counters.
func (s *TaggedStore) Stats() Stats {
	return Stats{
		Hits:             atomic.LoadInt64(&s.hits),
		Misses:           atomic.LoadInt64(&s.misses),
		Rotations:        atomic.LoadInt64(&s.rotations),
		ReadonlyFallback: atomic.LoadInt64(&s.readonlyFallback),
	}
}

// Get reads the TaggedValue stored under key, returning ok=false if it
// is absent, undecodable, or has gone stale because one of the tag
// fingerprints it was written with no longer matches the store's
// current value for that tag. Store-level errors never surface here:
// they degrade to a miss.
func (s *TaggedStore) Get(ctx context.Context, key string) (TaggedValue, bool, error) {
	hk := hashedKey(key, s.hasher)
	raw, err := s.store.Get(ctx, hk)
	if err != nil {
		atomic.AddInt64(&s.misses, 1)
		return TaggedValue{}, false, nil
	}
	tv, err := decodeTaggedValue(s.serializer, raw)
	if err != nil {
		atomic.AddInt64(&s.misses, 1)
		return TaggedValue{}, false, nil
	}
	valid, err := s.validate(ctx, tv.Tags)
	if err != nil || !valid {
		atomic.AddInt64(&s.misses, 1)
		return TaggedValue{}, false, nil
	}
	atomic.AddInt64(&s.hits, 1)
	return tv, true, nil
}

// GetMultiple reads every key in keys and returns only the ones that
// are present and still valid. It makes at most two round trips to the
// underlying store regardless of how many keys are requested: one
// GetMulti for the candidate values, and one GetMulti for the union of
// every tag fingerprint any of those values depends on, skipped when no
// value decoded or none of them carries tags.
func (s *TaggedStore) GetMultiple(ctx context.Context, keys []string) (map[string]TaggedValue, error) {
	out := make(map[string]TaggedValue)
	if len(keys) == 0 {
		return out, nil
	}

	hashedToOrig := make(map[string]string, len(keys))
	hkeys := make([]string, 0, len(keys))
	for _, k := range keys {
		hk := hashedKey(k, s.hasher)
		hashedToOrig[hk] = k
		hkeys = append(hkeys, hk)
	}

	raw, err := s.store.GetMulti(ctx, hkeys)
	if err != nil {
		atomic.AddInt64(&s.misses, int64(len(keys)))
		return out, nil
	}

	decoded := make(map[string]TaggedValue, len(raw))
	tagKeySet := make(map[string]struct{})
	for hk, data := range raw {
		tv, err := decodeTaggedValue(s.serializer, data)
		if err != nil {
			continue
		}
		decoded[hashedToOrig[hk]] = tv
		for tk := range tv.Tags {
			tagKeySet[tk] = struct{}{}
		}
	}
	if len(decoded) == 0 {
		atomic.AddInt64(&s.misses, int64(len(keys)))
		return out, nil
	}

	var current map[string][]byte
	if len(tagKeySet) > 0 {
		tagKeys := make([]string, 0, len(tagKeySet))
		for tk := range tagKeySet {
			tagKeys = append(tagKeys, tk)
		}
		current, err = s.store.GetMulti(ctx, tagKeys)
		if err != nil {
			atomic.AddInt64(&s.misses, int64(len(keys)))
			return out, nil
		}
	}

	for orig, tv := range decoded {
		if tagsValid(tv.Tags, current) {
			out[orig] = tv
			atomic.AddInt64(&s.hits, 1)
		} else {
			atomic.AddInt64(&s.misses, 1)
		}
	}
	atomic.AddInt64(&s.misses, int64(len(keys)-len(decoded)))
	return out, nil
}

func tagsValid(tags map[string]string, current map[string][]byte) bool {
	for k, fp := range tags {
		cur, ok := current[k]
		if !ok || string(cur) != fp {
			return false
		}
	}
	return true
}

func (s *TaggedStore) validate(ctx context.Context, tags map[string]string) (bool, error) {
	if len(tags) == 0 {
		return true, nil
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	current, err := s.store.GetMulti(ctx, keys)
	if err != nil {
		return false, nil
	}
	return tagsValid(tags, current), nil
}

// ttlTagMethod identifies the operation that minted a synthetic TTL
// pseudo-tag key (FetchOrMakeTagHashes is only ever called with ttl > 0
// from Remember), keeping the key's namespace "<method>:ttl:..." out of
// the "t:<hash>" namespace ordinary tag keys live in — a plain tag
// literally named "ttl:<nonce>" must never collide with one of these.
const ttlTagMethod = "remember"

// FetchOrMakeTagHashes resolves tagKeys (already-hashed tag-store keys)
// to their current fingerprint, minting and persisting a fresh one for
// any that don't exist yet. When ttl > 0 it also mints a one-off TTL
// pseudo-tag, stored with that same ttl so it naturally expires from
// the store and cascades invalidation into every frame that captured
// it — including frames with no ttl of their own, since a frame's
// snapshot always bubbles every tag it held up to its parent. When
// ttl == 0 no pseudo-tag is created at all; nothing expiry-
// related ever enters the tag set for a permanent call.
//
// readonly reports that the store was unavailable for at least one of
// these operations, so any freshly minted fingerprints here are
// ephemeral and must not be trusted for a subsequent Store call.
func (s *TaggedStore) FetchOrMakeTagHashes(ctx context.Context, tagKeys []string, ttl time.Duration) (tagHashes map[string]string, readonly bool, err error) {
	out := make(map[string]string, len(tagKeys)+1)

	if len(tagKeys) > 0 {
		existing, getErr := s.store.GetMulti(ctx, tagKeys)
		if getErr != nil {
			readonly = true
			for _, k := range tagKeys {
				out[k] = newFingerprint()
			}
		} else {
			missing := make(map[string][]byte)
			for _, k := range tagKeys {
				if v, ok := existing[k]; ok {
					out[k] = string(v)
					continue
				}
				fp := newFingerprint()
				out[k] = fp
				missing[k] = []byte(fp)
			}
			if len(missing) > 0 {
				if setErr := s.store.SetMulti(ctx, missing, 0); setErr != nil {
					readonly = true
				}
			}
		}
	}

	if ttl > 0 {
		key := ttlTagMethod + ":ttl:" + ttl.String() + ":" + newFingerprint()
		fp := newFingerprint()
		if setErr := s.store.Set(ctx, key, []byte(fp), ttl); setErr != nil {
			readonly = true
		}
		out[key] = fp
	}

	if readonly {
		atomic.AddInt64(&s.readonlyFallback, 1)
	}
	return out, readonly, nil
}

// Store writes value under key with the given tag-fingerprint snapshot
// and ttl. Encode and store failures both degrade silently: a write
// that can't land just means the next read misses.
func (s *TaggedStore) Store(ctx context.Context, key string, ttl time.Duration, tagHashes map[string]string, value interface{}, revealed bool) error {
	hk := hashedKey(key, s.hasher)
	tv := TaggedValue{Value: value, Tags: tagHashes, Revealed: revealed}
	data, err := encodeTaggedValue(s.serializer, tv)
	if err != nil {
		return nil
	}
	if err := s.store.Set(ctx, hk, data, ttl); err != nil {
		return nil
	}
	return nil
}

// ClearTags rotates the fingerprint of every tag key in tagKeys to a
// fresh random value. Any TaggedValue written against the old
// fingerprint silently fails its next validity check; nothing in the
// store is scanned or deleted.
func (s *TaggedStore) ClearTags(ctx context.Context, tagKeys []string) error {
	if len(tagKeys) == 0 {
		return nil
	}
	entries := make(map[string][]byte, len(tagKeys))
	for _, k := range tagKeys {
		entries[k] = []byte(newFingerprint())
	}
	if err := s.store.SetMulti(ctx, entries, 0); err != nil {
		return nil
	}
	atomic.AddInt64(&s.rotations, int64(len(tagKeys)))
	return nil
}
