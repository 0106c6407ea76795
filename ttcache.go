// Package ttcache implements a tag-tree memoization layer over a
// remote key-value store: Remember/Wrap memoize arbitrary computations
// keyed by a cache key and a set of surrogate tags, and ClearTags
// invalidates every memoized value depending on any of those tags
// without ever scanning the store. Nested calls made from inside a
// memoized callback automatically make their enclosing call depend on
// whatever tags they themselves depended on.
package ttcache

import (
	"context"
	"time"

	"github.com/ttcache/ttcache/kvstore"
	"github.com/ttcache/ttcache/serializer"
	"github.com/ttcache/ttcache/tagtree"
)

// localEntry is what the per-request tag tree stores for a key that
// has already been resolved once this request, whether from a request-
// local hit, a store hit, or a freshly computed miss.
type localEntry struct {
	value    interface{}
	tags     map[string]string
	revealed bool
}

// TTCache is the public façade: Remember, Wrap, Load and ClearTags are
// its entire surface. It is safe for concurrent use by multiple request
// goroutines, since all mutable per-request state lives on the
// *tagtree.Tree carried through ctx, never on TTCache itself.
type TTCache struct {
	tagged *TaggedStore
	hasher Hasher
}

// New builds a TTCache over an already-constructed TaggedStore.
func New(tagged *TaggedStore, hasher Hasher) *TTCache {
	if hasher == nil {
		hasher = IdentityHasher{}
	}
	return &TTCache{tagged: tagged, hasher: hasher}
}

// Open is a convenience constructor wiring a kvstore.Store and
// serializer.Serializer straight into a TaggedStore and TTCache, for
// the common case of not needing the TaggedStore independently.
func Open(store kvstore.Store, ser serializer.Serializer, hasher Hasher) *TTCache {
	return New(NewTaggedStore(store, ser, hasher), hasher)
}

func (c *TTCache) present(e localEntry) interface{} {
	if e.revealed {
		return RevealedTagged{value: e.value, tags: e.tags}
	}
	return e.value
}

// Remember returns the cached value for key if one exists and every
// tag it was stored with is still current; otherwise it invokes fn,
// caches the result under key tagged with tags (plus whatever nested
// Remember/Wrap calls inside fn contributed), and returns that. ttl of
// 0 means the value never expires on its own, only via ClearTags.
//
// fn's return value may be wrapped with BypassCache or RevealTags to
// change how the result is cached and returned. A non-nil error from
// fn propagates unchanged and nothing is cached.
func (c *TTCache) Remember(ctx context.Context, key string, ttl time.Duration, tags []Tag, fn func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	tree, ctx, _ := tagtree.Ensure(ctx)

	if v, ok := tree.GetFromCache(key); ok {
		e := v.(localEntry)
		tree.MergeTags(e.tags)
		return c.present(e), nil
	}

	if tv, ok, _ := c.tagged.Get(ctx, key); ok {
		tree.MergeTags(tv.Tags)
		e := localEntry{value: tv.Value, tags: tv.Tags, revealed: tv.Revealed}
		tree.AddToCache(map[string]interface{}{key: e})
		return c.present(e), nil
	}

	resolved := make([]resolvedTag, 0, len(tags))
	fetchKeys := make([]string, 0, len(tags))
	for _, t := range tags {
		r := t.resolve(c.hasher)
		resolved = append(resolved, r)
		fetchKeys = append(fetchKeys, r.key)
	}
	tagHashes, readonly, _ := c.tagged.FetchOrMakeTagHashes(ctx, fetchKeys, ttl)

	heritableDeclared := map[string]string{}
	for _, r := range resolved {
		if r.heritable {
			heritableDeclared[r.key] = tagHashes[r.key]
		}
	}

	saved := tree.Advance(tagHashes, heritableDeclared)
	raw, err := fn(ctx)
	if err != nil {
		tree.Abort(saved)
		return nil, err
	}
	snapshot := tree.Pop(saved)

	payload, bypass, reveal := unwrapDirective(raw)
	if bypass {
		return payload, nil
	}

	e := localEntry{value: payload, tags: snapshot, revealed: reveal}
	tree.AddToCache(map[string]interface{}{key: e})

	if !readonly {
		c.tagged.Store(ctx, key, ttl, snapshot, payload, reveal)
	}

	return c.present(e), nil
}

// Wrap memoizes fn's dependency on tags for the current frame without
// caching any value of its own: it advances the tag tree with tags'
// resolved fingerprints, runs fn, and bubbles whatever tags fn's own
// nested Remember/Wrap calls depended on up into the enclosing frame.
// fn's result is returned exactly as fn produced it — BypassCache and
// RevealTags have no meaning here, since nothing is written to the
// store for this frame's own result.
func (c *TTCache) Wrap(ctx context.Context, tags []Tag, fn func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	tree, ctx, _ := tagtree.Ensure(ctx)

	resolved := make([]resolvedTag, 0, len(tags))
	fetchKeys := make([]string, 0, len(tags))
	for _, t := range tags {
		r := t.resolve(c.hasher)
		resolved = append(resolved, r)
		fetchKeys = append(fetchKeys, r.key)
	}
	tagHashes, _, _ := c.tagged.FetchOrMakeTagHashes(ctx, fetchKeys, 0)

	heritableDeclared := map[string]string{}
	for _, r := range resolved {
		if r.heritable {
			heritableDeclared[r.key] = tagHashes[r.key]
		}
	}

	saved := tree.Advance(tagHashes, heritableDeclared)
	raw, err := fn(ctx)
	if err != nil {
		tree.Abort(saved)
		return nil, err
	}
	tree.Pop(saved)

	return raw, nil
}

// Load primes the current frame's local memo from the store for every
// key in keys that isn't already memoized this request: it multi-gets
// them via TaggedStore.GetMultiple and, for each one found valid,
// inserts it into the local memo and merges its tags into the current
// frame. It computes and stores nothing itself — a later Remember call
// for one of these keys, in the same request, finds it already primed
// and skips straight to a request-local hit instead of round-tripping
// to the store again.
func (c *TTCache) Load(ctx context.Context, keys []string) {
	tree, ctx, _ := tagtree.Ensure(ctx)

	var missing []string
	for _, k := range keys {
		if _, ok := tree.GetFromCache(k); ok {
			continue
		}
		missing = append(missing, k)
	}
	if len(missing) == 0 {
		return
	}

	hits, _ := c.tagged.GetMultiple(ctx, missing)
	for k, tv := range hits {
		tree.MergeTags(tv.Tags)
		e := localEntry{value: tv.Value, tags: tv.Tags, revealed: tv.Revealed}
		tree.AddToCache(map[string]interface{}{k: e})
	}
}

// ClearTags rotates every tag's fingerprint, invalidating every cached
// value that depends on any of them. Nothing is deleted or scanned;
// the next read of an affected key just fails its validity check.
func (c *TTCache) ClearTags(ctx context.Context, tags []Tag) error {
	keys := make([]string, 0, len(tags))
	for _, t := range tags {
		keys = append(keys, t.resolve(c.hasher).key)
	}
	return c.tagged.ClearTags(ctx, keys)
}

// Stats returns the underlying TaggedStore's cumulative counters.
func (c *TTCache) Stats() Stats {
	return c.tagged.Stats()
}
