package ttcache

import "strconv"

// Tag is a tagged sum of Plain, Heritable, and Sharding variants behind
// one resolve operation, which each variant implements as its own
// unexported method.
type Tag interface {
	resolve(h Hasher) resolvedTag
}

// resolvedTag is the outcome of resolving any Tag variant: the hashed
// tag-key used as the KV store key, and whether this tag is heritable.
type resolvedTag struct {
	key       string
	heritable bool
}

// PlainTag is a bare surrogate key, e.g. "name" or "ns:value".
type PlainTag string

func (t PlainTag) resolve(h Hasher) resolvedTag {
	return resolvedTag{key: hashedTag(string(t), h)}
}

// HeritableTag auto-applies to every descendant frame of the frame that
// declares it.
type HeritableTag string

func (t HeritableTag) resolve(h Hasher) resolvedTag {
	return resolvedTag{key: hashedTag(string(t), h), heritable: true}
}

// ShardingTag resolves to the plain tag `namespace + ":" + (stableHash(routingValue) mod buckets)`.
// Clearing one bucket's tag invalidates exactly the partition whose
// routing values hash to that bucket.
type ShardingTag struct {
	Namespace    string
	RoutingValue string
	Buckets      int
}

func (t ShardingTag) resolve(h Hasher) resolvedTag {
	bucket := stableHash(t.RoutingValue) % uint64(t.Buckets)
	name := t.Namespace + ":" + strconv.FormatUint(bucket, 10)
	return resolvedTag{key: hashedTag(name, h)}
}

// hashedTag computes the KV key for a tag's current fingerprint:
// "t:" + hasher(tag).
func hashedTag(name string, h Hasher) string {
	return "t:" + h.Hash(name)
}

// hashedKey computes the KV key for a cache key: "k:" + hasher(k).
func hashedKey(key string, h Hasher) string {
	return "k:" + h.Hash(key)
}
