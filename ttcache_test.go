package ttcache

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ttcache/ttcache/kvstore/memorykv"
	"github.com/ttcache/ttcache/serializer"
)

func newTestCache() *TTCache {
	store := memorykv.New(memorykv.DefaultConfig().WithCleanupInterval(0))
	return Open(store, serializer.NewJSONSerializer(), IdentityHasher{})
}

func TestRememberBasicMemoization(t *testing.T) {
	c := newTestCache()
	ctx := context.Background()
	calls := 0

	fn := func(ctx context.Context) (interface{}, error) {
		calls++
		return "computed", nil
	}

	v1, err := c.Remember(ctx, "k1", 0, nil, fn)
	require.NoError(t, err)
	assert.Equal(t, "computed", v1)

	v2, err := c.Remember(ctx, "k1", 0, nil, fn)
	require.NoError(t, err)
	assert.Equal(t, "computed", v2)
	assert.Equal(t, 1, calls, "second call within a fresh request should hit the store")

	// A brand new top-level request (fresh context) should also hit the store, not recompute.
	v3, err := c.Remember(context.Background(), "k1", 0, nil, fn)
	require.NoError(t, err)
	assert.Equal(t, "computed", v3)
	assert.Equal(t, 1, calls)
}

func TestClearTagsInvalidates(t *testing.T) {
	c := newTestCache()
	calls := 0
	fn := func(ctx context.Context) (interface{}, error) {
		calls++
		return calls, nil
	}

	v1, err := c.Remember(context.Background(), "k1", 0, []Tag{PlainTag("widgets")}, fn)
	require.NoError(t, err)
	assert.Equal(t, 1, v1)

	require.NoError(t, c.ClearTags(context.Background(), []Tag{PlainTag("widgets")}))

	v2, err := c.Remember(context.Background(), "k1", 0, []Tag{PlainTag("widgets")}, fn)
	require.NoError(t, err)
	assert.Equal(t, 2, v2, "clearing the tag must force recomputation")
}

func TestTreeCachePartialInvalidation(t *testing.T) {
	c := newTestCache()
	outerCalls, innerACalls, innerBCalls := 0, 0, 0

	run := func() (interface{}, interface{}) {
		ctx := context.Background()
		var a, b interface{}
		outer, err := c.Remember(ctx, "outer", 0, nil, func(ctx context.Context) (interface{}, error) {
			outerCalls++
			var err error
			a, err = c.Remember(ctx, "inner-a", 0, []Tag{PlainTag("a-tag")}, func(ctx context.Context) (interface{}, error) {
				innerACalls++
				return "a-value", nil
			})
			if err != nil {
				return nil, err
			}
			b, err = c.Remember(ctx, "inner-b", 0, []Tag{PlainTag("b-tag")}, func(ctx context.Context) (interface{}, error) {
				innerBCalls++
				return "b-value", nil
			})
			return "outer-value", err
		})
		require.NoError(t, err)
		return outer, a
	}

	run()
	assert.Equal(t, 1, outerCalls)
	assert.Equal(t, 1, innerACalls)
	assert.Equal(t, 1, innerBCalls)

	// clearing only a-tag must invalidate inner-a and (because it bubbled)
	// outer, but leave inner-b alone.
	require.NoError(t, c.ClearTags(context.Background(), []Tag{PlainTag("a-tag")}))
	run()
	assert.Equal(t, 2, outerCalls)
	assert.Equal(t, 2, innerACalls)
	assert.Equal(t, 1, innerBCalls, "inner-b's own tag was untouched")
}

func TestDeepHeritableTagInheritance(t *testing.T) {
	c := newTestCache()
	leafCalls := 0
	ctx := context.Background()

	var run func(ctx context.Context, depth int) (interface{}, error)
	run = func(ctx context.Context, depth int) (interface{}, error) {
		if depth == 0 {
			return c.Remember(ctx, "leaf", 0, nil, func(ctx context.Context) (interface{}, error) {
				leafCalls++
				return "leaf-value", nil
			})
		}
		key := "level-" + strconv.Itoa(depth)
		var tags []Tag
		if depth == 4 {
			tags = []Tag{HeritableTag("tenant")}
		}
		return c.Remember(ctx, key, 0, tags, func(ctx context.Context) (interface{}, error) {
			return run(ctx, depth-1)
		})
	}

	_, err := run(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 1, leafCalls)

	// clearing the heritable tag declared 4 levels up must invalidate the leaf too.
	require.NoError(t, c.ClearTags(context.Background(), []Tag{HeritableTag("tenant")}))
	_, err = run(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, 2, leafCalls)
}

func TestExceptionSafetyPreservesSiblingWrites(t *testing.T) {
	c := newTestCache()
	boom := errors.New("boom")

	_, err := c.Remember(context.Background(), "outer", 0, nil, func(ctx context.Context) (interface{}, error) {
		_, err := c.Remember(ctx, "sibling-ok", 0, nil, func(ctx context.Context) (interface{}, error) {
			return "ok-value", nil
		})
		if err != nil {
			return nil, err
		}
		return c.Remember(ctx, "sibling-fails", 0, nil, func(ctx context.Context) (interface{}, error) {
			return nil, boom
		})
	})
	require.ErrorIs(t, err, boom)

	// the successful sibling must still be cached despite outer's failure.
	calls := 0
	v, err := c.Remember(context.Background(), "sibling-ok", 0, nil, func(ctx context.Context) (interface{}, error) {
		calls++
		return "recomputed", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok-value", v)
	assert.Equal(t, 0, calls)
}

func TestTTLCascade(t *testing.T) {
	c := newTestCache()
	outerCalls, innerCalls := 0, 0

	run := func() {
		_, err := c.Remember(context.Background(), "outer", 0, nil, func(ctx context.Context) (interface{}, error) {
			outerCalls++
			return c.Remember(ctx, "inner", 50*time.Millisecond, nil, func(ctx context.Context) (interface{}, error) {
				innerCalls++
				return "inner-value", nil
			})
		})
		require.NoError(t, err)
	}

	run()
	assert.Equal(t, 1, outerCalls)
	assert.Equal(t, 1, innerCalls)

	run()
	assert.Equal(t, 1, outerCalls, "outer is ttl 0 but must stay cached while inner's ttl tag is alive")
	assert.Equal(t, 1, innerCalls)

	time.Sleep(80 * time.Millisecond)
	run()
	assert.Equal(t, 2, outerCalls, "inner's expired ttl pseudo-tag must cascade into the permanent outer frame")
	assert.Equal(t, 2, innerCalls)
}

func TestTTLZeroNeverCascades(t *testing.T) {
	c := newTestCache()
	outerCalls, innerCalls := 0, 0

	run := func() {
		_, err := c.Remember(context.Background(), "outer", 0, nil, func(ctx context.Context) (interface{}, error) {
			outerCalls++
			return c.Remember(ctx, "inner", 0, nil, func(ctx context.Context) (interface{}, error) {
				innerCalls++
				return "inner-value", nil
			})
		})
		require.NoError(t, err)
	}

	run()
	time.Sleep(20 * time.Millisecond)
	run()
	assert.Equal(t, 1, outerCalls)
	assert.Equal(t, 1, innerCalls)
}

func TestShardingTagBucketIsolation(t *testing.T) {
	c := newTestCache()
	calls := map[string]int{}

	compute := func(routingValue string) (interface{}, error) {
		key := "item:" + routingValue
		return c.Remember(context.Background(), key, 0, []Tag{
			ShardingTag{Namespace: "items", RoutingValue: routingValue, Buckets: 4},
		}, func(ctx context.Context) (interface{}, error) {
			calls[routingValue]++
			return routingValue + "-value", nil
		})
	}

	for _, rv := range []string{"alpha", "beta", "gamma", "delta"} {
		_, err := compute(rv)
		require.NoError(t, err)
	}

	// clearing alpha's bucket must not touch routing values landing in other buckets.
	alphaTag := ShardingTag{Namespace: "items", RoutingValue: "alpha", Buckets: 4}
	require.NoError(t, c.ClearTags(context.Background(), []Tag{alphaTag}))

	for _, rv := range []string{"alpha", "beta", "gamma", "delta"} {
		_, err := compute(rv)
		require.NoError(t, err)
	}

	assert.Equal(t, 2, calls["alpha"])
	for _, rv := range []string{"beta", "gamma", "delta"} {
		alphaBucket := ShardingTag{Namespace: "items", RoutingValue: "alpha", Buckets: 4}.resolve(IdentityHasher{})
		rvBucket := ShardingTag{Namespace: "items", RoutingValue: rv, Buckets: 4}.resolve(IdentityHasher{})
		if rvBucket.key == alphaBucket.key {
			continue
		}
		assert.Equal(t, 1, calls[rv], "routing value %s landed in a different bucket from alpha", rv)
	}
}

func TestLoadPrimesNestedRemember(t *testing.T) {
	c := newTestCache()
	remembered := 0

	_, err := c.Remember(context.Background(), "k1", 0, nil, func(ctx context.Context) (interface{}, error) {
		return "v1", nil
	})
	require.NoError(t, err)
	_, err = c.Remember(context.Background(), "k2", 0, nil, func(ctx context.Context) (interface{}, error) {
		return "v2", nil
	})
	require.NoError(t, err)

	_, err = c.Remember(context.Background(), "outer", 0, nil, func(ctx context.Context) (interface{}, error) {
		c.Load(ctx, []string{"k1", "k2", "k3"})

		v1, err := c.Remember(ctx, "k1", 0, nil, func(ctx context.Context) (interface{}, error) {
			remembered++
			return "recomputed", nil
		})
		if err != nil {
			return nil, err
		}
		v2, err := c.Remember(ctx, "k2", 0, nil, func(ctx context.Context) (interface{}, error) {
			remembered++
			return "recomputed", nil
		})
		if err != nil {
			return nil, err
		}
		return []interface{}{v1, v2}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, remembered, "load must prime k1 and k2 so the nested remembers hit without recomputing")
}

func TestWrapRecomputesEveryCall(t *testing.T) {
	c := newTestCache()
	calls := 0

	fn := func(ctx context.Context) (interface{}, error) {
		calls++
		return "wrapped-value", nil
	}

	v1, err := c.Wrap(context.Background(), []Tag{PlainTag("w-tag")}, fn)
	require.NoError(t, err)
	assert.Equal(t, "wrapped-value", v1)

	v2, err := c.Wrap(context.Background(), []Tag{PlainTag("w-tag")}, fn)
	require.NoError(t, err)
	assert.Equal(t, "wrapped-value", v2)
	assert.Equal(t, 2, calls, "wrap writes nothing for its own frame, so every call recomputes")
}

func TestWrapBubblesTagsToEnclosingRemember(t *testing.T) {
	c := newTestCache()
	outerCalls := 0

	run := func() {
		_, err := c.Remember(context.Background(), "outer", 0, nil, func(ctx context.Context) (interface{}, error) {
			outerCalls++
			return c.Wrap(ctx, []Tag{PlainTag("w-tag")}, func(ctx context.Context) (interface{}, error) {
				return "wrapped", nil
			})
		})
		require.NoError(t, err)
	}

	run()
	assert.Equal(t, 1, outerCalls)
	run()
	assert.Equal(t, 1, outerCalls, "outer stays cached while w-tag is untouched")

	require.NoError(t, c.ClearTags(context.Background(), []Tag{PlainTag("w-tag")}))
	run()
	assert.Equal(t, 2, outerCalls, "clearing wrap's tag must invalidate the enclosing remember too")
}

func TestBypassDirectiveSkipsCaching(t *testing.T) {
	c := newTestCache()
	calls := 0

	fn := func(ctx context.Context) (interface{}, error) {
		calls++
		return BypassCache("not-cached"), nil
	}

	v, err := c.Remember(context.Background(), "k1", 0, nil, fn)
	require.NoError(t, err)
	assert.Equal(t, "not-cached", v)

	_, err = c.Remember(context.Background(), "k1", 0, nil, fn)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRevealDirectiveReturnsTags(t *testing.T) {
	c := newTestCache()

	fn := func(ctx context.Context) (interface{}, error) {
		return RevealTags("payload"), nil
	}

	v, err := c.Remember(context.Background(), "k1", 0, []Tag{PlainTag("x")}, fn)
	require.NoError(t, err)
	revealed, ok := v.(RevealedTagged)
	require.True(t, ok)
	assert.Equal(t, "payload", revealed.Value())
	assert.NotEmpty(t, revealed.Tags())

	// a hit on the same key must also come back revealed.
	v2, err := c.Remember(context.Background(), "k1", 0, []Tag{PlainTag("x")}, fn)
	require.NoError(t, err)
	revealed2, ok := v2.(RevealedTagged)
	require.True(t, ok)
	assert.Equal(t, "payload", revealed2.Value())
}
