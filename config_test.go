package ttcache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDefaultConfig(t *testing.T) {
	c, err := Build(DefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, c)

	v, err := c.Remember(context.Background(), "k1", 0, nil, func(ctx context.Context) (interface{}, error) {
		return "value", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "value", v)
}

func TestBuildUnknownDriver(t *testing.T) {
	_, err := Build(DefaultConfig().WithDriver("bogus"))
	assert.Error(t, err)
}

func TestBuildMsgpackAndXXHash(t *testing.T) {
	cfg := DefaultConfig().WithSerializer("msgpack").WithHasher("xxhash")
	c, err := Build(cfg)
	require.NoError(t, err)

	v, err := c.Remember(context.Background(), "k1", 0, []Tag{PlainTag("t")}, func(ctx context.Context) (interface{}, error) {
		return "value", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "value", v)
}

func TestBuildMemoryOptionsDecoded(t *testing.T) {
	cfg := DefaultConfig().WithOptions(map[string]interface{}{
		"MaxItems": 10,
	})
	c, err := Build(cfg)
	require.NoError(t, err)
	require.NotNil(t, c)
}
