package ttcache

import (
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/ttcache/ttcache/compression"
	"github.com/ttcache/ttcache/kvstore"
	"github.com/ttcache/ttcache/kvstore/memorykv"
	"github.com/ttcache/ttcache/kvstore/rediskv"
	"github.com/ttcache/ttcache/reliability"
	"github.com/ttcache/ttcache/serializer"
)

// Config wires a TTCache end to end: which KV driver backs the tagged
// store, how cache keys and tag names are hashed, how TaggedValues are
// serialized, and whether store access is guarded by a circuit
// breaker.
type Config struct {
	// Driver selects the KV store backend: "memory" or "redis".
	Driver string `mapstructure:"driver"`

	// Options holds driver-specific settings, decoded via Decode into
	// the driver package's own Config type.
	Options map[string]interface{} `mapstructure:"options"`

	// Hasher selects the key/tag hasher: "identity" (default) or "xxhash".
	Hasher string `mapstructure:"hasher"`

	// Serializer selects the TaggedValue codec: "json" (default) or "msgpack".
	Serializer string `mapstructure:"serializer"`

	// Compress gzip-compresses serialized values.
	Compress bool `mapstructure:"compress"`

	// Breaker guards the store with a circuit breaker: a store degrading
	// silently still needs somewhere to stop hammering a store that is
	// down.
	Breaker BreakerConfig `mapstructure:"breaker"`
}

// BreakerConfig configures the circuit breaker wrapping the KV store.
type BreakerConfig struct {
	// Enabled turns the breaker on. Defaults to true.
	Enabled bool `mapstructure:"enabled"`

	// FailureThreshold is how many consecutive failures trip the breaker open.
	FailureThreshold int `mapstructure:"failure_threshold"`

	// ResetTimeout is how long the breaker stays open before allowing a
	// half-open probe.
	ResetTimeout time.Duration `mapstructure:"reset_timeout"`
}

// Decode decodes Options into a driver-specific config struct, the
// same pattern StoreConfig.Decode used for per-store options.
func (c Config) Decode(target interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  target,
		TagName: "mapstructure",
	})
	if err != nil {
		return err
	}
	return decoder.Decode(c.Options)
}

// DefaultConfig returns an in-memory, identity-hashed, JSON-serialized
// configuration with the circuit breaker enabled — safe to run with no
// external dependencies.
func DefaultConfig() Config {
	return Config{
		Driver:     "memory",
		Hasher:     "identity",
		Serializer: "json",
		Breaker: BreakerConfig{
			Enabled:          true,
			FailureThreshold: 5,
			ResetTimeout:     30 * time.Second,
		},
	}
}

// WithDriver sets the KV driver name.
func (c Config) WithDriver(name string) Config {
	c.Driver = name
	return c
}

// WithOptions sets the driver-specific options.
func (c Config) WithOptions(opts map[string]interface{}) Config {
	c.Options = opts
	return c
}

// WithHasher sets the key/tag hasher name.
func (c Config) WithHasher(name string) Config {
	c.Hasher = name
	return c
}

// WithSerializer sets the TaggedValue serializer name.
func (c Config) WithSerializer(name string) Config {
	c.Serializer = name
	return c
}

// Validate checks that Config describes a buildable TTCache.
func (c Config) Validate() error {
	switch c.Driver {
	case "", "memory", "redis":
	default:
		return ErrInvalidConfig("unknown driver '%s'", c.Driver)
	}
	switch c.Serializer {
	case "", "json", "msgpack":
	default:
		return ErrInvalidConfig("unknown serializer '%s'", c.Serializer)
	}
	switch c.Hasher {
	case "", "identity", "xxhash":
	default:
		return ErrInvalidConfig("unknown hasher '%s'", c.Hasher)
	}
	return nil
}

// Build wires a *TTCache from cfg: resolves the KV driver, optionally
// wraps it with a circuit breaker, and attaches the configured hasher
// and serializer.
func Build(cfg Config) (*TTCache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := buildStore(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Breaker.Enabled {
		threshold := cfg.Breaker.FailureThreshold
		if threshold <= 0 {
			threshold = 5
		}
		timeout := cfg.Breaker.ResetTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		store = reliability.NewBreakerStore(store, reliability.NewThresholdBreaker(threshold, timeout))
	}

	ser, err := buildSerializer(cfg)
	if err != nil {
		return nil, err
	}

	return Open(store, ser, buildHasher(cfg)), nil
}

func buildStore(cfg Config) (kvstore.Store, error) {
	switch cfg.Driver {
	case "", "memory":
		mc := memorykv.DefaultConfig()
		if len(cfg.Options) > 0 {
			if err := cfg.Decode(&mc); err != nil {
				return nil, ErrInvalidConfig("memory driver options: %v", err)
			}
		}
		return memorykv.New(mc), nil
	case "redis":
		rc := rediskv.DefaultConfig()
		if len(cfg.Options) > 0 {
			if err := cfg.Decode(&rc); err != nil {
				return nil, ErrInvalidConfig("redis driver options: %v", err)
			}
		}
		store, err := rediskv.New(rc)
		if err != nil {
			return nil, ErrDriverError("redis", err)
		}
		return store, nil
	default:
		return nil, ErrDriverNotFound
	}
}

func buildSerializer(cfg Config) (serializer.Serializer, error) {
	var ser serializer.Serializer
	switch cfg.Serializer {
	case "", "json":
		ser = serializer.NewJSONSerializer()
	case "msgpack":
		ser = serializer.NewMsgpackSerializer()
	default:
		return nil, ErrInvalidConfig("unknown serializer '%s'", cfg.Serializer)
	}
	if cfg.Compress {
		ser = serializer.NewCompressedSerializer(ser, compression.NewGzipCompressor(compression.DefaultCompression))
	}
	return ser, nil
}

func buildHasher(cfg Config) Hasher {
	if cfg.Hasher == "xxhash" {
		return XXHasher{}
	}
	return IdentityHasher{}
}
