// Package rediskv is the production kvstore.Store backed by Redis,
// using github.com/redis/go-redis/v9. It stores and returns opaque
// bytes; it has no opinion on what they encode.
package rediskv

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ttcache/ttcache/kvstore"
)

// Store is a Redis-backed kvstore.Store.
type Store struct {
	client *redis.Client
}

// New dials Redis per config and returns a ready Store.
func New(config Config) (*Store, error) {
	client, err := newClient(config)
	if err != nil {
		return nil, err
	}
	return &Store{client: client}, nil
}

// NewWithClient wraps an already-constructed *redis.Client (e.g. one
// shared with other subsystems).
func NewWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

// Get implements kvstore.Store.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, kvstore.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// GetMulti implements kvstore.Store. It issues a single MGET.
func (s *Store) GetMulti(ctx context.Context, keys []string) (map[string][]byte, error) {
	if len(keys) == 0 {
		return map[string][]byte{}, nil
	}

	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	result := make(map[string][]byte, len(keys))
	for i, val := range vals {
		if val == nil {
			continue
		}
		switch v := val.(type) {
		case string:
			result[keys[i]] = []byte(v)
		case []byte:
			result[keys[i]] = v
		}
	}
	return result, nil
}

// Set implements kvstore.Store.
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

// SetMulti implements kvstore.Store via a single pipeline round trip.
func (s *Store) SetMulti(ctx context.Context, entries map[string][]byte, ttl time.Duration) error {
	if len(entries) == 0 {
		return nil
	}
	pipe := s.client.Pipeline()
	for key, value := range entries {
		pipe.Set(ctx, key, value, ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Delete implements kvstore.Store.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// Close closes the underlying Redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

var (
	_ kvstore.Store  = (*Store)(nil)
	_ kvstore.Closer = (*Store)(nil)
)
