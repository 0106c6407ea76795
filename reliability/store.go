package reliability

import (
	"context"
	"time"

	"github.com/ttcache/ttcache/kvstore"
)

// BreakerStore wraps a kvstore.Store with a circuit breaker. When the
// breaker is open, every method fails fast with ErrCircuitOpen instead
// of touching the backing store — the caller (TaggedStore) treats that
// exactly like any other store error: falls through to executing the
// callback uncached, never surfacing it further.
type BreakerStore struct {
	store   kvstore.Store
	breaker Breaker
}

// NewBreakerStore wraps store with breaker.
func NewBreakerStore(store kvstore.Store, breaker Breaker) *BreakerStore {
	return &BreakerStore{store: store, breaker: breaker}
}

func (s *BreakerStore) report(err error) {
	if err != nil && err != kvstore.ErrNotFound {
		s.breaker.Failure()
	} else {
		s.breaker.Success()
	}
}

// Get implements kvstore.Store.
func (s *BreakerStore) Get(ctx context.Context, key string) ([]byte, error) {
	if !s.breaker.Allow() {
		return nil, ErrCircuitOpen
	}
	val, err := s.store.Get(ctx, key)
	s.report(err)
	return val, err
}

// GetMulti implements kvstore.Store.
func (s *BreakerStore) GetMulti(ctx context.Context, keys []string) (map[string][]byte, error) {
	if !s.breaker.Allow() {
		return nil, ErrCircuitOpen
	}
	vals, err := s.store.GetMulti(ctx, keys)
	s.report(err)
	return vals, err
}

// Set implements kvstore.Store.
func (s *BreakerStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if !s.breaker.Allow() {
		return ErrCircuitOpen
	}
	err := s.store.Set(ctx, key, value, ttl)
	s.report(err)
	return err
}

// SetMulti implements kvstore.Store.
func (s *BreakerStore) SetMulti(ctx context.Context, entries map[string][]byte, ttl time.Duration) error {
	if !s.breaker.Allow() {
		return ErrCircuitOpen
	}
	err := s.store.SetMulti(ctx, entries, ttl)
	s.report(err)
	return err
}

// Delete implements kvstore.Store.
func (s *BreakerStore) Delete(ctx context.Context, key string) error {
	if !s.breaker.Allow() {
		return ErrCircuitOpen
	}
	err := s.store.Delete(ctx, key)
	s.report(err)
	return err
}

var _ kvstore.Store = (*BreakerStore)(nil)
