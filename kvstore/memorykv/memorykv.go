// Package memorykv is an in-process kvstore.Store implementation: an
// LRU-bounded byte-value map with background expiry. It has no notion
// of tags — tag-fingerprint invalidation is the tagged store's job, one
// layer up.
package memorykv

import (
	"context"
	"sync"
	"time"

	"github.com/ttcache/ttcache/kvstore"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

func (e *entry) expired() bool {
	return !e.expiresAt.IsZero() && time.Now().After(e.expiresAt)
}

// Store is an in-memory kvstore.Store with optional LRU eviction by item
// count and/or total byte size.
type Store struct {
	mu      sync.RWMutex
	items   map[string]*entry
	lru     *lruList
	nodes   map[string]*lruNode
	config  Config
	metrics *metrics
	ticker  *time.Ticker
	done    chan struct{}
}

// New creates a new in-memory store and starts its background expiry sweep.
func New(config Config) *Store {
	s := &Store{
		items:  make(map[string]*entry),
		lru:    newLRUList(),
		nodes:  make(map[string]*lruNode),
		config: config,
		done:   make(chan struct{}),
	}
	if config.EnableMetrics {
		s.metrics = newMetrics()
	}
	if config.CleanupInterval > 0 {
		s.ticker = time.NewTicker(config.CleanupInterval)
		go s.cleanup()
	}
	return s
}

func (s *Store) cleanup() {
	for {
		select {
		case <-s.ticker.C:
			s.removeExpired()
		case <-s.done:
			return
		}
	}
}

func (s *Store) removeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, e := range s.items {
		if e.expired() {
			s.removeLocked(key)
		}
	}
}

func (s *Store) removeLocked(key string) {
	if e, ok := s.items[key]; ok {
		if s.metrics != nil {
			s.metrics.recordDelete(int64(len(e.value)))
		}
		delete(s.items, key)
	}
	if node, ok := s.nodes[key]; ok {
		s.lru.remove(node)
		delete(s.nodes, key)
	}
}

func (s *Store) evictIfNeeded(addedBytes int64) {
	if s.config.MaxItems > 0 && len(s.items) >= s.config.MaxItems {
		s.evictOne()
	}
	if s.config.MaxBytes <= 0 {
		return
	}
	for s.currentBytes()+addedBytes > s.config.MaxBytes {
		if !s.evictOne() {
			return
		}
	}
}

func (s *Store) currentBytes() int64 {
	if s.metrics != nil {
		return s.metrics.snapshot().BytesUsed
	}
	var total int64
	for _, e := range s.items {
		total += int64(len(e.value))
	}
	return total
}

func (s *Store) evictOne() bool {
	key := s.lru.removeLast()
	if key == "" {
		return false
	}
	if e, ok := s.items[key]; ok {
		if s.metrics != nil {
			s.metrics.recordEviction(int64(len(e.value)))
		}
		delete(s.items, key)
	}
	delete(s.nodes, key)
	return true
}

// Get implements kvstore.Store.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[key]
	if !ok || e.expired() {
		if s.metrics != nil {
			s.metrics.recordMiss()
		}
		return nil, kvstore.ErrNotFound
	}

	if node, ok := s.nodes[key]; ok {
		s.lru.moveToFront(node)
	}
	if s.metrics != nil {
		s.metrics.recordHit()
	}

	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

// GetMulti implements kvstore.Store.
func (s *Store) GetMulti(ctx context.Context, keys []string) (map[string][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string][]byte)
	for _, key := range keys {
		e, ok := s.items[key]
		if !ok || e.expired() {
			continue
		}
		out := make([]byte, len(e.value))
		copy(out, e.value)
		result[key] = out
	}
	return result, nil
}

// Set implements kvstore.Store.
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(key, value, ttl)
	return nil
}

func (s *Store) setLocked(key string, value []byte, ttl time.Duration) {
	newSize := int64(len(value))
	old, existed := s.items[key]

	if existed {
		s.evictIfNeeded(newSize - int64(len(old.value)))
	} else {
		s.evictIfNeeded(newSize)
	}

	e := &entry{value: value}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	s.items[key] = e

	if node, ok := s.nodes[key]; ok {
		s.lru.moveToFront(node)
	} else {
		s.nodes[key] = s.lru.addToFront(key)
	}

	if s.metrics != nil {
		if existed {
			s.metrics.recordUpdate(int64(len(old.value)), newSize)
		} else {
			s.metrics.recordSet(newSize)
		}
	}
}

// SetMulti implements kvstore.Store.
func (s *Store) SetMulti(ctx context.Context, entries map[string][]byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, value := range entries {
		s.setLocked(key, value, ttl)
	}
	return nil
}

// Delete implements kvstore.Store.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(key)
	return nil
}

// Stats returns a snapshot of store statistics. Returns the zero value
// if metrics were not enabled.
func (s *Store) Stats() Stats {
	if s.metrics == nil {
		return Stats{}
	}
	return s.metrics.snapshot()
}

// Close stops the background expiry sweep.
func (s *Store) Close() error {
	if s.ticker != nil {
		s.ticker.Stop()
		close(s.done)
	}
	return nil
}

var _ kvstore.Store = (*Store)(nil)
