package fallback

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNoValue indicates no fresh last-good value exists for a key.
var ErrNoValue = errors.New("fallback: no stored value")

// Store keeps the most recent successful value per key.
type Store[T any] struct {
	ttl time.Duration

	mu      sync.RWMutex
	entries map[string]entry[T]
}

type entry[T any] struct {
	value    T
	storedAt time.Time
}

// New creates a Store whose values expire after ttl.
// A ttl of zero or less means values never expire.
func New[T any](ttl time.Duration) *Store[T] {
	return &Store[T]{
		ttl:     ttl,
		entries: make(map[string]entry[T]),
	}
}

// Set stores a value for the key.
func (s *Store[T]) Set(key string, value T) {
	s.mu.Lock()
	s.entries[key] = entry[T]{value: value, storedAt: time.Now()}
	s.mu.Unlock()
}

// Get returns the stored value for the key, if present and fresh.
func (s *Store[T]) Get(key string) (T, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	var zero T
	if !ok {
		return zero, false
	}

	if s.ttl > 0 && time.Since(e.storedAt) > s.ttl {
		// Expired, clean up lazily.
		s.mu.Lock()
		if cur, still := s.entries[key]; still && cur.storedAt.Equal(e.storedAt) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return zero, false
	}

	return e.value, true
}

// Delete removes the stored value for the key. Idempotent.
func (s *Store[T]) Delete(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// Producer returns a fallback function that serves the last-good value
// for the key, or ErrNoValue when nothing fresh is stored. The returned
// function matches the circuit breaker's fallback signature.
func (s *Store[T]) Producer(key string) func(context.Context) (any, error) {
	return func(ctx context.Context) (any, error) {
		if v, ok := s.Get(key); ok {
			return v, nil
		}
		return nil, ErrNoValue
	}
}

// Record wraps an operation so every success refreshes the store.
func Record[T any](s *Store[T], key string, op func(context.Context) (T, error)) func(context.Context) (T, error) {
	return func(ctx context.Context) (T, error) {
		v, err := op(ctx)
		if err == nil {
			s.Set(key, v)
		}
		return v, err
	}
}
