package stores

// A small keyed JSON store backing the kv method pack. Callers decide the
// structure of the stored values; the store promises concurrency safety
// and optional expiry. The in-memory implementation is sufficient for dev
// & unit tests, and deployments can swap in a persistent one behind the
// same interface.

import (
	"encoding/json"
	"sort"
	"sync"
	"time"
)

type KVStore interface {
	Get(key string) (json.RawMessage, bool)
	Set(key string, value json.RawMessage, ttl time.Duration)
	Delete(key string) bool
	Keys() []string
	Cleanup()
}

// entry wraps a stored value with its expiry; a zero ExpiresAt never
// expires.
type entry struct {
	Value     json.RawMessage
	ExpiresAt time.Time
}

func (e *entry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// InMemoryKVStore is the default implementation.
type InMemoryKVStore struct {
	mu      sync.RWMutex
	entries map[string]*entry
	done    chan struct{}
	once    sync.Once
}

// NewInMemoryKVStore starts an empty store with a janitor that sweeps
// expired entries once a minute until Close is called.
func NewInMemoryKVStore() *InMemoryKVStore {
	store := &InMemoryKVStore{
		entries: make(map[string]*entry),
		done:    make(chan struct{}),
	}

	go store.sweep()

	return store
}

func (s *InMemoryKVStore) Get(key string) (json.RawMessage, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if e.expired(time.Now()) {
		s.Delete(key)
		return nil, false
	}

	return e.Value, true
}

// Set stores value under key. A zero ttl keeps the value until deleted.
func (s *InMemoryKVStore) Set(key string, value json.RawMessage, ttl time.Duration) {
	e := &entry{Value: value}
	if ttl > 0 {
		e.ExpiresAt = time.Now().Add(ttl)
	}

	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
}

// Delete removes key and reports whether it was present.
func (s *InMemoryKVStore) Delete(key string) bool {
	s.mu.Lock()
	_, ok := s.entries[key]
	delete(s.entries, key)
	s.mu.Unlock()

	return ok
}

// Keys returns the live keys, sorted.
func (s *InMemoryKVStore) Keys() []string {
	now := time.Now()

	s.mu.RLock()
	keys := make([]string, 0, len(s.entries))

	for key, e := range s.entries {
		if !e.expired(now) {
			keys = append(keys, key)
		}
	}
	s.mu.RUnlock()

	sort.Strings(keys)
	return keys
}

func (s *InMemoryKVStore) Cleanup() {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, key)
		}
	}
}

// Close stops the janitor. Safe to call more than once.
func (s *InMemoryKVStore) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *InMemoryKVStore) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Cleanup()
		case <-s.done:
			return
		}
	}
}
