package dedup

import (
	"context"
	"sync"
	"time"
)

// DefaultLocalMaxEntries bounds the in-process fallback store.
const DefaultLocalMaxEntries = 512

// LocalStore is the in-process fallback used when no shared cache server is
// configured. It provides best-effort deduplication for a single instance
// only and is bounded: when the ceiling is exceeded, the oldest half of the
// entries is discarded.
type LocalStore struct {
	mu         sync.Mutex
	entries    map[string]time.Time // key -> expiry
	order      []string             // insertion order, for trimming
	maxEntries int
	now        func() time.Time
}

// NewLocalStore creates a bounded in-process store.
func NewLocalStore(maxEntries int) *LocalStore {
	if maxEntries <= 0 {
		maxEntries = DefaultLocalMaxEntries
	}
	return &LocalStore{
		entries:    make(map[string]time.Time),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (s *LocalStore) Get(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alive(key), nil
}

func (s *LocalStore) SetIfAbsent(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.alive(key) {
		return false, nil
	}
	s.put(key, ttl)
	return true, nil
}

func (s *LocalStore) Set(_ context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(key, ttl)
	return nil
}

func (s *LocalStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(key)
	return nil
}

// alive reports whether key holds a non-expired record. Caller must hold mu.
func (s *LocalStore) alive(key string) bool {
	expiry, ok := s.entries[key]
	if !ok {
		return false
	}
	if s.now().After(expiry) {
		s.remove(key)
		return false
	}
	return true
}

// remove drops key from both the entry map and the insertion-order slice, so
// a later re-add lands at its new position instead of leaving a stale
// occurrence behind. Caller must hold mu.
func (s *LocalStore) remove(key string) {
	delete(s.entries, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

// put inserts or refreshes key and trims when over the ceiling. Caller must hold mu.
func (s *LocalStore) put(key string, ttl time.Duration) {
	if _, exists := s.entries[key]; !exists {
		s.order = append(s.order, key)
	}
	s.entries[key] = s.now().Add(ttl)

	if len(s.entries) <= s.maxEntries {
		return
	}

	// Drop the oldest half to make room.
	cut := len(s.order) / 2
	for _, k := range s.order[:cut] {
		delete(s.entries, k)
	}
	s.order = append([]string(nil), s.order[cut:]...)
}
