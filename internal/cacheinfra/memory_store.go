package cacheinfra

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-catalog-cache/cache"
)

// MemoryStore is a plain map-backed cache.Store with per-entry wall-clock
// expiry. It backs unit tests and single-process deployments that do not
// want the sturdyc machinery.
//
// MemoryStore intentionally does not implement cache.PatternDeleter; engines
// running on top of it exercise their key-registry fallback, which is the
// configuration the production Redis-like backends of this system assume.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

var _ cache.Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// NewMemoryStoreWithClock creates a store with an injected clock. Tests use
// this to cross TTL boundaries without sleeping.
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     now,
	}
}

// Get implements cache.Store. Expired entries are dropped lazily on read.
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}

	if !s.now().Before(entry.expiresAt) {
		s.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have renewed it.
		if current, still := s.entries[key]; still && !s.now().Before(current.expiresAt) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, false, nil
	}

	return entry.value, true, nil
}

// SetWithTTL implements cache.Store.
func (s *MemoryStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{
		value:     value,
		expiresAt: s.now().Add(ttl),
	}
	return nil
}

// Delete implements cache.Store.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Len reports the number of stored entries, expired or not. Diagnostics only.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
