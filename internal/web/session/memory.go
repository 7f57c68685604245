package session

import (
	"sync"
	"time"

	"github.com/gofiber/storage"
)

// MemoryStorage is a process local storage.Storage implementation.
// Used in dev mode and tests where no mysql or postgres session backend is
// configured. Sessions do not survive a restart.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string]memoryEntry
}

type memoryEntry struct {
	value   []byte
	expires time.Time
}

var _ storage.Storage = (*MemoryStorage)(nil)

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]memoryEntry)}
}

// Get returns the value for key, or nil when missing or expired.
func (s *MemoryStorage) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.data[key]
	if !ok {
		return nil, nil
	}

	if !entry.expires.IsZero() && time.Now().After(entry.expires) {
		return nil, nil
	}

	out := make([]byte, len(entry.value))
	copy(out, entry.value)

	return out, nil
}

// Set stores the value for key with an optional expiry.
func (s *MemoryStorage) Set(key string, val []byte, exp time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, len(val))
	copy(buf, val)

	entry := memoryEntry{value: buf}
	if exp > 0 {
		entry.expires = time.Now().Add(exp)
	}

	s.data[key] = entry

	return nil
}

// Delete removes the value for key.
func (s *MemoryStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)

	return nil
}

// Reset drops all stored values.
func (s *MemoryStorage) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string]memoryEntry)

	return nil
}

// Close is a no-op.
func (s *MemoryStorage) Close() error { return nil }
