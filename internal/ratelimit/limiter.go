// Package ratelimit provides a TTL-based attempt counter keyed by request
// signature. The store interface allows a shared backend to replace the
// in-memory implementation when running more than one instance.
package ratelimit

import (
	"crypto/sha1"
	"encoding/hex"
	"sync"
	"time"
)

// Store counts attempts per key with a decay window.
type Store interface {
	// Hit registers an attempt and returns the attempt count within the
	// current window. The first hit of a window arms the ttl.
	Hit(key string, ttl time.Duration) int

	// TooManyAttempts reports whether the key has reached max attempts
	// without registering a new one.
	TooManyAttempts(key string, max int) bool

	// Clear forgets all attempts for the key.
	Clear(key string)
}

type entry struct {
	count     int
	expiresAt time.Time
}

// MemoryStore is a mutex-guarded in-process Store. Expired entries are
// dropped lazily on access.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Hit(key string, ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || s.now().After(e.expiresAt) {
		e = &entry{expiresAt: s.now().Add(ttl)}
		s.entries[key] = e
	}
	e.count++
	return e.count
}

func (s *MemoryStore) TooManyAttempts(key string, max int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return false
	}
	if s.now().After(e.expiresAt) {
		delete(s.entries, key)
		return false
	}
	return e.count >= max
}

func (s *MemoryStore) Clear(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Signature hashes an identity (user id or client IP) into a stable
// rate-limit key.
func Signature(identity string) string {
	sum := sha1.Sum([]byte(identity))
	return hex.EncodeToString(sum[:])
}
