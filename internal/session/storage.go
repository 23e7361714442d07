// Package session persists the authenticated session between runs. The
// business logic only sees a pluggable key-value adapter; the default
// adapter is SQLite-backed, with an in-memory one for tests. The session
// payload is sealed at rest (AES-GCM under a key derived from a random
// per-device secret).
package session

import (
	"context"
	"sync"

	"github.com/pogibrader/noted/internal/common"
)

// Storage is the pluggable key-value adapter the session store writes
// through. Get returns common.ErrNotFound for a missing key.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error

	// GetOrSet returns the value under key; when the key is absent it
	// stores value first and returns it. Read and write are atomic, so two
	// racing callers settle on one value.
	GetOrSet(ctx context.Context, key string, value []byte) ([]byte, error)
}

// MemoryStorage is a Storage kept entirely in memory.
type MemoryStorage struct {
	mu sync.Mutex
	m  map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{m: make(map[string][]byte)}
}

func (s *MemoryStorage) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, nil
}

func (s *MemoryStorage) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	s.m[key] = cp
	return nil
}

func (s *MemoryStorage) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

func (s *MemoryStorage) GetOrSet(ctx context.Context, key string, value []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.m[key]; ok {
		cp := make([]byte, len(v))
		copy(cp, v)
		return cp, nil
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	s.m[key] = cp
	return value, nil
}
