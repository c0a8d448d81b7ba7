package session

import (
	"context"
	"sync"
	"time"
)

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]Checkout
	ttl      time.Duration
}

// NewMemoryStore creates an in-memory session store for tests and for
// running without Redis.
func NewMemoryStore(ttl time.Duration) Store {
	return &memoryStore{sessions: make(map[int64]Checkout), ttl: ttl}
}

func (s *memoryStore) Get(_ context.Context, userID int64) (Checkout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.sessions[userID]
	if !ok {
		return Checkout{}, ErrNotFound
	}
	if s.ttl > 0 && time.Since(c.UpdatedAt) > s.ttl {
		return Checkout{}, ErrNotFound
	}
	return c, nil
}

func (s *memoryStore) Put(_ context.Context, userID int64, c Checkout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.UpdatedAt = time.Now().UTC()
	s.sessions[userID] = c
	return nil
}

func (s *memoryStore) Delete(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}
