package cart

import (
	"context"
	"sort"
	"sync"
)

type memoryStore struct {
	mu    sync.RWMutex
	carts map[int64]map[string]Item
}

// NewMemoryStore creates an in-memory cart store for tests and for running
// without Redis.
func NewMemoryStore() Store {
	return &memoryStore{carts: make(map[int64]map[string]Item)}
}

func (s *memoryStore) Add(_ context.Context, userID int64, item Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.carts[userID]
	if cart == nil {
		cart = make(map[string]Item)
		s.carts[userID] = cart
	}
	if cur, ok := cart[item.ProductID]; ok {
		cur.Quantity += item.Quantity
		item = cur
	}
	cart[item.ProductID] = item
	return nil
}

func (s *memoryStore) Decrease(_ context.Context, userID int64, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.carts[userID][productID]
	if !ok {
		return ErrItemNotFound
	}
	item.Quantity--
	if item.Quantity <= 0 {
		delete(s.carts[userID], productID)
		return nil
	}
	s.carts[userID][productID] = item
	return nil
}

func (s *memoryStore) Remove(_ context.Context, userID int64, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.carts[userID][productID]; !ok {
		return ErrItemNotFound
	}
	delete(s.carts[userID], productID)
	return nil
}

func (s *memoryStore) Items(_ context.Context, userID int64) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cart := s.carts[userID]
	items := make([]Item, 0, len(cart))
	for _, item := range cart {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (s *memoryStore) Clear(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
	return nil
}
