package orders

import (
	"context"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type entry struct {
	order     *domain.Order
	expiresAt time.Time
}

// MemoryStore keeps last orders in process memory. Expired records are
// dropped lazily on access.
type MemoryStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	orders map[string]entry
	now    func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:    ttl,
		orders: make(map[string]entry),
		now:    time.Now,
	}
}

func (s *MemoryStore) Save(_ context.Context, sessionID string, order *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expiresAt time.Time
	if s.ttl > 0 {
		expiresAt = s.now().Add(s.ttl)
	}
	s.orders[sessionID] = entry{order: order.Clone(), expiresAt: expiresAt}
	return nil
}

func (s *MemoryStore) Take(_ context.Context, sessionID string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.orders[sessionID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	delete(s.orders, sessionID)

	if !e.expiresAt.IsZero() && s.now().After(e.expiresAt) {
		return nil, ErrOrderNotFound
	}
	return e.order, nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.orders, sessionID)
	return nil
}
