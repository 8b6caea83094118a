package repository

import (
	"context"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type memoryRepository struct {
	mu    sync.RWMutex
	carts map[string]*domain.Cart
}

func NewMemoryRepository() CartRepository {
	return &memoryRepository{
		carts: make(map[string]*domain.Cart),
	}
}

func (m *memoryRepository) GetCart(_ context.Context, sessionID string) (*domain.Cart, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cart, ok := m.carts[sessionID]
	if !ok {
		return nil, ErrCartNotFound
	}
	return cart.Clone(), nil
}

func (m *memoryRepository) UpsertCart(_ context.Context, cart *domain.Cart) error {
	now := time.Now()
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = now
	}
	if cart.UpdatedAt.IsZero() {
		cart.UpdatedAt = now
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[cart.SessionID] = cart.Clone()
	return nil
}

func (m *memoryRepository) DeleteCart(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.carts[sessionID]; !ok {
		return ErrCartNotFound
	}
	delete(m.carts, sessionID)
	return nil
}
