package service

import (
	"context"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/orders"
	"github.com/fjod/go_cart/storefront/internal/repository"
)

// mockRepository wraps the memory repository and injects per-call errors.
type mockRepository struct {
	m         sync.RWMutex
	inner     repository.CartRepository
	getErr    error
	upsertErr error
	deleteErr error
	upserts   int
}

func newMockRepository() *mockRepository {
	return &mockRepository{inner: repository.NewMemoryRepository()}
}

func (m *mockRepository) GetCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.inner.GetCart(ctx, sessionID)
}

func (m *mockRepository) UpsertCart(ctx context.Context, cart *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserts++
	return m.inner.UpsertCart(ctx, cart)
}

func (m *mockRepository) DeleteCart(ctx context.Context, sessionID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	return m.inner.DeleteCart(ctx, sessionID)
}

type mockCache struct {
	m       sync.RWMutex
	carts   map[string]*domain.Cart
	getErr  error
	deletes int
	sets    int
}

func newMockCache() *mockCache {
	return &mockCache{carts: make(map[string]*domain.Cart)}
}

func (m *mockCache) Get(_ context.Context, sessionID string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	cart, ok := m.carts[sessionID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return cart.Clone(), nil
}

func (m *mockCache) Set(_ context.Context, sessionID string, cart *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.sets++
	m.carts[sessionID] = cart.Clone()
	return nil
}

func (m *mockCache) Delete(_ context.Context, sessionID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.deletes++
	delete(m.carts, sessionID)
	return nil
}

func (m *mockCache) cached(sessionID string) bool {
	m.m.RLock()
	defer m.m.RUnlock()
	_, ok := m.carts[sessionID]
	return ok
}

type mockOrderStore struct {
	m       sync.Mutex
	inner   *orders.MemoryStore
	saveErr error
	saved   int
	deleted int
}

func newMockOrderStore() *mockOrderStore {
	return &mockOrderStore{inner: orders.NewMemoryStore(0)}
}

func (m *mockOrderStore) Save(ctx context.Context, sessionID string, order *domain.Order) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved++
	return m.inner.Save(ctx, sessionID, order)
}

func (m *mockOrderStore) Take(ctx context.Context, sessionID string) (*domain.Order, error) {
	return m.inner.Take(ctx, sessionID)
}

func (m *mockOrderStore) Delete(ctx context.Context, sessionID string) error {
	m.m.Lock()
	m.deleted++
	m.m.Unlock()
	return m.inner.Delete(ctx, sessionID)
}

type mockPublisher struct {
	m         sync.Mutex
	err       error
	published []*domain.Order
}

func (m *mockPublisher) Publish(_ context.Context, order *domain.Order) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.published = append(m.published, order)
	return m.err
}

func (m *mockPublisher) count() int {
	m.m.Lock()
	defer m.m.Unlock()
	return len(m.published)
}

// blockingPublisher holds Publish until release is closed.
type blockingPublisher struct {
	entered chan struct{}
	release chan struct{}
}

func newBlockingPublisher() *blockingPublisher {
	return &blockingPublisher{entered: make(chan struct{}, 1), release: make(chan struct{})}
}

func (b *blockingPublisher) Publish(ctx context.Context, _ *domain.Order) error {
	b.entered <- struct{}{}
	select {
	case <-b.release:
	case <-ctx.Done():
	}
	return nil
}
