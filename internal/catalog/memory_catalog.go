package catalog

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// MemoryCatalog keeps products in process memory.
type MemoryCatalog struct {
	mu       sync.RWMutex
	products map[int64]*domain.Product
	nextID   int64
}

func NewMemoryCatalog(products ...*domain.Product) *MemoryCatalog {
	c := &MemoryCatalog{
		products: make(map[int64]*domain.Product, len(products)),
		nextID:   1,
	}
	for _, p := range products {
		cp := *p
		c.products[cp.ID] = &cp
		if cp.ID >= c.nextID {
			c.nextID = cp.ID + 1
		}
	}
	return c
}

// NewDemoCatalog returns the six-product storefront catalog.
func NewDemoCatalog() *MemoryCatalog {
	now := time.Now()
	return NewMemoryCatalog(
		&domain.Product{ID: 1, Name: "iPhone 15 Pro Max", Price: decimal.NewFromInt(35999), Category: "Electronics", Description: "Latest flagship smartphone", Image: "product_1.png", CreatedAt: now},
		&domain.Product{ID: 2, Name: "Samsung Galaxy S24", Price: decimal.NewFromInt(28999), Category: "Electronics", Description: "Top tier Android flagship", Image: "product_2.png", CreatedAt: now},
		&domain.Product{ID: 3, Name: "MacBook Pro M3", Price: decimal.NewFromInt(59999), Category: "Computers", Description: "Laptop for professionals", Image: "product_3.png", CreatedAt: now},
		&domain.Product{ID: 4, Name: "Dell XPS 15", Price: decimal.NewFromInt(49999), Category: "Computers", Description: "Notebook for app development", Image: "product_4.png", CreatedAt: now},
		&domain.Product{ID: 5, Name: "Canon EOS R5", Price: decimal.NewFromInt(119999), Category: "Cameras", Description: "Professional mirrorless camera", Image: "product_5.png", CreatedAt: now},
		&domain.Product{ID: 6, Name: "Sony Alpha A7 IV", Price: decimal.NewFromInt(99999), Category: "Cameras", Description: "Full-frame digital camera", Image: "product_6.png", CreatedAt: now},
	)
}

func (c *MemoryCatalog) FindProduct(_ context.Context, id int64) (*domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (c *MemoryCatalog) sorted() []*domain.Product {
	out := make([]*domain.Product, 0, len(c.products))
	for _, p := range c.products {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (c *MemoryCatalog) ListProducts(_ context.Context, category string) ([]*domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	all := c.sorted()
	if isAll(category) {
		return all, nil
	}
	filtered := make([]*domain.Product, 0, len(all))
	for _, p := range all {
		if p.Category == category {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

func (c *MemoryCatalog) Categories(_ context.Context) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return categoriesOf(c.sorted()), nil
}

func (c *MemoryCatalog) CreateProduct(_ context.Context, p *domain.Product) (*domain.Product, error) {
	if p.Price.IsNegative() {
		return nil, ErrNegativePrice
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	cp := *p
	cp.ID = c.nextID
	c.nextID++
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	c.products[cp.ID] = &cp

	out := cp
	return &out, nil
}

func (c *MemoryCatalog) DeleteProduct(_ context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.products, id)
	return nil
}

func (c *MemoryCatalog) Count(_ context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.products), nil
}
