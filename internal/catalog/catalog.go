package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrNegativePrice   = errors.New("product price cannot be negative")
)

// AllCategories selects every product in ListProducts.
const AllCategories = "all"

// Catalog is the read side used by the cart.
type Catalog interface {
	FindProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListProducts(ctx context.Context, category string) ([]*domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
}

// Editor is implemented by catalogs the admin backend can change.
type Editor interface {
	Catalog
	CreateProduct(ctx context.Context, p *domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

func isAll(category string) bool {
	c := strings.TrimSpace(category)
	return c == "" || strings.EqualFold(c, AllCategories)
}

func categoriesOf(products []*domain.Product) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}

func samples() []*domain.Product {
	return []*domain.Product{
		{Name: "Product A", Price: decimal.RequireFromString("790.00")},
		{Name: "Product B", Price: decimal.RequireFromString("1290.00")},
		{Name: "Product C", Price: decimal.RequireFromString("450.00")},
		{Name: "Product D", Price: decimal.RequireFromString("1990.00")},
	}
}

// Seed inserts the sample products when the catalog is empty and reports
// whether it did.
func Seed(ctx context.Context, e Editor) (bool, error) {
	n, err := e.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	for _, p := range samples() {
		if _, err := e.CreateProduct(ctx, p); err != nil {
			return false, err
		}
	}
	return true, nil
}
