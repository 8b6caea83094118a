package catalog

import (
	"context"
	"testing"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoCatalog_FindProduct(t *testing.T) {
	c := NewDemoCatalog()

	p, err := c.FindProduct(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "MacBook Pro M3", p.Name)
	assert.True(t, p.Price.Equal(decimal.NewFromInt(59999)))

	_, err = c.FindProduct(context.Background(), 99)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestDemoCatalog_FindProductReturnsCopy(t *testing.T) {
	c := NewDemoCatalog()

	p, err := c.FindProduct(context.Background(), 1)
	require.NoError(t, err)
	p.Name = "changed"

	again, _ := c.FindProduct(context.Background(), 1)
	assert.Equal(t, "iPhone 15 Pro Max", again.Name)
}

func TestDemoCatalog_ListProducts(t *testing.T) {
	c := NewDemoCatalog()
	ctx := context.Background()

	all, err := c.ListProducts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 6)
	assert.Equal(t, int64(1), all[0].ID)

	allByName, err := c.ListProducts(ctx, "ALL")
	require.NoError(t, err)
	assert.Len(t, allByName, 6)

	cameras, err := c.ListProducts(ctx, "Cameras")
	require.NoError(t, err)
	require.Len(t, cameras, 2)
	assert.Equal(t, int64(5), cameras[0].ID)

	none, err := c.ListProducts(ctx, "Books")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDemoCatalog_Categories(t *testing.T) {
	categories, err := NewDemoCatalog().Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Electronics", "Computers", "Cameras"}, categories)
}

func TestMemoryCatalog_CreateAndDelete(t *testing.T) {
	c := NewDemoCatalog()
	ctx := context.Background()

	p, err := c.CreateProduct(ctx, &domain.Product{Name: "Tripod", Price: decimal.NewFromInt(900), Category: "Cameras"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), p.ID)
	assert.False(t, p.CreatedAt.IsZero())

	require.NoError(t, c.DeleteProduct(ctx, p.ID))
	_, err = c.FindProduct(ctx, p.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = c.CreateProduct(ctx, &domain.Product{Name: "Bad", Price: decimal.NewFromInt(-5)})
	assert.ErrorIs(t, err, ErrNegativePrice)
}

func TestSeed_OnlyWhenEmpty(t *testing.T) {
	ctx := context.Background()

	seeded, err := Seed(ctx, NewDemoCatalog())
	require.NoError(t, err)
	assert.False(t, seeded)

	empty := NewMemoryCatalog()
	seeded, err = Seed(ctx, empty)
	require.NoError(t, err)
	assert.True(t, seeded)

	n, _ := empty.Count(ctx)
	assert.Equal(t, 4, n)
}
