package repository

import (
	"context"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_GetCart_NotFound(t *testing.T) {
	repo := NewMemoryRepository()

	cart, err := repo.GetCart(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrCartNotFound)
	assert.Nil(t, cart)
}

func TestMemoryRepository_UpsertAndGet(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	cart := domain.NewCart("s1", time.Now())
	cart.Add(&domain.Product{ID: 1, Name: "A", Price: decimal.NewFromInt(100)}, time.Now())
	require.NoError(t, repo.UpsertCart(ctx, cart))

	got, err := repo.GetCart(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "A", got.Items[0].Name)
}

func TestMemoryRepository_StoresCopies(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	cart := domain.NewCart("s1", time.Now())
	cart.Add(&domain.Product{ID: 1, Name: "A", Price: decimal.NewFromInt(1)}, time.Now())
	require.NoError(t, repo.UpsertCart(ctx, cart))

	cart.SetQuantity(1, 5, time.Now())
	got, _ := repo.GetCart(ctx, "s1")
	assert.Equal(t, 1, got.Items[0].Quantity, "stored cart must not alias the caller's cart")

	got.SetQuantity(1, 9, time.Now())
	again, _ := repo.GetCart(ctx, "s1")
	assert.Equal(t, 1, again.Items[0].Quantity, "returned cart must not alias storage")
}

func TestMemoryRepository_DeleteCart(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.UpsertCart(ctx, domain.NewCart("s1", time.Now())))
	require.NoError(t, repo.DeleteCart(ctx, "s1"))

	assert.ErrorIs(t, repo.DeleteCart(ctx, "s1"), ErrCartNotFound)
	_, err := repo.GetCart(ctx, "s1")
	assert.ErrorIs(t, err, ErrCartNotFound)
}
