package repository

import (
	"context"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

func setupTestDB(t *testing.T) (CartRepository, func()) {
	if testing.Short() {
		t.Skip("skipping MongoDB container test in short mode")
	}
	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := ConnectMongoDB(ctx, uri, "testdb")
	require.NoError(t, err)

	repo := NewMongoRepository(db)
	require.NoError(t, EnsureIndexes(ctx, repo))

	cleanup := func() {
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return repo, cleanup
}

func TestMongo_GetCart_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	cart, err := repo.GetCart(context.Background(), "nonexistent")

	assert.ErrorIs(t, err, ErrCartNotFound)
	assert.Nil(t, cart)
}

func TestMongo_UpsertCart_RoundTripsDecimalPrices(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	cart := domain.NewCart("session-1", time.Now())
	cart.Add(&domain.Product{ID: 1, Name: "Laptop", Price: decimal.RequireFromString("49999.99")}, time.Now())
	cart.Add(&domain.Product{ID: 2, Name: "Mouse", Price: decimal.RequireFromString("0.10")}, time.Now())
	cart.Add(&domain.Product{ID: 2, Name: "Mouse", Price: decimal.RequireFromString("0.10")}, time.Now())

	require.NoError(t, repo.UpsertCart(ctx, cart))

	got, err := repo.GetCart(ctx, "session-1")
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, int64(1), got.Items[0].ProductID)
	assert.Equal(t, 2, got.Items[1].Quantity)
	assert.Equal(t, "50000.19", got.Total().String())
}

func TestMongo_UpsertCart_Overwrites(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	cart := domain.NewCart("session-1", time.Now())
	cart.Add(&domain.Product{ID: 1, Name: "A", Price: decimal.NewFromInt(1)}, time.Now())
	require.NoError(t, repo.UpsertCart(ctx, cart))

	cart.Remove(1, time.Now())
	require.NoError(t, repo.UpsertCart(ctx, cart))

	got, err := repo.GetCart(ctx, "session-1")
	require.NoError(t, err)
	assert.Empty(t, got.Items)
}

func TestMongo_DeleteCart(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, repo.UpsertCart(ctx, domain.NewCart("session-1", time.Now())))

	require.NoError(t, repo.DeleteCart(ctx, "session-1"))
	assert.ErrorIs(t, repo.DeleteCart(ctx, "session-1"), ErrCartNotFound)
}

func TestMongo_ContextCancellation(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Nanosecond)
	defer cancel()

	time.Sleep(10 * time.Millisecond)

	_, err := repo.GetCart(ctx, "session-1")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "context")
}
