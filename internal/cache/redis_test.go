package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisCache instance
func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cache := NewRedisCache(client, 0)

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return cache, mr, cleanup
}

func testCart(sessionID string) *domain.Cart {
	cart := domain.NewCart(sessionID, time.Now())
	cart.Add(&domain.Product{ID: 1, Name: "Laptop", Price: decimal.RequireFromString("100.50")}, time.Now())
	cart.Add(&domain.Product{ID: 2, Name: "Mouse", Price: decimal.RequireFromString("9.99")}, time.Now())
	cart.Add(&domain.Product{ID: 2, Name: "Mouse", Price: decimal.RequireFromString("9.99")}, time.Now())
	return cart
}

func TestGet_Success(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	sessionID := "session123"

	cartJSON, _ := json.Marshal(testCart(sessionID))
	mr.Set(cacheKey(sessionID), string(cartJSON))

	result, err := cache.Get(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, sessionID, result.SessionID)
	assert.Len(t, result.Items, 2)
	assert.Equal(t, int64(1), result.Items[0].ProductID)
	assert.Equal(t, "120.48", result.Total().String())
}

func TestGet_CacheMiss(t *testing.T) {
	cache, _, cleanup := setupTestRedis(t)
	defer cleanup()

	result, err := cache.Get(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, result)
}

func TestGet_InvalidJSON(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	sessionID := "session123"
	jsonCart, err := json.Marshal(testCart(sessionID))
	require.NoError(t, err)
	require.NoError(t, mr.Set(cacheKey(sessionID), string(jsonCart[0:10])))

	_, cacheError := cache.Get(context.Background(), sessionID)
	require.ErrorContains(t, cacheError, "unmarshal cart failed")
}

func TestSet_Success(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	sessionID := "session456"
	require.NoError(t, cache.Set(context.Background(), sessionID, testCart(sessionID)))

	stored, err := mr.Get(cacheKey(sessionID))
	require.NoError(t, err)
	assert.NotEmpty(t, stored)

	var storedCart domain.Cart
	require.NoError(t, json.Unmarshal([]byte(stored), &storedCart))
	assert.Equal(t, sessionID, storedCart.SessionID)
	assert.Len(t, storedCart.Items, 2)
}

func TestSet_WithTTL(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	sessionID := "session789"
	require.NoError(t, cache.Set(context.Background(), sessionID, domain.NewCart(sessionID, time.Now())))

	ttl := mr.TTL(cacheKey(sessionID))
	assert.True(t, ttl >= DefaultTTL, "TTL should be at least base TTL")
	assert.True(t, ttl <= DefaultTTL+maxJitter*time.Minute, "TTL should be base + max jitter")
}

func TestSet_CustomTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	cache := NewRedisCache(client, time.Minute)
	require.NoError(t, cache.Set(context.Background(), "s", domain.NewCart("s", time.Now())))

	ttl := mr.TTL(cacheKey("s"))
	assert.True(t, ttl >= time.Minute && ttl <= 6*time.Minute, "ttl %s", ttl)
}

func TestDelete_Success(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	sessionID := "session999"
	cartJSON, _ := json.Marshal(domain.NewCart(sessionID, time.Now()))
	mr.Set(cacheKey(sessionID), string(cartJSON))
	assert.True(t, mr.Exists(cacheKey(sessionID)))

	require.NoError(t, cache.Delete(context.Background(), sessionID))
	assert.False(t, mr.Exists(cacheKey(sessionID)))
}

func TestDelete_NonExistentKey(t *testing.T) {
	cache, _, cleanup := setupTestRedis(t)
	defer cleanup()

	assert.NoError(t, cache.Delete(context.Background(), "nonexistent"))
}

func TestRedisErrorsAreWrapped(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	mr.SetError("ERR server down")

	_, err := cache.Get(context.Background(), "s")
	assert.ErrorContains(t, err, "redis get failed")
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestNopCache(t *testing.T) {
	var c CartCache = NopCache{}

	_, err := c.Get(context.Background(), "s")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.NoError(t, c.Set(context.Background(), "s", domain.NewCart("s", time.Now())))
	assert.NoError(t, c.Delete(context.Background(), "s"))
}

func TestCacheKey_Format(t *testing.T) {
	assert.Equal(t, "cart:test123", cacheKey("test123"))
}
