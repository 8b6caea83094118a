package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type CartService struct {
	repo    repository.CartRepository
	cache   cache.CartCache
	catalog catalog.Catalog
	log     *zap.Logger
	locks   *sessionLocks
	sfg     singleflight.Group // Prevents cache stampede
	now     func() time.Time
}

func NewCartService(repo repository.CartRepository, c cache.CartCache, cat catalog.Catalog, log *zap.Logger) *CartService {
	if c == nil {
		c = cache.NopCache{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CartService{
		repo:    repo,
		cache:   c,
		catalog: cat,
		log:     log,
		locks:   newSessionLocks(),
		now:     time.Now,
	}
}

// GetCart returns the session cart, an empty one when nothing is stored.
// The cache is filled under the session lock so a concurrent write cannot be
// overwritten by a stale read.
func (s *CartService) GetCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	v, err, _ := s.sfg.Do(sessionID, func() (interface{}, error) {
		unlock := s.locks.Lock(sessionID)
		defer unlock()

		cart, err := s.cache.Get(ctx, sessionID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.WithContext(ctx, s.log).Warn("cache get error", zap.Error(err))
		}

		cart, err = s.load(ctx, sessionID)
		if err != nil {
			return nil, err
		}

		if errSet := s.cache.Set(ctx, sessionID, cart); errSet != nil {
			logger.WithContext(ctx, s.log).Warn("cache set error", zap.Error(errSet))
		}
		return cart, nil
	})
	if err != nil {
		return nil, err
	}

	// singleflight shares the value between callers.
	return v.(*domain.Cart).Clone(), nil
}

// AddItem adds one unit of the product and returns the distinct item count.
func (s *CartService) AddItem(ctx context.Context, sessionID string, productID int64) (int, error) {
	product, err := s.catalog.FindProduct(ctx, productID)
	if errors.Is(err, catalog.ErrProductNotFound) {
		return 0, fmt.Errorf("add product %d: %w", productID, ErrProductNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("catalog lookup failed: %w", err)
	}

	var count int
	err = s.mutate(ctx, sessionID, "add item", func(cart *domain.Cart) bool {
		cart.Add(product, s.now())
		count = cart.Count()
		return true
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// UpdateQuantity sets the quantity of an item already in the cart. A
// quantity <= 0 removes it; an absent item is left alone.
func (s *CartService) UpdateQuantity(ctx context.Context, sessionID string, productID int64, quantity int) error {
	return s.mutate(ctx, sessionID, "update item quantity", func(cart *domain.Cart) bool {
		return cart.SetQuantity(productID, quantity, s.now())
	})
}

func (s *CartService) RemoveItem(ctx context.Context, sessionID string, productID int64) (int, error) {
	var count int
	err := s.mutate(ctx, sessionID, "remove item", func(cart *domain.Cart) bool {
		changed := cart.Remove(productID, s.now())
		count = cart.Count()
		return changed
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *CartService) Count(ctx context.Context, sessionID string) (int, error) {
	cart, err := s.GetCart(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return cart.Count(), nil
}

func (s *CartService) Total(ctx context.Context, sessionID string) (decimal.Decimal, error) {
	cart, err := s.GetCart(ctx, sessionID)
	if err != nil {
		return decimal.Zero, err
	}
	return cart.Total(), nil
}

func (s *CartService) ClearCart(ctx context.Context, sessionID string) error {
	unlock := s.locks.Lock(sessionID)
	defer unlock()
	return s.clear(ctx, sessionID)
}

// clear expects the session lock to be held.
func (s *CartService) clear(ctx context.Context, sessionID string) error {
	errDelete := s.repo.DeleteCart(ctx, sessionID)
	if errDelete != nil && !errors.Is(errDelete, repository.ErrCartNotFound) {
		logger.WithContext(ctx, s.log).Error("repo delete cart error", zap.Error(errDelete))
		return errDelete
	}

	s.invalidateCache(ctx, sessionID)
	return nil
}

// load reads the stored cart, bypassing the cache.
func (s *CartService) load(ctx context.Context, sessionID string) (*domain.Cart, error) {
	cart, err := s.repo.GetCart(ctx, sessionID)
	if errors.Is(err, repository.ErrCartNotFound) {
		return domain.NewCart(sessionID, s.now()), nil
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// mutate runs fn on the stored cart under the session lock and writes the
// cart back when fn reports a change.
func (s *CartService) mutate(ctx context.Context, sessionID, op string, fn func(*domain.Cart) bool) error {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	cart, err := s.load(ctx, sessionID)
	if err != nil {
		logger.WithContext(ctx, s.log).Error("repo get cart error", zap.String("op", op), zap.Error(err))
		return err
	}

	if !fn(cart) {
		return nil
	}

	if err := s.repo.UpsertCart(ctx, cart); err != nil {
		logger.WithContext(ctx, s.log).Error("repo "+op+" error", zap.Error(err))
		return err
	}

	s.invalidateCache(ctx, sessionID)
	return nil
}

func (s *CartService) invalidateCache(ctx context.Context, sessionID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, sessionID); err != nil {
		logger.WithContext(ctx, s.log).Warn("cache invalidate error", zap.Error(err))
	}
}
