package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/orders"
	"go.uber.org/zap"
)

// OrderPublisher announces completed checkouts. Failures never affect the
// checkout result.
type OrderPublisher interface {
	Publish(ctx context.Context, order *domain.Order) error
}

type CheckoutService struct {
	carts     *CartService
	orders    orders.Store
	publisher OrderPublisher
	currency  string
	log       *zap.Logger
	now       func() time.Time
}

func NewCheckoutService(carts *CartService, store orders.Store, pub OrderPublisher, currency string, log *zap.Logger) *CheckoutService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CheckoutService{
		carts:     carts,
		orders:    store,
		publisher: pub,
		currency:  currency,
		log:       log,
		now:       time.Now,
	}
}

// SubmitCheckout turns the session cart into an order, stores it as the
// session's last order and empties the cart. The order event is published
// after the session lock is released.
func (s *CheckoutService) SubmitCheckout(ctx context.Context, sessionID string, customer domain.CustomerInfo) (*domain.Order, error) {
	log := logger.WithContext(ctx, s.log)

	order, err := s.complete(ctx, sessionID, customer)
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, order); err != nil {
			log.Warn("publish order error", zap.String("order_id", order.ID.String()), zap.Error(err))
		}
	}

	log.Info("checkout completed",
		zap.String("order_id", order.ID.String()),
		zap.Int("items", len(order.Items)),
		zap.String("total", order.Total.StringFixed(2)),
	)
	return order, nil
}

// complete runs the OPEN to COMPLETED transition under the session lock
// shared with the cart mutations.
func (s *CheckoutService) complete(ctx context.Context, sessionID string, customer domain.CustomerInfo) (*domain.Order, error) {
	log := logger.WithContext(ctx, s.log)

	unlock := s.carts.locks.Lock(sessionID)
	defer unlock()

	cart, err := s.carts.load(ctx, sessionID)
	if err != nil {
		log.Error("repo get cart error", zap.Error(err))
		return nil, err
	}

	order, err := domain.NewOrder(cart, customer, s.currency, s.now())
	if errors.Is(err, domain.ErrEmptyCart) {
		return nil, ErrEmptyCartCheckout
	}
	if err != nil {
		return nil, fmt.Errorf("build order: %w", err)
	}

	if err := s.orders.Save(ctx, sessionID, order); err != nil {
		log.Error("save order error", zap.Error(err))
		return nil, fmt.Errorf("save order: %w", err)
	}

	if err := s.carts.clear(ctx, sessionID); err != nil {
		// The cart is still intact, so the order must not survive.
		if errDel := s.orders.Delete(context.WithoutCancel(ctx), sessionID); errDel != nil {
			log.Error("withdraw order error", zap.String("order_id", order.ID.String()), zap.Error(errDel))
		}
		return nil, fmt.Errorf("clear cart: %w", err)
	}
	return order, nil
}

// GetLastOrder consumes the session's last order; a second call reports
// ErrNoPendingOrder.
func (s *CheckoutService) GetLastOrder(ctx context.Context, sessionID string) (*domain.Order, error) {
	order, err := s.orders.Take(ctx, sessionID)
	if errors.Is(err, orders.ErrOrderNotFound) {
		return nil, ErrNoPendingOrder
	}
	if err != nil {
		logger.WithContext(ctx, s.log).Error("take order error", zap.Error(err))
		return nil, err
	}
	return order, nil
}

func (s *CheckoutService) ResetLastOrder(ctx context.Context, sessionID string) error {
	if err := s.orders.Delete(ctx, sessionID); err != nil {
		logger.WithContext(ctx, s.log).Error("reset order error", zap.Error(err))
		return err
	}
	return nil
}
