// Package orders keeps the one "last order" record of each session.
package orders

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

var ErrOrderNotFound = errors.New("order not found")

// Store holds at most one order per session. Take consumes the record.
type Store interface {
	Save(ctx context.Context, sessionID string, order *domain.Order) error
	Take(ctx context.Context, sessionID string) (*domain.Order, error)
	Delete(ctx context.Context, sessionID string) error
}
