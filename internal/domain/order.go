package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CustomerInfo struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	City          string `json:"city"`
	PostalCode    string `json:"postal_code"`
	PaymentMethod string `json:"payment_method"`
}

// Order is the frozen result of a checkout. Its items are copied from the
// cart and never alias cart storage.
type Order struct {
	ID        uuid.UUID       `json:"id"`
	SessionID string          `json:"session_id"`
	Customer  CustomerInfo    `json:"customer"`
	Items     []CartItem      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	Currency  string          `json:"currency"`
	CreatedAt time.Time       `json:"created_at"`
}

func NewOrder(cart *Cart, customer CustomerInfo, currency string, now time.Time) (*Order, error) {
	if cart == nil || cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	items := make([]CartItem, len(cart.Items))
	copy(items, cart.Items)

	return &Order{
		ID:        uuid.New(),
		SessionID: cart.SessionID,
		Customer:  customer,
		Items:     items,
		Total:     cart.Total(),
		Currency:  currency,
		CreatedAt: now,
	}, nil
}

func (o *Order) Clone() *Order {
	clone := *o
	clone.Items = make([]CartItem, len(o.Items))
	copy(clone.Items, o.Items)
	return &clone
}
