package service

import "errors"

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrEmptyCartCheckout = errors.New("cart is empty, nothing to checkout")
	ErrNoPendingOrder    = errors.New("no pending order")
)
