package domain

import "errors"

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrInvalidQuantity  = errors.New("invalid quantity")
	ErrInvalidProductID = errors.New("product_id must be a positive integer")
)
