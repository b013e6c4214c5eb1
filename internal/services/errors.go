package services

import "errors"

// Sentinel errors returned (wrapped) by the services. Controllers map them to
// HTTP status codes with errors.Is.
var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("already exists")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInvalidStatus      = errors.New("invalid order status")
	ErrPaymentNotVerified = errors.New("payment not verified")
	ErrDuplicatePayment   = errors.New("payment already processed")
	ErrInvalidToken       = errors.New("token is invalid or has expired")
)
