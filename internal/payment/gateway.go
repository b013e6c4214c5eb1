// Package payment wraps the payment gateway used at checkout.
package payment

import (
	"context"
	"errors"
)

// ErrGateway wraps every failure reported by the gateway
var ErrGateway = errors.New("payment gateway error")

// OrderRequest asks the gateway for a payment intent
type OrderRequest struct {
	// Amount in the smallest currency unit (paise for INR)
	Amount   int64
	Currency string
	Receipt  string
	Notes    map[string]string
}

// Order is the gateway's payment intent
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Gateway creates payment intents and checks payment confirmations
type Gateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
	// VerifySignature checks the signature returned to the browser after payment
	VerifySignature(orderID, paymentID, signature string) bool
	// KeyID is the public key the browser checkout widget needs
	KeyID() string
}
