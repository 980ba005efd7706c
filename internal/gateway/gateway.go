// internal/gateway/gateway.go

// Package gateway abstracts the payment provider behind a small
// create/verify contract so the checkout flow never trusts
// client-reported payment state.
package gateway

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable wraps provider/network failures.
	ErrUnavailable = errors.New("payment gateway unavailable")
	// ErrPaymentNotFound means the provider has no record of the id.
	ErrPaymentNotFound = errors.New("payment not found")
)

// OrderHandle is the opaque reference for a pending payment, handed to
// the client-side payment widget.
type OrderHandle struct {
	ID       string  `json:"id"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// PaymentRecord is the provider's own view of a payment, fetched
// server-side during confirmation.
type PaymentRecord struct {
	ID        string
	OrderID   string
	Amount    float64
	Currency  string
	Succeeded bool
}

type Gateway interface {
	// CreateOrder registers an intent to collect amount and returns the
	// handle the client widget pays against.
	CreateOrder(ctx context.Context, amount float64, currency string, metadata map[string]string) (*OrderHandle, error)

	// VerifyPayment looks the payment up at the provider. Callers must
	// check Succeeded and Amount before marking anything paid.
	VerifyPayment(ctx context.Context, paymentID string) (*PaymentRecord, error)
}
