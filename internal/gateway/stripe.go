// internal/gateway/stripe.go
package gateway

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
)

// StripeGateway drives Stripe PaymentIntents. The intent id doubles as
// the gateway order handle: the client widget confirms the intent, and
// confirmation later verifies that same id server-side.
type StripeGateway struct {
	currency string
}

func NewStripeGateway(secretKey, currency string) *StripeGateway {
	stripe.Key = secretKey

	if currency == "" {
		currency = "usd"
	}
	return &StripeGateway{currency: currency}
}

func (g *StripeGateway) CreateOrder(ctx context.Context, amount float64, currency string, metadata map[string]string) (*OrderHandle, error) {
	if currency == "" {
		currency = g.currency
	}

	// Stripe amounts are in the currency's smallest unit
	amountInCents := int64(amount * 100)

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountInCents),
		Currency: stripe.String(currency),
	}
	params.Context = ctx

	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return &OrderHandle{
		ID:       pi.ID,
		Amount:   amount,
		Currency: currency,
	}, nil
}

func (g *StripeGateway) VerifyPayment(ctx context.Context, paymentID string) (*PaymentRecord, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := paymentintent.Get(paymentID, params)
	if err != nil {
		if stripeErr, ok := err.(*stripe.Error); ok && stripeErr.HTTPStatusCode == 404 {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return &PaymentRecord{
		ID:        pi.ID,
		OrderID:   pi.ID,
		Amount:    float64(pi.Amount) / 100,
		Currency:  string(pi.Currency),
		Succeeded: pi.Status == stripe.PaymentIntentStatusSucceeded,
	}, nil
}
