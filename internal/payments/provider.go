package payments

import (
	"context"
)

// Provider creates payment intents with an external processor.
type Provider interface {
	CreatePaymentIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (clientSecret string, err error)
}
