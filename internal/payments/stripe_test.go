package payments

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripeProviderWithoutKey(t *testing.T) {
	p := NewStripeProvider("")

	secret, err := p.CreatePaymentIntent(context.Background(), 10000, "usd", map[string]string{"jobId": "j1"})

	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Empty(t, secret)
}
