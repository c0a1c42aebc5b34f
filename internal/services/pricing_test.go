package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuote_StandardPolicy(t *testing.T) {
	engine := NewPricingEngine(DefaultPricingConfig())

	tests := []struct {
		name     string
		subtotal int64
		want     Totals
	}{
		{
			name:     "below threshold pays shipping",
			subtotal: 5000,
			want:     Totals{Subtotal: 5000, Tax: 500, Shipping: 1000, Total: 6500},
		},
		{
			// The threshold is strict: a subtotal of exactly 100.00
			// still pays the flat fee.
			name:     "exactly at threshold pays shipping",
			subtotal: 10000,
			want:     Totals{Subtotal: 10000, Tax: 1000, Shipping: 1000, Total: 12000},
		},
		{
			name:     "one cent over threshold ships free",
			subtotal: 10001,
			want:     Totals{Subtotal: 10001, Tax: 1000, Shipping: 0, Total: 11001},
		},
		{
			name:     "large order ships free",
			subtotal: 250000,
			want:     Totals{Subtotal: 250000, Tax: 25000, Shipping: 0, Total: 275000},
		},
		{
			name:     "zero subtotal",
			subtotal: 0,
			want:     Totals{Subtotal: 0, Tax: 0, Shipping: 1000, Total: 1000},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.Quote(tt.subtotal)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got.Subtotal+got.Tax+got.Shipping-got.Discount, got.Total)
		})
	}
}

func TestQuote_TaxRoundsHalfUp(t *testing.T) {
	engine := NewPricingEngine(DefaultPricingConfig())

	// 10% of 105 cents is 10.5 cents; half-up rounding lands on 11.
	assert.Equal(t, int64(11), engine.Quote(105).Tax)
	// 10% of 104 cents is 10.4 cents; rounds down to 10.
	assert.Equal(t, int64(10), engine.Quote(104).Tax)
}

func TestQuote_CustomPolicy(t *testing.T) {
	engine := NewPricingEngine(PricingConfig{
		TaxRateBP:             750, // 7.5%
		FreeShippingThreshold: 5000,
		ShippingFlatFee:       499,
	})

	got := engine.Quote(4000)
	assert.Equal(t, int64(300), got.Tax)
	assert.Equal(t, int64(499), got.Shipping)
	assert.Equal(t, int64(4799), got.Total)

	assert.Equal(t, int64(0), engine.Quote(5001).Shipping)
	assert.Equal(t, int64(499), engine.Quote(5000).Shipping)
}
