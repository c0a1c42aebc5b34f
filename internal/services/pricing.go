package services

// PricingConfig holds the pricing policy constants. All amounts are in
// minor currency units (cents); the tax rate is in basis points.
type PricingConfig struct {
	TaxRateBP             int64 // 1000 = 10%
	FreeShippingThreshold int64 // shipping is waived when subtotal is strictly greater
	ShippingFlatFee       int64
}

// DefaultPricingConfig returns the standard policy: 10% tax, flat 10.00
// shipping waived for subtotals strictly over 100.00.
func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		TaxRateBP:             1000,
		FreeShippingThreshold: 10000,
		ShippingFlatFee:       1000,
	}
}

// Totals is the result of pricing an order:
// Total = Subtotal + Tax + Shipping - Discount.
type Totals struct {
	Subtotal int64
	Tax      int64
	Shipping int64
	Discount int64
	Total    int64
}

// PricingEngine computes order totals from a subtotal. The computation
// order is fixed: subtotal, then tax, then shipping, then total.
type PricingEngine struct {
	cfg PricingConfig
}

// NewPricingEngine creates a new PricingEngine.
func NewPricingEngine(cfg PricingConfig) *PricingEngine {
	return &PricingEngine{cfg: cfg}
}

// Quote prices an order from its item subtotal. Tax rounds half-up at
// the cent. The free-shipping threshold is exclusive: a subtotal equal
// to the threshold still pays the flat fee.
func (e *PricingEngine) Quote(subtotal int64) Totals {
	tax := (subtotal*e.cfg.TaxRateBP + 5000) / 10000

	shipping := e.cfg.ShippingFlatFee
	if subtotal > e.cfg.FreeShippingThreshold {
		shipping = 0
	}

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Discount: 0,
		Total:    subtotal + tax + shipping,
	}
}
