package pricing

import (
	"math"

	"github.com/example/storefront/internal/domain/cart"
)

// Config is the pricing slice of the runtime configuration. The tax rate
// lives here and only here; no other package carries a rate.
type Config struct {
	TaxRate               float64
	FreeShippingThreshold int64
	FlatShippingFee       int64
}

// Totals is derived state. It is recomputed from line items on every use and
// never stored as an independent source of truth.
type Totals struct {
	Subtotal int64 `json:"subtotal"`
	Tax      int64 `json:"tax"`
	Shipping int64 `json:"shipping"`
	Discount int64 `json:"discount"`
	Total    int64 `json:"total"`
}

// Compute derives cart totals from line items alone. Amounts are integer
// minor units. The discounted unit price wins when one is set.
func Compute(items []cart.LineItem, discount int64, cfg Config) Totals {
	var subtotal int64
	for _, item := range items {
		subtotal += item.Snapshot.EffectiveUnitPrice() * int64(item.Quantity)
	}

	tax := roundHalfUp(float64(subtotal) * cfg.TaxRate)

	shipping := cfg.FlatShippingFee
	if subtotal > cfg.FreeShippingThreshold {
		shipping = 0
	}

	if discount < 0 {
		discount = 0
	}

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Discount: discount,
		Total:    subtotal + tax + shipping - discount,
	}
}

func roundHalfUp(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}
