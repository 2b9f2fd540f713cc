// Package pricing computes order totals from cart lines.
package pricing

import (
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

var (
	TaxRate               = decimal.RequireFromString("0.10")
	FlatShipping          = decimal.RequireFromString("10.00")
	FreeShippingThreshold = decimal.RequireFromString("100.00")
)

type Totals struct {
	Subtotal     decimal.Decimal
	Tax          decimal.Decimal
	ShippingCost decimal.Decimal
	Total        decimal.Decimal
}

// Compute prices lines at their current product price. Tax is rounded half
// to even at two places.
func Compute(lines []domain.CartLine) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Total())
	}
	return FromSubtotal(subtotal)
}

func FromSubtotal(subtotal decimal.Decimal) Totals {
	subtotal = subtotal.Round(2)
	tax := subtotal.Mul(TaxRate).RoundBank(2)
	shipping := decimal.Zero
	if subtotal.LessThan(FreeShippingThreshold) {
		shipping = FlatShipping
	}
	return Totals{
		Subtotal:     subtotal,
		Tax:          tax,
		ShippingCost: shipping,
		Total:        subtotal.Add(tax).Add(shipping),
	}
}
