package cart

import "github.com/shopspring/decimal"

// Pricing carries the storefront's checkout parameters.
type Pricing struct {
	TaxRate               decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
}

// Totals is the derived money view of a cart. All amounts are rounded
// to cents.
type Totals struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tax       decimal.Decimal `json:"tax"`
	Shipping  decimal.Decimal `json:"shipping"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
}

// ComputeTotals derives cart totals from the given lines. An empty
// cart is all zeros, including shipping.
func ComputeTotals(lines []*Line, pricing Pricing) Totals {
	subtotal := decimal.Zero
	itemCount := 0
	for _, line := range lines {
		qty := decimal.NewFromInt(int64(line.Quantity))
		subtotal = subtotal.Add(line.EffectivePrice().Mul(qty))
		itemCount += line.Quantity
	}
	subtotal = subtotal.Round(2)

	tax := subtotal.Mul(pricing.TaxRate).Round(2)

	shipping := decimal.Zero
	if subtotal.IsPositive() && subtotal.LessThan(pricing.FreeShippingThreshold) {
		shipping = pricing.FlatShippingFee.Round(2)
	}

	return Totals{
		Subtotal:  subtotal,
		Tax:       tax,
		Shipping:  shipping,
		Total:     subtotal.Add(tax).Add(shipping),
		ItemCount: itemCount,
	}
}
