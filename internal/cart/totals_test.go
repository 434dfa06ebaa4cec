package cart

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestComputeTotalsEmptyCart(t *testing.T) {
	t.Parallel()

	totals := ComputeTotals(nil, testPricing())
	if !totals.Subtotal.IsZero() || !totals.Tax.IsZero() || !totals.Shipping.IsZero() || !totals.Total.IsZero() {
		t.Fatalf("empty cart must be all zeros, got %+v", totals)
	}
	if totals.ItemCount != 0 {
		t.Fatalf("item count = %d", totals.ItemCount)
	}
}

func TestComputeTotalsFreeShippingThreshold(t *testing.T) {
	t.Parallel()

	line := &Line{ProductID: "p1", Quantity: 1, OriginalPrice: decimal.RequireFromString("499.99")}
	totals := ComputeTotals([]*Line{line}, testPricing())
	if totals.Shipping.String() != "49" {
		t.Fatalf("below threshold shipping = %s, want 49", totals.Shipping)
	}

	line.OriginalPrice = decimal.RequireFromString("500")
	totals = ComputeTotals([]*Line{line}, testPricing())
	if !totals.Shipping.IsZero() {
		t.Fatalf("at threshold shipping = %s, want 0", totals.Shipping)
	}
	if totals.Total.String() != "550" {
		t.Fatalf("total = %s, want 550", totals.Total)
	}
}

func TestComputeTotalsDiscountWinsAndRounds(t *testing.T) {
	t.Parallel()

	lines := []*Line{
		{ProductID: "p1", Quantity: 3, OriginalPrice: decimal.RequireFromString("19.99"), DiscountedPrice: decimal.RequireFromString("14.95")},
		{ProductID: "p2", Quantity: 1, OriginalPrice: decimal.RequireFromString("0.05")},
	}
	totals := ComputeTotals(lines, testPricing())

	if totals.Subtotal.String() != "44.9" {
		t.Fatalf("subtotal = %s, want 44.9", totals.Subtotal)
	}
	if totals.Tax.String() != "4.49" {
		t.Fatalf("tax = %s, want 4.49", totals.Tax)
	}
	if totals.ItemCount != 4 {
		t.Fatalf("item count = %d, want 4", totals.ItemCount)
	}
}
