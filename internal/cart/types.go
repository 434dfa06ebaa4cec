// Package cart holds the in-memory shopping cart engine. The engine is
// the source of truth for cart state: the local blob store and the
// commerce API are downstream mirrors it writes to in the background.
package cart

import (
	"github.com/angelmondragon/havenwood-client/pkg/types"
	"github.com/shopspring/decimal"
)

// Line is one cart entry: a product, an optional variant selection and
// a quantity, together with the product snapshot captured when the
// line was created.
type Line struct {
	ID              string                 `json:"id"`
	ProductID       string                 `json:"productId"`
	Title           string                 `json:"title,omitempty"`
	Image           string                 `json:"image,omitempty"`
	Quantity        int                    `json:"quantity"`
	Variant         types.VariantSelectors `json:"variant,omitempty"`
	OriginalPrice   decimal.Decimal        `json:"originalPrice"`
	DiscountedPrice decimal.Decimal        `json:"discountedPrice"`
	StockQuantity   int                    `json:"stockQuantity"`
	InStock         *bool                  `json:"inStock,omitempty"`
}

// EffectivePrice is the price a unit of this line actually costs: the
// discounted price when one is set, the original price otherwise.
func (l *Line) EffectivePrice() decimal.Decimal {
	if l.DiscountedPrice.IsPositive() {
		return l.DiscountedPrice
	}
	return l.OriginalPrice
}

// VariantKey canonicalizes the line's variant selection so two lines
// for the same product and options compare equal regardless of the
// shape the selection arrived in.
func (l *Line) VariantKey() string {
	return l.Variant.Key()
}

func (l *Line) clone() *Line {
	dup := *l
	if l.Variant != nil {
		dup.Variant = make(types.VariantSelectors, len(l.Variant))
		for k, v := range l.Variant {
			dup.Variant[k] = v
		}
	}
	if l.InStock != nil {
		v := *l.InStock
		dup.InStock = &v
	}
	return &dup
}
