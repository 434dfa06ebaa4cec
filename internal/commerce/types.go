package commerce

import (
	"github.com/angelmondragon/havenwood-client/pkg/types"
	"github.com/shopspring/decimal"
)

// envelope is the wire shape every commerce API response follows.
type envelope struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// CartItemPayload is the line shape pushed to the remote cart.
type CartItemPayload struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// WishlistItemPayload is the entry shape pushed to the remote wishlist.
type WishlistItemPayload struct {
	ProductID string `json:"productId"`
}

// ProductVariant is one selectable option (a color or size) which may carry
// its own stock figures.
type ProductVariant struct {
	Name          string
	StockQuantity int
	InStock       *bool
}

// Product is the normalized view of a remote product detail payload. Raw
// keeps the original fields so callers can snapshot them losslessly.
type Product struct {
	ID              string
	Title           string
	Image           string
	OriginalPrice   decimal.Decimal
	DiscountedPrice decimal.Decimal
	StockQuantity   int
	InStock         *bool
	ColorVariants   []ProductVariant
	SizeVariants    []ProductVariant
	Raw             map[string]any
}

// EffectivePrice returns the discounted price when set, else the original.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.DiscountedPrice.IsPositive() {
		return p.DiscountedPrice
	}
	return p.OriginalPrice
}

// StockFor resolves the stock figures that govern the given variant
//// selection: a selected color/size variant with its own stock data wins
// over the base product.
func (p *Product) StockFor(selection map[string]string) (int, *bool) {
	qty, inStock := p.StockQuantity, p.InStock
	if len(selection) == 0 {
		return qty, inStock
	}
	if name, ok := selection["color"]; ok {
		if v := findVariant(p.ColorVariants, name); v != nil {
			qty, inStock = variantStock(v, qty, inStock)
		}
	}
	if name, ok := selection["size"]; ok {
		if v := findVariant(p.SizeVariants, name); v != nil {
			qty, inStock = variantStock(v, qty, inStock)
		}
	}
	return qty, inStock
}

func variantStock(v *ProductVariant, baseQty int, baseInStock *bool) (int, *bool) {
	qty, inStock := baseQty, baseInStock
	if v.StockQuantity > 0 {
		qty = v.StockQuantity
	}
	if v.InStock != nil {
		inStock = v.InStock
	}
	return qty, inStock
}

func findVariant(variants []ProductVariant, name string) *ProductVariant {
	want := types.SelectorValue(name)
	if want == "" {
		return nil
	}
	for i := range variants {
		if types.SelectorValue(variants[i].Name) == want {
			return &variants[i]
		}
	}
	return nil
}

// parseProduct lifts a loosely shaped product payload into a Product.
func parseProduct(raw map[string]any) *Product {
	if raw == nil {
		return nil
	}
	product := &Product{
		ID:              types.SafeString(firstOf(raw, "id", "productId", "_id")),
		Title:           types.SafeString(firstOf(raw, "title", "name")),
		Image:           types.SafeString(firstOf(raw, "image", "imageUrl", "thumbnail")),
		OriginalPrice:   types.SafeDecimal(firstOf(raw, "originalPrice", "price"), decimal.Zero),
		DiscountedPrice: types.SafeDecimal(raw["discountedPrice"], decimal.Zero),
		StockQuantity:   types.SafeInt(raw["stockQuantity"], 0),
		InStock:         types.SafeBoolPtr(raw["inStock"]),
		ColorVariants:   parseVariants(raw["colorVariants"]),
		SizeVariants:    parseVariants(raw["sizeVariants"]),
		Raw:             raw,
	}
	return product
}

func parseVariants(raw any) []ProductVariant {
	list, ok := raw.([]any)
	if !ok || len(list) == 0 {
		return nil
	}
	variants := make([]ProductVariant, 0, len(list))
	for _, entry := range list {
		switch val := entry.(type) {
		case string:
			variants = append(variants, ProductVariant{Name: val})
		case map[string]any:
			name := types.SafeString(firstOf(val, "name", "value", "label"))
			if name == "" {
				continue
			}
			variants = append(variants, ProductVariant{
				Name:          name,
				StockQuantity: types.SafeInt(val["stockQuantity"], 0),
				InStock:       types.SafeBoolPtr(val["inStock"]),
			})
		}
	}
	if len(variants) == 0 {
		return nil
	}
	return variants
}

func firstOf(raw map[string]any, keys ...string) any {
	for _, key := range keys {
		if val, ok := raw[key]; ok && val != nil {
			return val
		}
	}
	return nil
}
