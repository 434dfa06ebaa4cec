package cart

import (
	"bytes"
	"encoding/json"

	"github.com/angelmondragon/havenwood-client/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NormalizeLine rebuilds a Line from a loosely shaped item, as found
// in persisted blobs and API responses. Identity comes from productId,
// id, or a nested product object, in that order of preference; numeric
// ids are stringified so "42" and 42 name the same product. Items with
// no resolvable product id are dropped. Normalizing an already clean
// line is a no-op.
func NormalizeLine(raw map[string]any) (*Line, bool) {
	if raw == nil {
		return nil, false
	}

	product, _ := raw["product"].(map[string]any)

	// When productId is present, id names the line itself. Otherwise
	// id is the product id and the line gets a fresh identifier.
	productID := types.SafeString(raw["productId"])
	lineID := ""
	if productID != "" {
		lineID = types.SafeString(raw["id"])
	} else {
		productID = types.SafeString(raw["id"])
	}
	if productID == "" && product != nil {
		productID = types.SafeString(firstOf(product, "id", "productId"))
	}
	if productID == "" {
		return nil, false
	}

	quantity := types.SafeInt(raw["quantity"], 1)
	if quantity < 1 {
		quantity = 1
	}

	line := &Line{
		ID:              lineID,
		ProductID:       productID,
		Title:           types.SafeString(firstOf(raw, "title", "name")),
		Image:           types.SafeString(firstOf(raw, "image", "imageUrl", "thumbnail")),
		Quantity:        quantity,
		Variant:         variantFrom(raw),
		OriginalPrice:   types.SafeDecimal(firstOf(raw, "originalPrice", "price"), decimal.Zero),
		DiscountedPrice: types.SafeDecimal(raw["discountedPrice"], decimal.Zero),
		StockQuantity:   types.SafeInt(raw["stockQuantity"], 0),
		InStock:         types.SafeBoolPtr(raw["inStock"]),
	}

	if product != nil {
		if line.Title == "" {
			line.Title = types.SafeString(firstOf(product, "title", "name"))
		}
		if line.Image == "" {
			line.Image = types.SafeString(firstOf(product, "image", "imageUrl", "thumbnail"))
		}
		if line.OriginalPrice.IsZero() {
			line.OriginalPrice = types.SafeDecimal(firstOf(product, "originalPrice", "price"), decimal.Zero)
		}
		if line.DiscountedPrice.IsZero() {
			line.DiscountedPrice = types.SafeDecimal(product["discountedPrice"], decimal.Zero)
		}
		if line.StockQuantity == 0 {
			line.StockQuantity = types.SafeInt(product["stockQuantity"], 0)
		}
		if line.InStock == nil {
			line.InStock = types.SafeBoolPtr(product["inStock"])
		}
	}

	if line.ID == "" {
		line.ID = uuid.NewString()
	}
	return line, true
}

// NormalizeLines decodes a persisted blob slice, dropping entries that
// cannot be rebuilt into lines. Corrupt entries never fail the load.
func NormalizeLines(raw []json.RawMessage) []*Line {
	lines := make([]*Line, 0, len(raw))
	for _, item := range raw {
		decoded, ok := decodeItem(item)
		if !ok {
			continue
		}
		if line, ok := NormalizeLine(decoded); ok {
			lines = append(lines, line)
		}
	}
	return lines
}

func decodeItem(raw json.RawMessage) (map[string]any, bool) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var decoded map[string]any
	if err := decoder.Decode(&decoded); err != nil {
		return nil, false
	}
	return decoded, true
}

func variantFrom(raw map[string]any) types.VariantSelectors {
	for _, key := range []string{"variant", "selectedVariant", "variants", "options"} {
		if val, ok := raw[key].(map[string]any); ok && len(val) > 0 {
			return types.VariantSelectors(val)
		}
	}
	return nil
}

func firstOf(raw map[string]any, keys ...string) any {
	for _, key := range keys {
		if val, ok := raw[key]; ok && val != nil {
			return val
		}
	}
	return nil
}
