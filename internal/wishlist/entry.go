// Package wishlist holds the saved-for-later list. Like the cart it is
// memory-first: the blob store and the commerce API follow behind.
package wishlist

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/angelmondragon/havenwood-client/pkg/types"
	"github.com/shopspring/decimal"
)

// Entry is one saved product.
type Entry struct {
	ProductID       string          `json:"productId"`
	Title           string          `json:"title,omitempty"`
	Image           string          `json:"image,omitempty"`
	OriginalPrice   decimal.Decimal `json:"originalPrice"`
	DiscountedPrice decimal.Decimal `json:"discountedPrice"`
	InStock         *bool           `json:"inStock,omitempty"`
	AddedAt         time.Time       `json:"addedAt"`
}

func (e *Entry) clone() *Entry {
	dup := *e
	if e.InStock != nil {
		v := *e.InStock
		dup.InStock = &v
	}
	return &dup
}

// NormalizeEntry rebuilds an Entry from a loosely shaped item. Items
// with no resolvable product id are dropped.
func NormalizeEntry(raw map[string]any) (*Entry, bool) {
	if raw == nil {
		return nil, false
	}

	product, _ := raw["product"].(map[string]any)

	productID := types.SafeString(firstOf(raw, "productId", "id"))
	if productID == "" && product != nil {
		productID = types.SafeString(firstOf(product, "id", "productId"))
	}
	if productID == "" {
		return nil, false
	}

	entry := &Entry{
		ProductID:       productID,
		Title:           types.SafeString(firstOf(raw, "title", "name")),
		Image:           types.SafeString(firstOf(raw, "image", "imageUrl", "thumbnail")),
		OriginalPrice:   types.SafeDecimal(firstOf(raw, "originalPrice", "price"), decimal.Zero),
		DiscountedPrice: types.SafeDecimal(raw["discountedPrice"], decimal.Zero),
		InStock:         types.SafeBoolPtr(raw["inStock"]),
	}
	if product != nil {
		if entry.Title == "" {
			entry.Title = types.SafeString(firstOf(product, "title", "name"))
		}
		if entry.Image == "" {
			entry.Image = types.SafeString(firstOf(product, "image", "imageUrl", "thumbnail"))
		}
		if entry.OriginalPrice.IsZero() {
			entry.OriginalPrice = types.SafeDecimal(firstOf(product, "originalPrice", "price"), decimal.Zero)
		}
		if entry.DiscountedPrice.IsZero() {
			entry.DiscountedPrice = types.SafeDecimal(product["discountedPrice"], decimal.Zero)
		}
		if entry.InStock == nil {
			entry.InStock = types.SafeBoolPtr(product["inStock"])
		}
	}

	if addedAt := types.SafeString(raw["addedAt"]); addedAt != "" {
		if parsed, err := time.Parse(time.RFC3339Nano, addedAt); err == nil {
			entry.AddedAt = parsed
		}
	}
	return entry, true
}

// NormalizeEntries decodes a persisted blob slice, dropping corrupt
// and duplicate entries.
func NormalizeEntries(raw []json.RawMessage) []*Entry {
	entries := make([]*Entry, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, item := range raw {
		decoded, ok := decodeItem(item)
		if !ok {
			continue
		}
		entry, ok := NormalizeEntry(decoded)
		if !ok || seen[entry.ProductID] {
			continue
		}
		seen[entry.ProductID] = true
		entries = append(entries, entry)
	}
	return entries
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

func firstOf(raw map[string]any, keys ...string) any {
	for _, key := range keys {
		if val, ok := raw[key]; ok && val != nil {
			return val
		}
	}
	return nil
}
