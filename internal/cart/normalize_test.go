package cart

import (
	"encoding/json"
	"math"
	"testing"
)

func TestNormalizeLineResolvesIdentity(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  map[string]any
		want string
	}{
		{"product id field", map[string]any{"productId": "p1"}, "p1"},
		{"bare id is the product", map[string]any{"id": "p2"}, "p2"},
		{"numeric id stringified", map[string]any{"id": 42}, "42"},
		{"nested product object", map[string]any{"product": map[string]any{"id": "p3"}}, "p3"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			line, ok := NormalizeLine(tc.raw)
			if !ok {
				t.Fatal("expected a line")
			}
			if line.ProductID != tc.want {
				t.Fatalf("product id = %q, want %q", line.ProductID, tc.want)
			}
			if line.ID == "" {
				t.Fatal("line must get an id")
			}
		})
	}
}

func TestNormalizeLineDropsUnidentifiableItems(t *testing.T) {
	t.Parallel()

	for _, raw := range []map[string]any{
		nil,
		{},
		{"quantity": 3, "price": 10},
		{"id": "   "},
	} {
		if _, ok := NormalizeLine(raw); ok {
			t.Fatalf("expected %v to be dropped", raw)
		}
	}
}

func TestNormalizeLineSanitizesNumbers(t *testing.T) {
	t.Parallel()

	line, ok := NormalizeLine(map[string]any{
		"id":       "p1",
		"quantity": -4,
		"price":    math.NaN(),
	})
	if !ok {
		t.Fatal("expected a line")
	}
	if line.Quantity != 1 {
		t.Fatalf("quantity = %d, want clamp to 1", line.Quantity)
	}
	if !line.OriginalPrice.IsZero() {
		t.Fatalf("non-finite price must fall back to zero, got %s", line.OriginalPrice)
	}
}

func TestNormalizeLineTakesSnapshotFromNestedProduct(t *testing.T) {
	t.Parallel()

	line, ok := NormalizeLine(map[string]any{
		"productId": "p1",
		"quantity":  2,
		"product": map[string]any{
			"title":         "Oak Desk",
			"price":         "349.99",
			"stockQuantity": 7,
			"inStock":       true,
		},
	})
	if !ok {
		t.Fatal("expected a line")
	}
	if line.Title != "Oak Desk" || line.OriginalPrice.String() != "349.99" || line.StockQuantity != 7 {
		t.Fatalf("snapshot not lifted from product: %+v", line)
	}
	if line.InStock == nil || !*line.InStock {
		t.Fatalf("inStock not lifted, got %v", line.InStock)
	}
}

func TestNormalizeRoundTripIsStable(t *testing.T) {
	t.Parallel()

	original, ok := NormalizeLine(map[string]any{
		"id":       "p1",
		"quantity": 2,
		"price":    120,
		"variant":  map[string]any{"Color": " Walnut "},
	})
	if !ok {
		t.Fatal("expected a line")
	}

	encoded, err := json.Marshal([]*Line{original})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var rawItems []json.RawMessage
	if err := json.Unmarshal(encoded, &rawItems); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	reloaded := NormalizeLines(rawItems)
	if len(reloaded) != 1 {
		t.Fatalf("expected 1 line, got %d", len(reloaded))
	}
	got := reloaded[0]
	if got.ID != original.ID {
		t.Fatalf("line id changed across reload: %q vs %q", got.ID, original.ID)
	}
	if got.ProductID != original.ProductID || got.Quantity != original.Quantity {
		t.Fatalf("line drifted across reload: %+v", got)
	}
	if got.VariantKey() != "color=walnut" {
		t.Fatalf("variant key = %q", got.VariantKey())
	}
}

func TestNormalizeLinesSkipsCorruptEntries(t *testing.T) {
	t.Parallel()

	lines := NormalizeLines([]json.RawMessage{
		json.RawMessage(`{"productId":"p1","quantity":1}`),
		json.RawMessage(`not json`),
		json.RawMessage(`[1,2,3]`),
	})
	if len(lines) != 1 || lines[0].ProductID != "p1" {
		t.Fatalf("expected only the valid entry, got %+v", lines)
	}
}
