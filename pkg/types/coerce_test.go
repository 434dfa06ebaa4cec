package types

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestSafeDecimal(t *testing.T) {
	t.Parallel()

	def := decimal.Zero
	cases := []struct {
		name string
		in   any
		want string
	}{
		{"float", 90.5, "90.5"},
		{"int", 12, "12"},
		{"numeric string", " 19.99 ", "19.99"},
		{"json number", json.Number("180"), "180"},
		{"garbage string", "abc", "0"},
		{"empty string", "", "0"},
		{"nil", nil, "0"},
		{"nan", math.NaN(), "0"},
		{"inf", math.Inf(1), "0"},
		{"bool", true, "0"},
	}
	for _, tc := range cases {
		if got := SafeDecimal(tc.in, def); got.String() != tc.want {
			t.Fatalf("%s: got %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestSafeInt(t *testing.T) {
	t.Parallel()

	if got := SafeInt(float64(3), 1); got != 3 {
		t.Fatalf("float: got %d", got)
	}
	if got := SafeInt("7", 1); got != 7 {
		t.Fatalf("string: got %d", got)
	}
	if got := SafeInt("x", 1); got != 1 {
		t.Fatalf("garbage should default, got %d", got)
	}
	if got := SafeInt(math.NaN(), 1); got != 1 {
		t.Fatalf("NaN should default, got %d", got)
	}
	if got := SafeInt(nil, 5); got != 5 {
		t.Fatalf("nil should default, got %d", got)
	}
}

func TestSafeStringNormalizesNumericIDs(t *testing.T) {
	t.Parallel()

	if got := SafeString(float64(42)); got != "42" {
		t.Fatalf("numeric id: got %q", got)
	}
	if got := SafeString(" p1 "); got != "p1" {
		t.Fatalf("string id: got %q", got)
	}
	if got := SafeString(map[string]any{}); got != "" {
		t.Fatalf("unknown shape should be empty, got %q", got)
	}
}

func TestSafeBoolPtr(t *testing.T) {
	t.Parallel()

	if got := SafeBoolPtr(false); got == nil || *got {
		t.Fatalf("expected false, got %v", got)
	}
	if got := SafeBoolPtr("true"); got == nil || !*got {
		t.Fatalf("expected true, got %v", got)
	}
	if got := SafeBoolPtr(1.0); got != nil {
		t.Fatalf("numbers should map to nil, got %v", got)
	}
}
