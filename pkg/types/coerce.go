package types

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Coercion helpers for the loosely shaped records that arrive from the
// remote API, the persisted blobs, and the storefront UI. Numeric-looking
// fields come in as numbers, numeric strings, json.Number, or garbage; the
// rule everywhere is the same: anything unparseable collapses to the
// caller's default so a malformed record can never poison derived totals.

// SafeDecimal coerces raw to a decimal, falling back to def.
func SafeDecimal(raw any, def decimal.Decimal) decimal.Decimal {
	switch val := raw.(type) {
	case nil:
		return def
	case decimal.Decimal:
		return val
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return def
		}
		return decimal.NewFromFloat(val)
	case float32:
		return SafeDecimal(float64(val), def)
	case int:
		return decimal.NewFromInt(int64(val))
	case int64:
		return decimal.NewFromInt(val)
	case json.Number:
		if d, err := decimal.NewFromString(val.String()); err == nil {
			return d
		}
		return def
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return def
		}
		if d, err := decimal.NewFromString(trimmed); err == nil {
			return d
		}
		return def
	default:
		return def
	}
}

// SafeInt coerces raw to an int, falling back to def.
func SafeInt(raw any, def int) int {
	switch val := raw.(type) {
	case nil:
		return def
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return def
		}
		return int(val)
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return int(i)
		}
		if f, err := val.Float64(); err == nil && !math.IsNaN(f) {
			return int(f)
		}
		return def
	case string:
		d := SafeDecimal(val, decimal.NewFromInt(int64(def)))
		return int(d.IntPart())
	default:
		return def
	}
}

// SafeString coerces raw identifiers to their trimmed string form. Numbers
// stringify so numeric and string ids for the same product compare equal.
func SafeString(raw any) string {
	switch val := raw.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case json.Number:
		return val.String()
	case float64:
		return decimal.NewFromFloat(val).String()
	case int:
		return decimal.NewFromInt(int64(val)).String()
	case int64:
		return decimal.NewFromInt(val).String()
	default:
		return ""
	}
}

// SafeBoolPtr interprets raw as an optional boolean; unknown shapes are nil.
func SafeBoolPtr(raw any) *bool {
	switch val := raw.(type) {
	case bool:
		b := val
		return &b
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true":
			b := true
			return &b
		case "false":
			b := false
			return &b
		}
		return nil
	default:
		return nil
	}
}
