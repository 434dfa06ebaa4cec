package types

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// VariantSelectors captures the option choices (color, size, finish, ...)
// that distinguish cart lines for the same product. Values arrive in
// heterogeneous shapes: plain strings, numbers, or option objects such as
// {"name": "Walnut", "stockQuantity": 4}. All comparisons must go through
// Key so a string selector and an object selector for the same option
// compare equal.
type VariantSelectors map[string]any

// Canonical returns a copy with every value reduced to its normalized
// string form and empty selections dropped.
func (v VariantSelectors) Canonical() map[string]string {
	if len(v) == 0 {
		return nil
	}
	out := make(map[string]string, len(v))
	for name, raw := range v {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		val := SelectorValue(raw)
		if val == "" {
			continue
		}
		out[key] = val
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Key produces the normalized variant key used for line identity, e.g.
// "color=walnut|size=king". An empty selection yields "".
func (v VariantSelectors) Key() string {
	canon := v.Canonical()
	if len(canon) == 0 {
		return ""
	}
	names := make([]string, 0, len(canon))
	for name := range canon {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"="+canon[name])
	}
	return strings.Join(parts, "|")
}

// SelectorValue reduces a duck-typed selector value to a comparable string.
func SelectorValue(raw any) string {
	switch val := raw.(type) {
	case nil:
		return ""
	case string:
		return strings.ToLower(strings.TrimSpace(val))
	case map[string]any:
		for _, field := range []string{"name", "value", "label"} {
			if nested, ok := val[field]; ok {
				if s := SelectorValue(nested); s != "" {
					return s
				}
			}
		}
		return ""
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case fmt.Stringer:
		return strings.ToLower(strings.TrimSpace(val.String()))
	default:
		return strings.ToLower(strings.TrimSpace(fmt.Sprintf("%v", val)))
	}
}
