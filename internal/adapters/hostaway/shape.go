package hostaway

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// lookup walks a dot path through nested JSON objects.
func lookup(v any, path string) (any, bool) {
	cur := v
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[part]
		if !ok || cur == nil {
			return nil, false
		}
	}
	return cur, true
}

// firstPath returns the value at the first path that is present, in priority order.
func firstPath(v any, paths ...string) (any, bool) {
	for _, p := range paths {
		if x, ok := lookup(v, p); ok {
			return x, true
		}
	}
	return nil, false
}

// listingsFrom resolves the listing collection: result, then data, then a bare array.
func listingsFrom(v any) ([]map[string]any, bool) {
	var arr []any
	if x, ok := lookup(v, "result"); ok {
		arr, ok = x.([]any)
		if !ok {
			return nil, false
		}
	} else if x, ok := lookup(v, "data"); ok {
		arr, ok = x.([]any)
		if !ok {
			return nil, false
		}
	} else if a, ok := v.([]any); ok {
		arr = a
	} else {
		return nil, false
	}

	out := make([]map[string]any, 0, len(arr))
	for _, it := range arr {
		// non-object entries surface later as per-record normalization errors
		m, _ := it.(map[string]any)
		out = append(out, m)
	}
	return out, true
}

// totalPriceFrom resolves result.totalPrice, then totalPrice, then data.totalPrice.
func totalPriceFrom(v any) (decimal.Decimal, bool) {
	for _, p := range []string{"result.totalPrice", "totalPrice", "data.totalPrice"} {
		x, ok := lookup(v, p)
		if !ok {
			continue
		}
		if d, ok := toDecimal(x); ok {
			return d, true
		}
	}
	return decimal.Zero, false
}

// reservationIDFrom resolves result.id, then id.
func reservationIDFrom(v any) (string, bool) {
	x, ok := firstPath(v, "result.id", "id")
	if !ok {
		return "", false
	}
	switch t := x.(type) {
	case json.Number:
		return t.String(), true
	case string:
		return t, t != ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	}
	return "", false
}

func toDecimal(x any) (decimal.Decimal, bool) {
	switch t := x.(type) {
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(t), true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(t))
		return d, err == nil
	}
	return decimal.Zero, false
}
