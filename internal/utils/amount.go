package utils

import (
	"encoding/json"
	"strconv"
)

// CoerceAmount turns a loosely typed amount value into a float64. Clients
// have historically sent numbers, numeric strings, nulls and garbage in the
// same field; anything that is not a number counts as zero so revenue sums
// stay defined.
func CoerceAmount(v interface{}) float64 {
	switch t := v.(type) {
	case nil:
		return 0
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// CoerceAmountJSON decodes a raw JSON value (as received in a request body)
// and coerces it. A nil raw value means the field was absent.
func CoerceAmountJSON(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0
	}
	return CoerceAmount(v)
}
