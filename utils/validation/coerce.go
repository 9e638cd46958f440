package validation

import (
	"encoding/json"
	"strconv"
	"strings"
)

// CoerceScore turns a raw score field from a decoded JSON body or form
// into an integer. Data entry here is deliberately permissive: missing,
// empty or non-numeric input becomes 0 instead of an error. Fractional
// input is truncated. Negative values pass through untouched.
func CoerceScore(v interface{}) int {
	switch val := v.(type) {
	case nil:
		return 0
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		return int(val)
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return int(i)
		}
		if f, err := val.Float64(); err == nil {
			return int(f)
		}
		return 0
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0
		}
		if i, err := strconv.Atoi(s); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(f)
		}
		return 0
	default:
		return 0
	}
}
