package services

import (
	"math"
	"strconv"
	"strings"
)

// toNumber interprets a client-supplied numeric field, which may arrive
// as a JSON number or a numeric string. It returns the parsed value,
// whether a value was present at all (nil and blank strings count as
// absent), and whether the present value was a finite number.
func toNumber(value interface{}) (num float64, present bool, ok bool) {
	switch v := value.(type) {
	case nil:
		return 0, false, true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, true, false
		}
		return v, true, true
	case int:
		return float64(v), true, true
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, false, true
		}
		// ParseFloat accepts "NaN" and "Inf" spellings; neither is a
		// usable quantity or price.
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, true, false
		}
		return f, true, true
	default:
		return 0, true, false
	}
}
