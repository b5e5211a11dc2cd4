package payments

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseMoney normalizes a caller-supplied monetary value. Numbers and numeric
// strings are accepted; the value must be finite and >= 0 and is rounded to
// two decimals. Anything else is rejected, never coerced to zero.
func ParseMoney(v any) (float64, bool) {
	var d decimal.Decimal

	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, false
		}
		d = decimal.NewFromFloat(x)
	case float32:
		return ParseMoney(float64(x))
	case int:
		d = decimal.NewFromInt(int64(x))
	case int64:
		d = decimal.NewFromInt(x)
	case json.Number:
		return ParseMoney(string(x))
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		var err error
		d, err = decimal.NewFromString(s)
		if err != nil {
			return 0, false
		}
	default:
		return 0, false
	}

	if d.IsNegative() {
		return 0, false
	}
	return d.Round(2).InexactFloat64(), true
}
