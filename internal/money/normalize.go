// Package money normalizes heterogeneous numeric representations coming from
// document extraction and form submissions into exact decimals. All monetary
// and quantity arithmetic in the system goes through shopspring decimals;
// floating point is never used because invoice totals must reconcile exactly
// with extracted values.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ToDecimal parses a raw value into a decimal, returning def on any parse
// failure. It never returns an error: extraction output is unreliable by
// nature and callers supply the fallback that keeps the pipeline moving
// (commonly zero or one).
//
// Currency thousands separators (commas) and a trailing percent sign are
// stripped before parsing.
func ToDecimal(raw interface{}, def decimal.Decimal) decimal.Decimal {
	switch v := raw.(type) {
	case nil:
		return def
	case decimal.Decimal:
		return v
	case string:
		return parseString(v, def)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	case float64:
		return decimal.NewFromFloat(v)
	default:
		return def
	}
}

func parseString(s string, def decimal.Decimal) decimal.Decimal {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return def
	}
	cleaned = strings.TrimSuffix(cleaned, "%")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return def
	}
	return d
}

// Amount parses a monetary amount string, defaulting to zero.
func Amount(raw string) decimal.Decimal {
	return ToDecimal(raw, decimal.Zero)
}

// Quantity parses a quantity, flooring at one: zero or garbage quantities
// from extraction still represent at least one unit.
func Quantity(raw string) decimal.Decimal {
	one := decimal.NewFromInt(1)
	q := ToDecimal(raw, one)
	if q.LessThanOrEqual(decimal.Zero) {
		return one
	}
	return q
}

// Percent parses a percentage value such as "18%" or "18", defaulting to
// zero.
func Percent(raw string) decimal.Decimal {
	return ToDecimal(raw, decimal.Zero)
}
