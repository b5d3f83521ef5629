package sqlite

import "github.com/shopspring/decimal"

// Decimals are stored as TEXT so they round-trip exactly; REAL columns would
// reintroduce the floating-point drift the money package exists to prevent.

func decFromString(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
