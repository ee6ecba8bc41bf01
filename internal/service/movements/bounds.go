package movements

import "github.com/shopspring/decimal"

// Amount limits. Quantities and prices are stored as Decimal128, which holds
// 34 significant digits; 20 integer digits plus PriceScale decimals leaves room
// for the weighted-average arithmetic.
const (
	maxSignificantDigits = 34
	maxIntegerDigits     = 20
)

// inBounds reports whether d fits the stored amount format: at most
// maxIntegerDigits before the point and PriceScale after it. Only the
// exponent and coefficient length are inspected before any arithmetic, so
// inputs like 1e20000000 are refused without being expanded.
func inBounds(d decimal.Decimal) bool {
	digits := len(d.Coefficient().String())
	if d.IsNegative() {
		digits--
	}
	if digits > maxSignificantDigits {
		return false
	}

	exp := d.Exponent()
	if exp > maxSignificantDigits || exp < -maxSignificantDigits {
		return false
	}
	if digits+int(exp) > maxIntegerDigits {
		return false
	}
	if exp < -PriceScale && !d.Equal(d.Truncate(PriceScale)) {
		return false
	}
	return true
}
