package money

import (
	"github.com/shopspring/decimal"
)

// Amounts are stored as integer cents. Decimal values only appear at the
// edges, when parsing request payloads or computing percentages.

var hundred = decimal.NewFromInt(100)

// ToCents converts a decimal currency amount into integer cents,
// rounding half-up at the second decimal place.
func ToCents(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// FromCents converts integer cents back into a two-place decimal amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(hundred)
}

// PercentOf computes percent% of the given amount in cents, rounding half-up.
func PercentOf(amountCents int64, percent decimal.Decimal) int64 {
	return decimal.NewFromInt(amountCents).
		Mul(percent).
		Div(hundred).
		Round(0).
		IntPart()
}

// ClampNonNegative floors an amount at zero.
func ClampNonNegative(cents int64) int64 {
	if cents < 0 {
		return 0
	}
	return cents
}

// Format renders cents as a plain two-place decimal string, e.g. 1550 -> "15.50".
func Format(cents int64) string {
	return FromCents(cents).StringFixed(2)
}
