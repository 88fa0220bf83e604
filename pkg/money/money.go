// Package money converts between the engine's internal integer-cent
// representation and the decimal amounts used at the API and storage
// boundary. All settlement arithmetic happens in int64 cents; decimals
// exist only on the way in and out.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// centFactor shifts a decimal currency amount into minor units.
var centFactor = decimal.NewFromInt(100)

// ToCents converts a decimal currency amount into integer cents.
// Amounts with more than two fractional digits are rejected rather than
// silently rounded, since upstream validation promises cent granularity.
func ToCents(d decimal.Decimal) (int64, error) {
	shifted := d.Mul(centFactor)
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("amount %s has sub-cent precision", d.String())
	}
	return shifted.IntPart(), nil
}

// FromCents converts integer cents back to a decimal currency amount
// with exactly two fractional digits.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// Abs returns the absolute value of a cent amount.
func Abs(cents int64) int64 {
	if cents < 0 {
		return -cents
	}
	return cents
}
