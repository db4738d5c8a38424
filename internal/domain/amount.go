package domain

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Bounds on amounts accepted from outside the ledger. Decimal arithmetic
// rescales operands to a common exponent, so an unbounded exponent makes a
// single Add or Cmp allocate a 10^N coefficient.
const (
	MaxAmountScale         = 18 // digits after the decimal point
	MaxAmountIntegerDigits = 20 // digits before the decimal point
)

// CheckAmount returns a *ValidationError naming field if d has more than
// MaxAmountScale fractional digits or more than MaxAmountIntegerDigits
// integer digits.
func CheckAmount(field string, d decimal.Decimal) error {
	exp := d.Exponent()
	if exp < -MaxAmountScale {
		return &ValidationError{Message: fmt.Sprintf("%s must have at most %d decimal places", field, MaxAmountScale)}
	}
	if exp > MaxAmountIntegerDigits || d.NumDigits()+int(exp) > MaxAmountIntegerDigits {
		return &ValidationError{Message: fmt.Sprintf("%s must have at most %d integer digits", field, MaxAmountIntegerDigits)}
	}
	return nil
}

// FormatUSD renders an amount as a dollar string such as "$10,000.00".
// Sub-cent digits are rounded for display only; ledger amounts keep full
// precision.
func FormatUSD(d decimal.Decimal) string {
	return money.New(d.Shift(2).Round(0).IntPart(), money.USD).Display()
}
