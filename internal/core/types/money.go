// Package types provides common value types shared by the domain packages.
package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits kept for prices and totals.
const MoneyScale = 2

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// NewMoneyFromString creates a Money value from a dot-separated decimal string.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// ParseMoneyLoose parses prices coming from external parsers: surrounding spaces are
// dropped, a comma is accepted as the decimal separator and an empty string means zero.
// ok is false when the input could not be read as a number.
func ParseMoneyLoose(s string) (value Money, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, true
	}
	s = strings.ReplaceAll(s, " ", "")
	s = strings.Replace(s, ",", ".", 1)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// LineTotal returns quantity x unit price rounded to MoneyScale.
func LineTotal(quantity int, unitPrice Money) Money {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(MoneyScale)
}

// OptionalLineTotal returns nil when the unit price is unknown.
func OptionalLineTotal(quantity int, unitPrice *Money) *Money {
	if unitPrice == nil {
		return nil
	}
	total := LineTotal(quantity, *unitPrice)
	return &total
}
