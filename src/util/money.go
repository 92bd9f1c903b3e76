package util

import (
	"errors"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyAmount   = errors.New("amount is empty")
	ErrInvalidAmount = errors.New("amount is not a number")
	ErrAmountTooBig  = errors.New("amount is out of range")
	ErrTooPrecise    = errors.New("amount has too many decimal places")
)

// MaxScale is the number of decimal places an amount may carry.
const MaxScale = 12

var maxAmount = decimal.New(1, 12)

// ParseAmount parses a user-entered money value. Any finite real number is
// accepted, including negative values and exponent notation, as long as it
// stays below 1e12 and has at most MaxScale decimal places.
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, ErrEmptyAmount
	}
	// ".5" style input is normalised to "0.5"
	if strings.HasPrefix(raw, ".") || strings.HasPrefix(raw, "-.") {
		raw = strings.Replace(raw, ".", "0.", 1)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.Sign() == 0 {
		return decimal.Zero, nil
	}
	if err := CheckAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// CheckAmount reports whether d is a storable amount. The exponent is checked
// before any arithmetic: comparing values rescales them to a common exponent.
func CheckAmount(d decimal.Decimal) error {
	if d.Sign() == 0 {
		return nil
	}
	if d.Exponent() < -MaxScale {
		return ErrTooPrecise
	}
	if d.Exponent() > 12 || d.Abs().GreaterThanOrEqual(maxAmount) {
		return ErrAmountTooBig
	}
	return nil
}

// AmountFromRat converts an exact rational amount to a decimal. It fails when
// r has no terminating expansion within MaxScale places.
func AmountFromRat(r *big.Rat) (decimal.Decimal, error) {
	for scale := 0; scale <= MaxScale; scale++ {
		d, err := decimal.NewFromString(r.FloatString(scale))
		if err != nil {
			return decimal.Zero, ErrInvalidAmount
		}
		if d.Rat().Cmp(r) == 0 {
			return d, CheckAmount(d)
		}
	}
	return decimal.Zero, ErrTooPrecise
}

// FormatMoney renders d with two decimal places and a dollar sign.
func FormatMoney(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Abs().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}
