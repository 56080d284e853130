package math

import (
	"fmt"
	gomath "math"

	"github.com/shopspring/decimal"
)

// FromFloat converts a presentation-layer float into a decimal,
// rejecting NaN and infinities.
func FromFloat(name string, f float64) (decimal.Decimal, error) {
	if gomath.IsNaN(f) || gomath.IsInf(f, 0) {
		return decimal.Decimal{}, fmt.Errorf("%w: %s is not finite", ErrInvalidInput, name)
	}
	return decimal.NewFromFloat(f), nil
}

// FromString parses a decimal string, wrapping parse failures as invalid input.
func FromString(name, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %s: %v", ErrInvalidInput, name, err)
	}
	return d, nil
}
