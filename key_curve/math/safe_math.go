package math

import (
	"errors"
	"fmt"

	"github.com/krazyTry/keycurve-go/key_curve/shared"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidInput              = errors.New("invalid input")
	ErrInvalidCurveConfiguration = errors.New("invalid curve configuration")
)

var half = decimal.RequireFromString("0.5")

// Div divides at shared.Precision places and refuses a zero denominator.
func Div(a, b decimal.Decimal) (decimal.Decimal, error) {
	if b.IsZero() {
		return decimal.Decimal{}, errors.New("SafeMath: division by zero")
	}
	return a.DivRound(b, shared.Precision), nil
}

// RequireNonNegative rejects negative values, naming the offending field.
func RequireNonNegative(name string, v decimal.Decimal) error {
	if v.IsNegative() {
		return fmt.Errorf("%w: %s must be >= 0, got %s", ErrInvalidInput, name, v)
	}
	return nil
}

// ValidateLinear checks the parameters of a linear curve.
func ValidateLinear(basePrice, slope decimal.Decimal) error {
	if !basePrice.IsPositive() {
		return fmt.Errorf("%w: base price must be > 0, got %s", ErrInvalidCurveConfiguration, basePrice)
	}
	if slope.IsNegative() {
		return fmt.Errorf("%w: slope must be >= 0, got %s", ErrInvalidCurveConfiguration, slope)
	}
	return nil
}

// ValidateSellTax checks that a sell tax leaves the seller something.
func ValidateSellTax(sellTax decimal.Decimal) error {
	if sellTax.IsNegative() || sellTax.GreaterThanOrEqual(shared.N1) {
		return fmt.Errorf("%w: sell tax must be in [0, 1), got %s", ErrInvalidCurveConfiguration, sellTax)
	}
	return nil
}
