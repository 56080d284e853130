package key_curve

import (
	"fmt"

	"github.com/krazyTry/keycurve-go/decimal_math"
	"github.com/krazyTry/keycurve-go/key_curve/math"
	"github.com/krazyTry/keycurve-go/key_curve/shared"
	"github.com/shopspring/decimal"
)

// Curve is a non-decreasing price function of supply.
type Curve interface {
	// Price is the unit price at supply.
	Price(supply decimal.Decimal) decimal.Decimal
	// Area integrates Price over [from, to]; zero when to <= from.
	Area(from, to decimal.Decimal) decimal.Decimal
	Validate() error
}

// inverter is implemented by curves that can turn an amount into keys directly.
type inverter interface {
	KeysForAmount(amount, supply decimal.Decimal, action Action, minCost, sellTax decimal.Decimal) (decimal.Decimal, error)
}

// LinearCurve prices keys at BasePrice + supply*Slope.
type LinearCurve struct {
	BasePrice decimal.Decimal `json:"basePrice"`
	Slope     decimal.Decimal `json:"slope"`
}

// CurveParameters is the default linear curve configuration.
type CurveParameters = LinearCurve

func DefaultCurveParameters() CurveParameters {
	return LinearCurve{BasePrice: shared.DefaultBasePrice, Slope: shared.DefaultSlope}
}

func (c LinearCurve) Price(supply decimal.Decimal) decimal.Decimal {
	return math.Price(supply, c.BasePrice, c.Slope)
}

func (c LinearCurve) Area(from, to decimal.Decimal) decimal.Decimal {
	return math.LinearArea(from, to, c.BasePrice, c.Slope)
}

func (c LinearCurve) Validate() error {
	return math.ValidateLinear(c.BasePrice, c.Slope)
}

func (c LinearCurve) KeysForAmount(amount, supply decimal.Decimal, action Action, minCost, sellTax decimal.Decimal) (decimal.Decimal, error) {
	return math.KeysForAmount(amount, supply, action, c.BasePrice, c.Slope, minCost, sellTax)
}

// PowerCurve prices keys at BasePrice + Slope*S + Coefficient*S^Exponent,
// the hybrid shape used by the on-chain launch program.
type PowerCurve struct {
	BasePrice   decimal.Decimal `json:"basePrice"`
	Slope       decimal.Decimal `json:"slope"`
	Coefficient decimal.Decimal `json:"coefficient"`
	Exponent    decimal.Decimal `json:"exponent"`
}

func DefaultPowerCurve() PowerCurve {
	return PowerCurve{
		BasePrice:   shared.DefaultPowerBasePrice,
		Slope:       shared.DefaultPowerSlope,
		Coefficient: shared.DefaultPowerCoefficient,
		Exponent:    shared.DefaultPowerExponent,
	}
}

func (c PowerCurve) Price(supply decimal.Decimal) decimal.Decimal {
	p := math.Price(supply, c.BasePrice, c.Slope)
	if c.Coefficient.IsZero() {
		return p
	}
	return p.Add(c.Coefficient.Mul(decimal_math.Pow(supply, c.Exponent, shared.Precision)))
}

func (c PowerCurve) Area(from, to decimal.Decimal) decimal.Decimal {
	if !to.GreaterThan(from) {
		return decimal.Zero
	}
	return c.antiderivative(to).Sub(c.antiderivative(from))
}

// antiderivative is base*S + slope*S^2/2 + coef*S^(exp+1)/(exp+1).
func (c PowerCurve) antiderivative(s decimal.Decimal) decimal.Decimal {
	out := c.BasePrice.Mul(s).Add(c.Slope.Mul(s).Mul(s).DivRound(shared.N2, shared.Precision))
	if c.Coefficient.IsZero() {
		return out
	}
	e1 := c.Exponent.Add(shared.N1)
	return out.Add(c.Coefficient.Mul(decimal_math.Pow(s, e1, shared.Precision)).DivRound(e1, shared.Precision))
}

func (c PowerCurve) Validate() error {
	if err := math.ValidateLinear(c.BasePrice, c.Slope); err != nil {
		return err
	}
	if c.Coefficient.IsNegative() {
		return fmt.Errorf("%w: coefficient must be >= 0, got %s", ErrInvalidCurveConfiguration, c.Coefficient)
	}
	if !c.Exponent.IsPositive() || c.Exponent.GreaterThan(shared.MaxPowerExponent) {
		return fmt.Errorf("%w: exponent must be in (0, %s], got %s", ErrInvalidCurveConfiguration, shared.MaxPowerExponent, c.Exponent)
	}
	return nil
}
