package key_curve

import (
	"fmt"

	"github.com/krazyTry/keycurve-go/key_curve/math"
	"github.com/krazyTry/keycurve-go/key_curve/shared"
	"github.com/shopspring/decimal"
)

type CurveKind string

const (
	CurveKindLinear CurveKind = "linear"
	CurveKindPower  CurveKind = "power"
)

// CurveSpec is the serialisable description of a curve shape.
// Coefficient and Exponent are only read for power curves.
type CurveSpec struct {
	Kind        CurveKind       `json:"kind"`
	BasePrice   decimal.Decimal `json:"basePrice"`
	Slope       decimal.Decimal `json:"slope"`
	Coefficient decimal.Decimal `json:"coefficient"`
	Exponent    decimal.Decimal `json:"exponent"`
}

func LinearSpec(p CurveParameters) CurveSpec {
	return CurveSpec{Kind: CurveKindLinear, BasePrice: p.BasePrice, Slope: p.Slope}
}

func PowerSpec(p PowerCurve) CurveSpec {
	return CurveSpec{
		Kind:        CurveKindPower,
		BasePrice:   p.BasePrice,
		Slope:       p.Slope,
		Coefficient: p.Coefficient,
		Exponent:    p.Exponent,
	}
}

// Build validates s and returns the curve it describes.
func (s CurveSpec) Build() (Curve, error) {
	var c Curve
	switch s.Kind {
	case CurveKindLinear, "":
		c = LinearCurve{BasePrice: s.BasePrice, Slope: s.Slope}
	case CurveKindPower:
		c = PowerCurve{BasePrice: s.BasePrice, Slope: s.Slope, Coefficient: s.Coefficient, Exponent: s.Exponent}
	default:
		return nil, fmt.Errorf("%w: unknown curve kind %q", ErrInvalidCurveConfiguration, s.Kind)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Config is everything that shapes the economics of one curve.
type Config struct {
	Curve CurveSpec `json:"curve"`
	Fees  FeeTable  `json:"fees"`

	// MinBuyCost is the least any non-empty buy costs.
	MinBuyCost decimal.Decimal `json:"minBuyCost"`
	// SellTax is deducted from sell proceeds.
	SellTax decimal.Decimal `json:"sellTax"`
	// HighImpactPct is the price impact above which quotes carry a warning.
	HighImpactPct decimal.Decimal `json:"highImpactPct"`
}

func DefaultConfig() Config {
	return Config{
		Curve:         LinearSpec(DefaultCurveParameters()),
		Fees:          math.DefaultFeeTable(),
		MinBuyCost:    shared.DefaultMinBuyCost,
		SellTax:       shared.DefaultSellTax,
		HighImpactPct: shared.DefaultHighImpactPct,
	}
}

// Validate reports configuration errors; these are deployment bugs and are
// meant to stop startup.
func (c Config) Validate() error {
	if _, err := c.Curve.Build(); err != nil {
		return fmt.Errorf("curve: %w", err)
	}
	if err := c.Fees.Validate(); err != nil {
		return fmt.Errorf("fees: %w", err)
	}
	if c.MinBuyCost.IsNegative() {
		return fmt.Errorf("%w: min buy cost must be >= 0, got %s", ErrInvalidCurveConfiguration, c.MinBuyCost)
	}
	if err := math.ValidateSellTax(c.SellTax); err != nil {
		return err
	}
	if c.HighImpactPct.IsNegative() {
		return fmt.Errorf("%w: high impact threshold must be >= 0, got %s", ErrInvalidCurveConfiguration, c.HighImpactPct)
	}
	return nil
}
