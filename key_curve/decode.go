package key_curve

import (
	"fmt"

	"github.com/krazyTry/keycurve-go/key_curve/math"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// ConfigFromJSON reads a config document. Missing fields keep their
// DefaultConfig values, so a document may override only what it needs.
func ConfigFromJSON(b []byte) (Config, error) {
	if !gjson.ValidBytes(b) {
		return Config{}, fmt.Errorf("%w: config is not valid JSON", ErrInvalidCurveConfiguration)
	}
	cfg := DefaultConfig()
	doc := gjson.ParseBytes(b)

	if kind := doc.Get("curve.kind"); kind.Exists() {
		cfg.Curve.Kind = CurveKind(kind.String())
		if cfg.Curve.Kind == CurveKindPower {
			cfg.Curve = PowerSpec(DefaultPowerCurve())
		}
	}

	fields := []struct {
		path string
		dst  *decimal.Decimal
	}{
		{"curve.basePrice", &cfg.Curve.BasePrice},
		{"curve.slope", &cfg.Curve.Slope},
		{"curve.coefficient", &cfg.Curve.Coefficient},
		{"curve.exponent", &cfg.Curve.Exponent},
		{"fees.reserve", &cfg.Fees.Reserve},
		{"fees.project", &cfg.Fees.Project},
		{"fees.platform", &cfg.Fees.Platform},
		{"fees.referral", &cfg.Fees.Referral},
		{"minBuyCost", &cfg.MinBuyCost},
		{"sellTax", &cfg.SellTax},
		{"highImpactPct", &cfg.HighImpactPct},
	}
	for _, f := range fields {
		v := doc.Get(f.path)
		if !v.Exists() {
			continue
		}
		parsed, err := math.FromString(f.path, v.String())
		if err != nil {
			return Config{}, err
		}
		*f.dst = parsed
	}
	return cfg, nil
}

// StateFromJSON reads a CurveState snapshot. Supply is required; a missing
// currentPrice is left zero and a missing reserve reads as zero.
func StateFromJSON(b []byte) (CurveState, error) {
	if !gjson.ValidBytes(b) {
		return CurveState{}, fmt.Errorf("%w: state is not valid JSON", ErrInvalidInput)
	}
	doc := gjson.ParseBytes(b)
	supply := doc.Get("supply")
	if !supply.Exists() {
		return CurveState{}, fmt.Errorf("%w: state.supply is required", ErrInvalidInput)
	}

	var state CurveState
	var err error
	if state.Supply, err = math.FromString("supply", supply.String()); err != nil {
		return CurveState{}, err
	}
	if v := doc.Get("currentPrice"); v.Exists() {
		if state.CurrentPrice, err = math.FromString("currentPrice", v.String()); err != nil {
			return CurveState{}, err
		}
	}
	if v := doc.Get("reserve"); v.Exists() {
		if state.Reserve, err = math.FromString("reserve", v.String()); err != nil {
			return CurveState{}, err
		}
	}
	return state, nil
}
