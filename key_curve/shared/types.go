package shared

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// Precision is the number of decimal places kept by divisions and
	// rounded intermediate products.
	Precision = 18

	// KeyDecimals is the smallest tradable key unit (0.001).
	KeyDecimals = 3

	// MaxSearchIterations caps the bisection used for non-linear curves.
	MaxSearchIterations = 128

	DaysPerYear = 365
)

var (
	DefaultBasePrice = decimal.RequireFromString("0.01")
	DefaultSlope     = decimal.RequireFromString("0.0001")

	DefaultMinBuyCost    = decimal.RequireFromString("0.01")
	DefaultSellTax       = decimal.RequireFromString("0.05")
	DefaultHighImpactPct = decimal.NewFromInt(10)

	DefaultFeeReserve  = decimal.RequireFromString("0.94")
	DefaultFeeProject  = decimal.RequireFromString("0.03")
	DefaultFeePlatform = decimal.RequireFromString("0.02")
	DefaultFeeReferral = decimal.RequireFromString("0.01")

	// Hybrid power curve of the on-chain program: 0.05 + 0.0003*S + 0.0000012*S^1.6
	DefaultPowerBasePrice   = decimal.RequireFromString("0.05")
	DefaultPowerSlope       = decimal.RequireFromString("0.0003")
	DefaultPowerCoefficient = decimal.RequireFromString("0.0000012")
	DefaultPowerExponent    = decimal.RequireFromString("1.6")
	// MaxPowerExponent bounds the power curve's exponent.
	MaxPowerExponent = decimal.NewFromInt(8)

	// SearchTolerance is the bracket width at which bisection stops.
	SearchTolerance = decimal.New(1, -KeyDecimals)

	// MinTradableKeys is the smallest quantity worth quoting.
	MinTradableKeys = decimal.New(1, -KeyDecimals)

	// FeeEpsilon bounds the rounding drift allowed between fee shares and gross.
	FeeEpsilon = decimal.New(1, -6)

	// FeeTableTolerance bounds how far a fee table may drift from 1.
	FeeTableTolerance = decimal.New(1, -9)

	// MaxAPYPct caps the displayed yield estimate.
	MaxAPYPct = decimal.NewFromInt(10_000)

	BasisPointMax = decimal.NewFromInt(10_000)

	N0   = decimal.Zero
	N1   = decimal.NewFromInt(1)
	N2   = decimal.NewFromInt(2)
	N100 = decimal.NewFromInt(100)
)

// Action is the direction of a trade against the curve.
type Action uint8

const (
	ActionBuy Action = iota
	ActionSell
)

func (a Action) String() string {
	switch a {
	case ActionBuy:
		return "buy"
	case ActionSell:
		return "sell"
	default:
		return fmt.Sprintf("Action(%d)", uint8(a))
	}
}

// ParseAction accepts "buy" or "sell" in any case.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return ActionBuy, nil
	case "sell":
		return ActionSell, nil
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

func (a Action) MarshalText() ([]byte, error) {
	if a != ActionBuy && a != ActionSell {
		return nil, fmt.Errorf("unknown action %d", uint8(a))
	}
	return []byte(a.String()), nil
}

func (a *Action) UnmarshalText(b []byte) error {
	v, err := ParseAction(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}
