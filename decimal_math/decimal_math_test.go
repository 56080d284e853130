package decimal_math

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSqrt(t *testing.T) {
	assert.True(t, Sqrt(decimal.NewFromInt(144), 18).Equal(decimal.NewFromInt(12)))
	assert.True(t, Sqrt(decimal.Zero, 18).IsZero())

	two := Sqrt(decimal.NewFromInt(2), 10)
	assert.Equal(t, "1.4142135623", two.String())

	// exact for representable squares
	assert.True(t, Sqrt(decimal.RequireFromString("0.0001"), 18).Equal(decimal.RequireFromString("0.01")))

	assert.Panics(t, func() { Sqrt(decimal.NewFromInt(-1), 18) })
}

func TestPowInt(t *testing.T) {
	assert.True(t, PowInt(decimal.NewFromInt(2), 10, 18).Equal(decimal.NewFromInt(1024)))
	assert.True(t, PowInt(decimal.NewFromInt(7), 0, 18).Equal(decimal.NewFromInt(1)))

	// 1.01^365 ≈ 37.78
	v := PowInt(decimal.RequireFromString("1.01"), 365, 18)
	assert.InDelta(t, 37.7834, v.InexactFloat64(), 1e-3)
}

func TestPow(t *testing.T) {
	assert.True(t, Pow(decimal.NewFromInt(3), decimal.NewFromInt(3), 18).Equal(decimal.NewFromInt(27)))
	assert.True(t, Pow(decimal.Zero, decimal.NewFromFloat(1.6), 18).IsZero())
	assert.True(t, Pow(decimal.Zero, decimal.Zero, 18).Equal(decimal.NewFromInt(1)))

	// 32^1.6 = 256
	v := Pow(decimal.NewFromInt(32), decimal.NewFromFloat(1.6), 12)
	assert.InDelta(t, 256.0, v.InexactFloat64(), 1e-9)
}

func TestPowStaysFiniteForHugeBases(t *testing.T) {
	huge := decimal.New(1, 200)
	var v decimal.Decimal
	assert.NotPanics(t, func() { v = Pow(huge, decimal.RequireFromString("1.6"), 18) })
	// 1e200^1.6 = 1e320, beyond float64
	assert.InDelta(t, 1.0, v.Shift(-320).InexactFloat64(), 1e-9)

	v = Pow(decimal.New(1, 1000), decimal.RequireFromString("2.5"), 18)
	assert.InDelta(t, 1.0, v.Shift(-2500).InexactFloat64(), 1e-9)
}

func TestPowSmallBaseAndNegativeExponent(t *testing.T) {
	v := Pow(decimal.RequireFromString("0.001"), decimal.RequireFromString("0.5"), 18)
	assert.InDelta(t, 0.0316227766, v.InexactFloat64(), 1e-9)

	v = Pow(decimal.NewFromInt(4), decimal.RequireFromString("-0.5"), 18)
	assert.InDelta(t, 0.5, v.InexactFloat64(), 1e-12)
}
