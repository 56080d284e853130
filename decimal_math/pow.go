package decimal_math

import (
	"math"

	"github.com/shopspring/decimal"
)

// PowInt raises base to a non-negative integer power by repeated squaring,
// rounding every intermediate product to scale places so that large
// exponents do not blow up the coefficient.
func PowInt(base decimal.Decimal, n int64, scale int32) decimal.Decimal {
	if n < 0 {
		panic("negative exponent")
	}
	result := decimal.NewFromInt(1)
	b := base
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(b).Round(scale)
		}
		n >>= 1
		if n > 0 {
			b = b.Mul(b).Round(scale)
		}
	}
	return result
}

// Pow raises a non-negative base to exponent.
// The integer part of the exponent stays in decimal. The fractional part is
// taken in float on the base's mantissa and decimal exponent separately, so
// no intermediate leaves the float range however large the base is.
func Pow(base, exponent decimal.Decimal, scale int32) decimal.Decimal {
	if base.IsNegative() {
		panic("negative base")
	}
	if base.IsZero() {
		if exponent.IsZero() {
			return decimal.NewFromInt(1)
		}
		return decimal.Zero
	}
	if exponent.IsNegative() {
		return decimal.NewFromInt(1).DivRound(Pow(base, exponent.Neg(), scale), scale)
	}

	whole := exponent.Floor()
	result := PowInt(base, whole.IntPart(), scale)
	frac := exponent.Sub(whole)
	if frac.IsZero() {
		return result
	}
	return result.Mul(powFrac(base, frac.InexactFloat64())).Round(scale)
}

// powFrac is base^f for 0 < f < 1, with base = m * 10^k and 1 <= m < 10.
func powFrac(base decimal.Decimal, f float64) decimal.Decimal {
	k := int64(base.Exponent()) + int64(base.NumDigits()) - 1
	m := base.Shift(int32(-k)).InexactFloat64()

	kf := float64(k) * f
	shift := math.Floor(kf)
	mantissa := math.Pow(m, f) * math.Pow(10, kf-shift)
	return decimal.NewFromFloat(mantissa).Shift(int32(shift))
}
