package decimal_math

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Sqrt returns the square root of x rounded down to scale decimal places.
// The root is taken on the integer x*10^(2*scale), so the result is exact
// up to the final digit.
func Sqrt(x decimal.Decimal, scale int32) decimal.Decimal {
	if x.Sign() < 0 {
		panic("sqrt on negative decimal")
	}
	if x.IsZero() {
		return decimal.Zero
	}

	n := x.Shift(2 * scale).BigInt()
	return decimal.NewFromBigInt(new(big.Int).Sqrt(n), -scale)
}
