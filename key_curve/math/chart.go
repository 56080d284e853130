package math

import (
	"iter"
	"slices"

	"github.com/krazyTry/keycurve-go/key_curve/shared"
	"github.com/shopspring/decimal"
)

type CurvePoint struct {
	Supply decimal.Decimal `json:"supply"`
	Price  decimal.Decimal `json:"price"`
}

// CurvePoints yields steps+1 evenly spaced points from supply 0 to maxSupply.
// Every range over the sequence recomputes the prices.
func CurvePoints(maxSupply decimal.Decimal, steps int, price func(decimal.Decimal) decimal.Decimal) iter.Seq[CurvePoint] {
	return func(yield func(CurvePoint) bool) {
		if steps <= 0 || maxSupply.IsNegative() {
			return
		}
		stepSize := maxSupply.DivRound(decimal.NewFromInt(int64(steps)), shared.Precision)
		for i := 0; i <= steps; i++ {
			supply := stepSize.Mul(decimal.NewFromInt(int64(i)))
			if i == steps {
				supply = maxSupply
			}
			if !yield(CurvePoint{Supply: supply, Price: price(supply)}) {
				return
			}
		}
	}
}

func SampleCurve(maxSupply decimal.Decimal, steps int, price func(decimal.Decimal) decimal.Decimal) []CurvePoint {
	return slices.Collect(CurvePoints(maxSupply, steps, price))
}
