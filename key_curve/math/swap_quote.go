package math

import (
	"github.com/krazyTry/keycurve-go/decimal_math"
	"github.com/krazyTry/keycurve-go/key_curve/shared"
	"github.com/shopspring/decimal"
)

// KeysForAmount returns how many keys amount buys (ActionBuy) or how many
// keys must be sold to receive amount after tax (ActionSell), floored to
// the smallest tradable key unit.
//
// The linear curve's integral is quadratic in the key count, so the root is
// taken directly as 2A / (p0 + sqrt(p0^2 ± 2*slope*A)).
func KeysForAmount(amount, supply decimal.Decimal, action shared.Action, basePrice, slope, minCost, sellTax decimal.Decimal) (decimal.Decimal, error) {
	if err := ValidateLinear(basePrice, slope); err != nil {
		return decimal.Decimal{}, err
	}
	if err := ValidateSellTax(sellTax); err != nil {
		return decimal.Decimal{}, err
	}
	if err := RequireNonNegative("amount", amount); err != nil {
		return decimal.Decimal{}, err
	}
	if err := RequireNonNegative("supply", supply); err != nil {
		return decimal.Decimal{}, err
	}
	if amount.IsZero() {
		return decimal.Zero, nil
	}

	p0 := Price(supply, basePrice, slope)

	if action == shared.ActionBuy {
		if amount.LessThan(minCost) {
			return decimal.Zero, nil
		}
		disc := p0.Mul(p0).Add(shared.N2.Mul(slope).Mul(amount))
		keys := quadraticRoot(amount, p0, disc)
		for keys.IsPositive() && BuyCost(supply, keys, basePrice, slope, minCost).GreaterThan(amount) {
			keys = keys.Sub(shared.MinTradableKeys)
		}
		return decimal.Max(keys, decimal.Zero), nil
	}

	limit := decimal.Max(supply.Sub(shared.N1), decimal.Zero)
	if limit.IsZero() {
		return decimal.Zero, nil
	}
	beforeTax, err := Div(amount, shared.N1.Sub(sellTax))
	if err != nil {
		return decimal.Decimal{}, err
	}
	disc := p0.Mul(p0).Sub(shared.N2.Mul(slope).Mul(beforeTax))

	var keys decimal.Decimal
	if disc.IsNegative() {
		// more than the whole curve can pay out
		keys = limit
	} else {
		keys = decimal.Min(quadraticRoot(beforeTax, p0, disc), limit)
	}
	keys = keys.RoundFloor(shared.KeyDecimals)
	for keys.IsPositive() && SellProceeds(supply, keys, basePrice, slope, sellTax).GreaterThan(amount) {
		keys = keys.Sub(shared.MinTradableKeys)
	}
	return decimal.Max(keys, decimal.Zero), nil
}

func quadraticRoot(area, p0, disc decimal.Decimal) decimal.Decimal {
	denominator := p0.Add(decimal_math.Sqrt(disc, shared.Precision))
	if !denominator.IsPositive() {
		return decimal.Zero
	}
	return shared.N2.Mul(area).DivRound(denominator, shared.Precision).RoundFloor(shared.KeyDecimals)
}

// Bisect searches [low, high] for the largest x with f(x) <= target, where f
// is non-decreasing. It narrows while the bracket is wider than
// shared.SearchTolerance and gives up after maxIter halvings; converged is
// false in that case and the returned value is the best lower bound found.
func Bisect(f func(decimal.Decimal) decimal.Decimal, target, low, high decimal.Decimal, maxIter int) (x decimal.Decimal, converged bool) {
	for i := 0; i < maxIter && high.Sub(low).GreaterThan(shared.SearchTolerance); i++ {
		mid := low.Add(high).Mul(half).Round(shared.Precision)
		if f(mid).LessThanOrEqual(target) {
			low = mid
		} else {
			high = mid
		}
	}
	converged = !high.Sub(low).GreaterThan(shared.SearchTolerance)
	return low.RoundFloor(shared.KeyDecimals), converged
}
