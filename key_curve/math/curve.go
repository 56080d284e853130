package math

import (
	"github.com/krazyTry/keycurve-go/key_curve/shared"
	"github.com/shopspring/decimal"
)

// BuyCost is the currency needed to move supply up by deltaKeys.
// Non-positive quantities cost nothing; anything else costs at least minCost.
func BuyCost(supply, deltaKeys, basePrice, slope, minCost decimal.Decimal) decimal.Decimal {
	if !deltaKeys.IsPositive() {
		return decimal.Zero
	}
	cost := LinearArea(supply, supply.Add(deltaKeys), basePrice, slope)
	return decimal.Max(cost, minCost)
}

// ClampSellKeys keeps at least one key in circulation. It reports whether
// deltaKeys had to be reduced.
func ClampSellKeys(supply, deltaKeys decimal.Decimal) (decimal.Decimal, bool) {
	if deltaKeys.LessThan(supply) {
		return deltaKeys, false
	}
	return decimal.Max(supply.Sub(shared.N1), decimal.Zero), true
}

// SellProceeds is the currency returned for moving supply down by deltaKeys,
// after sellTax. The quantity is clamped with ClampSellKeys first.
func SellProceeds(supply, deltaKeys, basePrice, slope, sellTax decimal.Decimal) decimal.Decimal {
	keys, _ := ClampSellKeys(supply, deltaKeys)
	if !keys.IsPositive() {
		return decimal.Zero
	}
	area := LinearArea(supply.Sub(keys), supply, basePrice, slope)
	proceeds := area.Mul(shared.N1.Sub(sellTax))
	if proceeds.IsNegative() {
		return decimal.Zero
	}
	return proceeds
}
