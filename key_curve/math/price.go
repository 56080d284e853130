package math

import "github.com/shopspring/decimal"

// Price returns the instantaneous unit price of a linear curve:
// basePrice + supply*slope.
func Price(supply, basePrice, slope decimal.Decimal) decimal.Decimal {
	return basePrice.Add(supply.Mul(slope))
}

// LinearArea is the exact integral of the linear price between from and to,
// from <= to, i.e. the trapezoid (p(from)+p(to))*(to-from)/2.
func LinearArea(from, to, basePrice, slope decimal.Decimal) decimal.Decimal {
	width := to.Sub(from)
	if !width.IsPositive() {
		return decimal.Zero
	}
	return Price(from, basePrice, slope).Add(Price(to, basePrice, slope)).Mul(width).Mul(half)
}
