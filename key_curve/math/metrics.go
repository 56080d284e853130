package math

import (
	"fmt"

	"github.com/krazyTry/keycurve-go/decimal_math"
	"github.com/krazyTry/keycurve-go/key_curve/shared"
	"github.com/shopspring/decimal"
)

// apyCapRate is a daily rate whose yearly compounding already exceeds the cap
// ((1+r)^365 > 101 for r > ~0.0127).
var apyCapRate = decimal.RequireFromString("0.02")

func MarketCap(supply, price decimal.Decimal) (decimal.Decimal, error) {
	if err := RequireNonNegative("supply", supply); err != nil {
		return decimal.Decimal{}, err
	}
	if err := RequireNonNegative("price", price); err != nil {
		return decimal.Decimal{}, err
	}
	return supply.Mul(price), nil
}

// HolderPct is balance as a percentage of totalSupply; 0 when nothing is issued.
func HolderPct(balance, totalSupply decimal.Decimal) (decimal.Decimal, error) {
	if err := RequireNonNegative("balance", balance); err != nil {
		return decimal.Decimal{}, err
	}
	if err := RequireNonNegative("supply", totalSupply); err != nil {
		return decimal.Decimal{}, err
	}
	if !totalSupply.IsPositive() {
		return decimal.Zero, nil
	}
	return balance.Mul(shared.N100).DivRound(totalSupply, shared.Precision), nil
}

// EstimatedAPY compounds the daily fee yield dailyVolume*feePct/reserve over a
// year, in percent, capped at shared.MaxAPYPct. An empty reserve yields 0.
func EstimatedAPY(dailyVolume, reserve, feePct decimal.Decimal) (decimal.Decimal, error) {
	for _, in := range []struct {
		name string
		v    decimal.Decimal
	}{{"daily volume", dailyVolume}, {"reserve", reserve}, {"fee pct", feePct}} {
		if err := RequireNonNegative(in.name, in.v); err != nil {
			return decimal.Decimal{}, err
		}
	}
	if !reserve.IsPositive() {
		return decimal.Zero, nil
	}
	rate := dailyVolume.Mul(feePct).DivRound(reserve, shared.Precision)
	if !rate.IsPositive() {
		return decimal.Zero, nil
	}
	if rate.GreaterThan(apyCapRate) {
		return shared.MaxAPYPct, nil
	}
	growth := decimal_math.PowInt(shared.N1.Add(rate), shared.DaysPerYear, shared.Precision)
	apy := growth.Sub(shared.N1).Mul(shared.N100)
	return decimal.Min(apy, shared.MaxAPYPct), nil
}

// BreakEvenPrice is the unit price at which selling keysHeld after sellTax
// returns totalInvested.
func BreakEvenPrice(totalInvested, keysHeld, sellTax decimal.Decimal) (decimal.Decimal, error) {
	if sellTax.IsNegative() || sellTax.GreaterThanOrEqual(shared.N1) {
		return decimal.Decimal{}, fmt.Errorf("%w: sell tax must be in [0, 1), got %s", ErrInvalidInput, sellTax)
	}
	if !keysHeld.IsPositive() {
		return decimal.Zero, nil
	}
	perKey := totalInvested.DivRound(keysHeld, shared.Precision)
	return perKey.DivRound(shared.N1.Sub(sellTax), shared.Precision), nil
}
