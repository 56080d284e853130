package key_curve

import (
	"fmt"

	"github.com/krazyTry/keycurve-go/key_curve/math"
	"github.com/krazyTry/keycurve-go/key_curve/shared"
	"github.com/shopspring/decimal"
)

// priceMismatchTolerance is how far a caller's CurrentPrice may drift from the
// curve price before the quote flags the snapshot.
var priceMismatchTolerance = decimal.New(1, -9)

// Quote prices a buy of amount currency, or a sell returning amount currency,
// against state. Numerical edge cases never fail the call; they are reported
// in the quote's Warnings.
func (e *Engine) Quote(action Action, amount decimal.Decimal, state CurveState, hasReferrer bool) (*TradeQuote, error) {
	if action != ActionBuy && action != ActionSell {
		return nil, fmt.Errorf("%w: unknown action %s", ErrInvalidInput, action)
	}
	if err := math.RequireNonNegative("amount", amount); err != nil {
		return nil, err
	}
	if err := math.RequireNonNegative("supply", state.Supply); err != nil {
		return nil, err
	}
	if err := math.RequireNonNegative("reserve", state.Reserve); err != nil {
		return nil, err
	}

	keys, converged, err := e.KeysForAmount(amount, state.Supply, action)
	if err != nil {
		return nil, err
	}

	quote := &TradeQuote{
		Action:          action,
		RequestedAmount: amount,
		PriceBefore:     e.curve.Price(state.Supply),
		Warnings:        []string{},
		HasReferrer:     hasReferrer,
		Converged:       converged,
	}
	if !state.CurrentPrice.IsZero() && state.CurrentPrice.Sub(quote.PriceBefore).Abs().GreaterThan(priceMismatchTolerance) {
		quote.warn(WarnPriceMismatch)
	}
	if !converged {
		quote.warn(WarnNotConverged)
	}

	switch action {
	case ActionBuy:
		e.fillBuy(quote, keys, state)
	case ActionSell:
		e.fillSell(quote, keys, state)
	}
	return quote, nil
}

func (e *Engine) fillBuy(q *TradeQuote, keys decimal.Decimal, state CurveState) {
	// re-price at the resolved quantity so search error never reaches the fees
	cost := e.BuyCost(state.Supply, keys)

	q.Keys = keys
	q.GrossAmount = cost
	q.TotalCost = cost
	q.SupplyAfter = state.Supply.Add(keys)
	q.PriceAfter = e.curve.Price(q.SupplyAfter)
	q.PriceImpactPct = impactPct(q.PriceAfter.Sub(q.PriceBefore), q.PriceBefore)
	q.PricePerKey = perKey(cost, keys)
	q.Fees = math.SplitFees(cost, e.cfg.Fees)

	if q.PriceImpactPct.GreaterThan(e.cfg.HighImpactPct) {
		q.warn(fmt.Sprintf(WarnHighImpactFormat, q.PriceImpactPct.StringFixed(2)))
	}
	if keys.IsPositive() && cost.GreaterThan(e.curve.Area(state.Supply, q.SupplyAfter)) {
		q.warn(WarnMinCostApplied)
	}
	if keys.LessThan(shared.MinTradableKeys) {
		q.Degenerate = true
		q.warn(WarnAmountTooSmall)
	}
}

func (e *Engine) fillSell(q *TradeQuote, keys decimal.Decimal, state CurveState) {
	limit := decimal.Max(state.Supply.Sub(shared.N1), decimal.Zero)
	keysToSell := decimal.Max(decimal.Min(keys, limit), decimal.Zero)
	proceeds := e.SellProceeds(state.Supply, keysToSell)

	// the whole sellable supply still falls short of the requested amount
	if keysToSell.IsPositive() && keysToSell.Equal(limit) && e.SellProceeds(state.Supply, limit).LessThan(q.RequestedAmount) {
		q.warn(WarnSellClamped)
	}

	area := e.curve.Area(state.Supply.Sub(keysToSell), state.Supply)

	q.Keys = keysToSell
	q.GrossAmount = proceeds
	q.TotalCost = proceeds
	q.SupplyAfter = state.Supply.Sub(keysToSell)
	q.PriceAfter = e.curve.Price(q.SupplyAfter)
	q.PriceImpactPct = impactPct(q.PriceBefore.Sub(q.PriceAfter), q.PriceBefore)
	q.PricePerKey = perKey(proceeds, keysToSell)
	q.Fees = FeeBreakdown{
		Reserve:  decimal.Zero,
		Project:  decimal.Zero,
		Platform: decimal.Zero,
		Referral: decimal.Zero,
		Tax:      area.Sub(proceeds),
		Total:    area,
	}

	if q.PriceImpactPct.GreaterThan(e.cfg.HighImpactPct) {
		q.warn(fmt.Sprintf(WarnHighImpactFormat, q.PriceImpactPct.StringFixed(2)))
	}
	if !keysToSell.IsPositive() {
		q.Degenerate = true
		q.warn(WarnNothingToSell)
	}
}

func impactPct(delta, before decimal.Decimal) decimal.Decimal {
	if !before.IsPositive() {
		return decimal.Zero
	}
	return delta.Mul(shared.N100).DivRound(before, shared.Precision)
}

func perKey(total, keys decimal.Decimal) decimal.Decimal {
	if !keys.IsPositive() {
		return decimal.Zero
	}
	return total.DivRound(keys, shared.Precision)
}

// MinimumOut is the least a trader should accept for q with slippageBps of
// tolerance: keys for a buy, currency for a sell.
func MinimumOut(q *TradeQuote, slippageBps uint64) decimal.Decimal {
	out := q.Keys
	if q.Action == ActionSell {
		out = q.TotalCost
	}
	if slippageBps == 0 {
		return out
	}
	bps := decimal.Min(decimal.NewFromUint64(slippageBps), shared.BasisPointMax)
	factor := shared.BasisPointMax.Sub(bps)
	minOut := out.Mul(factor).DivRound(shared.BasisPointMax, shared.Precision)
	if q.Action == ActionBuy {
		return minOut.RoundFloor(shared.KeyDecimals)
	}
	return minOut
}

// EstimateSlippage is how far the average execution price of a trade of amount
// lies from the current price, in percent.
func (e *Engine) EstimateSlippage(action Action, amount, supply decimal.Decimal) (decimal.Decimal, error) {
	q, err := e.Quote(action, amount, CurveState{Supply: supply}, false)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if !q.Keys.IsPositive() {
		return decimal.Zero, nil
	}
	return impactPct(q.PricePerKey.Sub(q.PriceBefore).Abs(), q.PriceBefore), nil
}
