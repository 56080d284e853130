package key_curve

import (
	"fmt"

	"github.com/krazyTry/keycurve-go/key_curve/math"
	"github.com/krazyTry/keycurve-go/key_curve/shared"
	"github.com/shopspring/decimal"
)

// Engine prices trades against one curve configuration. It holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	cfg     Config
	curve   Curve
	maxIter int
}

// NewEngine validates cfg and builds an engine for it.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	curve, err := cfg.Curve.Build()
	if err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, curve: curve, maxIter: shared.MaxSearchIterations}, nil
}

func (e *Engine) Config() Config {
	return e.cfg
}

func (e *Engine) Curve() Curve {
	return e.curve
}

// Price is the unit price at supply.
func (e *Engine) Price(supply decimal.Decimal) decimal.Decimal {
	return e.curve.Price(supply)
}

// BuyCost is the cost of buying deltaKeys at supply, floored at MinBuyCost.
func (e *Engine) BuyCost(supply, deltaKeys decimal.Decimal) decimal.Decimal {
	if !deltaKeys.IsPositive() {
		return decimal.Zero
	}
	return decimal.Max(e.curve.Area(supply, supply.Add(deltaKeys)), e.cfg.MinBuyCost)
}

// SellProceeds is the after-tax return of selling deltaKeys at supply.
// At least one key always stays in circulation.
func (e *Engine) SellProceeds(supply, deltaKeys decimal.Decimal) decimal.Decimal {
	keys, _ := math.ClampSellKeys(supply, deltaKeys)
	if !keys.IsPositive() {
		return decimal.Zero
	}
	proceeds := e.curve.Area(supply.Sub(keys), supply).Mul(shared.N1.Sub(e.cfg.SellTax))
	return decimal.Max(proceeds, decimal.Zero)
}

// KeysForAmount inverts BuyCost or SellProceeds. Curves without a closed form
// are searched by bisection; converged is false if the search hit its cap.
func (e *Engine) KeysForAmount(amount, supply decimal.Decimal, action Action) (keys decimal.Decimal, converged bool, err error) {
	if err := math.RequireNonNegative("amount", amount); err != nil {
		return decimal.Decimal{}, false, err
	}
	if err := math.RequireNonNegative("supply", supply); err != nil {
		return decimal.Decimal{}, false, err
	}

	if inv, ok := e.curve.(inverter); ok {
		keys, err := inv.KeysForAmount(amount, supply, action, e.cfg.MinBuyCost, e.cfg.SellTax)
		return keys, err == nil, err
	}
	return e.search(amount, supply, action, e.maxIter)
}

func (e *Engine) search(amount, supply decimal.Decimal, action Action, maxIter int) (decimal.Decimal, bool, error) {
	if amount.IsZero() {
		return decimal.Zero, true, nil
	}

	if action == ActionBuy {
		if amount.LessThan(e.cfg.MinBuyCost) {
			return decimal.Zero, true, nil
		}
		// the price never falls below p(supply) on the way up
		high, err := math.Div(amount, e.curve.Price(supply))
		if err != nil {
			return decimal.Decimal{}, false, fmt.Errorf("%w: %v", ErrInvalidCurveConfiguration, err)
		}
		cost := func(k decimal.Decimal) decimal.Decimal { return e.BuyCost(supply, k) }
		keys, converged := math.Bisect(cost, amount, decimal.Zero, high, maxIter)
		return keys, converged, nil
	}

	limit := decimal.Max(supply.Sub(shared.N1), decimal.Zero)
	if limit.IsZero() {
		return decimal.Zero, true, nil
	}
	beforeTax, err := math.Div(amount, shared.N1.Sub(e.cfg.SellTax))
	if err != nil {
		return decimal.Decimal{}, false, fmt.Errorf("%w: %v", ErrInvalidCurveConfiguration, err)
	}
	bound, err := math.Div(beforeTax, e.curve.Price(decimal.Zero))
	if err != nil {
		return decimal.Decimal{}, false, fmt.Errorf("%w: %v", ErrInvalidCurveConfiguration, err)
	}
	proceeds := func(k decimal.Decimal) decimal.Decimal { return e.SellProceeds(supply, k) }
	keys, converged := math.Bisect(proceeds, amount, decimal.Zero, decimal.Min(limit, bound), maxIter)
	return keys, converged, nil
}

// Chart samples the curve from 0 to maxSupply in steps intervals.
func (e *Engine) Chart(maxSupply decimal.Decimal, steps int) []CurvePoint {
	return math.SampleCurve(maxSupply, steps, e.curve.Price)
}

// MarketCap values the whole supply at the curve price.
func (e *Engine) MarketCap(state CurveState) (decimal.Decimal, error) {
	if err := math.RequireNonNegative("supply", state.Supply); err != nil {
		return decimal.Decimal{}, err
	}
	return math.MarketCap(state.Supply, e.curve.Price(state.Supply))
}

func (e *Engine) HolderPct(balance decimal.Decimal, state CurveState) (decimal.Decimal, error) {
	return math.HolderPct(balance, state.Supply)
}

// EstimatedAPY uses the non-reserve share of the fee table as the fee rate.
func (e *Engine) EstimatedAPY(dailyVolume decimal.Decimal, state CurveState) (decimal.Decimal, error) {
	return math.EstimatedAPY(dailyVolume, state.Reserve, shared.N1.Sub(e.cfg.Fees.Reserve))
}

func (e *Engine) BreakEvenPrice(totalInvested, keysHeld decimal.Decimal) (decimal.Decimal, error) {
	return math.BreakEvenPrice(totalInvested, keysHeld, e.cfg.SellTax)
}
