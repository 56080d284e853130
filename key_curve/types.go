package key_curve

import (
	"github.com/krazyTry/keycurve-go/key_curve/math"
	"github.com/krazyTry/keycurve-go/key_curve/shared"
	"github.com/shopspring/decimal"
)

type (
	Action       = shared.Action
	FeeTable     = math.FeeTable
	FeeBreakdown = math.FeeBreakdown
	CurvePoint   = math.CurvePoint
)

const (
	ActionBuy  = shared.ActionBuy
	ActionSell = shared.ActionSell
)

// CurveState is a snapshot of a curve owned by the persistence layer.
// CurrentPrice is expected to equal the curve price at Supply.
type CurveState struct {
	Supply       decimal.Decimal `json:"supply"`
	CurrentPrice decimal.Decimal `json:"currentPrice"`
	Reserve      decimal.Decimal `json:"reserve"`
}

// TradeQuote is the result of pricing one trade. GrossAmount and TotalCost are
// the actual cost of a buy or the after-tax proceeds of a sell.
type TradeQuote struct {
	Action          Action          `json:"action"`
	RequestedAmount decimal.Decimal `json:"requestedAmount"`
	GrossAmount     decimal.Decimal `json:"grossAmount"`
	Keys            decimal.Decimal `json:"keys"`
	PriceBefore     decimal.Decimal `json:"priceBefore"`
	PriceAfter      decimal.Decimal `json:"priceAfter"`
	PriceImpactPct  decimal.Decimal `json:"priceImpactPct"`
	PricePerKey     decimal.Decimal `json:"pricePerKey"`
	TotalCost       decimal.Decimal `json:"totalCost"`
	SupplyAfter     decimal.Decimal `json:"supplyAfter"`
	Fees            FeeBreakdown    `json:"fees"`
	Warnings        []string        `json:"warnings"`

	// HasReferrer is passed through for referral routing; it never changes the split.
	HasReferrer bool `json:"hasReferrer"`
	// Converged is false when the inverse search hit its iteration cap.
	Converged bool `json:"converged"`
	// Degenerate marks a zero-effect quote.
	Degenerate bool `json:"degenerate"`
}

func (q *TradeQuote) warn(msg string) {
	q.Warnings = append(q.Warnings, msg)
}

func ParseAction(s string) (Action, error) {
	return shared.ParseAction(s)
}
