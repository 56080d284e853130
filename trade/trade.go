package trade

import (
	"context"
	"errors"

	"github.com/krazyTry/keycurve-go/key_curve"
	"github.com/shopspring/decimal"
)

var (
	ErrCurveNotFound       = errors.New("curve not found")
	ErrCurveExists         = errors.New("curve already exists")
	ErrTradingDisabled     = errors.New("curve is not open for trading")
	ErrSelfReferral        = errors.New("referrer cannot be the trader")
	ErrInsufficientBalance = errors.New("insufficient key balance")
	ErrInsufficientReserve = errors.New("insufficient curve reserve")
	ErrSlippageExceeded    = errors.New("price moved beyond slippage tolerance")
	ErrTradeRejected       = errors.New("trade rejected")
)

// CurveRepository owns curve state. Apply must run fn with the curve locked
// against every other Apply on the same id and persist the mutated curve,
// the trader's holder record and the returned event together, or nothing if
// fn fails.
type CurveRepository interface {
	Get(ctx context.Context, id string) (*Curve, error)
	Apply(ctx context.Context, id string, fn func(*Curve) (*Event, error)) (*Event, error)
}

// ReferralResolver decides where the referral share of a buy is paid.
type ReferralResolver interface {
	Route(ctx context.Context, req Request, share decimal.Decimal) (Payout, error)
}

// SybilGate may refuse a request before it is priced.
type SybilGate interface {
	Check(ctx context.Context, req Request) error
}

// Request is a trade instruction from a user.
type Request struct {
	CurveID    string
	UserID     string
	ReferrerID string
	// Amount is currency to spend on a buy or to receive from a sell.
	Amount decimal.Decimal
	// MinOut, when positive, is the least the trader accepts: keys on a buy,
	// currency on a sell. See key_curve.MinimumOut.
	MinOut decimal.Decimal
}

func (r Request) HasReferrer() bool {
	return r.ReferrerID != ""
}

// Payout is a routed referral share.
type Payout struct {
	Recipient     string          `json:"recipient"`
	Amount        decimal.Decimal `json:"amount"`
	ToRewardsPool bool            `json:"toRewardsPool"`
}

// PoolReferrals pays the referrer when there is one and the rewards pool otherwise.
type PoolReferrals struct {
	Pool string
}

func (p PoolReferrals) Route(_ context.Context, req Request, share decimal.Decimal) (Payout, error) {
	if req.HasReferrer() {
		return Payout{Recipient: req.ReferrerID, Amount: share}, nil
	}
	return Payout{Recipient: p.Pool, Amount: share, ToRewardsPool: true}, nil
}

// BanList refuses trades from listed users.
type BanList map[string]struct{}

func NewBanList(users ...string) BanList {
	b := make(BanList, len(users))
	for _, u := range users {
		b[u] = struct{}{}
	}
	return b
}

func (b BanList) Check(_ context.Context, req Request) error {
	if _, ok := b[req.UserID]; ok {
		return errors.New("user is banned")
	}
	return nil
}

type allowAll struct{}

func (allowAll) Check(context.Context, Request) error { return nil }

// quoteState returns the engine for c and the snapshot it prices against.
func quoteState(c *Curve) (*key_curve.Engine, key_curve.CurveState, error) {
	engine, err := key_curve.NewEngine(c.Config)
	if err != nil {
		return nil, key_curve.CurveState{}, err
	}
	return engine, c.State(), nil
}
