package trade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/krazyTry/keycurve-go/key_curve"
	"github.com/krazyTry/keycurve-go/key_curve/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultRewardsPool receives referral shares of buys without a referrer.
const DefaultRewardsPool = "rewards-pool"

// Trader quotes and executes trades against curves held by a CurveRepository.
// It is safe for concurrent use.
type Trader struct {
	repo      CurveRepository
	referrals ReferralResolver
	gate      SybilGate
	metrics   *Metrics
	logger    *zap.Logger
	now       func() time.Time
}

type Option func(*Trader)

func WithLogger(l *zap.Logger) Option {
	return func(t *Trader) { t.logger = l }
}

func WithMetrics(m *Metrics) Option {
	return func(t *Trader) { t.metrics = m }
}

func WithReferralResolver(r ReferralResolver) Option {
	return func(t *Trader) { t.referrals = r }
}

func WithSybilGate(g SybilGate) Option {
	return func(t *Trader) { t.gate = g }
}

func WithClock(now func() time.Time) Option {
	return func(t *Trader) { t.now = now }
}

func NewTrader(repo CurveRepository, opts ...Option) *Trader {
	t := &Trader{
		repo:      repo,
		referrals: PoolReferrals{Pool: DefaultRewardsPool},
		gate:      allowAll{},
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.metrics == nil {
		t.metrics = NewMetrics(nil)
	}
	return t
}

// Quote prices a trade against the curve's current state without changing it.
func (t *Trader) Quote(ctx context.Context, curveID string, action key_curve.Action, amount decimal.Decimal, hasReferrer bool) (*key_curve.TradeQuote, error) {
	c, err := t.repo.Get(ctx, curveID)
	if err != nil {
		return nil, err
	}
	engine, state, err := quoteState(c)
	if err != nil {
		return nil, fmt.Errorf("curve %s: %w", curveID, err)
	}
	q, err := engine.Quote(action, amount, state, hasReferrer)
	if err != nil {
		return nil, err
	}
	t.metrics.QuotesTotal.WithLabelValues(action.String()).Inc()
	t.metrics.observeWarnings(q.Warnings)
	return q, nil
}

// Buy spends req.Amount on keys.
func (t *Trader) Buy(ctx context.Context, req Request) (*Event, error) {
	return t.execute(ctx, key_curve.ActionBuy, req)
}

// Sell sells enough keys to receive req.Amount, or as close as the curve allows.
func (t *Trader) Sell(ctx context.Context, req Request) (*Event, error) {
	return t.execute(ctx, key_curve.ActionSell, req)
}

func (t *Trader) execute(ctx context.Context, action key_curve.Action, req Request) (*Event, error) {
	start := t.now()
	log := t.logger.With(
		zap.String("curve", req.CurveID),
		zap.String("user", req.UserID),
		zap.Stringer("action", action),
		zap.Stringer("amount", req.Amount),
	)

	if err := t.precheck(ctx, req); err != nil {
		t.reject(log, action, err)
		return nil, err
	}

	ev, err := t.repo.Apply(ctx, req.CurveID, func(c *Curve) (*Event, error) {
		return t.apply(ctx, c, action, req)
	})
	if err != nil {
		t.reject(log, action, err)
		return nil, err
	}

	t.metrics.TradesTotal.WithLabelValues(action.String()).Inc()
	t.metrics.observeVolume(action.String(), ev.Amount)
	t.metrics.observeWarnings(ev.Warnings)
	t.metrics.TradeLatency.Observe(t.now().Sub(start).Seconds())
	log.Info("trade executed",
		zap.Stringer("event", ev.ID),
		zap.Stringer("keys", ev.Keys),
		zap.Stringer("price_after", ev.PriceAfter),
		zap.Strings("warnings", ev.Warnings),
	)
	return ev, nil
}

func (t *Trader) precheck(ctx context.Context, req Request) error {
	if req.UserID == "" {
		return fmt.Errorf("%w: missing user", key_curve.ErrInvalidInput)
	}
	if req.ReferrerID != "" && req.ReferrerID == req.UserID {
		return ErrSelfReferral
	}
	if err := t.gate.Check(ctx, req); err != nil {
		return fmt.Errorf("%w: %w", ErrTradeRejected, err)
	}
	return nil
}

// apply runs under the repository lock. c is a working copy; returning an
// error discards it.
func (t *Trader) apply(ctx context.Context, c *Curve, action key_curve.Action, req Request) (*Event, error) {
	if !c.Status.Tradable() {
		return nil, fmt.Errorf("%w: %s", ErrTradingDisabled, c.Status)
	}
	engine, state, err := quoteState(c)
	if err != nil {
		return nil, fmt.Errorf("curve %s: %w", c.ID, err)
	}
	q, err := engine.Quote(action, req.Amount, state, req.HasReferrer())
	if err != nil {
		return nil, err
	}
	if q.Degenerate {
		return nil, fmt.Errorf("%w: %v", ErrTradeRejected, q.Warnings)
	}
	if req.MinOut.IsPositive() {
		got := q.Keys
		if action == key_curve.ActionSell {
			got = q.TotalCost
		}
		if got.LessThan(req.MinOut) {
			return nil, fmt.Errorf("%w: got %s, want at least %s", ErrSlippageExceeded, got, req.MinOut)
		}
	}

	now := t.now()
	h := c.Holder(req.UserID)
	ev := &Event{
		ID:         uuid.New(),
		CurveID:    c.ID,
		Kind:       action,
		UserID:     req.UserID,
		ReferrerID: req.ReferrerID,
		Keys:       q.Keys,
		Amount:     q.TotalCost,
		Price:      q.PricePerKey,
		PriceAfter: q.PriceAfter,
		Fees:       q.Fees,
		Warnings:   q.Warnings,
		At:         now,
	}

	switch action {
	case key_curve.ActionBuy:
		payout, err := t.referrals.Route(ctx, req, q.Fees.Referral)
		if err != nil {
			return nil, fmt.Errorf("route referral: %w", err)
		}
		ev.Referral = payout
		c.Reserve = c.Reserve.Add(q.Fees.Reserve)
		c.TotalBuys++
		h.recordBuy(q.Keys, q.TotalCost, now)
	case key_curve.ActionSell:
		if h.Balance.LessThan(q.Keys) {
			return nil, fmt.Errorf("%w: holding %s, selling %s", ErrInsufficientBalance, h.Balance, q.Keys)
		}
		if c.Reserve.LessThan(q.TotalCost) {
			return nil, fmt.Errorf("%w: reserve %s, paying %s", ErrInsufficientReserve, c.Reserve, q.TotalCost)
		}
		c.Reserve = c.Reserve.Sub(q.TotalCost)
		c.TotalSells++
		h.recordSell(q.Keys, q.TotalCost, now)
	}

	c.Supply = q.SupplyAfter
	c.Price = q.PriceAfter
	c.VolumeTotal = c.VolumeTotal.Add(q.TotalCost)
	c.UpdatedAt = now
	return ev, nil
}

func (t *Trader) reject(log *zap.Logger, action key_curve.Action, err error) {
	t.metrics.RejectionsTotal.WithLabelValues(action.String(), rejectReason(err)).Inc()
	log.Warn("trade rejected", zap.Error(err))
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrCurveNotFound):
		return "not_found"
	case errors.Is(err, ErrTradingDisabled):
		return "disabled"
	case errors.Is(err, ErrSelfReferral):
		return "self_referral"
	case errors.Is(err, ErrInsufficientBalance):
		return "balance"
	case errors.Is(err, ErrInsufficientReserve):
		return "reserve"
	case errors.Is(err, ErrSlippageExceeded):
		return "slippage"
	case errors.Is(err, key_curve.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrTradeRejected):
		return "rejected"
	}
	return "error"
}

func (h *Holder) recordBuy(keys, cost decimal.Decimal, at time.Time) {
	if h.Balance.IsZero() && h.FirstBuyAt.IsZero() {
		h.FirstBuyAt = at
	}
	h.Balance = h.Balance.Add(keys)
	h.TotalInvested = h.TotalInvested.Add(cost)
	h.AvgPrice = h.TotalInvested.DivRound(h.Balance, shared.Precision)
	h.LastTradeAt = at
}

// recordSell realizes P&L against the average cost of the keys sold.
func (h *Holder) recordSell(keys, proceeds decimal.Decimal, at time.Time) {
	basis := h.AvgPrice.Mul(keys)
	h.RealizedPnl = h.RealizedPnl.Add(proceeds.Sub(basis))
	h.Balance = h.Balance.Sub(keys)
	if h.Balance.IsZero() {
		h.TotalInvested = decimal.Zero
		h.AvgPrice = decimal.Zero
	} else {
		h.TotalInvested = h.TotalInvested.Sub(basis)
	}
	h.LastTradeAt = at
}
