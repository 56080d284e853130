package trade_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/krazyTry/keycurve-go/key_curve"
	"github.com/krazyTry/keycurve-go/store"
	"github.com/krazyTry/keycurve-go/trade"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const curveID = "curve-1"

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	repo    *store.Memory
	trader  *trade.Trader
	metrics *trade.Metrics
}

func newFixture(t *testing.T, opts ...trade.Option) *fixture {
	t.Helper()
	ctx := context.Background()
	repo := store.NewMemory(zaptest.NewLogger(t))
	c, err := trade.NewCurve(curveID, "owner", key_curve.DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, c))

	m := trade.NewMetrics(prometheus.NewRegistry())
	clock := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	opts = append([]trade.Option{
		trade.WithLogger(zaptest.NewLogger(t)),
		trade.WithMetrics(m),
		trade.WithClock(func() time.Time { return clock }),
	}, opts...)
	return &fixture{repo: repo, trader: trade.NewTrader(repo, opts...), metrics: m}
}

func (f *fixture) curve(t *testing.T) *trade.Curve {
	t.Helper()
	c, err := f.repo.Get(context.Background(), curveID)
	require.NoError(t, err)
	return c
}

func TestBuyUpdatesCurveAndHolder(t *testing.T) {
	f := newFixture(t)

	ev, err := f.trader.Buy(context.Background(), trade.Request{CurveID: curveID, UserID: "alice", Amount: d("1")})
	require.NoError(t, err)

	assert.Equal(t, key_curve.ActionBuy, ev.Kind)
	assert.True(t, ev.Keys.Equal(d("73.205")), ev.Keys.String())
	assert.True(t, ev.Amount.Equal(d("0.99999860125")), ev.Amount.String())
	assert.True(t, ev.Referral.ToRewardsPool)
	assert.Equal(t, trade.DefaultRewardsPool, ev.Referral.Recipient)
	assert.True(t, ev.Referral.Amount.Equal(ev.Fees.Referral))

	c := f.curve(t)
	assert.True(t, c.Supply.Equal(ev.Keys))
	assert.True(t, c.Price.Equal(d("0.0173205")), c.Price.String())
	assert.True(t, c.Reserve.Equal(d("0.939998685175")), c.Reserve.String())
	assert.True(t, c.VolumeTotal.Equal(ev.Amount))
	assert.EqualValues(t, 1, c.TotalBuys)
	assert.Equal(t, 1, c.HolderCount())

	h := c.Holders["alice"]
	require.NotNil(t, h)
	assert.True(t, h.Balance.Equal(ev.Keys))
	assert.True(t, h.TotalInvested.Equal(ev.Amount))
	assert.True(t, h.AvgPrice.Mul(h.Balance).Sub(h.TotalInvested).Abs().LessThan(d("0.000000001")))
	assert.False(t, h.FirstBuyAt.IsZero())

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.TradesTotal.WithLabelValues("buy")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.WarningsTotal.WithLabelValues("high_impact")))
}

func TestBuyRoutesReferralToReferrer(t *testing.T) {
	f := newFixture(t)

	ev, err := f.trader.Buy(context.Background(), trade.Request{CurveID: curveID, UserID: "alice", ReferrerID: "bob", Amount: d("0.5")})
	require.NoError(t, err)
	assert.Equal(t, "bob", ev.Referral.Recipient)
	assert.False(t, ev.Referral.ToRewardsPool)
	assert.True(t, ev.Referral.Amount.IsPositive())
}

func TestSellRealizesPnl(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	buy, err := f.trader.Buy(ctx, trade.Request{CurveID: curveID, UserID: "alice", Amount: d("1")})
	require.NoError(t, err)
	before := f.curve(t)

	sell, err := f.trader.Sell(ctx, trade.Request{CurveID: curveID, UserID: "alice", Amount: d("0.1")})
	require.NoError(t, err)
	assert.Equal(t, key_curve.ActionSell, sell.Kind)
	assert.True(t, sell.Keys.IsPositive())
	assert.True(t, sell.Amount.LessThanOrEqual(d("0.1")))
	assert.True(t, sell.Fees.Tax.IsPositive())
	assert.True(t, sell.Referral.Amount.IsZero())

	c := f.curve(t)
	assert.True(t, c.Supply.Equal(before.Supply.Sub(sell.Keys)))
	assert.True(t, c.Reserve.Equal(before.Reserve.Sub(sell.Amount)))
	assert.True(t, c.Price.LessThan(before.Price))
	assert.EqualValues(t, 1, c.TotalSells)

	h := c.Holders["alice"]
	assert.True(t, h.Balance.Equal(buy.Keys.Sub(sell.Keys)))
	// marginal price sits above alice's average cost, even after the tax
	assert.True(t, h.RealizedPnl.IsPositive(), h.RealizedPnl.String())
}

func TestSellBeyondBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.trader.Buy(ctx, trade.Request{CurveID: curveID, UserID: "alice", Amount: d("1")})
	require.NoError(t, err)
	_, err = f.trader.Buy(ctx, trade.Request{CurveID: curveID, UserID: "bob", Amount: d("0.1")})
	require.NoError(t, err)
	before := f.curve(t)

	_, err = f.trader.Sell(ctx, trade.Request{CurveID: curveID, UserID: "bob", Amount: d("0.5")})
	require.ErrorIs(t, err, trade.ErrInsufficientBalance)

	after := f.curve(t)
	assert.True(t, after.Supply.Equal(before.Supply))
	assert.True(t, after.Reserve.Equal(before.Reserve))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.RejectionsTotal.WithLabelValues("sell", "balance")))
}

func TestSellWithoutPositionIsRejected(t *testing.T) {
	f := newFixture(t)

	// an empty curve has nothing sellable
	_, err := f.trader.Sell(context.Background(), trade.Request{CurveID: curveID, UserID: "alice", Amount: d("1")})
	require.ErrorIs(t, err, trade.ErrTradeRejected)
}

func TestTradeRejections(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		opts    []trade.Option
		prepare func(t *testing.T, f *fixture)
		req     trade.Request
		want    error
		reason  string
	}{
		{
			name:   "unknown curve",
			req:    trade.Request{CurveID: "nope", UserID: "alice", Amount: d("1")},
			want:   trade.ErrCurveNotFound,
			reason: "not_found",
		},
		{
			name:   "self referral",
			req:    trade.Request{CurveID: curveID, UserID: "alice", ReferrerID: "alice", Amount: d("1")},
			want:   trade.ErrSelfReferral,
			reason: "self_referral",
		},
		{
			name:   "banned user",
			opts:   []trade.Option{trade.WithSybilGate(trade.NewBanList("mallory"))},
			req:    trade.Request{CurveID: curveID, UserID: "mallory", Amount: d("1")},
			want:   trade.ErrTradeRejected,
			reason: "rejected",
		},
		{
			name: "frozen curve",
			prepare: func(t *testing.T, f *fixture) {
				require.NoError(t, f.repo.SetStatus(ctx, curveID, trade.StatusFrozen))
			},
			req:    trade.Request{CurveID: curveID, UserID: "alice", Amount: d("1")},
			want:   trade.ErrTradingDisabled,
			reason: "disabled",
		},
		{
			name:   "amount too small",
			req:    trade.Request{CurveID: curveID, UserID: "alice", Amount: d("0.001")},
			want:   trade.ErrTradeRejected,
			reason: "rejected",
		},
		{
			name:   "slippage",
			req:    trade.Request{CurveID: curveID, UserID: "alice", Amount: d("1"), MinOut: d("100")},
			want:   trade.ErrSlippageExceeded,
			reason: "slippage",
		},
		{
			name:   "negative amount",
			req:    trade.Request{CurveID: curveID, UserID: "alice", Amount: d("-1")},
			want:   key_curve.ErrInvalidInput,
			reason: "invalid_input",
		},
		{
			name:   "missing user",
			req:    trade.Request{CurveID: curveID, Amount: d("1")},
			want:   key_curve.ErrInvalidInput,
			reason: "invalid_input",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.opts...)
			if tt.prepare != nil {
				tt.prepare(t, f)
			}

			_, err := f.trader.Buy(ctx, tt.req)
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.RejectionsTotal.WithLabelValues("buy", tt.reason)))

			if tt.req.CurveID == curveID {
				c := f.curve(t)
				assert.True(t, c.Supply.IsZero())
				assert.Empty(t, c.Holders)
			}
		})
	}
}

func TestQuoteDoesNotMutate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	q, err := f.trader.Quote(ctx, curveID, key_curve.ActionBuy, d("1"), false)
	require.NoError(t, err)
	assert.True(t, q.Keys.Equal(d("73.205")))
	assert.True(t, f.curve(t).Supply.IsZero())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.QuotesTotal.WithLabelValues("buy")))

	_, err = f.trader.Quote(ctx, "nope", key_curve.ActionBuy, d("1"), false)
	assert.ErrorIs(t, err, trade.ErrCurveNotFound)
}

func TestConcurrentBuysAreSerialised(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const n = 20
	events := make([]*trade.Event, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ev, err := f.trader.Buy(ctx, trade.Request{CurveID: curveID, UserID: "alice", Amount: d("0.1")})
			assert.NoError(t, err)
			events[i] = ev
		}()
	}
	wg.Wait()

	supply, reserve := decimal.Zero, decimal.Zero
	for _, ev := range events {
		require.NotNil(t, ev)
		supply = supply.Add(ev.Keys)
		reserve = reserve.Add(ev.Fees.Reserve)
	}
	c := f.curve(t)
	assert.True(t, c.Supply.Equal(supply), "%s != %s", c.Supply, supply)
	assert.True(t, c.Reserve.Equal(reserve))
	assert.EqualValues(t, n, c.TotalBuys)
	assert.True(t, c.Holders["alice"].Balance.Equal(supply))

	logged, err := f.repo.Events(ctx, curveID)
	require.NoError(t, err)
	assert.Len(t, logged, n)
}

type failingResolver struct{}

func (failingResolver) Route(context.Context, trade.Request, decimal.Decimal) (trade.Payout, error) {
	return trade.Payout{}, errors.New("referral service down")
}

func TestReferralFailureRollsBack(t *testing.T) {
	f := newFixture(t, trade.WithReferralResolver(failingResolver{}))

	_, err := f.trader.Buy(context.Background(), trade.Request{CurveID: curveID, UserID: "alice", Amount: d("1")})
	require.Error(t, err)
	assert.True(t, f.curve(t).Supply.IsZero())
}
