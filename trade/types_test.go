package trade

import (
	"testing"
	"time"

	"github.com/krazyTry/keycurve-go/key_curve"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurveCloneIsDeep(t *testing.T) {
	c, err := NewCurve("c", "owner", key_curve.DefaultConfig())
	require.NoError(t, err)
	c.Holder("alice").Balance = decimal.NewFromInt(5)

	cp := c.Clone()
	cp.Holder("alice").Balance = decimal.NewFromInt(1)
	cp.Holder("bob")

	assert.True(t, c.Holders["alice"].Balance.Equal(decimal.NewFromInt(5)))
	assert.NotContains(t, c.Holders, "bob")
}

func TestStatusTradable(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusFrozen, StatusLaunched, StatusUtility} {
		assert.False(t, s.Tradable(), s)
	}
	assert.True(t, StatusActive.Tradable())
}

func TestHolderAccounting(t *testing.T) {
	h := &Holder{}
	h.recordBuy(decimal.NewFromInt(10), decimal.NewFromInt(1), time.Time{})
	h.recordBuy(decimal.NewFromInt(10), decimal.NewFromInt(3), time.Time{})
	assert.True(t, h.AvgPrice.Equal(decimal.RequireFromString("0.2")), h.AvgPrice.String())

	h.recordSell(decimal.NewFromInt(5), decimal.NewFromInt(2), time.Time{})
	assert.True(t, h.RealizedPnl.Equal(decimal.NewFromInt(1)), h.RealizedPnl.String())
	assert.True(t, h.Balance.Equal(decimal.NewFromInt(15)))
	assert.True(t, h.TotalInvested.Equal(decimal.NewFromInt(3)))
	assert.True(t, h.UnrealizedPnl(decimal.RequireFromString("0.3")).Equal(decimal.RequireFromString("1.5")))

	h.recordSell(decimal.NewFromInt(15), decimal.NewFromInt(3), time.Time{})
	assert.True(t, h.Balance.IsZero())
	assert.True(t, h.TotalInvested.IsZero())
	assert.True(t, h.AvgPrice.IsZero())
}

func TestWarningLabel(t *testing.T) {
	assert.Equal(t, "high_impact", warningLabel("High price impact: 73.21%"))
	assert.Equal(t, "sell_clamped", warningLabel(key_curve.WarnSellClamped))
	assert.Equal(t, "min_cost_applied", warningLabel(key_curve.WarnMinCostApplied))
	assert.Equal(t, "other", warningLabel("something else"))
}
