package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/krazyTry/keycurve-go/key_curve"
	"github.com/krazyTry/keycurve-go/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCurve(t *testing.T, id string) *trade.Curve {
	t.Helper()
	c, err := trade.NewCurve(id, "owner", key_curve.DefaultConfig())
	require.NoError(t, err)
	return c
}

func TestMemoryCreateGet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(nil)

	require.NoError(t, m.Create(ctx, newCurve(t, "a")))
	assert.ErrorIs(t, m.Create(ctx, newCurve(t, "a")), trade.ErrCurveExists)

	c, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, trade.StatusActive, c.Status)
	assert.True(t, c.Price.Equal(decimal.RequireFromString("0.01")))

	_, err = m.Get(ctx, "missing")
	assert.ErrorIs(t, err, trade.ErrCurveNotFound)
}

func TestMemoryGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(nil)
	require.NoError(t, m.Create(ctx, newCurve(t, "a")))

	c, err := m.Get(ctx, "a")
	require.NoError(t, err)
	c.Supply = decimal.NewFromInt(100)
	c.Holder("alice").Balance = decimal.NewFromInt(1)

	again, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, again.Supply.IsZero())
	assert.Empty(t, again.Holders)
}

func TestMemoryApplyCommitsOnSuccess(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(nil)
	require.NoError(t, m.Create(ctx, newCurve(t, "a")))

	ev, err := m.Apply(ctx, "a", func(c *trade.Curve) (*trade.Event, error) {
		c.Supply = decimal.NewFromInt(3)
		c.Holder("alice").Balance = decimal.NewFromInt(3)
		return &trade.Event{ID: uuid.New(), CurveID: c.ID, UserID: "alice"}, nil
	})
	require.NoError(t, err)

	c, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, c.Supply.Equal(decimal.NewFromInt(3)))
	assert.True(t, c.Holders["alice"].Balance.Equal(decimal.NewFromInt(3)))

	events, err := m.Events(ctx, "a")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ev.ID, events[0].ID)
}

func TestMemoryApplyDiscardsOnError(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(nil)
	require.NoError(t, m.Create(ctx, newCurve(t, "a")))

	boom := errors.New("boom")
	_, err := m.Apply(ctx, "a", func(c *trade.Curve) (*trade.Event, error) {
		c.Supply = decimal.NewFromInt(3)
		return nil, boom
	})
	require.ErrorIs(t, err, boom)

	c, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, c.Supply.IsZero())
	events, err := m.Events(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestMemoryApplyHonoursContext(t *testing.T) {
	m := NewMemory(nil)
	require.NoError(t, m.Create(context.Background(), newCurve(t, "a")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.Apply(ctx, "a", func(*trade.Curve) (*trade.Event, error) {
		t.Fatal("fn must not run")
		return nil, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemorySetStatus(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(nil)
	require.NoError(t, m.Create(ctx, newCurve(t, "a")))

	require.NoError(t, m.SetStatus(ctx, "a", trade.StatusLaunched))
	c, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, trade.StatusLaunched, c.Status)
	assert.ErrorIs(t, m.SetStatus(ctx, "b", trade.StatusFrozen), trade.ErrCurveNotFound)
}

func TestParseDecimals(t *testing.T) {
	var a, b decimal.Decimal
	require.NoError(t, parseDecimals(numeric{"0", &a}, numeric{"0", &b}))
	assert.True(t, a.IsZero())
	assert.True(t, b.IsZero())

	require.NoError(t, parseDecimals(numeric{"1.25", &a}, numeric{"1.25", &b}))
	assert.True(t, a.Equal(b))
	assert.Error(t, parseDecimals(numeric{"NaN", &a}))
}
