package math

import (
	"testing"

	"github.com/krazyTry/keycurve-go/key_curve/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarketCap(t *testing.T) {
	mc, err := MarketCap(d("1000"), d("0.11"))
	require.NoError(t, err)
	assert.True(t, mc.Equal(d("110")))

	_, err = MarketCap(d("-1"), d("0.11"))
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = MarketCap(d("1"), d("-0.11"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestHolderPct(t *testing.T) {
	pct, err := HolderPct(d("25"), d("200"))
	require.NoError(t, err)
	assert.True(t, pct.Equal(d("12.5")))

	pct, err = HolderPct(d("25"), decimal.Zero)
	require.NoError(t, err)
	assert.True(t, pct.IsZero())

	_, err = HolderPct(d("-25"), d("200"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestEstimatedAPY(t *testing.T) {
	apy := func(t *testing.T, volume, reserve, feePct string) decimal.Decimal {
		t.Helper()
		v, err := EstimatedAPY(d(volume), d(reserve), d(feePct))
		require.NoError(t, err)
		return v
	}

	t.Run("empty reserve", func(t *testing.T) {
		assert.True(t, apy(t, "1000", "0", "0.06").IsZero())
	})
	t.Run("compounded", func(t *testing.T) {
		assert.InDelta(t, 2.21409, apy(t, "100", "100000", "0.06").InexactFloat64(), 1e-3)
	})
	t.Run("capped", func(t *testing.T) {
		assert.True(t, apy(t, "1000000", "1", "0.06").Equal(shared.MaxAPYPct))
		assert.True(t, apy(t, "1500", "100000", "1").Equal(shared.MaxAPYPct))
	})
	t.Run("no volume", func(t *testing.T) {
		assert.True(t, apy(t, "0", "100", "0.06").IsZero())
	})
	t.Run("negative inputs", func(t *testing.T) {
		for _, in := range [][3]string{
			{"-100", "100000", "0.06"},
			{"100", "-1", "0.06"},
			{"100", "100000", "-0.06"},
		} {
			_, err := EstimatedAPY(d(in[0]), d(in[1]), d(in[2]))
			assert.ErrorIs(t, err, ErrInvalidInput, in)
		}
	})
}

func TestBreakEvenPrice(t *testing.T) {
	p, err := BreakEvenPrice(d("100"), d("10"), d("0.05"))
	require.NoError(t, err)
	assert.InDelta(t, 10.526315789, p.InexactFloat64(), 1e-9)

	p, err = BreakEvenPrice(d("100"), decimal.Zero, d("0.05"))
	require.NoError(t, err)
	assert.True(t, p.IsZero())

	_, err = BreakEvenPrice(d("100"), d("10"), d("1"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSampleCurve(t *testing.T) {
	pricer := func(s decimal.Decimal) decimal.Decimal { return Price(s, base, slope) }

	points := SampleCurve(d("1000"), 4, pricer)
	require.Len(t, points, 5)
	assert.True(t, points[0].Supply.IsZero())
	assert.True(t, points[0].Price.Equal(d("0.01")))
	assert.True(t, points[2].Supply.Equal(d("500")))
	assert.True(t, points[4].Supply.Equal(d("1000")))
	assert.True(t, points[4].Price.Equal(d("0.11")))

	assert.Empty(t, SampleCurve(d("1000"), 0, pricer))

	// restartable: ranging twice yields the same points
	seq := CurvePoints(d("10"), 3, pricer)
	var first, second []CurvePoint
	for p := range seq {
		first = append(first, p)
	}
	for p := range seq {
		second = append(second, p)
	}
	assert.Equal(t, first, second)
}
