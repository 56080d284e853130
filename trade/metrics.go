package trade

import (
	"strings"

	"github.com/krazyTry/keycurve-go/key_curve"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

// Metrics holds the Prometheus collectors for trading.
type Metrics struct {
	QuotesTotal     *prometheus.CounterVec
	TradesTotal     *prometheus.CounterVec
	TradeVolume     *prometheus.CounterVec
	WarningsTotal   *prometheus.CounterVec
	RejectionsTotal *prometheus.CounterVec
	TradeLatency    prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		QuotesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "keycurve",
				Subsystem: "trade",
				Name:      "quotes_total",
				Help:      "Total number of quotes priced",
			},
			[]string{"action"},
		),
		TradesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "keycurve",
				Subsystem: "trade",
				Name:      "trades_total",
				Help:      "Total number of trades executed",
			},
			[]string{"action"},
		),
		TradeVolume: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "keycurve",
				Subsystem: "trade",
				Name:      "volume_total",
				Help:      "Currency moved by executed trades",
			},
			[]string{"action"},
		),
		WarningsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "keycurve",
				Subsystem: "trade",
				Name:      "warnings_total",
				Help:      "Quote warnings by kind",
			},
			[]string{"warning"},
		),
		RejectionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "keycurve",
				Subsystem: "trade",
				Name:      "rejections_total",
				Help:      "Trades refused before or during apply",
			},
			[]string{"action", "reason"},
		),
		TradeLatency: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "keycurve",
				Subsystem: "trade",
				Name:      "latency_seconds",
				Help:      "Time to quote and apply a trade",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}
}

func (m *Metrics) observeWarnings(warnings []string) {
	for _, w := range warnings {
		m.WarningsTotal.WithLabelValues(warningLabel(w)).Inc()
	}
}

func (m *Metrics) observeVolume(action string, amount decimal.Decimal) {
	f, _ := amount.Float64()
	m.TradeVolume.WithLabelValues(action).Add(f)
}

// warningLabel keeps label cardinality bounded: the impact warning embeds a
// number.
func warningLabel(w string) string {
	switch w {
	case key_curve.WarnAmountTooSmall:
		return "amount_too_small"
	case key_curve.WarnNothingToSell:
		return "nothing_to_sell"
	case key_curve.WarnSellClamped:
		return "sell_clamped"
	case key_curve.WarnNotConverged:
		return "not_converged"
	case key_curve.WarnPriceMismatch:
		return "price_mismatch"
	case key_curve.WarnMinCostApplied:
		return "min_cost_applied"
	}
	if strings.HasPrefix(w, highImpactPrefix) {
		return "high_impact"
	}
	return "other"
}

var highImpactPrefix, _, _ = strings.Cut(key_curve.WarnHighImpactFormat, "%")
