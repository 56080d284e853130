package main

import (
	"github.com/krazyTry/keycurve-go/key_curve"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type metricOutput struct {
	Metric  string          `json:"metric"`
	Value   decimal.Decimal `json:"value"`
	Display string          `json:"display"`
}

func newMetricsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Market metrics derived from a curve snapshot",
	}
	cmd.AddCommand(
		metricCmd(a, "marketcap", "Supply valued at the current price",
			func(cmd *cobra.Command, e *key_curve.Engine, s key_curve.CurveState) (decimal.Decimal, string, error) {
				v, err := e.MarketCap(s)
				if err != nil {
					return decimal.Decimal{}, "", err
				}
				return v, key_curve.FormatPrice(v), nil
			}),
		metricCmd(a, "holder", "Share of supply held by --balance, in percent",
			func(cmd *cobra.Command, e *key_curve.Engine, s key_curve.CurveState) (decimal.Decimal, string, error) {
				balance, err := decimalFlag(cmd, "balance", decimal.Zero)
				if err != nil {
					return decimal.Decimal{}, "", err
				}
				v, err := e.HolderPct(balance, s)
				if err != nil {
					return decimal.Decimal{}, "", err
				}
				return v, v.StringFixed(2) + "%", nil
			}, "balance"),
		metricCmd(a, "apy", "Fee yield on the reserve at --daily-volume, compounded daily",
			func(cmd *cobra.Command, e *key_curve.Engine, s key_curve.CurveState) (decimal.Decimal, string, error) {
				volume, err := decimalFlag(cmd, "daily-volume", decimal.Zero)
				if err != nil {
					return decimal.Decimal{}, "", err
				}
				v, err := e.EstimatedAPY(volume, s)
				if err != nil {
					return decimal.Decimal{}, "", err
				}
				return v, v.StringFixed(2) + "%", nil
			}, "daily-volume"),
		metricCmd(a, "breakeven", "Sell price needed to recover --invested over --keys",
			func(cmd *cobra.Command, e *key_curve.Engine, _ key_curve.CurveState) (decimal.Decimal, string, error) {
				invested, err := decimalFlag(cmd, "invested", decimal.Zero)
				if err != nil {
					return decimal.Decimal{}, "", err
				}
				keys, err := decimalFlag(cmd, "keys", decimal.Zero)
				if err != nil {
					return decimal.Decimal{}, "", err
				}
				v, err := e.BreakEvenPrice(invested, keys)
				if err != nil {
					return decimal.Decimal{}, "", err
				}
				return v, key_curve.FormatPrice(v), nil
			}, "invested", "keys"),
		newSlippageCmd(a),
	)
	return cmd
}

var metricFlagUsage = map[string]string{
	"balance":      "keys held",
	"daily-volume": "currency traded per day",
	"invested":     "currency spent on the position",
	"keys":         "keys in the position",
}

type metricFunc func(*cobra.Command, *key_curve.Engine, key_curve.CurveState) (decimal.Decimal, string, error)

func metricCmd(a *app, name, short string, fn metricFunc, flags ...string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := a.engine()
			if err != nil {
				return err
			}
			state, err := stateFlags(cmd)
			if err != nil {
				return err
			}
			v, display, err := fn(cmd, engine, state)
			if err != nil {
				return err
			}
			return writeJSON(cmd, metricOutput{Metric: name, Value: v, Display: display})
		},
	}
	addStateFlags(cmd)
	for _, f := range flags {
		cmd.Flags().String(f, "", metricFlagUsage[f])
	}
	return cmd
}

func newSlippageCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slippage buy|sell",
		Short: "Distance of the average execution price from the current price, in percent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := key_curve.ParseAction(args[0])
			if err != nil {
				return err
			}
			engine, err := a.engine()
			if err != nil {
				return err
			}
			amount, err := decimalFlag(cmd, "amount", decimal.Zero)
			if err != nil {
				return err
			}
			state, err := stateFlags(cmd)
			if err != nil {
				return err
			}
			v, err := engine.EstimateSlippage(action, amount, state.Supply)
			if err != nil {
				return err
			}
			return writeJSON(cmd, metricOutput{Metric: "slippage", Value: v, Display: v.StringFixed(2) + "%"})
		},
	}
	cmd.Flags().String("amount", "", "trade size in currency")
	addStateFlags(cmd)
	return cmd
}
