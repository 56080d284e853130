package main

import (
	"github.com/krazyTry/keycurve-go/key_curve"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type quoteOutput struct {
	Quote        *key_curve.TradeQuote `json:"quote"`
	SlippageBps  uint64                `json:"slippageBps,omitempty"`
	MinimumOut   *decimal.Decimal      `json:"minimumOut,omitempty"`
	DisplayPrice string                `json:"displayPrice"`
}

func newQuoteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "quote buy|sell",
		Short:     "Price a trade against a curve snapshot",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"buy", "sell"},
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
			referrer, _ := cmd.Flags().GetBool("referrer")
			bps, _ := cmd.Flags().GetUint64("slippage-bps")

			q, err := engine.Quote(action, amount, state, referrer)
			if err != nil {
				return err
			}
			a.logger.Info("quoted",
				zap.Stringer("action", action),
				zap.Stringer("amount", amount),
				zap.Stringer("keys", q.Keys),
				zap.Strings("warnings", q.Warnings),
			)

			out := quoteOutput{Quote: q, DisplayPrice: key_curve.FormatPrice(q.PriceAfter)}
			if bps > 0 {
				minOut := key_curve.MinimumOut(q, bps)
				out.SlippageBps = bps
				out.MinimumOut = &minOut
			}
			return writeJSON(cmd, out)
		},
	}
	cmd.Flags().String("amount", "", "currency to spend (buy) or receive (sell)")
	cmd.Flags().Bool("referrer", false, "the trade carries a referrer")
	cmd.Flags().Uint64("slippage-bps", 0, "report the minimum acceptable output at this tolerance")
	_ = cmd.MarkFlagRequired("amount")
	addStateFlags(cmd)
	return cmd
}
