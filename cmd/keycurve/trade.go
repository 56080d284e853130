package main

import (
	"github.com/krazyTry/keycurve-go/key_curve"
	"github.com/krazyTry/keycurve-go/store"
	"github.com/krazyTry/keycurve-go/trade"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type curveOutput struct {
	ID          string                   `json:"id"`
	OwnerID     string                   `json:"ownerId"`
	Status      trade.Status             `json:"status"`
	State       key_curve.CurveState     `json:"state"`
	VolumeTotal decimal.Decimal          `json:"volumeTotal"`
	TotalBuys   uint64                   `json:"totalBuys"`
	TotalSells  uint64                   `json:"totalSells"`
	HolderCount int                      `json:"holderCount"`
	Holders     map[string]*trade.Holder `json:"holders"`
}

func curveView(c *trade.Curve) curveOutput {
	return curveOutput{
		ID:          c.ID,
		OwnerID:     c.OwnerID,
		Status:      c.Status,
		State:       c.State(),
		VolumeTotal: c.VolumeTotal,
		TotalBuys:   c.TotalBuys,
		TotalSells:  c.TotalSells,
		HolderCount: c.HolderCount(),
		Holders:     c.Holders,
	}
}

func newTradeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "trade buy|sell CURVE",
		Short:     "Execute a trade against a stored curve",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"buy", "sell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := key_curve.ParseAction(args[0])
			if err != nil {
				return err
			}
			amount, err := decimalFlag(cmd, "amount", decimal.Zero)
			if err != nil {
				return err
			}
			minOut, err := decimalFlag(cmd, "min-out", decimal.Zero)
			if err != nil {
				return err
			}
			user, _ := cmd.Flags().GetString("user")
			referrer, _ := cmd.Flags().GetString("referrer")
			req := trade.Request{
				CurveID:    args[1],
				UserID:     user,
				ReferrerID: referrer,
				Amount:     amount,
				MinOut:     minOut,
			}

			return a.withPostgres(cmd.Context(), func(pg *store.Postgres) error {
				t := trade.NewTrader(pg, trade.WithLogger(a.logger))
				exec := t.Buy
				if action == key_curve.ActionSell {
					exec = t.Sell
				}
				ev, err := exec(cmd.Context(), req)
				if err != nil {
					return err
				}
				return writeJSON(cmd, ev)
			})
		},
	}
	cmd.Flags().String("user", "", "trading user")
	cmd.Flags().String("referrer", "", "referring user")
	cmd.Flags().String("amount", "", "currency to spend (buy) or receive (sell)")
	cmd.Flags().String("min-out", "", "least keys (buy) or currency (sell) to accept")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}
