package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/krazyTry/keycurve-go/key_curve"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var defaultChartSupply = decimal.NewFromInt(1_000)

func newChartCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Sample the price curve",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := a.engine()
			if err != nil {
				return err
			}
			maxSupply, err := decimalFlag(cmd, "max-supply", defaultChartSupply)
			if err != nil {
				return err
			}
			steps, _ := cmd.Flags().GetInt("steps")
			points := engine.Chart(maxSupply, steps)

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return writeJSON(cmd, points)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(w, "supply\tprice\t")
			for _, p := range points {
				fmt.Fprintf(w, "%s\t%s\t\n", key_curve.FormatLargeNumber(p.Supply), key_curve.FormatPrice(p.Price))
			}
			return w.Flush()
		},
	}
	cmd.Flags().String("max-supply", "", "largest supply to sample (default 1000)")
	cmd.Flags().Int("steps", 10, "number of intervals")
	cmd.Flags().Bool("json", false, "print points as JSON")
	return cmd
}
