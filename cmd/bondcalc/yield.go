package main

import (
	"fmt"

	"github.com/newthinker/bondcalc/internal/valuation"
	"github.com/spf13/cobra"
)

var (
	yieldPositions []string
	yieldDaily     bool
)

var yieldCmd = &cobra.Command{
	Use:   "yield",
	Short: "Print the internal yield of configured positions",
	RunE:  runYield,
}

func init() {
	yieldCmd.Flags().StringSliceVarP(&yieldPositions, "position", "p", nil, "position ids (default all)")
	yieldCmd.Flags().BoolVar(&yieldDaily, "daily", false, "solve with daily spread coupons")
	rootCmd.AddCommand(yieldCmd)
}

func runYield(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer e.log.Sync()

	method := valuation.MethodActuarial
	if yieldDaily {
		method = valuation.MethodActuarialDaily
	}
	calc, err := e.calculators.Get(string(method))
	if err != nil {
		return err
	}
	positions, err := e.positions(yieldPositions)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, p := range positions {
		y, err := calc.YieldRate(p)
		if err != nil {
			return fmt.Errorf("position %s: %w", p.ID, err)
		}
		fmt.Fprintf(out, "%s\t%s\t%.6f%%\n", p.ID, p.Bond.ID, y*100)
	}
	return nil
}
