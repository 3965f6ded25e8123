package main

import (
	"fmt"

	"github.com/newthinker/bondcalc/internal/amortization"
	"github.com/newthinker/bondcalc/internal/report"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	profilePosition string
	profileInterval string
	profileMethod   string
	profileExport   bool
	profileFormat   string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Print the amortization profile of a position",
	RunE:  runProfile,
}

func init() {
	profileCmd.Flags().StringVarP(&profilePosition, "position", "p", "", "position id")
	profileCmd.Flags().StringVarP(&profileInterval, "interval", "i", "1y", "sampling interval, e.g. 1d, 2w, 3m, 1y")
	profileCmd.Flags().StringVarP(&profileMethod, "method", "m", "", "valuation method (default from config)")
	profileCmd.Flags().BoolVar(&profileExport, "export", false, "also write the profile to storage")
	profileCmd.Flags().StringVarP(&profileFormat, "format", "f", "csv", "output format: csv or json")
	profileCmd.MarkFlagRequired("position")
	rootCmd.AddCommand(profileCmd)
}

func runProfile(cmd *cobra.Command, args []string) error {
	interval, err := amortization.ParseInterval(profileInterval)
	if err != nil {
		return err
	}
	e, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer e.log.Sync()

	calc, err := e.calculators.Get(profileMethod)
	if err != nil {
		return err
	}
	positions, err := e.positions([]string{profilePosition})
	if err != nil {
		return err
	}
	p := positions[0]

	var samples []amortization.Sample
	for s, err := range calc.Profile(p, interval) {
		if err != nil {
			return err
		}
		samples = append(samples, s)
	}

	if profileExport {
		path, err := report.Export(cmd.Context(), e.store, p.ID, samples)
		if err != nil {
			return err
		}
		e.log.Info("profile exported", zap.String("position", p.ID), zap.String("path", path))
	}

	out := cmd.OutOrStdout()
	switch profileFormat {
	case "json":
		data, err := report.RenderProfileJSON(report.NewProfile(p.ID, string(calc.Method()), profileInterval, samples))
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
	case "csv":
		fmt.Fprint(out, report.RenderProfileCSV(samples))
	default:
		return fmt.Errorf("unknown format %q", profileFormat)
	}
	return nil
}
