package main

import (
	"fmt"
	"time"

	"github.com/newthinker/bondcalc/internal/portfolio"
	"github.com/newthinker/bondcalc/internal/report"
	"github.com/spf13/cobra"
)

var (
	valueDate      string
	valueMethod    string
	valuePositions []string
	valueFormat    string
)

var valueCmd = &cobra.Command{
	Use:   "value",
	Short: "Value configured positions at a date",
	RunE:  runValue,
}

func init() {
	valueCmd.Flags().StringVar(&valueDate, "date", "", "valuation date YYYY-MM-DD (default today)")
	valueCmd.Flags().StringVarP(&valueMethod, "method", "m", "", "valuation method (default from config)")
	valueCmd.Flags().StringSliceVarP(&valuePositions, "position", "p", nil, "position ids (default all)")
	valueCmd.Flags().StringVarP(&valueFormat, "format", "f", "csv", "output format: csv or json")
	rootCmd.AddCommand(valueCmd)
}

func parseDateFlag(s string) (time.Time, error) {
	if s == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return portfolio.ParseDate(s)
}

func runValue(cmd *cobra.Command, args []string) error {
	date, err := parseDateFlag(valueDate)
	if err != nil {
		return err
	}
	e, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer e.log.Sync()

	calc, err := e.calculators.Get(valueMethod)
	if err != nil {
		return err
	}
	positions, err := e.positions(valuePositions)
	if err != nil {
		return err
	}
	valuations, err := calc.ValueAll(cmd.Context(), positions, date)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch valueFormat {
	case "json":
		data, err := report.RenderValuationsJSON(valuations)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
	case "csv":
		fmt.Fprint(out, report.RenderValuationsCSV(valuations))
	default:
		return fmt.Errorf("unknown format %q", valueFormat)
	}
	return nil
}
