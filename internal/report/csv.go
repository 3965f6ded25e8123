package report

import (
	"fmt"
	"strings"

	"github.com/newthinker/bondcalc/internal/amortization"
	"github.com/newthinker/bondcalc/internal/valuation"
)

// RenderValuationsCSV renders valuations as CSV.
func RenderValuationsCSV(valuations []valuation.Valuation) string {
	var sb strings.Builder

	sb.WriteString("position_id,bond_id,date,method,nominal,acquisition_cost,yield,")
	sb.WriteString("accrued_coupon,amortization,amortized_price\n")

	for _, v := range valuations {
		r := NewValuationRow(v)
		yield := ""
		if r.Yield != nil {
			yield = r.Yield.String()
		}
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%s,%s,%s,%s,%s,%s\n",
			r.PositionID,
			r.BondID,
			r.Date,
			r.Method,
			r.Nominal.StringFixed(places),
			r.AcquisitionCost.StringFixed(places),
			yield,
			r.AccruedCoupon.StringFixed(places),
			r.Amortization.StringFixed(places),
			r.AmortizedPrice.StringFixed(places),
		))
	}

	return sb.String()
}

// RenderProfileCSV renders profile samples as CSV.
func RenderProfileCSV(samples []amortization.Sample) string {
	var sb strings.Builder

	sb.WriteString("date,amortization,amortized_price\n")
	for _, s := range samples {
		r := NewSampleRow(s)
		sb.WriteString(fmt.Sprintf("%s,%s,%s\n",
			r.Date,
			r.Amortization.StringFixed(places),
			r.AmortizedPrice.StringFixed(places),
		))
	}

	return sb.String()
}
