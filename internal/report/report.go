// Package report renders valuations and amortization profiles and exports
// them to the archive.
package report

import (
	"time"

	"github.com/newthinker/bondcalc/internal/amortization"
	"github.com/newthinker/bondcalc/internal/valuation"
	"github.com/shopspring/decimal"
)

const (
	dateLayout = "2006-01-02"
	places     = 2
)

// Money rounds a currency amount half away from zero to cents.
func Money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(places)
}

// ValuationRow is a valuation with rounded amounts.
type ValuationRow struct {
	PositionID      string           `json:"position_id"`
	BondID          string           `json:"bond_id"`
	Date            string           `json:"date"`
	Method          string           `json:"method"`
	Nominal         decimal.Decimal  `json:"nominal"`
	AcquisitionCost decimal.Decimal  `json:"acquisition_cost"`
	Yield           *decimal.Decimal `json:"yield,omitempty"`
	AccruedCoupon   decimal.Decimal  `json:"accrued_coupon"`
	Amortization    decimal.Decimal  `json:"amortization"`
	AmortizedPrice  decimal.Decimal  `json:"amortized_price"`
}

// yield is kept as a rate with eight decimals
func yieldRate(y *float64) *decimal.Decimal {
	if y == nil {
		return nil
	}
	r := decimal.NewFromFloat(*y).Round(8)
	return &r
}

// NewValuationRow rounds v.
func NewValuationRow(v valuation.Valuation) ValuationRow {
	return ValuationRow{
		PositionID:      v.PositionID,
		BondID:          v.BondID,
		Date:            v.Date.Format(dateLayout),
		Method:          string(v.Method),
		Nominal:         Money(v.Nominal),
		AcquisitionCost: Money(v.AcquisitionCost),
		Yield:           yieldRate(v.Yield),
		AccruedCoupon:   Money(v.AccruedCoupon),
		Amortization:    Money(v.Amortization),
		AmortizedPrice:  Money(v.AmortizedPrice),
	}
}

// SampleRow is a profile sample with rounded amounts.
type SampleRow struct {
	Date           string          `json:"date"`
	Amortization   decimal.Decimal `json:"amortization"`
	AmortizedPrice decimal.Decimal `json:"amortized_price"`
}

// NewSampleRow rounds s.
func NewSampleRow(s amortization.Sample) SampleRow {
	return SampleRow{
		Date:           s.Date.Format(dateLayout),
		Amortization:   Money(s.Amortization),
		AmortizedPrice: Money(s.AmortizedPrice),
	}
}

// Profile is a position's rendered amortization profile.
type Profile struct {
	PositionID string      `json:"position_id"`
	Method     string      `json:"method"`
	Interval   string      `json:"interval"`
	Generated  time.Time   `json:"generated_at"`
	Samples    []SampleRow `json:"samples"`
}

// NewProfile rounds samples.
func NewProfile(positionID, method, interval string, samples []amortization.Sample) Profile {
	rows := make([]SampleRow, len(samples))
	for i, s := range samples {
		rows[i] = NewSampleRow(s)
	}
	return Profile{
		PositionID: positionID,
		Method:     method,
		Interval:   interval,
		Generated:  time.Now().UTC(),
		Samples:    rows,
	}
}
