// Package schedule generates coupon and redemption schedules for plain
// fixed-rate bonds.
package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/newthinker/bondcalc/internal/cashflow"
	"github.com/newthinker/bondcalc/internal/core"
	"github.com/newthinker/bondcalc/internal/daycount"
)

// Frequency is the number of months between coupons.
type Frequency int

// Supported coupon frequencies.
const (
	Monthly    Frequency = 1
	Quarterly  Frequency = 3
	HalfYearly Frequency = 6
	Yearly     Frequency = 12
)

// ParseFrequency reads a frequency name.
func ParseFrequency(s string) (Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yearly", "annual", "annually", "1y", "12m":
		return Yearly, nil
	case "half-yearly", "semi-annual", "semiannual", "6m":
		return HalfYearly, nil
	case "quarterly", "3m":
		return Quarterly, nil
	case "monthly", "1m":
		return Monthly, nil
	default:
		return 0, core.Errorf(core.ErrInvalidInput, "unknown coupon frequency %q", s)
	}
}

// Years returns the nominal length of one coupon period in years.
func (f Frequency) Years() float64 { return float64(f) / 12 }

func (f Frequency) String() string {
	switch f {
	case Yearly:
		return "yearly"
	case HalfYearly:
		return "half-yearly"
	case Quarterly:
		return "quarterly"
	case Monthly:
		return "monthly"
	default:
		return fmt.Sprintf("%dm", int(f))
	}
}

// CouponParams describes a fixed-rate coupon schedule. Rate is the coupon
// paid per period, per bond base.
type CouponParams struct {
	Emission  time.Time
	Maturity  time.Time
	Frequency Frequency
	Rate      float64

	// AdjustCoupons scales every coupon by the real length of its period
	// over the nominal one. AdjustFirstCoupon does so for the earliest
	// coupon only. Both need a convention other than ACT/ACT ICMA.
	AdjustCoupons     bool
	AdjustFirstCoupon bool
	Convention        string
}

// Coupons walks back from maturity one period at a time while the date is
// after emission.
func Coupons(p CouponParams) (cashflow.Series, error) {
	if p.Frequency <= 0 {
		return cashflow.Series{}, core.Errorf(core.ErrInvalidInput, "coupon frequency must be positive, got %d", p.Frequency)
	}
	if !p.Emission.Before(p.Maturity) {
		return cashflow.Series{}, core.Errorf(core.ErrInvalidSchedule, "emission %s not before maturity %s",
			p.Emission.Format("2006-01-02"), p.Maturity.Format("2006-01-02"))
	}

	var conv daycount.Convention
	if p.AdjustCoupons || p.AdjustFirstCoupon {
		if p.Convention == "" {
			return cashflow.Series{}, core.Errorf(core.ErrConfiguration, "coupon adjustment needs a day-count convention")
		}
		c, err := daycount.Lookup(p.Convention)
		if err != nil {
			return cashflow.Series{}, fmt.Errorf("coupon adjustment: %w", err)
		}
		conv = c
	}

	var (
		dates   []time.Time
		amounts []float64
	)
	for i := 0; ; i++ {
		date := daycount.AddMonths(p.Maturity, -i*int(p.Frequency))
		if !date.After(p.Emission) {
			break
		}
		amount := p.Rate
		if p.AdjustCoupons {
			amount *= p.periodRatio(conv, date)
		}
		dates = append(dates, date)
		amounts = append(amounts, amount)
	}

	if p.AdjustFirstCoupon && !p.AdjustCoupons && len(dates) > 0 {
		last := len(dates) - 1
		amounts[last] = p.Rate * p.periodRatio(conv, dates[last])
	}
	out, err := cashflow.New(dates, amounts)
	if err != nil {
		return cashflow.Series{}, core.WrapError(core.ErrInvalidSchedule, err)
	}
	return out, nil
}

// periodRatio is the real length of the period ending at date, clipped at
// emission, over its nominal length.
func (p CouponParams) periodRatio(conv daycount.Convention, date time.Time) float64 {
	start := daycount.AddMonths(date, -int(p.Frequency))
	if start.Before(p.Emission) {
		start = p.Emission
	}
	return conv.YearFraction(start, date) / p.Frequency.Years()
}

// Redemption returns a bullet redemption of amount at maturity.
func Redemption(maturity time.Time, amount float64) cashflow.Series {
	return cashflow.Single(maturity, amount)
}
