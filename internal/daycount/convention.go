// Package daycount implements the year-fraction conventions used to accrue
// coupons and discount cashflows.
package daycount

import (
	"time"

	"github.com/newthinker/bondcalc/internal/cashflow"
)

// Canonical convention names.
const (
	NameAct365     = "ACT/365"
	NameAct360     = "ACT/360"
	Name30360      = "30/360"
	Name30E360     = "30E/360"
	NameActActISDA = "ACT/ACT"
	NameActActICMA = "ACT/ACT ICMA"
)

// Convention turns a pair of dates into a signed year fraction.
// YearFraction(d, d) is always 0.
type Convention interface {
	Name() string
	YearFraction(from, to time.Time) float64
}

// Schedule is the part of a bond a convention may depend on.
type Schedule interface {
	Emission() time.Time
	Maturity() time.Time
	CouponSchedule() cashflow.Series
	Convention() string
}

// civil strips the clock so day arithmetic is not affected by time of day or
// zone offsets.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Days returns the signed number of calendar days from from to to.
func Days(from, to time.Time) float64 {
	return float64(civil(to).Sub(civil(from)).Hours() / 24)
}

// Act365 is actual days over 365.
type Act365 struct{}

func (Act365) Name() string { return NameAct365 }

func (Act365) YearFraction(from, to time.Time) float64 { return Days(from, to) / 365 }

// Act360 is actual days over 360.
type Act360 struct{}

func (Act360) Name() string { return NameAct360 }

func (Act360) YearFraction(from, to time.Time) float64 { return Days(from, to) / 360 }

// Thirty360 counts every month as 30 days without clipping day 31.
type Thirty360 struct{}

func (Thirty360) Name() string { return Name30360 }

func (Thirty360) YearFraction(from, to time.Time) float64 {
	return thirty(from.Year(), int(from.Month()), from.Day(), to.Year(), int(to.Month()), to.Day())
}

// ThirtyE360 is the Eurobond basis: day 31 becomes 30 on both ends.
type ThirtyE360 struct{}

func (ThirtyE360) Name() string { return Name30E360 }

func (ThirtyE360) YearFraction(from, to time.Time) float64 {
	d1, d2 := from.Day(), to.Day()
	if d1 == 31 {
		d1 = 30
	}
	if d2 == 31 {
		d2 = 30
	}
	return thirty(from.Year(), int(from.Month()), d1, to.Year(), int(to.Month()), d2)
}

func thirty(y1, m1, d1, y2, m2, d2 int) float64 {
	return float64(360*(y2-y1)+30*(m2-m1)+(d2-d1)) / 360
}
