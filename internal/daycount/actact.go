package daycount

import (
	"math"
	"time"

	"github.com/newthinker/bondcalc/internal/cashflow"
)

// ActActISDA splits the interval at calendar year boundaries and divides each
// piece by the length of its year.
type ActActISDA struct{}

func (ActActISDA) Name() string { return NameActActISDA }

func (ActActISDA) YearFraction(from, to time.Time) float64 {
	if to.Before(from) {
		return -ActActISDA{}.YearFraction(to, from)
	}
	from, to = civil(from), civil(to)
	y1, y2 := from.Year(), to.Year()
	if y1 == y2 {
		return Days(from, to) / yearLength(y1)
	}

	start := Days(from, time.Date(y1+1, 1, 1, 0, 0, 0, 0, time.UTC)) / yearLength(y1)
	middle := float64(y2 - y1 - 1)
	end := Days(time.Date(y2, 1, 1, 0, 0, 0, 0, time.UTC), to) / yearLength(y2)
	return start + middle + end
}

func isLeap(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

func yearLength(y int) float64 {
	if isLeap(y) {
		return 366
	}
	return 365
}

// frequencies are the admissible coupon counts per year.
var frequencies = []float64{0.5, 1, 2, 4, 12}

// minPeriodDays is the period length under which a coupon period is treated
// as degenerate and contributes nothing.
const minPeriodDays = 1e-6

// ActActICMA measures time in coupon periods of one bond's schedule. It is
// only meaningful bound to a bond, see ForBond.
type ActActICMA struct {
	emission  time.Time
	maturity  time.Time
	coupons   cashflow.Series
	frequency float64
}

// NewActActICMA binds the convention to s's coupon schedule.
func NewActActICMA(s Schedule) *ActActICMA {
	coupons := s.CouponSchedule()
	return &ActActICMA{
		emission:  s.Emission(),
		maturity:  s.Maturity(),
		coupons:   coupons,
		frequency: InferFrequency(coupons),
	}
}

func (*ActActICMA) Name() string { return NameActActICMA }

// Frequency returns the inferred number of coupons per year.
func (c *ActActICMA) Frequency() float64 { return c.frequency }

func (c *ActActICMA) YearFraction(from, to time.Time) float64 {
	if civil(from).Equal(civil(to)) {
		return 0
	}
	fromIdx := c.coupons.SearchAfter(from)
	toIdx := c.coupons.SearchAfter(to)
	periods := float64(toIdx-fromIdx) + c.fraction(to, toIdx) - c.fraction(from, fromIdx)
	return periods / c.frequency
}

// fraction is the elapsed share of the coupon period enclosing d, where idx is
// the index of the first coupon after d.
func (c *ActActICMA) fraction(d time.Time, idx int) float64 {
	start, end := c.emission, c.maturity
	if idx > 0 {
		start = c.coupons.Date(idx - 1)
	}
	if idx < c.coupons.Len() {
		end = c.coupons.Date(idx)
	}
	period := Days(start, end)
	if period < minPeriodDays {
		return 0
	}
	return Days(start, d) / period
}

// InferFrequency snaps the coupon density of a schedule to the nearest
// admissible frequency. Schedules with fewer than two coupons are annual.
func InferFrequency(coupons cashflow.Series) float64 {
	if coupons.Len() < 2 {
		return 1
	}
	span := Days(coupons.First(), coupons.Last()) / 365.25
	if span <= 0 {
		return 1
	}
	raw := float64(coupons.Len()) / span

	best := frequencies[0]
	for _, f := range frequencies[1:] {
		if math.Abs(f-raw) < math.Abs(best-raw) {
			best = f
		}
	}
	return best
}
