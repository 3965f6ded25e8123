package core

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/newthinker/bondcalc/internal/cashflow"
)

// DefaultBase is the face base amounts are quoted against.
const DefaultBase = 100.0

// BondParams holds the fields needed to build a Bond.
type BondParams struct {
	ID             string
	EmissionDate   time.Time
	MaturityDate   time.Time
	Base           float64 // 0 means DefaultBase
	Coupons        cashflow.Series
	Redemptions    cashflow.Series
	DayCount       string // convention name, resolved by the daycount registry
	InflationIndex string // empty when the bond is not inflation linked
}

// Bond is an instrument's schedule. It is immutable after construction except
// for the inflation coefficients, which callers may append to.
type Bond struct {
	ID             string
	EmissionDate   time.Time
	MaturityDate   time.Time
	Base           float64
	Coupons        cashflow.Series
	Redemptions    cashflow.Series
	DayCount       string
	InflationIndex string

	mu           sync.RWMutex
	coefficients map[time.Time]float64
}

// NewBond validates params and returns a Bond.
func NewBond(p BondParams) (*Bond, error) {
	if p.Base == 0 {
		p.Base = DefaultBase
	}
	if p.Base < 0 {
		return nil, Errorf(ErrInvalidInput, "bond %s: base must be positive, got %g", p.ID, p.Base)
	}
	if !p.EmissionDate.Before(p.MaturityDate) {
		return nil, Errorf(ErrInvalidSchedule, "bond %s: emission %s not before maturity %s",
			p.ID, p.EmissionDate.Format("2006-01-02"), p.MaturityDate.Format("2006-01-02"))
	}
	if p.DayCount == "" {
		return nil, Errorf(ErrConfiguration, "bond %s: day-count convention required", p.ID)
	}

	return &Bond{
		ID:             p.ID,
		EmissionDate:   p.EmissionDate,
		MaturityDate:   p.MaturityDate,
		Base:           p.Base,
		Coupons:        p.Coupons,
		Redemptions:    p.Redemptions,
		DayCount:       p.DayCount,
		InflationIndex: p.InflationIndex,
		coefficients:   make(map[time.Time]float64),
	}, nil
}

// Emission implements daycount.Schedule.
func (b *Bond) Emission() time.Time { return b.EmissionDate }

// Maturity implements daycount.Schedule.
func (b *Bond) Maturity() time.Time { return b.MaturityDate }

// CouponSchedule implements daycount.Schedule.
func (b *Bond) CouponSchedule() cashflow.Series { return b.Coupons }

// Convention implements daycount.Schedule.
func (b *Bond) Convention() string { return b.DayCount }

// IsInflationLinked reports whether the bond references an inflation index.
func (b *Bond) IsInflationLinked() bool { return b.InflationIndex != "" }

// SetInflationCoefficient records the fixed inflation coefficient for date.
func (b *Bond) SetInflationCoefficient(date time.Time, coefficient float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.coefficients == nil {
		b.coefficients = make(map[time.Time]float64)
	}
	b.coefficients[date] = coefficient
}

// InflationCoefficient returns the coefficient recorded exactly at date.
func (b *Bond) InflationCoefficient(date time.Time) (float64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.coefficients[date]
	return v, ok
}

// LatestInflationCoefficient returns the coefficient recorded at the latest
// date at or before date.
func (b *Bond) LatestInflationCoefficient(date time.Time) (time.Time, float64, bool) {
	dates := b.InflationCoefficientDates()
	i := sort.Search(len(dates), func(i int) bool { return dates[i].After(date) }) - 1
	if i < 0 {
		return time.Time{}, 0, false
	}
	v, _ := b.InflationCoefficient(dates[i])
	return dates[i], v, true
}

// InflationCoefficientDates returns the recorded coefficient dates in order.
func (b *Bond) InflationCoefficientDates() []time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	dates := make([]time.Time, 0, len(b.coefficients))
	for d := range b.coefficients {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

func (b *Bond) String() string {
	return fmt.Sprintf("Bond(%s %s→%s %s)", b.ID,
		b.EmissionDate.Format("2006-01-02"), b.MaturityDate.Format("2006-01-02"), b.DayCount)
}
