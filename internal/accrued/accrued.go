// Package accrued computes the share of the running coupon period's coupon
// that a holding has earned at a date.
package accrued

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/newthinker/bondcalc/internal/core"
	"github.com/newthinker/bondcalc/internal/daycount"
)

// Model computes accrued coupon in position currency.
//
// ys supplies the yield for models that discount; callers solving for the
// yield pass a core.FixedYield trial value.
type Model interface {
	Name() string
	Accrued(p *core.Position, date time.Time, ys core.YieldSource) (float64, error)
}

// Model names.
const (
	NameLinear    = "linear"
	NameActuarial = "actuarial"
	NameNone      = "none"
)

// ByName returns the named model.
func ByName(name string) (Model, error) {
	switch strings.ToLower(name) {
	case NameLinear:
		return Linear{}, nil
	case NameActuarial:
		return Actuarial{}, nil
	case NameNone:
		return None{}, nil
	default:
		return nil, core.Errorf(core.ErrConfiguration, "unknown accrued coupon model %q", name)
	}
}

// period is the coupon period running at a date.
type period struct {
	start   time.Time
	end     time.Time
	amount  float64
	elapsed float64 // year fraction start -> date
	total   float64 // year fraction start -> end
}

// runningPeriod locates the next unpaid coupon after date. ok is false when
// nothing has accrued: no coupon left, or date at or before the period start.
func runningPeriod(p *core.Position, date time.Time) (period, bool, error) {
	coupons := p.Bond.Coupons
	idx := coupons.SearchAfter(date)
	if idx >= coupons.Len() {
		return period{}, false, nil
	}

	start := p.Bond.EmissionDate
	if idx > 0 {
		start = coupons.Date(idx - 1)
	}
	if !date.After(start) {
		return period{}, false, nil
	}

	conv, err := daycount.ForBond(p.Bond)
	if err != nil {
		return period{}, false, fmt.Errorf("accrued coupon for %s: %w", p.ID, err)
	}
	end := coupons.Date(idx)
	return period{
		start:   start,
		end:     end,
		amount:  coupons.Amount(idx) * p.Scale(),
		elapsed: conv.YearFraction(start, date),
		total:   conv.YearFraction(start, end),
	}, true, nil
}

func (pr period) linear() float64 {
	if pr.total == 0 {
		return 0
	}
	return pr.amount * pr.elapsed / pr.total
}

// Linear accrues pro rata of year fractions.
type Linear struct{}

func (Linear) Name() string { return NameLinear }

func (Linear) Accrued(p *core.Position, date time.Time, _ core.YieldSource) (float64, error) {
	pr, ok, err := runningPeriod(p, date)
	if !ok || err != nil {
		return 0, err
	}
	return pr.linear(), nil
}

// Actuarial accrues at the compounding rate of ys.
type Actuarial struct{}

func (Actuarial) Name() string { return NameActuarial }

func (Actuarial) Accrued(p *core.Position, date time.Time, ys core.YieldSource) (float64, error) {
	pr, ok, err := runningPeriod(p, date)
	if !ok || err != nil {
		return 0, err
	}
	if ys == nil {
		return 0, core.Errorf(core.ErrConfiguration, "actuarial accrued coupon for %s: no yield source", p.ID)
	}
	y, err := ys.YieldRate(p)
	if err != nil {
		return 0, fmt.Errorf("actuarial accrued coupon for %s: %w", p.ID, err)
	}
	if y == 0 {
		return pr.linear(), nil
	}

	denom := math.Pow(1+y, pr.total) - 1
	if denom == 0 {
		return 0, nil
	}
	return pr.amount * (math.Pow(1+y, pr.elapsed) - 1) / denom, nil
}

// None never accrues.
type None struct{}

func (None) Name() string { return NameNone }

func (None) Accrued(*core.Position, time.Time, core.YieldSource) (float64, error) { return 0, nil }
