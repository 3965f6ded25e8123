package amortization

import (
	"fmt"
	"math"
	"time"

	"github.com/newthinker/bondcalc/internal/core"
	"github.com/newthinker/bondcalc/internal/daycount"
	"github.com/newthinker/bondcalc/internal/metrics"
	"github.com/newthinker/bondcalc/internal/projection"
	"github.com/newthinker/bondcalc/internal/solver"
	"github.com/newthinker/bondcalc/internal/yield"
	"go.uber.org/zap"
)

// nothingToAmortize is the redemption gap under which a non-indexed position
// is considered bought at par.
const nothingToAmortize = 1e-3

// Actuarial prices the remaining cashflows at the position's internal yield;
// amortization is that price minus cost.
type Actuarial struct {
	engine *projection.Engine
	yields *yield.Solver
}

// NewActuarial creates an actuarial model with its own yield solver. A nil
// finder means Newton-Raphson with default parameters.
func NewActuarial(engine *projection.Engine, finder solver.RootFinder, reg *metrics.Registry, logger *zap.Logger) *Actuarial {
	m := &Actuarial{engine: engine}
	scheme := yield.SchemeBase
	if engine.Daily() {
		scheme = yield.SchemeDaily
	}
	m.yields = yield.NewSolver(scheme, m, finder, reg, logger)
	return m
}

func (m *Actuarial) Name() string { return NameActuarial }

// YieldRate returns the position's memoized internal yield.
func (m *Actuarial) YieldRate(p *core.Position) (float64, error) {
	return m.yields.YieldRate(p)
}

// YieldSource exposes the solver for accrued coupon computations.
func (m *Actuarial) YieldSource() core.YieldSource { return m.yields }

func (m *Actuarial) Amortization(p *core.Position, date time.Time) (float64, error) {
	if !date.Before(p.Bond.MaturityDate) || date.Before(p.AcquisitionDate) {
		return 0, nil
	}

	redemptions, err := m.engine.FutureRedemptions(p, date, true)
	if err != nil {
		return 0, err
	}
	if math.Abs(redemptions.Sum()-p.AcquisitionCost) < nothingToAmortize && !p.Bond.IsInflationLinked() {
		return 0, nil
	}

	price, err := m.AmortizedPrice(p, date)
	if err != nil {
		return 0, err
	}
	return price - p.AcquisitionCost, nil
}

func (m *Actuarial) AmortizedPrice(p *core.Position, date time.Time) (float64, error) {
	return m.PriceAt(p, date, m.yields)
}

// PriceAt discounts the cashflows remaining after date, net of accrued coupon,
// at the rate supplied by ys.
func (m *Actuarial) PriceAt(p *core.Position, date time.Time, ys core.YieldSource) (float64, error) {
	flows, err := m.engine.FutureCashflows(p, date, ys)
	if err != nil {
		return 0, err
	}
	if flows.IsEmpty() {
		return 0, nil
	}
	conv, err := daycount.ForBond(p.Bond)
	if err != nil {
		return 0, fmt.Errorf("actuarial price for %s: %w", p.ID, err)
	}
	y, err := ys.YieldRate(p)
	if err != nil {
		return 0, err
	}

	var price float64
	for i := 0; i < flows.Len(); i++ {
		at, amount := flows.At(i)
		price += amount / math.Pow(1+y, conv.YearFraction(date, at))
	}
	return price, nil
}
