// Package yield solves for the internal yield of a position: the rate at
// which its remaining cashflows, seen from acquisition, price to its cost.
package yield

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/newthinker/bondcalc/internal/core"
	"github.com/newthinker/bondcalc/internal/metrics"
	"github.com/newthinker/bondcalc/internal/solver"
	"go.uber.org/zap"
)

// Pricer discounts a position's remaining cashflows at date with the rate
// supplied by ys.
type Pricer interface {
	PriceAt(p *core.Position, date time.Time, ys core.YieldSource) (float64, error)
}

// Solve outcomes, used as metric labels.
const (
	StatusConverged   = "converged"
	StatusUnconverged = "unconverged"
	StatusFailed      = "failed"
)

// Pricing schemes, used as memo keys on positions.
const (
	SchemeBase  = "base"
	SchemeDaily = "daily-coupon"
)

// Solver computes and memoizes position yields under one pricing scheme. It
// implements core.YieldSource.
type Solver struct {
	scheme  string
	pricer  Pricer
	finder  solver.RootFinder
	metrics *metrics.Registry
	logger  *zap.Logger
}

// NewSolver creates a yield solver. A nil finder means Newton-Raphson with
// default parameters.
func NewSolver(scheme string, pricer Pricer, finder solver.RootFinder, reg *metrics.Registry, logger *zap.Logger) *Solver {
	if finder == nil {
		finder = solver.NewNewtonRaphson()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Solver{scheme: scheme, pricer: pricer, finder: finder, metrics: reg, logger: logger}
}

// Anchor returns the date the yield is solved at: acquisition, or emission for
// holdings acquired before the bond was issued.
func Anchor(p *core.Position) time.Time {
	if p.AcquisitionDate.Before(p.Bond.EmissionDate) {
		return p.Bond.EmissionDate
	}
	return p.AcquisitionDate
}

// YieldRate returns the position's memoized yield, solving it on first use.
func (s *Solver) YieldRate(p *core.Position) (float64, error) {
	return p.ResolveYield(s.scheme, s.solve)
}

func (s *Solver) solve(p *core.Position) (float64, error) {
	anchor := Anchor(p)
	if !anchor.Before(p.Bond.MaturityDate) {
		return 0, nil
	}

	// trial rates stay local to the equation; only the root is memoized
	res, err := s.finder.Solve(func(y float64) (float64, error) {
		price, err := s.pricer.PriceAt(p, anchor, core.FixedYield(y))
		if err != nil {
			return 0, err
		}
		return price - p.AcquisitionCost, nil
	})
	if err != nil {
		s.metrics.RecordYieldSolve(StatusFailed, res.Iterations)
		s.logger.Warn("yield solve failed",
			zap.String("position", p.ID),
			zap.String("solver", s.finder.Name()),
			zap.Error(err),
		)
		var coded *core.Error
		if errors.As(err, &coded) {
			return 0, fmt.Errorf("yield for %s: %w", p.ID, err)
		}
		return 0, core.WrapError(core.ErrNonConvergence, fmt.Errorf("yield for %s: %w", p.ID, err))
	}

	if math.IsNaN(res.Root) || math.IsInf(res.Root, 0) {
		s.metrics.RecordYieldSolve(StatusFailed, res.Iterations)
		s.logger.Warn("yield solve returned a non-finite rate",
			zap.String("position", p.ID),
			zap.String("solver", s.finder.Name()),
			zap.Float64("root", res.Root),
		)
		return 0, core.Errorf(core.ErrNonConvergence, "yield for %s: non-finite root %g", p.ID, res.Root)
	}

	status := StatusConverged
	if !res.Converged {
		status = StatusUnconverged
		s.logger.Warn("yield solve stopped before reaching precision",
			zap.String("position", p.ID),
			zap.String("solver", s.finder.Name()),
			zap.Int("iterations", res.Iterations),
			zap.Float64("residual", res.Residual),
		)
	}
	s.metrics.RecordYieldSolve(status, res.Iterations)
	s.logger.Debug("yield solved",
		zap.String("position", p.ID),
		zap.Float64("yield", res.Root),
		zap.Int("iterations", res.Iterations),
	)
	return res.Root, nil
}
