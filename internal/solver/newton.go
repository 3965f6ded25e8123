package solver

import (
	"math"

	"github.com/newthinker/bondcalc/internal/core"
)

// minDerivative is the slope under which a Newton step is refused.
const minDerivative = 1e-7

// NewtonRaphson iterates x -= f(x)/f'(x) with a forward-difference derivative.
// Running out of iterations is not an error: the last iterate is returned with
// Converged set to false.
type NewtonRaphson struct {
	Start        float64
	Step         float64
	Precision    float64
	MaxIteration int
}

// NewNewtonRaphson returns a solver with the default parameters.
func NewNewtonRaphson() *NewtonRaphson {
	return &NewtonRaphson{
		Start:        0.01,
		Step:         1e-7,
		Precision:    1e-6,
		MaxIteration: 100,
	}
}

func (n *NewtonRaphson) Name() string { return NameNewton }

func (n *NewtonRaphson) Solve(f Func) (Result, error) {
	x := n.Start
	fx, err := eval(f, x)
	if err != nil {
		return Result{}, err
	}
	if !finite(fx) {
		return Result{Root: x, Residual: fx}, core.Errorf(core.ErrNonConvergence, "f(%g) = %g", x, fx)
	}

	res := Result{Root: x, Residual: fx}
	for i := 0; i < n.MaxIteration; i++ {
		upper, err := eval(f, x+n.Step)
		if err != nil {
			return res, err
		}
		slope := (upper - fx) / n.Step
		if !finite(slope) {
			return res, core.Errorf(core.ErrNonConvergence,
				"derivative %g at x=%g after %d iterations", slope, x, i)
		}
		if math.Abs(slope) < minDerivative {
			return res, core.Errorf(core.ErrNonConvergence,
				"derivative %g too small at x=%g after %d iterations", slope, x, i)
		}

		x -= fx / slope
		if fx, err = eval(f, x); err != nil {
			return res, err
		}
		if !finite(x) || !finite(fx) {
			return res, core.Errorf(core.ErrNonConvergence,
				"iterate diverged to f(%g) = %g after %d iterations", x, fx, i+1)
		}
		res = Result{Root: x, Iterations: i + 1, Residual: fx}
		if math.Abs(fx) < n.Precision {
			res.Converged = true
			return res, nil
		}
	}
	return res, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
