package solver

import "math"

// Bisection halves [Lower, Upper] until the half width drops under Precision.
// It never returns an error for a bad bracket: the best midpoint reached is
// returned with Converged false, so callers should check Residual.
type Bisection struct {
	Lower        float64
	Upper        float64
	Precision    float64
	MaxIteration int
}

// NewBisection returns a solver with the default bracket [-0.999, 1].
func NewBisection() *Bisection {
	return &Bisection{
		Lower:        -1 + 1e-3,
		Upper:        1,
		Precision:    1e-7,
		MaxIteration: 100,
	}
}

func (b *Bisection) Name() string { return NameBisection }

func (b *Bisection) Solve(f Func) (Result, error) {
	lower, upper := b.Lower, b.Upper

	fl, err := eval(f, lower)
	if err != nil {
		return Result{}, err
	}
	fu, err := eval(f, upper)
	if err != nil {
		return Result{}, err
	}
	sign := 1.0
	if fu < fl {
		sign = -1
	}

	var res Result
	for i := 0; i < b.MaxIteration; i++ {
		x := (upper + lower) / 2
		fx, err := eval(f, x)
		if err != nil {
			return res, err
		}
		if sign*fx > 0 {
			upper = x
		} else {
			lower = x
		}
		res.Iterations = i + 1
		if (upper-lower)/2 < b.Precision {
			res.Converged = true
			break
		}
	}

	res.Root = (upper + lower) / 2
	if res.Residual, err = eval(f, res.Root); err != nil {
		return res, err
	}
	// without a sign change over the bracket the midpoint is not a root
	res.Converged = res.Converged && math.Signbit(fl) != math.Signbit(fu)
	return res, nil
}
