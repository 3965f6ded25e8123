// Package solver provides one-dimensional root finders.
package solver

import (
	"fmt"
	"strings"

	"github.com/newthinker/bondcalc/internal/core"
)

// Func is the equation to solve. An error aborts the search.
type Func func(x float64) (float64, error)

// Result describes the outcome of a search.
type Result struct {
	Root       float64
	Iterations int
	Residual   float64
	Converged  bool
}

// RootFinder finds x such that f(x) = 0.
type RootFinder interface {
	Name() string
	Solve(f Func) (Result, error)
}

// Solver names.
const (
	NameNewton    = "newton"
	NameBisection = "bisection"
)

// ByName returns a root finder with default parameters.
func ByName(name string) (RootFinder, error) {
	switch strings.ToLower(name) {
	case NameNewton, "newton-raphson", "":
		return NewNewtonRaphson(), nil
	case NameBisection, "dichotomy":
		return NewBisection(), nil
	default:
		return nil, core.Errorf(core.ErrConfiguration, "unknown root finder %q", name)
	}
}

func eval(f Func, x float64) (float64, error) {
	y, err := f(x)
	if err != nil {
		return 0, fmt.Errorf("evaluate at %g: %w", x, err)
	}
	return y, nil
}

// Params overrides a root finder's defaults. Zero fields keep them; fields
// the named finder does not use are ignored.
type Params struct {
	Start        float64
	Step         float64
	Precision    float64
	MaxIteration int
	Lower        float64
	Upper        float64
}

// Configure returns the named root finder tuned by p.
func Configure(name string, p Params) (RootFinder, error) {
	finder, err := ByName(name)
	if err != nil {
		return nil, err
	}
	switch f := finder.(type) {
	case *NewtonRaphson:
		if p.Start != 0 {
			f.Start = p.Start
		}
		if p.Step != 0 {
			f.Step = p.Step
		}
		if p.Precision != 0 {
			f.Precision = p.Precision
		}
		if p.MaxIteration != 0 {
			f.MaxIteration = p.MaxIteration
		}
	case *Bisection:
		if p.Lower != 0 {
			f.Lower = p.Lower
		}
		if p.Upper != 0 {
			f.Upper = p.Upper
		}
		if p.Precision != 0 {
			f.Precision = p.Precision
		}
		if p.MaxIteration != 0 {
			f.MaxIteration = p.MaxIteration
		}
		if f.Lower >= f.Upper {
			return nil, core.Errorf(core.ErrConfiguration, "bisection bracket [%g, %g] is empty", f.Lower, f.Upper)
		}
	}
	return finder, nil
}
