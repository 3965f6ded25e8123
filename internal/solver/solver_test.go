package solver

import (
	"errors"
	"math"
	"testing"

	"github.com/newthinker/bondcalc/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cosCubic(x float64) (float64, error) { return math.Cos(x) - x*x*x, nil }

func TestNewtonRaphson_CosCubic(t *testing.T) {
	res, err := NewNewtonRaphson().Solve(cosCubic)
	require.NoError(t, err)
	assert.True(t, res.Converged)
	assert.InDelta(t, 0.865474, res.Root, 1e-5)
	assert.Less(t, math.Abs(res.Residual), 1e-6)
	assert.Greater(t, res.Iterations, 0)
}

func TestNewtonRaphson_FlatDerivative(t *testing.T) {
	_, err := NewNewtonRaphson().Solve(func(float64) (float64, error) { return 1, nil })
	assert.True(t, errors.Is(err, core.ErrNonConvergence))
}

func TestNewtonRaphson_ExhaustionIsNotAnError(t *testing.T) {
	n := NewNewtonRaphson()
	n.MaxIteration = 1
	res, err := n.Solve(cosCubic)
	require.NoError(t, err)
	assert.False(t, res.Converged)
	assert.Equal(t, 1, res.Iterations)
}

func TestNewtonRaphson_PropagatesEvaluationError(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewNewtonRaphson().Solve(func(float64) (float64, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
}

func TestNewtonRaphson_NonFiniteIsNonConvergence(t *testing.T) {
	tests := []struct {
		name string
		f    Func
	}{
		{"nan at start", func(x float64) (float64, error) { return math.Sqrt(x - 5), nil }},
		{"nan slope", func(x float64) (float64, error) {
			if x > 0.01 {
				return math.NaN(), nil
			}
			return 1, nil
		}},
		{"infinite value", func(x float64) (float64, error) {
			if x > 0.01 {
				return math.Inf(1), nil
			}
			return x, nil
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewNewtonRaphson().Solve(tt.f)
			assert.True(t, errors.Is(err, core.ErrNonConvergence))
			assert.False(t, res.Converged)
		})
	}
}

func TestBisection(t *testing.T) {
	tests := []struct {
		name string
		f    Func
		want float64
	}{
		{"increasing", func(x float64) (float64, error) { return x - 0.25, nil }, 0.25},
		{"decreasing", func(x float64) (float64, error) { return 0.5 - 2*x, nil }, 0.25},
		{"cos cubic", cosCubic, 0.865474},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewBisection().Solve(tt.f)
			require.NoError(t, err)
			assert.True(t, res.Converged)
			if math.Abs(res.Root-tt.want) > 1e-6 {
				t.Errorf("Root = %v, want %v", res.Root, tt.want)
			}
		})
	}
}

func TestBisection_NoSignChange(t *testing.T) {
	res, err := NewBisection().Solve(func(x float64) (float64, error) { return x*x + 1, nil })
	require.NoError(t, err)
	assert.False(t, res.Converged)
}

func TestByName(t *testing.T) {
	rf, err := ByName("newton")
	require.NoError(t, err)
	assert.Equal(t, NameNewton, rf.Name())

	rf, err = ByName("Bisection")
	require.NoError(t, err)
	assert.Equal(t, NameBisection, rf.Name())

	_, err = ByName("brent")
	assert.True(t, errors.Is(err, core.ErrConfiguration))
}

func TestConfigure(t *testing.T) {
	rf, err := Configure("newton", Params{Start: 0.05, MaxIteration: 7, Lower: 3})
	require.NoError(t, err)
	n := rf.(*NewtonRaphson)
	assert.Equal(t, 0.05, n.Start)
	assert.Equal(t, 7, n.MaxIteration)
	assert.Equal(t, NewNewtonRaphson().Step, n.Step)

	rf, err = Configure("dichotomy", Params{Lower: -0.5, Precision: 1e-9})
	require.NoError(t, err)
	b := rf.(*Bisection)
	assert.Equal(t, -0.5, b.Lower)
	assert.Equal(t, 1.0, b.Upper)
	assert.Equal(t, 1e-9, b.Precision)

	_, err = Configure("bisection", Params{Lower: 2})
	assert.True(t, errors.Is(err, core.ErrConfiguration))
}
