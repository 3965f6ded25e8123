package valuation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/newthinker/bondcalc/internal/amortization"
	"github.com/newthinker/bondcalc/internal/core"
	"github.com/newthinker/bondcalc/internal/metrics"
	"github.com/newthinker/bondcalc/internal/portfolio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func book(t *testing.T) *portfolio.Book {
	t.Helper()
	b, err := portfolio.Spec{
		Bonds: []portfolio.BondSpec{
			{ID: "FR5", Emission: "2020-01-01", Maturity: "2030-01-01", CouponRate: 5, DayCount: "ACT/ACT",
				Coefficients: map[string]float64{"2020-01-01": 1}},
			{ID: "NOCOEF", Emission: "2020-01-01", Maturity: "2030-01-01", CouponRate: 5, DayCount: "ACT/ACT"},
		},
		Positions: []portfolio.PositionSpec{
			{ID: "P1", Bond: "FR5", Nominal: 100_000, AcquisitionDate: "2020-01-01", AcquisitionCost: 98_000},
			{ID: "P2", Bond: "FR5", Nominal: 50_000, AcquisitionDate: "2020-01-01", CleanPrice: 100},
			{ID: "P3", Bond: "NOCOEF", Nominal: 10_000, AcquisitionDate: "2020-01-01", CleanPrice: 99},
		},
	}.Build()
	require.NoError(t, err)
	return b
}

func position(t *testing.T, b *portfolio.Book, id string) *core.Position {
	t.Helper()
	p, err := b.Position(id)
	require.NoError(t, err)
	return p
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("")
	require.NoError(t, err)
	assert.Equal(t, MethodActuarial, m)

	m, err = ParseMethod(" Actuarial-Daily ")
	require.NoError(t, err)
	assert.Equal(t, MethodActuarialDaily, m)

	_, err = ParseMethod("fifo")
	assert.True(t, errors.Is(err, core.ErrConfiguration))
}

func TestNew_UnknownOptions(t *testing.T) {
	_, err := New(Options{Inflation: "guess"})
	assert.True(t, errors.Is(err, core.ErrConfiguration))

	_, err = New(Options{Accrued: "guess"})
	assert.True(t, errors.Is(err, core.ErrConfiguration))
}

func TestValue_Actuarial(t *testing.T) {
	c, err := New(Options{Method: MethodActuarial})
	require.NoError(t, err)
	p := position(t, book(t), "P1")

	v, err := c.Value(p, d(2020, 1, 1))
	require.NoError(t, err)
	require.NotNil(t, v.Yield)
	assert.Greater(t, *v.Yield, 0.05)
	assert.Less(t, *v.Yield, 0.06)
	assert.InDelta(t, 98_000, v.AmortizedPrice, 1e-4)
	assert.InDelta(t, 0, v.Amortization, 1e-4)
	assert.Equal(t, "FR5", v.BondID)

	mid, err := c.Value(p, d(2025, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, *v.Yield, *mid.Yield)
	assert.Greater(t, mid.Amortization, 0.0)
	assert.Less(t, mid.Amortization, 2_000.0)
	assert.InDelta(t, 98_000+mid.Amortization, mid.AmortizedPrice, 1e-6)

	end, err := c.Value(p, d(2030, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, 0.0, end.Amortization)
}

func TestValue_ActuarialMidPeriodAcquisition(t *testing.T) {
	b, err := portfolio.Spec{
		Bonds: []portfolio.BondSpec{
			{ID: "FR5", Emission: "2020-01-01", Maturity: "2030-01-01", CouponRate: 5, DayCount: "ACT/ACT"},
		},
		Positions: []portfolio.PositionSpec{
			{ID: "MID", Bond: "FR5", Nominal: 100_000, AcquisitionDate: "2022-06-01", AcquisitionCost: 98_000},
		},
	}.Build()
	require.NoError(t, err)

	c, err := New(Options{Method: MethodActuarial})
	require.NoError(t, err)
	p := position(t, b, "MID")

	v, err := c.Value(p, d(2022, 6, 1))
	require.NoError(t, err)
	require.NotNil(t, v.Yield)
	assert.InDelta(t, 0.05327, *v.Yield, 1e-4)
	assert.InDelta(t, 98_000, v.AmortizedPrice, 1e-6)
	assert.Greater(t, v.AccruedCoupon, 0.0)
}

func TestValue_DivergentYieldIsAnError(t *testing.T) {
	b, err := portfolio.Spec{
		Bonds: []portfolio.BondSpec{
			{ID: "ZC", Emission: "2020-01-01", Maturity: "2030-01-01", DayCount: "ACT/ACT"},
		},
		Positions: []portfolio.PositionSpec{
			{ID: "RICH", Bond: "ZC", Nominal: 100_000, AcquisitionDate: "2022-06-01", AcquisitionCost: 5_000_000},
		},
	}.Build()
	require.NoError(t, err)

	c, err := New(Options{Method: MethodActuarial})
	require.NoError(t, err)
	p := position(t, b, "RICH")

	_, err = c.Value(p, d(2023, 1, 1))
	assert.True(t, errors.Is(err, core.ErrNonConvergence))

	_, ok := p.CachedYield("base")
	assert.False(t, ok)
}

func TestValue_ActuarialDaily(t *testing.T) {
	c, err := New(Options{Method: MethodActuarialDaily})
	require.NoError(t, err)
	p := position(t, book(t), "P1")

	v, err := c.Value(p, d(2024, 7, 1))
	require.NoError(t, err)
	require.NotNil(t, v.Yield)
	assert.Equal(t, 0.0, v.AccruedCoupon)
	assert.Greater(t, v.Amortization, 0.0)
}

func TestValue_Linear(t *testing.T) {
	c, err := New(Options{Method: MethodLinear})
	require.NoError(t, err)
	p := position(t, book(t), "P1")

	v, err := c.Value(p, d(2025, 1, 1))
	require.NoError(t, err)
	assert.Nil(t, v.Yield)
	assert.InDelta(t, 1_000, v.Amortization, 1e-9)
	assert.InDelta(t, 99_000, v.AmortizedPrice, 1e-9)
	assert.Equal(t, 0.0, v.AccruedCoupon)

	half, err := c.AccruedCoupon(p, d(2025, 7, 2))
	require.NoError(t, err)
	assert.InDelta(t, 5_000*182.0/365, half, 1e-9)

	_, err = c.YieldRate(p)
	assert.True(t, errors.Is(err, core.ErrConfiguration))
}

func TestValue_Full(t *testing.T) {
	c, err := New(Options{Method: MethodFull})
	require.NoError(t, err)
	p := position(t, book(t), "P1")

	v, err := c.Value(p, d(2025, 1, 1))
	require.NoError(t, err)
	assert.InDelta(t, 2_000, v.Amortization, 1e-9)
	assert.InDelta(t, 100_000, v.AmortizedPrice, 1e-9)
}

func TestFutureCashflows(t *testing.T) {
	c, err := New(Options{Method: MethodLinear})
	require.NoError(t, err)
	p := position(t, book(t), "P1")

	flows, err := c.FutureCashflows(p, d(2025, 7, 2))
	require.NoError(t, err)
	require.Equal(t, 6, flows.Len())
	assert.Equal(t, d(2025, 7, 2), flows.First())
	assert.InDelta(t, -5_000*182.0/365, flows.Amount(0), 1e-9)
	assert.InDelta(t, 105_000, flows.Amount(flows.Len()-1), 1e-9)
}

func TestProfile(t *testing.T) {
	c, err := New(Options{Method: MethodLinear})
	require.NoError(t, err)
	p := position(t, book(t), "P1")

	var samples []amortization.Sample
	for s, err := range c.Profile(p, amortization.Interval{Years: 1}) {
		require.NoError(t, err)
		samples = append(samples, s)
	}
	require.Len(t, samples, 10)
	assert.InDelta(t, 200, samples[1].Amortization, 1e-9)
}

func TestValueAll_KeepsOrder(t *testing.T) {
	obs, logs := observer.New(zap.InfoLevel)
	c, err := New(Options{Method: MethodActuarial, Concurrency: 2, Logger: zap.New(obs), Metrics: metrics.NewRegistry()})
	require.NoError(t, err)
	b := book(t)
	positions := []*core.Position{position(t, b, "P2"), position(t, b, "P1"), position(t, b, "P3")}

	out, err := c.ValueAll(context.Background(), positions, d(2022, 3, 15))
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "P2", out[0].PositionID)
	assert.Equal(t, "P1", out[1].PositionID)
	assert.Equal(t, "P3", out[2].PositionID)
	assert.InDelta(t, 0.05, *out[0].Yield, 1e-6)

	assert.Equal(t, 1, logs.FilterMessage("positions valued").Len())
}

func TestValueAll_Error(t *testing.T) {
	c, err := New(Options{Method: MethodLinear, Inflation: "forced-fixed"})
	require.NoError(t, err)
	b := book(t)

	_, err = c.ValueAll(context.Background(), []*core.Position{position(t, b, "P1"), position(t, b, "P3")}, d(2022, 3, 15))
	assert.True(t, errors.Is(err, core.ErrMissingInflationData))
}

func TestValueAll_Canceled(t *testing.T) {
	c, err := New(Options{Method: MethodLinear})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = c.ValueAll(ctx, book(t).Positions(), d(2022, 3, 15))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSet(t *testing.T) {
	s, err := NewSet(Options{Method: MethodLinear})
	require.NoError(t, err)

	c, err := s.Get("")
	require.NoError(t, err)
	assert.Equal(t, MethodLinear, c.Method())
	assert.Same(t, c, s.Default())

	c, err = s.Get("full")
	require.NoError(t, err)
	assert.Equal(t, MethodFull, c.Method())

	_, err = s.Get("fifo")
	assert.True(t, errors.Is(err, core.ErrConfiguration))
}
