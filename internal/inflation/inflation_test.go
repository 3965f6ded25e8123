package inflation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/newthinker/bondcalc/internal/cashflow"
	"github.com/newthinker/bondcalc/internal/core"
	"github.com/newthinker/bondcalc/internal/metrics"
	"github.com/newthinker/bondcalc/internal/storage/archive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func linkedPosition(t *testing.T, index string) *core.Position {
	t.Helper()
	bond, err := core.NewBond(core.BondParams{
		ID:             "OATi",
		EmissionDate:   d(2020, 1, 1),
		MaturityDate:   d(2025, 1, 1),
		Coupons:        cashflow.MustNew([]time.Time{d(2021, 1, 1), d(2022, 1, 1)}, []float64{1, 1}),
		Redemptions:    cashflow.Single(d(2025, 1, 1), 100),
		DayCount:       "ACT/ACT",
		InflationIndex: index,
	})
	require.NoError(t, err)
	p, err := core.NewPosition(core.PositionParams{Bond: bond, Nominal: 100, AcquisitionDate: d(2020, 1, 1)})
	require.NoError(t, err)
	return p
}

// monthlyIndex publishes 100 on 2019-10-01 and one point more every month.
func monthlyIndex(months int) *IndexSeries {
	readings := make([]Reading, months)
	for i := range readings {
		readings[i] = Reading{Date: d(2019, 10, 1).AddDate(0, i, 0), Value: 100 + float64(i)}
	}
	return NewIndexSeries(readings)
}

func TestNone_Identity(t *testing.T) {
	s := cashflow.MustNew([]time.Time{d(2021, 1, 1), d(2022, 1, 1)}, []float64{1, 101})
	got, err := None{}.Adjust(linkedPosition(t, "ICP"), s, d(2020, 1, 1))
	require.NoError(t, err)
	assert.True(t, got.Equal(s, 0))
}

func TestForcedFixed_ExactCoefficient(t *testing.T) {
	p := linkedPosition(t, "ICP")
	p.Bond.SetInflationCoefficient(d(2022, 1, 1), 1.05)

	s := cashflow.MustNew([]time.Time{d(2023, 1, 1), d(2025, 1, 1)}, []float64{2, 100})
	got, err := NewForcedFixed(nil, nil).Adjust(p, s, d(2022, 1, 1))
	require.NoError(t, err)
	assert.InDelta(t, 2.1, got.Amount(0), 1e-12)
	assert.InDelta(t, 105, got.Amount(1), 1e-12)
}

func TestForcedFixed_FallbackWarnsOnce(t *testing.T) {
	obs, logs := observer.New(zap.WarnLevel)
	reg := metrics.NewRegistry()
	f := NewForcedFixed(zap.New(obs), reg)

	p := linkedPosition(t, "ICP")
	p.Bond.SetInflationCoefficient(d(2022, 1, 1), 1.05)
	s := cashflow.Single(d(2025, 1, 1), 100)

	for _, date := range []time.Time{d(2022, 3, 1), d(2022, 6, 1)} {
		got, err := f.Adjust(p, s, date)
		require.NoError(t, err)
		assert.InDelta(t, 105, got.Amount(0), 1e-12)
	}
	assert.Equal(t, 1, logs.Len())
}

func TestForcedFixed_Errors(t *testing.T) {
	p := linkedPosition(t, "ICP")
	p.Bond.SetInflationCoefficient(d(2022, 1, 1), 1.05)
	f := NewForcedFixed(nil, nil)

	_, err := f.Adjust(p, cashflow.Single(d(2025, 1, 1), 100), d(2021, 6, 1))
	assert.True(t, errors.Is(err, core.ErrMissingInflationData))

	_, err = f.Adjust(p, cashflow.Single(d(2022, 2, 1), 100), d(2022, 3, 1))
	assert.True(t, errors.Is(err, core.ErrInflationAnchor))

	got, err := f.Adjust(p, cashflow.Series{}, d(2019, 1, 1))
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
}

func TestIndexSeries_ResampleAndAsOf(t *testing.T) {
	s := NewIndexSeries([]Reading{
		{Date: d(2020, 3, 1), Value: 103},
		{Date: d(2020, 1, 1), Value: 101},
	})
	require.Equal(t, 3, s.Len())

	v, ok := s.AsOf(d(2020, 2, 29))
	require.True(t, ok)
	assert.Equal(t, 101.0, v, "february is forward filled")

	v, ok = s.AsOf(d(2021, 1, 1))
	require.True(t, ok)
	assert.Equal(t, 103.0, v)

	_, ok = s.AsOf(d(2020, 1, 30))
	assert.False(t, ok)
}

func TestIndexSeries_RQI(t *testing.T) {
	s := monthlyIndex(24)

	rqi, err := s.RQI(d(2020, 1, 1))
	require.NoError(t, err)
	assert.InDelta(t, 100, rqi, 1e-12)

	rqi, err = s.RQI(d(2020, 1, 16))
	require.NoError(t, err)
	assert.InDelta(t, 100+15.0/31, rqi, 1e-12)

	_, err = s.RQI(d(2019, 11, 1))
	assert.True(t, errors.Is(err, core.ErrMissingInflationData))
}

func TestRecomputeWithAvailable(t *testing.T) {
	r := NewRecomputeWithAvailable(map[string]*IndexSeries{"ICP": monthlyIndex(36)})

	s := cashflow.MustNew([]time.Time{d(2021, 1, 1), d(2022, 1, 1)}, []float64{1, 1})
	got, err := r.Adjust(linkedPosition(t, "ICP"), s, d(2020, 1, 1))
	require.NoError(t, err)
	assert.InDelta(t, 1.12, got.Amount(0), 1e-12)
	assert.InDelta(t, 1.24, got.Amount(1), 1e-12)

	got, err = r.Adjust(linkedPosition(t, ""), s, d(2020, 1, 1))
	require.NoError(t, err)
	assert.True(t, got.Equal(s, 0))

	_, err = r.Adjust(linkedPosition(t, "HICP"), s, d(2020, 1, 1))
	assert.True(t, errors.Is(err, core.ErrMissingInflationData))
}

func TestRecomputeWithPast_NoLookAhead(t *testing.T) {
	r := NewRecomputeWithPast(map[string]*IndexSeries{"ICP": monthlyIndex(36)})

	s := cashflow.MustNew([]time.Time{d(2021, 1, 1), d(2022, 1, 1)}, []float64{1, 1})
	got, err := r.Adjust(linkedPosition(t, "ICP"), s, d(2020, 6, 15))
	require.NoError(t, err)
	// last known publication is 2020-04-01 (106)
	assert.InDelta(t, 1.06, got.Amount(0), 1e-12)
	assert.InDelta(t, 1.06, got.Amount(1), 1e-12)
}

func TestByName(t *testing.T) {
	for _, name := range []string{NameNone, NameForcedFixed, NameRecomputeAvailable, NameRecomputePast} {
		a, err := ByName(name, Options{})
		require.NoError(t, err)
		assert.Equal(t, name, a.Name())
	}
	_, err := ByName("cpi-swap", Options{})
	assert.True(t, errors.Is(err, core.ErrConfiguration))
}

func TestLoadIndexes(t *testing.T) {
	store, err := archive.NewLocalFS(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	csv := "date,value\n2020-01-01,101.5\n2020-02-01, 102\n"
	require.NoError(t, store.Write(ctx, "inflation/icp.csv", []byte(csv)))

	indexes, err := LoadIndexes(ctx, store, map[string]string{"ICP": "inflation/icp.csv"})
	require.NoError(t, err)
	v, ok := indexes["ICP"].AsOf(d(2020, 2, 29))
	require.True(t, ok)
	assert.Equal(t, 102.0, v)

	_, err = LoadIndexes(ctx, store, map[string]string{"HICP": "inflation/missing.csv"})
	assert.True(t, errors.Is(err, core.ErrMissingInflationData))

	_, err = ParseIndexCSV([]byte("date,value\n2020-01-01,abc\n"))
	assert.True(t, errors.Is(err, core.ErrInvalidInput))
}
