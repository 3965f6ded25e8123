package daycount

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/newthinker/bondcalc/internal/cashflow"
	"github.com/newthinker/bondcalc/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

type schedule struct {
	emission, maturity time.Time
	coupons            cashflow.Series
	convention         string
}

func (s schedule) Emission() time.Time              { return s.emission }
func (s schedule) Maturity() time.Time              { return s.maturity }
func (s schedule) CouponSchedule() cashflow.Series { return s.coupons }
func (s schedule) Convention() string               { return s.convention }

func periodic(first time.Time, months, n int, amount float64) cashflow.Series {
	dates := make([]time.Time, n)
	amounts := make([]float64, n)
	for i := range dates {
		dates[i] = first.AddDate(0, i*months, 0)
		amounts[i] = amount
	}
	return cashflow.MustNew(dates, amounts)
}

func annualBond() schedule {
	return schedule{
		emission:   d(2020, 1, 1),
		maturity:   d(2030, 1, 1),
		coupons:    periodic(d(2021, 1, 1), 12, 10, 5),
		convention: NameActActICMA,
	}
}

func TestYearFraction(t *testing.T) {
	tests := []struct {
		name string
		conv Convention
		from time.Time
		to   time.Time
		want float64
	}{
		{"act365 leap year", Act365{}, d(2020, 1, 1), d(2021, 1, 1), 366.0 / 365},
		{"act360", Act360{}, d(2021, 1, 1), d(2021, 7, 1), 181.0 / 360},
		{"30/360 keeps day 31", Thirty360{}, d(2020, 1, 30), d(2020, 3, 31), 61.0 / 360},
		{"30E/360 clips day 31", ThirtyE360{}, d(2020, 1, 30), d(2020, 3, 31), 60.0 / 360},
		{"30E/360 clips both ends", ThirtyE360{}, d(2020, 1, 31), d(2020, 3, 31), 60.0 / 360},
		{"act/act full leap year", ActActISDA{}, d(2020, 1, 1), d(2021, 1, 1), 1},
		{"act/act straddling", ActActISDA{}, d(2019, 7, 1), d(2020, 7, 1), 184.0/365 + 182.0/366},
		{"act/act decade", ActActISDA{}, d(2020, 1, 1), d(2030, 1, 1), 10},
		{"act/act 1900 not leap", ActActISDA{}, d(1900, 1, 1), d(1900, 3, 1), 59.0 / 365},
		{"act/act 2000 leap", ActActISDA{}, d(2000, 1, 1), d(2000, 3, 1), 60.0 / 366},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.conv.YearFraction(tt.from, tt.to)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("YearFraction() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestYearFraction_Antisymmetric(t *testing.T) {
	pairs := [][2]time.Time{
		{d(2020, 1, 1), d(2021, 1, 1)},
		{d(2019, 7, 15), d(2024, 2, 29)},
		{d(2021, 1, 31), d(2021, 3, 31)},
	}
	for _, conv := range []Convention{Act365{}, Act360{}, Thirty360{}, ThirtyE360{}, ActActISDA{}} {
		for _, p := range pairs {
			fwd := conv.YearFraction(p[0], p[1])
			back := conv.YearFraction(p[1], p[0])
			assert.InDelta(t, -fwd, back, 1e-12, "%s %v", conv.Name(), p)
		}
	}
}

func TestYearFraction_SameDayIsZero(t *testing.T) {
	day := d(2024, 2, 29)
	for _, conv := range []Convention{Act365{}, Act360{}, Thirty360{}, ThirtyE360{}, ActActISDA{}, NewActActICMA(annualBond())} {
		assert.Equal(t, 0.0, conv.YearFraction(day, day), conv.Name())
	}
}

func TestActActICMA(t *testing.T) {
	annual := NewActActICMA(annualBond())
	assert.Equal(t, 1.0, annual.Frequency())
	assert.InDelta(t, 10.0, annual.YearFraction(d(2020, 1, 1), d(2030, 1, 1)), 1e-12)
	assert.InDelta(t, 182.0/366, annual.YearFraction(d(2020, 1, 1), d(2020, 7, 1)), 1e-12)
	assert.InDelta(t, -182.0/366, annual.YearFraction(d(2020, 7, 1), d(2020, 1, 1)), 1e-12)

	semi := NewActActICMA(schedule{
		emission: d(2020, 1, 1),
		maturity: d(2030, 1, 1),
		coupons:  periodic(d(2020, 7, 1), 6, 20, 2.5),
	})
	assert.Equal(t, 2.0, semi.Frequency())
	assert.InDelta(t, 1.0, semi.YearFraction(d(2020, 1, 1), d(2021, 1, 1)), 1e-12)
	assert.InDelta(t, 0.25, semi.YearFraction(d(2020, 7, 1), d(2020, 7, 1).AddDate(0, 0, 92)), 1e-12)
}

func TestInferFrequency(t *testing.T) {
	assert.Equal(t, 1.0, InferFrequency(cashflow.Series{}))
	assert.Equal(t, 1.0, InferFrequency(cashflow.Single(d(2030, 1, 1), 5)))
	assert.Equal(t, 4.0, InferFrequency(periodic(d(2020, 3, 1), 3, 40, 1)))
	assert.Equal(t, 12.0, InferFrequency(periodic(d(2020, 2, 1), 1, 60, 1)))
}

func TestRegistry_Lookup(t *testing.T) {
	for _, name := range []string{"ACT/365", "exact/365", "ACT/360", "Exact/360", "30/360", "30e/360", "ACT/ACT", "act/act  isda"} {
		c, err := Lookup(name)
		require.NoError(t, err, name)
		assert.NotNil(t, c)
	}

	c, err := Lookup("EXACT/365")
	require.NoError(t, err)
	assert.Equal(t, NameAct365, c.Name())

	_, err = Lookup("BUS/252")
	assert.True(t, errors.Is(err, core.ErrUnsupportedConvention))

	_, err = Lookup("ACT/ACT ICMA")
	assert.True(t, errors.Is(err, core.ErrUnsupportedConvention))
}

func TestRegistry_ForBond(t *testing.T) {
	c, err := ForBond(annualBond())
	require.NoError(t, err)
	assert.Equal(t, NameActActICMA, c.Name())

	bond := annualBond()
	bond.convention = "30E/360"
	c, err = ForBond(bond)
	require.NoError(t, err)
	assert.Equal(t, Name30E360, c.Name())

	assert.Contains(t, Names(), NameActActICMA)
}
