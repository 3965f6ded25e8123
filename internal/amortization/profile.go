package amortization

import (
	"iter"
	"strconv"
	"strings"
	"time"

	"github.com/newthinker/bondcalc/internal/core"
	"github.com/newthinker/bondcalc/internal/daycount"
)

// Interval is a calendar step between profile samples.
type Interval struct {
	Years  int
	Months int
	Days   int
}

// Daily is the default profile step.
var Daily = Interval{Days: 1}

// IsZero reports whether the interval would not advance.
func (i Interval) IsZero() bool { return i.Years == 0 && i.Months == 0 && i.Days == 0 }

// advance moves from by n intervals. Months are clamped to month ends.
func (i Interval) advance(from time.Time, n int) time.Time {
	return daycount.AddMonths(from, n*(12*i.Years+i.Months)).AddDate(0, 0, n*i.Days)
}

// Sample is one point of an amortization profile.
type Sample struct {
	Date           time.Time
	Amortization   float64
	AmortizedPrice float64
}

// Profile yields samples from acquisition while the date is before maturity.
// Iteration stops after the first error. The sequence can be ranged over more
// than once.
func Profile(m Model, p *core.Position, interval Interval) iter.Seq2[Sample, error] {
	if !interval.advance(p.AcquisitionDate, 1).After(p.AcquisitionDate) {
		interval = Daily
	}
	return func(yield func(Sample, error) bool) {
		for step := 0; ; step++ {
			date := interval.advance(p.AcquisitionDate, step)
			if !date.Before(p.Bond.MaturityDate) {
				return
			}
			a, err := m.Amortization(p, date)
			if err != nil {
				yield(Sample{Date: date}, err)
				return
			}
			price, err := m.AmortizedPrice(p, date)
			if err != nil {
				yield(Sample{Date: date}, err)
				return
			}
			if !yield(Sample{Date: date, Amortization: a, AmortizedPrice: price}, nil) {
				return
			}
		}
	}
}

// ParseInterval reads steps such as "1d", "2w", "3m" or "1y". An empty string
// means daily.
func ParseInterval(s string) (Interval, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return Daily, nil
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n <= 0 {
		return Interval{}, core.Errorf(core.ErrInvalidInput, "bad interval %q", s)
	}
	switch s[len(s)-1] {
	case 'd':
		return Interval{Days: n}, nil
	case 'w':
		return Interval{Days: 7 * n}, nil
	case 'm':
		return Interval{Months: n}, nil
	case 'y':
		return Interval{Years: n}, nil
	default:
		return Interval{}, core.Errorf(core.ErrInvalidInput, "bad interval unit in %q", s)
	}
}
