// Package cashflow provides the date-indexed amount series every other part
// of the engine computes on.
package cashflow

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// ErrLengthMismatch is returned by New when dates and amounts differ in
// length. Callers building schedules from user input report it as an invalid
// schedule.
var ErrLengthMismatch = errors.New("cashflow: dates and amounts differ in length")

// Series is an ordered sequence of (date, amount) pairs with strictly
// increasing, unique dates. A Series is never modified after construction:
// every operation returns a new one. The zero value is an empty series.
type Series struct {
	dates   []time.Time
	amounts []float64
}

// New builds a series from parallel date/amount slices. Input order does not
// matter; amounts sharing a date are summed.
func New(dates []time.Time, amounts []float64) (Series, error) {
	if len(dates) != len(amounts) {
		return Series{}, fmt.Errorf("%w: %d dates, %d amounts", ErrLengthMismatch, len(dates), len(amounts))
	}
	if len(dates) == 0 {
		return Series{}, nil
	}

	idx := make([]int, len(dates))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return dates[idx[a]].Before(dates[idx[b]])
	})

	s := Series{
		dates:   make([]time.Time, 0, len(dates)),
		amounts: make([]float64, 0, len(amounts)),
	}
	for _, i := range idx {
		n := len(s.dates)
		if n > 0 && s.dates[n-1].Equal(dates[i]) {
			s.amounts[n-1] += amounts[i]
			continue
		}
		s.dates = append(s.dates, dates[i])
		s.amounts = append(s.amounts, amounts[i])
	}
	return s, nil
}

// MustNew is New for literal schedules; it panics on mismatched lengths.
func MustNew(dates []time.Time, amounts []float64) Series {
	s, err := New(dates, amounts)
	if err != nil {
		panic(err)
	}
	return s
}

// FromMap builds a series from a date -> amount map.
func FromMap(m map[time.Time]float64) Series {
	dates := make([]time.Time, 0, len(m))
	amounts := make([]float64, 0, len(m))
	for d, a := range m {
		dates = append(dates, d)
		amounts = append(amounts, a)
	}
	return MustNew(dates, amounts)
}

// Single returns a one-entry series.
func Single(date time.Time, amount float64) Series {
	return Series{dates: []time.Time{date}, amounts: []float64{amount}}
}

// Len returns the number of entries.
func (s Series) Len() int { return len(s.dates) }

// IsEmpty reports whether the series has no entries.
func (s Series) IsEmpty() bool { return len(s.dates) == 0 }

// At returns the i-th entry.
func (s Series) At(i int) (time.Time, float64) { return s.dates[i], s.amounts[i] }

// Date returns the i-th date.
func (s Series) Date(i int) time.Time { return s.dates[i] }

// Amount returns the i-th amount.
func (s Series) Amount(i int) float64 { return s.amounts[i] }

// First returns the earliest date. It panics on an empty series.
func (s Series) First() time.Time { return s.dates[0] }

// Last returns the latest date. It panics on an empty series.
func (s Series) Last() time.Time { return s.dates[len(s.dates)-1] }

// Dates returns a copy of the dates.
func (s Series) Dates() []time.Time {
	out := make([]time.Time, len(s.dates))
	copy(out, s.dates)
	return out
}

// Amounts returns a copy of the amounts.
func (s Series) Amounts() []float64 {
	out := make([]float64, len(s.amounts))
	copy(out, s.amounts)
	return out
}

// Sum returns the total of all amounts.
func (s Series) Sum() float64 {
	var total float64
	for _, a := range s.amounts {
		total += a
	}
	return total
}

// Clone returns a deep copy.
func (s Series) Clone() Series {
	return Series{dates: s.Dates(), amounts: s.Amounts()}
}

// SearchAfter returns the index of the first date strictly after d, or Len()
// when there is none.
func (s Series) SearchAfter(d time.Time) int {
	return sort.Search(len(s.dates), func(i int) bool {
		return s.dates[i].After(d)
	})
}

// searchFrom returns the index of the first date at or after d.
func (s Series) searchFrom(d time.Time) int {
	return sort.Search(len(s.dates), func(i int) bool {
		return !s.dates[i].Before(d)
	})
}

func (s Series) window(lo, hi int) Series {
	if lo >= hi {
		return Series{}
	}
	out := Series{
		dates:   make([]time.Time, hi-lo),
		amounts: make([]float64, hi-lo),
	}
	copy(out.dates, s.dates[lo:hi])
	copy(out.amounts, s.amounts[lo:hi])
	return out
}

// Slice returns the entries dated within [from, to], both ends inclusive.
func (s Series) Slice(from, to time.Time) Series {
	return s.window(s.searchFrom(from), s.SearchAfter(to))
}

// After returns the entries dated strictly after d.
func (s Series) After(d time.Time) Series {
	return s.window(s.SearchAfter(d), len(s.dates))
}

// Until returns the entries dated at or before d.
func (s Series) Until(d time.Time) Series {
	return s.window(0, s.SearchAfter(d))
}

// Add returns the union of both series; a date missing on one side counts as
// zero on that side.
func (s Series) Add(other Series) Series {
	out := Series{
		dates:   make([]time.Time, 0, len(s.dates)+len(other.dates)),
		amounts: make([]float64, 0, len(s.dates)+len(other.dates)),
	}
	i, j := 0, 0
	for i < len(s.dates) || j < len(other.dates) {
		switch {
		case j >= len(other.dates) || (i < len(s.dates) && s.dates[i].Before(other.dates[j])):
			out.dates = append(out.dates, s.dates[i])
			out.amounts = append(out.amounts, s.amounts[i])
			i++
		case i >= len(s.dates) || other.dates[j].Before(s.dates[i]):
			out.dates = append(out.dates, other.dates[j])
			out.amounts = append(out.amounts, other.amounts[j])
			j++
		default:
			out.dates = append(out.dates, s.dates[i])
			out.amounts = append(out.amounts, s.amounts[i]+other.amounts[j])
			i++
			j++
		}
	}
	return out
}

// Scale multiplies every amount by factor.
func (s Series) Scale(factor float64) Series {
	return s.Apply(func(_ time.Time, a float64) float64 { return a * factor })
}

// Divide divides every amount by factor.
func (s Series) Divide(factor float64) Series {
	return s.Apply(func(_ time.Time, a float64) float64 { return a / factor })
}

// Apply maps every entry through fn, keeping dates.
func (s Series) Apply(fn func(date time.Time, amount float64) float64) Series {
	out := Series{
		dates:   s.Dates(),
		amounts: make([]float64, len(s.amounts)),
	}
	for i, a := range s.amounts {
		out.amounts[i] = fn(s.dates[i], a)
	}
	return out
}

// InsertOrAccumulate adds amount to the entry at date, inserting it if absent.
func (s Series) InsertOrAccumulate(date time.Time, amount float64) Series {
	return s.Add(Single(date, amount))
}

// Equal reports whether both series hold the same dates and amounts within
// tolerance.
func (s Series) Equal(other Series, tolerance float64) bool {
	if len(s.dates) != len(other.dates) {
		return false
	}
	for i := range s.dates {
		if !s.dates[i].Equal(other.dates[i]) {
			return false
		}
		if math.Abs(s.amounts[i]-other.amounts[i]) > tolerance {
			return false
		}
	}
	return true
}

// String renders the series for debugging.
func (s Series) String() string {
	out := "Series["
	for i := range s.dates {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s:%g", s.dates[i].Format("2006-01-02"), s.amounts[i])
	}
	return out + "]"
}
