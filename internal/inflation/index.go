package inflation

import (
	"fmt"
	"sort"
	"time"

	"github.com/newthinker/bondcalc/internal/core"
	"github.com/newthinker/bondcalc/internal/daycount"
)

// Reading is one published value of an inflation index.
type Reading struct {
	Date  time.Time
	Value float64
}

// IndexSeries is an inflation index resampled to month ends. Each month end
// holds the latest reading published at or before it.
type IndexSeries struct {
	readings []Reading
	months   []time.Time
	values   []float64
}

// NewIndexSeries sorts readings and resamples them to month ends, forward
// filling months without a publication.
func NewIndexSeries(readings []Reading) *IndexSeries {
	raw := make([]Reading, len(readings))
	copy(raw, readings)
	sort.SliceStable(raw, func(i, j int) bool { return raw[i].Date.Before(raw[j].Date) })

	s := &IndexSeries{readings: raw}
	if len(raw) == 0 {
		return s
	}

	last := daycount.EndOfMonth(raw[len(raw)-1].Date)
	next := 0
	var current float64
	for m := daycount.EndOfMonth(raw[0].Date); !m.After(last); m = daycount.EndOfMonth(m.AddDate(0, 0, 1)) {
		for next < len(raw) && !raw[next].Date.After(m) {
			current = raw[next].Value
			next++
		}
		s.months = append(s.months, m)
		s.values = append(s.values, current)
	}
	return s
}

// Len returns the number of month ends.
func (s *IndexSeries) Len() int { return len(s.months) }

// AsOf returns the value of the latest month end at or before d.
func (s *IndexSeries) AsOf(d time.Time) (float64, bool) {
	i := sort.Search(len(s.months), func(i int) bool { return s.months[i].After(d) }) - 1
	if i < 0 {
		return 0, false
	}
	return s.values[i], true
}

// Until returns the series rebuilt from readings dated at or before d.
func (s *IndexSeries) Until(d time.Time) *IndexSeries {
	n := sort.Search(len(s.readings), func(i int) bool { return s.readings[i].Date.After(d) })
	return NewIndexSeries(s.readings[:n])
}

// RQI returns the daily reference index at d, interpolated between the
// month-end readings of the third and second months before d's month.
func (s *IndexSeries) RQI(d time.Time) (float64, error) {
	month := daycount.StartOfMonth(d)
	m3 := month.AddDate(0, -2, -1)
	m2 := month.AddDate(0, -1, -1)

	i3, ok := s.AsOf(m3)
	if !ok {
		return 0, core.Errorf(core.ErrMissingInflationData, "no index reading as of %s", m3.Format(dateLayout))
	}
	i2, ok := s.AsOf(m2)
	if !ok {
		return 0, core.Errorf(core.ErrMissingInflationData, "no index reading as of %s", m2.Format(dateLayout))
	}
	return i3 + (i2-i3)*float64(d.Day()-1)/float64(daycount.DaysInMonth(d)), nil
}

func (s *IndexSeries) String() string {
	if len(s.months) == 0 {
		return "IndexSeries[]"
	}
	return fmt.Sprintf("IndexSeries[%s..%s, %d months]",
		s.months[0].Format(dateLayout), s.months[len(s.months)-1].Format(dateLayout), len(s.months))
}
