package schedule

import (
	"time"

	"github.com/newthinker/bondcalc/internal/cashflow"
	"github.com/newthinker/bondcalc/internal/core"
)

// MonthDay is a date recurring every year.
type MonthDay struct {
	Month time.Month
	Day   int
}

// Calendar decides which days are working days.
type Calendar struct {
	weekly   map[time.Weekday]bool
	yearly   map[MonthDay]bool
	holidays map[string]bool
}

// NewCalendar creates a calendar. A nil weekly list means Saturday and
// Sunday are not worked.
func NewCalendar(weekly []time.Weekday, yearly []MonthDay, holidays []time.Time) (*Calendar, error) {
	if weekly == nil {
		weekly = []time.Weekday{time.Saturday, time.Sunday}
	}
	c := &Calendar{
		weekly:   make(map[time.Weekday]bool, len(weekly)),
		yearly:   make(map[MonthDay]bool, len(yearly)),
		holidays: make(map[string]bool, len(holidays)),
	}
	for _, w := range weekly {
		c.weekly[w] = true
	}
	if len(c.weekly) >= 7 {
		return nil, core.Errorf(core.ErrInvalidInput, "calendar has no working weekday")
	}
	for _, md := range yearly {
		c.yearly[md] = true
	}
	for _, h := range holidays {
		c.holidays[h.Format("2006-01-02")] = true
	}
	return c, nil
}

// IsWorkingDay reports whether t is worked.
func (c *Calendar) IsWorkingDay(t time.Time) bool {
	if c.weekly[t.Weekday()] {
		return false
	}
	if c.yearly[MonthDay{Month: t.Month(), Day: t.Day()}] {
		return false
	}
	return !c.holidays[t.Format("2006-01-02")]
}

// Advance returns the n-th working day counting t itself as the first
// candidate: Advance(t, 0) is t when t is worked, else the next working day.
func (c *Calendar) Advance(t time.Time, n int) time.Time {
	remaining := n + 1
	d := t.AddDate(0, 0, -1)
	for remaining > 0 {
		d = d.AddDate(0, 0, 1)
		if c.IsWorkingDay(d) {
			remaining--
		}
	}
	return d
}

// AdjustDates moves every date of s to the next working day. Amounts landing
// on the same day are summed.
func (c *Calendar) AdjustDates(s cashflow.Series) (cashflow.Series, error) {
	dates := s.Dates()
	for i, d := range dates {
		dates[i] = c.Advance(d, 0)
	}
	out, err := cashflow.New(dates, s.Amounts())
	if err != nil {
		return cashflow.Series{}, core.WrapError(core.ErrInvalidSchedule, err)
	}
	return out, nil
}
