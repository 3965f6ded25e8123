// Package portfolio turns declarative bond and position descriptions, as found
// in config files and API requests, into engine objects.
package portfolio

import (
	"fmt"
	"strings"
	"time"

	"github.com/newthinker/bondcalc/internal/cashflow"
	"github.com/newthinker/bondcalc/internal/core"
	"github.com/newthinker/bondcalc/internal/schedule"
)

// DateLayout is the date format used in every description.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, core.Errorf(core.ErrInvalidInput, "bad date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}

// FlowSpec is one explicit cashflow.
type FlowSpec struct {
	Date   string  `mapstructure:"date" json:"date"`
	Amount float64 `mapstructure:"amount" json:"amount"`
}

// CalendarSpec describes non-working days. Coupon dates before maturity
// falling on one are moved to the next working day.
type CalendarSpec struct {
	Weekly   []string `mapstructure:"weekly" json:"weekly,omitempty"`     // weekday names, default saturday and sunday
	Yearly   []string `mapstructure:"yearly" json:"yearly,omitempty"`     // MM-DD
	Holidays []string `mapstructure:"holidays" json:"holidays,omitempty"` // YYYY-MM-DD
}

// BondSpec describes a bond. Coupons are either listed explicitly or
// generated from CouponRate, an annual percentage of Base.
type BondSpec struct {
	ID                string             `mapstructure:"id" json:"id"`
	Emission          string             `mapstructure:"emission" json:"emission"`
	Maturity          string             `mapstructure:"maturity" json:"maturity"`
	Base              float64            `mapstructure:"base" json:"base,omitempty"`
	CouponRate        float64            `mapstructure:"coupon_rate" json:"coupon_rate,omitempty"`
	Frequency         string             `mapstructure:"frequency" json:"frequency,omitempty"`
	DayCount          string             `mapstructure:"day_count" json:"day_count"`
	Redemption        float64            `mapstructure:"redemption" json:"redemption,omitempty"`
	AdjustCoupons     bool               `mapstructure:"adjust_coupons" json:"adjust_coupons,omitempty"`
	AdjustFirstCoupon bool               `mapstructure:"adjust_first_coupon" json:"adjust_first_coupon,omitempty"`
	Coupons           []FlowSpec         `mapstructure:"coupons" json:"coupons,omitempty"`
	Redemptions       []FlowSpec         `mapstructure:"redemptions" json:"redemptions,omitempty"`
	Calendar          *CalendarSpec      `mapstructure:"calendar" json:"calendar,omitempty"`
	InflationIndex    string             `mapstructure:"inflation_index" json:"inflation_index,omitempty"`
	Coefficients      map[string]float64 `mapstructure:"inflation_coefficients" json:"inflation_coefficients,omitempty"`
}

// PositionSpec describes a holding. Cost is AcquisitionCost when set, else
// CleanPrice percent of Nominal.
type PositionSpec struct {
	ID              string  `mapstructure:"id" json:"id"`
	Bond            string  `mapstructure:"bond" json:"bond"`
	Nominal         float64 `mapstructure:"nominal" json:"nominal"`
	AcquisitionDate string  `mapstructure:"acquisition_date" json:"acquisition_date"`
	CleanPrice      float64 `mapstructure:"clean_price" json:"clean_price,omitempty"`
	AcquisitionCost float64 `mapstructure:"acquisition_cost" json:"acquisition_cost,omitempty"`
}

// Build creates the bond.
func (s BondSpec) Build() (*core.Bond, error) {
	emission, err := ParseDate(s.Emission)
	if err != nil {
		return nil, fmt.Errorf("bond %s emission: %w", s.ID, err)
	}
	maturity, err := ParseDate(s.Maturity)
	if err != nil {
		return nil, fmt.Errorf("bond %s maturity: %w", s.ID, err)
	}
	base := s.Base
	if base == 0 {
		base = core.DefaultBase
	}

	coupons, err := s.coupons(emission, maturity, base)
	if err != nil {
		return nil, fmt.Errorf("bond %s coupons: %w", s.ID, err)
	}
	redemptions, err := s.redemptions(maturity, base)
	if err != nil {
		return nil, fmt.Errorf("bond %s redemptions: %w", s.ID, err)
	}
	if s.Calendar != nil {
		cal, err := s.Calendar.Build()
		if err != nil {
			return nil, fmt.Errorf("bond %s calendar: %w", s.ID, err)
		}
		// the maturity coupon stays on maturity
		cut := maturity.AddDate(0, 0, -1)
		head, err := cal.AdjustDates(coupons.Until(cut))
		if err != nil {
			return nil, core.WrapError(core.ErrInvalidSchedule, err)
		}
		coupons = head.Add(coupons.After(cut))
	}

	bond, err := core.NewBond(core.BondParams{
		ID:             s.ID,
		EmissionDate:   emission,
		MaturityDate:   maturity,
		Base:           base,
		Coupons:        coupons,
		Redemptions:    redemptions,
		DayCount:       s.DayCount,
		InflationIndex: s.InflationIndex,
	})
	if err != nil {
		return nil, err
	}
	for date, c := range s.Coefficients {
		at, err := ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("bond %s inflation coefficient: %w", s.ID, err)
		}
		bond.SetInflationCoefficient(at, c)
	}
	return bond, nil
}

func (s BondSpec) coupons(emission, maturity time.Time, base float64) (cashflow.Series, error) {
	if len(s.Coupons) > 0 {
		return flows(s.Coupons)
	}
	if s.CouponRate == 0 {
		return cashflow.Series{}, nil
	}
	freq := schedule.Yearly
	if s.Frequency != "" {
		f, err := schedule.ParseFrequency(s.Frequency)
		if err != nil {
			return cashflow.Series{}, err
		}
		freq = f
	}
	return schedule.Coupons(schedule.CouponParams{
		Emission:          emission,
		Maturity:          maturity,
		Frequency:         freq,
		Rate:              base * s.CouponRate / 100 * freq.Years(),
		AdjustCoupons:     s.AdjustCoupons,
		AdjustFirstCoupon: s.AdjustFirstCoupon,
		Convention:        s.DayCount,
	})
}

func (s BondSpec) redemptions(maturity time.Time, base float64) (cashflow.Series, error) {
	if len(s.Redemptions) > 0 {
		return flows(s.Redemptions)
	}
	amount := s.Redemption
	if amount == 0 {
		amount = base
	}
	return schedule.Redemption(maturity, amount), nil
}

func flows(specs []FlowSpec) (cashflow.Series, error) {
	dates := make([]time.Time, len(specs))
	amounts := make([]float64, len(specs))
	for i, f := range specs {
		d, err := ParseDate(f.Date)
		if err != nil {
			return cashflow.Series{}, err
		}
		dates[i] = d
		amounts[i] = f.Amount
	}
	s, err := cashflow.New(dates, amounts)
	if err != nil {
		return cashflow.Series{}, core.WrapError(core.ErrInvalidSchedule, err)
	}
	return s, nil
}

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday, "friday": time.Friday,
	"saturday": time.Saturday,
}

// Build creates the calendar.
func (c CalendarSpec) Build() (*schedule.Calendar, error) {
	var weekly []time.Weekday
	for _, name := range c.Weekly {
		w, ok := weekdays[strings.ToLower(name)]
		if !ok {
			return nil, core.Errorf(core.ErrInvalidInput, "unknown weekday %q", name)
		}
		weekly = append(weekly, w)
	}
	yearly := make([]schedule.MonthDay, 0, len(c.Yearly))
	for _, md := range c.Yearly {
		t, err := time.Parse("01-02", md)
		if err != nil {
			return nil, core.Errorf(core.ErrInvalidInput, "bad yearly holiday %q, want MM-DD", md)
		}
		yearly = append(yearly, schedule.MonthDay{Month: t.Month(), Day: t.Day()})
	}
	holidays := make([]time.Time, 0, len(c.Holidays))
	for _, h := range c.Holidays {
		t, err := ParseDate(h)
		if err != nil {
			return nil, err
		}
		holidays = append(holidays, t)
	}
	return schedule.NewCalendar(weekly, yearly, holidays)
}

// Build creates the position on bond.
func (s PositionSpec) Build(bond *core.Bond) (*core.Position, error) {
	acquired, err := ParseDate(s.AcquisitionDate)
	if err != nil {
		return nil, fmt.Errorf("position %s acquisition: %w", s.ID, err)
	}
	cost := s.AcquisitionCost
	if cost == 0 {
		if s.CleanPrice <= 0 {
			return nil, core.Errorf(core.ErrInvalidInput, "position %s: acquisition cost or clean price required", s.ID)
		}
		cost = s.Nominal * s.CleanPrice / 100
	}
	return core.NewPosition(core.PositionParams{
		ID:              s.ID,
		Bond:            bond,
		Nominal:         s.Nominal,
		AcquisitionDate: acquired,
		AcquisitionCost: cost,
	})
}
