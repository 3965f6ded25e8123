// Package projection derives the cashflows a position still has to receive
// after a date.
package projection

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/newthinker/bondcalc/internal/accrued"
	"github.com/newthinker/bondcalc/internal/cashflow"
	"github.com/newthinker/bondcalc/internal/core"
	"github.com/newthinker/bondcalc/internal/daycount"
	"github.com/newthinker/bondcalc/internal/inflation"
	"github.com/newthinker/bondcalc/internal/metrics"
	"go.uber.org/zap"
)

// DefaultCacheSize bounds the projection cache when Options leaves it unset.
const DefaultCacheSize = 4096

// minAccrued is the accrued coupon under which no accrued entry is booked.
const minAccrued = 1e-6

type kind uint8

const (
	kindCoupons kind = iota
	kindRedemptions
)

type cacheKey struct {
	position *core.Position
	date     int64
	kind     kind
}

// Options configures an Engine.
type Options struct {
	Accrued   accrued.Model
	Inflation inflation.Adjuster
	CacheSize int
	Metrics   *metrics.Registry
	Logger    *zap.Logger
}

// Engine projects future coupons and redemptions. Unadjusted slices are
// cached per (position, date, kind); inflation is applied after the cache so
// coefficients recorded later are always honoured.
type Engine struct {
	accrued   accrued.Model
	inflation inflation.Adjuster
	daily     bool

	cache   *lru.Cache[cacheKey, cashflow.Series]
	spreads *lru.Cache[*core.Bond, cashflow.Series]

	metrics *metrics.Registry
	logger  *zap.Logger
}

// NewBase creates an engine paying coupons on their schedule dates.
func NewBase(opts Options) (*Engine, error) {
	return newEngine(opts, false)
}

// NewDailyCoupon creates an engine that spreads every coupon evenly over the
// days of its accrual period. Accrual is then already in the cashflows, so the
// accrued coupon model is forced to none.
func NewDailyCoupon(opts Options) (*Engine, error) {
	opts.Accrued = accrued.None{}
	return newEngine(opts, true)
}

func newEngine(opts Options, daily bool) (*Engine, error) {
	if opts.Accrued == nil {
		opts.Accrued = accrued.Linear{}
	}
	if opts.Inflation == nil {
		opts.Inflation = inflation.None{}
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	cache, err := lru.New[cacheKey, cashflow.Series](opts.CacheSize)
	if err != nil {
		return nil, core.WrapError(core.ErrConfiguration, fmt.Errorf("projection cache: %w", err))
	}
	e := &Engine{
		accrued:   opts.Accrued,
		inflation: opts.Inflation,
		daily:     daily,
		cache:     cache,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
	}
	if daily {
		if e.spreads, err = lru.New[*core.Bond, cashflow.Series](opts.CacheSize); err != nil {
			return nil, core.WrapError(core.ErrConfiguration, fmt.Errorf("daily coupon cache: %w", err))
		}
	}
	return e, nil
}

// Accrued returns the accrued coupon model the engine nets out.
func (e *Engine) Accrued() accrued.Model { return e.accrued }

// Inflation returns the inflation adjuster.
func (e *Engine) Inflation() inflation.Adjuster { return e.inflation }

// Daily reports whether coupons are spread daily.
func (e *Engine) Daily() bool { return e.daily }

// FutureCoupons returns coupons dated in (date, maturity] in position
// currency, inflation adjusted unless adjusted is false.
func (e *Engine) FutureCoupons(p *core.Position, date time.Time, adjusted bool) (cashflow.Series, error) {
	return e.future(p, date, kindCoupons, adjusted)
}

// FutureRedemptions returns redemptions dated in (date, maturity] in position
// currency, inflation adjusted unless adjusted is false.
func (e *Engine) FutureRedemptions(p *core.Position, date time.Time, adjusted bool) (cashflow.Series, error) {
	return e.future(p, date, kindRedemptions, adjusted)
}

// FutureCashflows returns every remaining cashflow net of the coupon accrued
// at date, which is booked as a negative entry at date. ys feeds actuarial
// accrual.
func (e *Engine) FutureCashflows(p *core.Position, date time.Time, ys core.YieldSource) (cashflow.Series, error) {
	coupons, err := e.FutureCoupons(p, date, false)
	if err != nil {
		return cashflow.Series{}, err
	}
	redemptions, err := e.FutureRedemptions(p, date, false)
	if err != nil {
		return cashflow.Series{}, err
	}
	flows := coupons.Add(redemptions)

	acc, err := e.accrued.Accrued(p, date, ys)
	if err != nil {
		return cashflow.Series{}, err
	}
	if acc >= minAccrued {
		flows = flows.InsertOrAccumulate(date, -acc)
	}

	adjusted, err := e.inflation.Adjust(p, flows, date)
	if err != nil {
		return cashflow.Series{}, fmt.Errorf("inflation adjust %s at %s: %w", p.ID, date.Format("2006-01-02"), err)
	}
	return adjusted, nil
}

// Purge empties the cache.
func (e *Engine) Purge() {
	e.cache.Purge()
	if e.spreads != nil {
		e.spreads.Purge()
	}
}

func (e *Engine) future(p *core.Position, date time.Time, k kind, adjusted bool) (cashflow.Series, error) {
	raw := e.slice(p, date, k)
	if !adjusted {
		return raw, nil
	}
	out, err := e.inflation.Adjust(p, raw, date)
	if err != nil {
		return cashflow.Series{}, fmt.Errorf("inflation adjust %s at %s: %w", p.ID, date.Format("2006-01-02"), err)
	}
	return out, nil
}

func (e *Engine) slice(p *core.Position, date time.Time, k kind) cashflow.Series {
	key := cacheKey{position: p, date: date.UnixNano(), kind: k}
	if s, ok := e.cache.Get(key); ok {
		e.metrics.RecordCacheLookup(true)
		return s
	}
	e.metrics.RecordCacheLookup(false)

	source := p.Bond.Redemptions
	if k == kindCoupons {
		source = e.coupons(p.Bond)
	}
	s := source.After(date).Until(p.Bond.MaturityDate).Scale(p.Scale())
	e.cache.Add(key, s.Clone())
	return s
}

func (e *Engine) coupons(b *core.Bond) cashflow.Series {
	if !e.daily {
		return b.Coupons
	}
	if s, ok := e.spreads.Get(b); ok {
		return s
	}
	s := SpreadDaily(b.EmissionDate, b.Coupons)
	e.spreads.Add(b, s)
	e.logger.Debug("spread coupons daily",
		zap.String("bond", b.ID),
		zap.Int("coupons", b.Coupons.Len()),
		zap.Int("days", s.Len()),
	)
	return s
}

// SpreadDaily redistributes each coupon evenly over the calendar days of its
// accrual period (previous coupon or emission, coupon]. A period shorter than
// a day keeps the whole coupon on its payment date.
func SpreadDaily(emission time.Time, coupons cashflow.Series) cashflow.Series {
	var (
		dates   []time.Time
		amounts []float64
	)
	start := emission
	for i := 0; i < coupons.Len(); i++ {
		end, amount := coupons.At(i)
		days := int(daycount.Days(start, end))
		if days < 1 {
			dates = append(dates, end)
			amounts = append(amounts, amount)
		} else {
			share := amount / float64(days)
			for k := 1; k <= days; k++ {
				dates = append(dates, start.AddDate(0, 0, k))
				amounts = append(amounts, share)
			}
		}
		start = end
	}
	return cashflow.MustNew(dates, amounts)
}
