// Package valuation wires the engine components into a calculator for one
// valuation method.
package valuation

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/newthinker/bondcalc/internal/accrued"
	"github.com/newthinker/bondcalc/internal/amortization"
	"github.com/newthinker/bondcalc/internal/cashflow"
	"github.com/newthinker/bondcalc/internal/core"
	"github.com/newthinker/bondcalc/internal/inflation"
	"github.com/newthinker/bondcalc/internal/metrics"
	"github.com/newthinker/bondcalc/internal/projection"
	"github.com/newthinker/bondcalc/internal/solver"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Method selects the amortization scheme.
type Method string

const (
	MethodActuarial      Method = "actuarial"
	MethodActuarialDaily Method = "actuarial-daily"
	MethodLinear         Method = "linear"
	MethodFull           Method = "full"
)

// Methods lists every supported method.
func Methods() []Method {
	return []Method{MethodActuarial, MethodActuarialDaily, MethodLinear, MethodFull}
}

// ParseMethod reads a method name. Empty means actuarial.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	if m == "" {
		return MethodActuarial, nil
	}
	for _, known := range Methods() {
		if m == known {
			return m, nil
		}
	}
	return "", core.Errorf(core.ErrConfiguration, "unknown valuation method %q", s)
}

// DefaultConcurrency bounds ValueAll when Options leaves it unset.
const DefaultConcurrency = 4

// Options configures a Calculator.
type Options struct {
	Method      Method
	Accrued     string // accrued coupon model for the actuarial method
	Inflation   string
	Indexes     map[string]*inflation.IndexSeries
	Solver      solver.RootFinder
	CacheSize   int
	Concurrency int
	Metrics     *metrics.Registry
	Logger      *zap.Logger
}

// Calculator values positions with one method. It is safe for concurrent
// use; yields are memoized on the positions themselves.
type Calculator struct {
	method      Method
	engine      *projection.Engine
	model       amortization.Model
	actuarial   *amortization.Actuarial
	concurrency int
	metrics     *metrics.Registry
	logger      *zap.Logger
}

// New builds a calculator from opts.
func New(opts Options) (*Calculator, error) {
	method, err := ParseMethod(string(opts.Method))
	if err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}

	adjuster, err := inflation.ByName(opts.Inflation, inflation.Options{
		Indexes: opts.Indexes,
		Logger:  opts.Logger,
		Metrics: opts.Metrics,
	})
	if err != nil {
		return nil, err
	}

	accruedName := accrued.NameLinear
	if method == MethodActuarial {
		accruedName = opts.Accrued
		if accruedName == "" {
			accruedName = accrued.NameActuarial
		}
	}
	acc, err := accrued.ByName(accruedName)
	if err != nil {
		return nil, err
	}

	engineOpts := projection.Options{
		Accrued:   acc,
		Inflation: adjuster,
		CacheSize: opts.CacheSize,
		Metrics:   opts.Metrics,
		Logger:    opts.Logger,
	}
	var engine *projection.Engine
	if method == MethodActuarialDaily {
		engine, err = projection.NewDailyCoupon(engineOpts)
	} else {
		engine, err = projection.NewBase(engineOpts)
	}
	if err != nil {
		return nil, err
	}

	c := &Calculator{
		method:      method,
		engine:      engine,
		concurrency: opts.Concurrency,
		metrics:     opts.Metrics,
		logger:      opts.Logger,
	}
	switch method {
	case MethodLinear:
		c.model = amortization.NewLinear(engine)
	case MethodFull:
		c.model = amortization.NewFull(engine)
	default:
		c.actuarial = amortization.NewActuarial(engine, opts.Solver, opts.Metrics, opts.Logger)
		c.model = c.actuarial
	}

	c.logger.Debug("valuation calculator ready",
		zap.String("method", string(method)),
		zap.String("accrued", acc.Name()),
		zap.String("inflation", adjuster.Name()),
	)
	return c, nil
}

// Method returns the calculator's method.
func (c *Calculator) Method() Method { return c.method }

// Model returns the amortization model.
func (c *Calculator) Model() amortization.Model { return c.model }

// Amortization returns the amortization of p at date.
func (c *Calculator) Amortization(p *core.Position, date time.Time) (float64, error) {
	return c.model.Amortization(p, date)
}

// AmortizedPrice returns the amortized price of p at date.
func (c *Calculator) AmortizedPrice(p *core.Position, date time.Time) (float64, error) {
	return c.model.AmortizedPrice(p, date)
}

// YieldRate returns the internal yield of p. Only actuarial methods have one.
func (c *Calculator) YieldRate(p *core.Position) (float64, error) {
	if c.actuarial == nil {
		return 0, core.Errorf(core.ErrConfiguration, "%s valuation has no yield", c.method)
	}
	return c.actuarial.YieldRate(p)
}

func (c *Calculator) yieldSource() core.YieldSource {
	if c.actuarial == nil {
		return nil
	}
	return c.actuarial.YieldSource()
}

// AccruedCoupon returns the coupon accrued by p at date.
func (c *Calculator) AccruedCoupon(p *core.Position, date time.Time) (float64, error) {
	return c.engine.Accrued().Accrued(p, date, c.yieldSource())
}

// FutureCashflows returns p's remaining cashflows at date net of accrued
// coupon.
func (c *Calculator) FutureCashflows(p *core.Position, date time.Time) (cashflow.Series, error) {
	return c.engine.FutureCashflows(p, date, c.yieldSource())
}

// Profile returns p's amortization profile.
func (c *Calculator) Profile(p *core.Position, interval amortization.Interval) iter.Seq2[amortization.Sample, error] {
	return amortization.Profile(c.model, p, interval)
}

// Valuation is a position's state at a date.
type Valuation struct {
	PositionID      string    `json:"position_id"`
	BondID          string    `json:"bond_id"`
	Date            time.Time `json:"date"`
	Method          Method    `json:"method"`
	Nominal         float64   `json:"nominal"`
	AcquisitionCost float64   `json:"acquisition_cost"`
	Yield           *float64  `json:"yield,omitempty"`
	AccruedCoupon   float64   `json:"accrued_coupon"`
	Amortization    float64   `json:"amortization"`
	AmortizedPrice  float64   `json:"amortized_price"`
}

// Value computes every figure of p at date.
func (c *Calculator) Value(p *core.Position, date time.Time) (v Valuation, err error) {
	start := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		c.metrics.RecordValuation(string(c.method), status, time.Since(start).Seconds())
	}()

	v = Valuation{
		PositionID:      p.ID,
		BondID:          p.Bond.ID,
		Date:            date,
		Method:          c.method,
		Nominal:         p.Nominal,
		AcquisitionCost: p.AcquisitionCost,
	}
	if c.actuarial != nil {
		y, err := c.actuarial.YieldRate(p)
		if err != nil {
			return v, fmt.Errorf("value %s: %w", p.ID, err)
		}
		v.Yield = &y
	}
	if v.AccruedCoupon, err = c.AccruedCoupon(p, date); err != nil {
		return v, fmt.Errorf("value %s: accrued coupon: %w", p.ID, err)
	}
	if v.Amortization, err = c.model.Amortization(p, date); err != nil {
		return v, fmt.Errorf("value %s: amortization: %w", p.ID, err)
	}
	if v.AmortizedPrice, err = c.model.AmortizedPrice(p, date); err != nil {
		return v, fmt.Errorf("value %s: amortized price: %w", p.ID, err)
	}
	return v, nil
}

// ValueAll values positions concurrently. Results keep the input order; the
// first error cancels the remaining work.
func (c *Calculator) ValueAll(ctx context.Context, positions []*core.Position, date time.Time) ([]Valuation, error) {
	out := make([]Valuation, len(positions))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, p := range positions {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := c.Value(p, date)
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	c.logger.Info("positions valued",
		zap.Int("count", len(positions)),
		zap.String("method", string(c.method)),
		zap.String("date", date.Format("2006-01-02")),
	)
	return out, nil
}
