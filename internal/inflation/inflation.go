// Package inflation rescales projected cashflows of inflation-linked bonds.
package inflation

import (
	"strings"
	"time"

	"github.com/newthinker/bondcalc/internal/cashflow"
	"github.com/newthinker/bondcalc/internal/core"
	"github.com/newthinker/bondcalc/internal/metrics"
	"go.uber.org/zap"
)

// Adjuster rescales cashflows seen from computationDate.
type Adjuster interface {
	Name() string
	Adjust(p *core.Position, cashflows cashflow.Series, computationDate time.Time) (cashflow.Series, error)
}

// Adjuster names.
const (
	NameNone               = "none"
	NameForcedFixed        = "forced-fixed"
	NameRecomputeAvailable = "recompute-available"
	NameRecomputePast      = "recompute-past"
)

// Options carries what the adjusters may need.
type Options struct {
	Indexes map[string]*IndexSeries
	Logger  *zap.Logger
	Metrics *metrics.Registry
}

// ByName builds the named adjuster.
func ByName(name string, opts Options) (Adjuster, error) {
	switch strings.ToLower(name) {
	case NameNone, "":
		return None{}, nil
	case NameForcedFixed:
		return NewForcedFixed(opts.Logger, opts.Metrics), nil
	case NameRecomputeAvailable:
		return NewRecomputeWithAvailable(opts.Indexes), nil
	case NameRecomputePast:
		return NewRecomputeWithPast(opts.Indexes), nil
	default:
		return nil, core.Errorf(core.ErrConfiguration, "unknown inflation adjustment %q", name)
	}
}

// None leaves cashflows untouched.
type None struct{}

func (None) Name() string { return NameNone }

func (None) Adjust(_ *core.Position, cashflows cashflow.Series, _ time.Time) (cashflow.Series, error) {
	return cashflows, nil
}
