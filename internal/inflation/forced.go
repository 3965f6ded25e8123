package inflation

import (
	"sync"
	"time"

	"github.com/newthinker/bondcalc/internal/cashflow"
	"github.com/newthinker/bondcalc/internal/core"
	"github.com/newthinker/bondcalc/internal/metrics"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// ForcedFixed scales every cashflow by the coefficient recorded on the bond
// for the computation date. When that date has no coefficient the latest
// earlier one is used and a warning is logged, once per adjuster.
type ForcedFixed struct {
	logger  *zap.Logger
	metrics *metrics.Registry
	warn    sync.Once
}

// NewForcedFixed creates a forced-fixed adjuster.
func NewForcedFixed(logger *zap.Logger, reg *metrics.Registry) *ForcedFixed {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ForcedFixed{logger: logger, metrics: reg}
}

func (f *ForcedFixed) Name() string { return NameForcedFixed }

func (f *ForcedFixed) Adjust(p *core.Position, cashflows cashflow.Series, computationDate time.Time) (cashflow.Series, error) {
	if cashflows.IsEmpty() {
		return cashflows, nil
	}
	if cashflows.First().Before(computationDate) {
		return cashflow.Series{}, core.Errorf(core.ErrInflationAnchor,
			"bond %s: cashflow on %s precedes computation date %s",
			p.Bond.ID, cashflows.First().Format(dateLayout), computationDate.Format(dateLayout))
	}

	if c, ok := p.Bond.InflationCoefficient(computationDate); ok {
		return cashflows.Scale(c), nil
	}

	at, c, ok := p.Bond.LatestInflationCoefficient(computationDate)
	if !ok {
		return cashflow.Series{}, core.Errorf(core.ErrMissingInflationData,
			"bond %s: no inflation coefficient at or before %s", p.Bond.ID, computationDate.Format(dateLayout))
	}

	f.metrics.RecordInflationFallback()
	f.warn.Do(func() {
		f.logger.Warn("inflation coefficient missing, using latest available",
			zap.String("bond", p.Bond.ID),
			zap.String("requested", computationDate.Format(dateLayout)),
			zap.String("used", at.Format(dateLayout)),
		)
	})
	return cashflows.Scale(c), nil
}
