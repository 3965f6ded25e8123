package amortization

import (
	"fmt"
	"time"

	"github.com/newthinker/bondcalc/internal/core"
	"github.com/newthinker/bondcalc/internal/daycount"
	"github.com/newthinker/bondcalc/internal/projection"
)

// Linear accrues the redemption gap pro rata of year fractions between
// acquisition and maturity.
type Linear struct {
	engine *projection.Engine
}

// NewLinear creates a linear model over engine.
func NewLinear(engine *projection.Engine) *Linear {
	return &Linear{engine: engine}
}

func (m *Linear) Name() string { return NameLinear }

func (m *Linear) Amortization(p *core.Position, date time.Time) (float64, error) {
	if outside(p, date) {
		return 0, nil
	}
	redemptions, err := m.engine.FutureRedemptions(p, date, true)
	if err != nil {
		return 0, err
	}
	conv, err := daycount.ForBond(p.Bond)
	if err != nil {
		return 0, fmt.Errorf("linear amortization for %s: %w", p.ID, err)
	}
	total := conv.YearFraction(p.AcquisitionDate, p.Bond.MaturityDate)
	if total == 0 {
		return 0, nil
	}
	return (redemptions.Sum() - p.AcquisitionCost) * conv.YearFraction(p.AcquisitionDate, date) / total, nil
}

func (m *Linear) AmortizedPrice(p *core.Position, date time.Time) (float64, error) {
	a, err := m.Amortization(p, date)
	if err != nil {
		return 0, err
	}
	return p.AcquisitionCost + a, nil
}
