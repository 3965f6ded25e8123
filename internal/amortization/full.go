package amortization

import (
	"time"

	"github.com/newthinker/bondcalc/internal/core"
	"github.com/newthinker/bondcalc/internal/projection"
)

// Full recognises the whole redemption gap as soon as the position is held.
// Its amortized price is the undiscounted sum of remaining redemptions.
type Full struct {
	engine *projection.Engine
}

// NewFull creates a full model over engine.
func NewFull(engine *projection.Engine) *Full {
	return &Full{engine: engine}
}

func (m *Full) Name() string { return NameFull }

func (m *Full) Amortization(p *core.Position, date time.Time) (float64, error) {
	if outside(p, date) {
		return 0, nil
	}
	redemptions, err := m.engine.FutureRedemptions(p, p.AcquisitionDate, true)
	if err != nil {
		return 0, err
	}
	return redemptions.Sum() - p.AcquisitionCost, nil
}

func (m *Full) AmortizedPrice(p *core.Position, date time.Time) (float64, error) {
	redemptions, err := m.engine.FutureRedemptions(p, date, true)
	if err != nil {
		return 0, err
	}
	return redemptions.Sum(), nil
}
