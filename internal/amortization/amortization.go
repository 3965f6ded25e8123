// Package amortization spreads the difference between a position's cost and
// its redemption value over the holding period.
package amortization

import (
	"time"

	"github.com/newthinker/bondcalc/internal/core"
)

// Model computes amortization and amortized price in position currency.
type Model interface {
	Name() string
	Amortization(p *core.Position, date time.Time) (float64, error)
	AmortizedPrice(p *core.Position, date time.Time) (float64, error)
}

// Model names.
const (
	NameLinear    = "linear"
	NameFull      = "full"
	NameActuarial = "actuarial"
)

// outside reports whether date lies outside (acquisition, maturity), the
// window where linear and full amortization are non zero.
func outside(p *core.Position, date time.Time) bool {
	return !date.Before(p.Bond.MaturityDate) || !date.After(p.AcquisitionDate)
}
