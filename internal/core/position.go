package core

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// YieldSource supplies the yield rate used to discount a position's
// cashflows.
type YieldSource interface {
	YieldRate(p *Position) (float64, error)
}

// FixedYield is a YieldSource returning a constant rate. The yield solver uses
// it for trial evaluations so that nothing is written to the position.
type FixedYield float64

// YieldRate implements YieldSource.
func (y FixedYield) YieldRate(*Position) (float64, error) { return float64(y), nil }

// PositionParams holds the fields needed to build a Position.
type PositionParams struct {
	ID              string
	Bond            *Bond
	Nominal         float64
	AcquisitionDate time.Time
	AcquisitionCost float64 // absolute amount, already scaled by nominal/base
}

// Position is a holding of a bond. Many positions may share one Bond.
//
// Yield rates are computed lazily and memoized for the position's lifetime,
// one per pricing scheme since schemes projecting cashflows differently solve
// to different rates. A new Position is the only way to invalidate them.
type Position struct {
	ID              string
	Bond            *Bond
	Nominal         float64
	AcquisitionDate time.Time
	AcquisitionCost float64

	yieldMu sync.RWMutex
	yields  map[string]float64
	flight  singleflight.Group
}

// NewPosition validates params and returns a Position.
func NewPosition(p PositionParams) (*Position, error) {
	if p.Bond == nil {
		return nil, Errorf(ErrInvalidInput, "position %s: bond required", p.ID)
	}
	if p.Nominal <= 0 {
		return nil, Errorf(ErrInvalidInput, "position %s: nominal must be positive, got %g", p.ID, p.Nominal)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return &Position{
		ID:              p.ID,
		Bond:            p.Bond,
		Nominal:         p.Nominal,
		AcquisitionDate: p.AcquisitionDate,
		AcquisitionCost: p.AcquisitionCost,
	}, nil
}

// Scale converts per-base bond amounts into position currency amounts.
func (p *Position) Scale() float64 {
	return p.Nominal / p.Bond.Base
}

// CachedYield returns the yield memoized for scheme, if any.
func (p *Position) CachedYield(scheme string) (float64, bool) {
	p.yieldMu.RLock()
	defer p.yieldMu.RUnlock()
	y, ok := p.yields[scheme]
	return y, ok
}

// ResolveYield returns the yield memoized for scheme, running solve when there
// is none. At most one solve per position and scheme runs at a time;
// concurrent callers wait for and share its result. Only a successful result
// is memoized.
func (p *Position) ResolveYield(scheme string, solve func(*Position) (float64, error)) (float64, error) {
	if y, ok := p.CachedYield(scheme); ok {
		return y, nil
	}

	v, err, _ := p.flight.Do(scheme, func() (any, error) {
		if y, ok := p.CachedYield(scheme); ok {
			return y, nil
		}
		y, err := solve(p)
		if err != nil {
			return nil, err
		}
		p.yieldMu.Lock()
		if p.yields == nil {
			p.yields = make(map[string]float64)
		}
		p.yields[scheme] = y
		p.yieldMu.Unlock()
		return y, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(float64), nil
}
