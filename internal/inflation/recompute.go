package inflation

import (
	"fmt"
	"time"

	"github.com/newthinker/bondcalc/internal/cashflow"
	"github.com/newthinker/bondcalc/internal/core"
	"github.com/newthinker/bondcalc/internal/daycount"
)

// pastLag is how far behind the computation date index publications become
// known.
const pastLag = 2 // months

// Recompute scales cashflows by RQI(cashflow date) / RQI(emission) read from a
// reference index table. With past set, only readings known two months before
// the computation date are used.
type Recompute struct {
	indexes map[string]*IndexSeries
	past    bool
}

// NewRecomputeWithAvailable uses every reading in the tables.
func NewRecomputeWithAvailable(indexes map[string]*IndexSeries) *Recompute {
	return &Recompute{indexes: indexes}
}

// NewRecomputeWithPast ignores readings published after computation date
// minus two months.
func NewRecomputeWithPast(indexes map[string]*IndexSeries) *Recompute {
	return &Recompute{indexes: indexes, past: true}
}

func (r *Recompute) Name() string {
	if r.past {
		return NameRecomputePast
	}
	return NameRecomputeAvailable
}

func (r *Recompute) Adjust(p *core.Position, cashflows cashflow.Series, computationDate time.Time) (cashflow.Series, error) {
	index := p.Bond.InflationIndex
	if index == "" || cashflows.IsEmpty() {
		return cashflows, nil
	}
	series, ok := r.indexes[index]
	if !ok {
		return cashflow.Series{}, core.Errorf(core.ErrMissingInflationData, "bond %s: unknown inflation index %q", p.Bond.ID, index)
	}

	// frozen: every cashflow lies past the known data, so all use the
	// ratio of the first one.
	frozen := false
	if r.past {
		cutoff := daycount.AddMonths(computationDate, -pastLag)
		series = series.Until(cutoff)
		frozen = !cashflows.First().Before(cutoff)
	}

	base, err := series.RQI(p.Bond.EmissionDate)
	if err != nil {
		return cashflow.Series{}, fmt.Errorf("bond %s emission RQI: %w", p.Bond.ID, err)
	}
	if base == 0 {
		return cashflow.Series{}, core.Errorf(core.ErrMissingInflationData, "bond %s: zero reference index at emission", p.Bond.ID)
	}

	var firstRatio float64
	if frozen {
		rqi, err := series.RQI(cashflows.First())
		if err != nil {
			return cashflow.Series{}, fmt.Errorf("bond %s: %w", p.Bond.ID, err)
		}
		firstRatio = rqi / base
	}

	var failed error
	out := cashflows.Apply(func(date time.Time, amount float64) float64 {
		if frozen {
			return amount * firstRatio
		}
		if failed != nil {
			return 0
		}
		rqi, err := series.RQI(date)
		if err != nil {
			failed = err
			return 0
		}
		return amount * rqi / base
	})
	if failed != nil {
		return cashflow.Series{}, fmt.Errorf("bond %s: %w", p.Bond.ID, failed)
	}
	return out, nil
}
