package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/newthinker/bondcalc/internal/core"
	"github.com/newthinker/bondcalc/internal/portfolio"
	"github.com/newthinker/bondcalc/internal/valuation"
)

// Calculators returns the calculator for a method name; empty means the
// configured default.
type Calculators interface {
	Get(method string) (*valuation.Calculator, error)
}

// Book looks up configured positions.
type Book interface {
	Position(id string) (*core.Position, error)
	Positions() []*core.Position
}

// PortfolioRequest selects positions: inline bonds and positions when given,
// else configured positions, all of them when PositionIDs is empty.
type PortfolioRequest struct {
	PositionIDs []string                 `json:"position_ids,omitempty"`
	Bonds       []portfolio.BondSpec     `json:"bonds,omitempty"`
	Positions   []portfolio.PositionSpec `json:"positions,omitempty"`
}

func (req PortfolioRequest) resolve(book Book) ([]*core.Position, error) {
	source := book
	if len(req.Positions) > 0 {
		inline, err := portfolio.Spec{Bonds: req.Bonds, Positions: req.Positions}.Build()
		if err != nil {
			return nil, err
		}
		source = inline
	}
	if source == nil {
		return nil, core.Errorf(core.ErrInvalidInput, "no positions given and none configured")
	}
	if len(req.PositionIDs) == 0 {
		return source.Positions(), nil
	}

	out := make([]*core.Position, 0, len(req.PositionIDs))
	for _, id := range req.PositionIDs {
		p, err := source.Position(id)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return core.WrapError(core.ErrInvalidInput, fmt.Errorf("decoding request: %w", err))
	}
	return nil
}

func wantsCSV(r *http.Request) bool {
	return r.URL.Query().Get("format") == "csv"
}
