package portfolio

import (
	"fmt"

	"github.com/newthinker/bondcalc/internal/core"
)

// Spec is a whole portfolio description.
type Spec struct {
	Bonds     []BondSpec     `mapstructure:"bonds" json:"bonds"`
	Positions []PositionSpec `mapstructure:"positions" json:"positions"`
}

// Book holds built bonds and positions. Positions on the same bond share it.
type Book struct {
	bonds     map[string]*core.Bond
	positions []*core.Position
	byID      map[string]*core.Position
}

// Build creates every bond, then every position.
func (s Spec) Build() (*Book, error) {
	b := &Book{
		bonds: make(map[string]*core.Bond, len(s.Bonds)),
		byID:  make(map[string]*core.Position, len(s.Positions)),
	}
	for _, spec := range s.Bonds {
		if _, dup := b.bonds[spec.ID]; dup {
			return nil, core.Errorf(core.ErrInvalidInput, "duplicate bond %q", spec.ID)
		}
		bond, err := spec.Build()
		if err != nil {
			return nil, err
		}
		b.bonds[spec.ID] = bond
	}
	for _, spec := range s.Positions {
		bond, ok := b.bonds[spec.Bond]
		if !ok {
			return nil, core.Errorf(core.ErrNotFound, "position %s: unknown bond %q", spec.ID, spec.Bond)
		}
		p, err := spec.Build(bond)
		if err != nil {
			return nil, err
		}
		if _, dup := b.byID[p.ID]; dup {
			return nil, core.Errorf(core.ErrInvalidInput, "duplicate position %q", p.ID)
		}
		b.positions = append(b.positions, p)
		b.byID[p.ID] = p
	}
	return b, nil
}

// Bond returns the bond with id.
func (b *Book) Bond(id string) (*core.Bond, bool) {
	bond, ok := b.bonds[id]
	return bond, ok
}

// Position returns the position with id.
func (b *Book) Position(id string) (*core.Position, error) {
	p, ok := b.byID[id]
	if !ok {
		return nil, core.WrapError(core.ErrNotFound, fmt.Errorf("position %q", id))
	}
	return p, nil
}

// Positions returns every position in declaration order.
func (b *Book) Positions() []*core.Position {
	out := make([]*core.Position, len(b.positions))
	copy(out, b.positions)
	return out
}
