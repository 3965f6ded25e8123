package daycount

import (
	"sort"
	"strings"
	"sync"

	"github.com/newthinker/bondcalc/internal/core"
)

// Registry resolves convention names and aliases to conventions.
type Registry struct {
	mu          sync.RWMutex
	conventions map[string]Convention
	aliases     map[string]string
}

// NewRegistry creates a registry holding the built-in conventions.
func NewRegistry() *Registry {
	r := &Registry{
		conventions: make(map[string]Convention),
		aliases:     make(map[string]string),
	}
	r.Register(Act365{}, "EXACT/365", "ACT/365F")
	r.Register(Act360{}, "EXACT/360")
	r.Register(Thirty360{})
	r.Register(ThirtyE360{})
	r.Register(ActActISDA{}, "ACT/ACT ISDA")
	return r
}

func normalize(name string) string {
	return strings.ToUpper(strings.Join(strings.Fields(name), " "))
}

// Register adds a convention under its name and the given aliases.
func (r *Registry) Register(c Convention, aliases ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := normalize(c.Name())
	r.conventions[name] = c
	for _, a := range aliases {
		r.aliases[normalize(a)] = name
	}
}

// Get resolves name, case-insensitively, to a registered convention.
func (r *Registry) Get(name string) (Convention, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key := normalize(name)
	if canonical, ok := r.aliases[key]; ok {
		key = canonical
	}
	c, ok := r.conventions[key]
	return c, ok
}

// Names returns the canonical names of every registered convention.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.conventions)+1)
	for n := range r.conventions {
		names = append(names, n)
	}
	names = append(names, NameActActICMA)
	sort.Strings(names)
	return names
}

// Lookup resolves a convention that does not depend on a bond. ACT/ACT ICMA
// always fails here; use ForBond.
func (r *Registry) Lookup(name string) (Convention, error) {
	if normalize(name) == NameActActICMA {
		return nil, core.Errorf(core.ErrUnsupportedConvention, "%s requires a bond schedule", NameActActICMA)
	}
	c, ok := r.Get(name)
	if !ok {
		return nil, core.Errorf(core.ErrUnsupportedConvention, "unknown day-count convention %q", name)
	}
	return c, nil
}

// ForBond resolves the bond's own convention, binding ACT/ACT ICMA to its
// coupon schedule.
func (r *Registry) ForBond(s Schedule) (Convention, error) {
	if normalize(s.Convention()) == NameActActICMA {
		return NewActActICMA(s), nil
	}
	return r.Lookup(s.Convention())
}

var defaultRegistry = NewRegistry()

// Lookup resolves name against the built-in conventions.
func Lookup(name string) (Convention, error) { return defaultRegistry.Lookup(name) }

// ForBond resolves s's convention against the built-in conventions.
func ForBond(s Schedule) (Convention, error) { return defaultRegistry.ForBond(s) }

// Names lists the built-in conventions.
func Names() []string { return defaultRegistry.Names() }
