package valuation

import "strings"

// Set holds one calculator per method, all sharing inflation indexes and
// metrics.
type Set struct {
	calculators map[Method]*Calculator
	fallback    Method
}

// NewSet builds a calculator for every method. opts.Method becomes the
// method used when a caller names none.
func NewSet(opts Options) (*Set, error) {
	fallback, err := ParseMethod(string(opts.Method))
	if err != nil {
		return nil, err
	}
	s := &Set{
		calculators: make(map[Method]*Calculator, len(Methods())),
		fallback:    fallback,
	}
	for _, m := range Methods() {
		o := opts
		o.Method = m
		c, err := New(o)
		if err != nil {
			return nil, err
		}
		s.calculators[m] = c
	}
	return s, nil
}

// Get returns the calculator for name, or the default one when name is
// empty.
func (s *Set) Get(name string) (*Calculator, error) {
	m := s.fallback
	if strings.TrimSpace(name) != "" {
		parsed, err := ParseMethod(name)
		if err != nil {
			return nil, err
		}
		m = parsed
	}
	return s.calculators[m], nil
}

// Default returns the calculator used when no method is named.
func (s *Set) Default() *Calculator { return s.calculators[s.fallback] }
