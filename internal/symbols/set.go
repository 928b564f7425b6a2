package symbols

import "QuoteTables/internal/model"

// Set is an insertion-ordered set of symbols.
type Set struct {
	order []model.Symbol
	index map[model.Symbol]struct{}
}

// NewSet returns a set holding the given symbols, duplicates collapsed.
func NewSet(syms ...model.Symbol) *Set {
	s := &Set{index: make(map[model.Symbol]struct{})}
	for _, sym := range syms {
		s.Add(sym)
	}
	return s
}

// Add inserts sym and reports whether it was new.
func (s *Set) Add(sym model.Symbol) bool {
	if _, ok := s.index[sym]; ok {
		return false
	}
	s.index[sym] = struct{}{}
	s.order = append(s.order, sym)
	return true
}

func (s *Set) Contains(sym model.Symbol) bool {
	_, ok := s.index[sym]
	return ok
}

func (s *Set) Len() int { return len(s.order) }

// Slice returns the members in insertion order.
func (s *Set) Slice() []model.Symbol {
	out := make([]model.Symbol, len(s.order))
	copy(out, s.order)
	return out
}

// Union adds every member of other to s.
func (s *Set) Union(other *Set) {
	for _, sym := range other.order {
		s.Add(sym)
	}
}
