package domain

import "sort"

// Facts is the read-only view of a fact set used by the evaluator.
type Facts interface {
	Has(id string) bool
}

// FactSet is an immutable set of known fact identifiers.
// It is safe to share between goroutines.
type FactSet struct {
	ids map[string]struct{}
}

// NewFactSet builds a fact set from the given identifiers. Duplicates are ignored.
func NewFactSet(ids ...string) FactSet {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return FactSet{ids: set}
}

// Has reports whether id is a known fact.
func (f FactSet) Has(id string) bool {
	_, ok := f.ids[id]
	return ok
}

// Len returns the number of distinct facts.
func (f FactSet) Len() int {
	return len(f.ids)
}

// Slice returns the facts in sorted order.
func (f FactSet) Slice() []string {
	out := make([]string, 0, len(f.ids))
	for id := range f.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
