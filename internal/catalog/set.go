package catalog

import "sort"

// Set is an unordered collection of distinct strings.
type Set struct {
	items map[string]struct{}
}

func NewSet(values ...string) *Set {
	s := &Set{items: make(map[string]struct{}, len(values))}
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Add inserts v. Adding a value already present is a no-op.
func (s *Set) Add(v string) {
	s.items[v] = struct{}{}
}

// Remove deletes v if present.
func (s *Set) Remove(v string) {
	delete(s.items, v)
}

func (s *Set) Has(v string) bool {
	_, ok := s.items[v]
	return ok
}

// HasAny reports whether any of values is in the set.
func (s *Set) HasAny(values []string) bool {
	if len(s.items) == 0 {
		return false
	}
	for _, v := range values {
		if s.Has(v) {
			return true
		}
	}
	return false
}

func (s *Set) Len() int {
	return len(s.items)
}

// Values returns the members in sorted order.
func (s *Set) Values() []string {
	out := make([]string, 0, len(s.items))
	for v := range s.items {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
