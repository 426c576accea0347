package common

// OrderedSet is a duplicate-free set that remembers insertion order.
// The zero value is ready to use.
type OrderedSet[T comparable] struct {
	index map[T]int
	items []T
}

// NewOrderedSet returns a set holding items in order, duplicates dropped.
func NewOrderedSet[T comparable](items ...T) *OrderedSet[T] {
	s := &OrderedSet[T]{}
	for _, it := range items {
		s.Add(it)
	}

	return s
}

// Add appends v if absent and reports whether it was added.
func (s *OrderedSet[T]) Add(v T) bool {
	if s.index == nil {
		s.index = make(map[T]int)
	}

	if _, ok := s.index[v]; ok {
		return false
	}

	s.index[v] = len(s.items)
	s.items = append(s.items, v)

	return true
}

// Contains reports whether v is in the set.
func (s *OrderedSet[T]) Contains(v T) bool {
	if s == nil {
		return false
	}

	_, ok := s.index[v]

	return ok
}

// Len returns the number of items.
func (s *OrderedSet[T]) Len() int {
	if s == nil {
		return 0
	}

	return len(s.items)
}

// Items returns a copy of the items in insertion order. Never nil.
func (s *OrderedSet[T]) Items() []T {
	if s == nil {
		return []T{}
	}

	out := make([]T, len(s.items))
	copy(out, s.items)

	return out
}

// Clear removes all items.
func (s *OrderedSet[T]) Clear() {
	s.index = nil
	s.items = nil
}
