// Package lifo implements lifo stack
package lifo

type Stack[T any] struct {
	items []T
}

// Push adds an item to the stack
func (s *Stack[T]) Push(value T) {
	s.items = append(s.items, value)
}

// Pop removes and returns the last item from the stack
func (s *Stack[T]) Pop() (T, bool) {
	var zero T
	if len(s.items) == 0 {
		return zero, false
	}
	val := s.items[len(s.items)-1]
	s.items[len(s.items)-1] = zero
	s.items = s.items[:len(s.items)-1]
	return val, true
}

// Top returns a pointer to the last item so it can be updated in place. The
// pointer is invalidated by the next Push or Pop.
func (s *Stack[T]) Top() *T {
	if len(s.items) == 0 {
		return nil
	}
	return &s.items[len(s.items)-1]
}

// Len returns the number of items in the stack
func (s *Stack[T]) Len() int {
	return len(s.items)
}

// IsEmpty checks if the stack is empty
func (s *Stack[T]) IsEmpty() bool {
	return len(s.items) == 0
}

// Items returns a copy of the items, bottom first
func (s *Stack[T]) Items() []T {
	return append([]T{}, s.items...)
}
