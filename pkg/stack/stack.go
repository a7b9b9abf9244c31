package stack

type Stack[T any] struct {
	a []T
}

// New creates a new stack holding the given elements, bottom first
func New[T any](elm ...T) *Stack[T] {
	s := &Stack[T]{a: make([]T, 0, len(elm))}
	s.a = append(s.a, elm...)

	return s
}

// Push adds an element to the top of the stack
func (s *Stack[T]) Push(elm T) {
	s.a = append(s.a, elm)
}

// Pop removes and returns the top element of the stack
func (s *Stack[T]) Pop() (T, bool) {
	var zero T
	if len(s.a) < 1 {
		return zero, false
	}

	elm := s.a[len(s.a)-1]
	s.a[len(s.a)-1] = zero
	s.a = s.a[:len(s.a)-1]

	return elm, true
}

// Peek returns the top element of the stack without removing it
func (s *Stack[T]) Peek() (T, bool) {
	if len(s.a) < 1 {
		var zero T
		return zero, false
	}

	return s.a[len(s.a)-1], true
}

// At returns the element at index i counted from the bottom
func (s *Stack[T]) At(i int) T {
	return s.a[i]
}

// Truncate pops elements until at most n remain
func (s *Stack[T]) Truncate(n int) {
	if n < 0 {
		n = 0
	}

	var zero T
	for i := n; i < len(s.a); i++ {
		s.a[i] = zero
	}

	if n < len(s.a) {
		s.a = s.a[:n]
	}
}

// Size returns the number of elements on the stack
func (s *Stack[T]) Size() int {
	return len(s.a)
}
