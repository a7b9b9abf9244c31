package interpreter

import (
	"fmt"

	"gmlite/pkg/stack"
)

// scope is one level of variable bindings together with the values pushed while it is innermost
type scope struct {
	vars   map[string]Value
	values *stack.Stack[Value]
}

func newScope() *scope {
	return &scope{vars: make(map[string]Value), values: stack.New[Value]()}
}

// lvalue is the pending assignment target set by DIRECT or INDIRECT
type lvalue struct {
	name     string
	instance int64
	remote   bool
}

// State is the execution state of one program or the field storage of one instance
type State struct {
	code   []byte
	pc     int
	truth  bool
	scopes *stack.Stack[*scope]
	depths *stack.Stack[int] // scope depths recorded by SAVESCOPE
	target *lvalue
}

func newState(code []byte) *State {
	return &State{
		code:   code,
		scopes: stack.New(newScope()),
		depths: stack.New[int](),
	}
}

// PC returns the offset of the next instruction
func (s *State) PC() int { return s.pc }

// Truth returns the truth register
func (s *State) Truth() bool { return s.truth }

// Depth returns the number of open scopes, including the outermost one
func (s *State) Depth() int { return s.scopes.Size() }

// SavedDepths returns the number of depths recorded by SAVESCOPE and not yet consumed
func (s *State) SavedDepths() int { return s.depths.Size() }

// Lookup resolves name from the innermost scope outward
func (s *State) Lookup(name string) (Value, bool) {
	sc, ok := s.resolve(name)
	if !ok {
		return nil, false
	}
	return sc.vars[name], true
}

func (s *State) resolve(name string) (*scope, bool) {
	if s.scopes.Size() == 0 {
		panic(&InternalError{PC: s.pc, Msg: "empty scope stack"})
	}

	for i := s.scopes.Size() - 1; i >= 0; i-- {
		sc := s.scopes.At(i)
		if _, ok := sc.vars[name]; ok {
			return sc, true
		}
	}
	return nil, false
}

func (s *State) current() *scope {
	sc, ok := s.scopes.Peek()
	if !ok {
		panic(&InternalError{PC: s.pc, Msg: "empty scope stack"})
	}
	return sc
}

func (s *State) declare(name string, v Value) error {
	sc := s.current()
	if _, ok := sc.vars[name]; ok {
		return fmt.Errorf("%w: %s", ErrRedeclared, name)
	}
	sc.vars[name] = v
	return nil
}

func (s *State) push(v Value) {
	s.current().values.Push(v)
}

func (s *State) pop() (Value, error) {
	v, ok := s.current().values.Pop()
	if !ok {
		return nil, ErrStackUnderflow
	}
	return v, nil
}

func (s *State) openScope() {
	s.scopes.Push(newScope())
}

func (s *State) exitScope() {
	if s.scopes.Size() <= 1 {
		panic(&InternalError{PC: s.pc, Msg: "EXITSCOPE on the outermost scope"})
	}
	s.scopes.Pop()
}

func (s *State) saveScope() {
	s.depths.Push(s.scopes.Size())
}

// loadScope drops the most recently saved depth and closes every scope opened after it
func (s *State) loadScope() {
	depth, ok := s.depths.Pop()
	if !ok {
		panic(&InternalError{PC: s.pc, Msg: "no saved scope depth"})
	}
	if depth < 1 || depth > s.scopes.Size() {
		panic(&InternalError{PC: s.pc, Msg: fmt.Sprintf("saved depth %d with %d scopes open", depth, s.scopes.Size())})
	}
	s.scopes.Truncate(depth)
}
