package interpreter

import (
	"errors"
	"fmt"

	"gmlite/pkg/bytecode"
)

var (
	ErrUndeclared       = errors.New("access of undeclared variable")
	ErrRedeclared       = errors.New("variable already declared in this scope")
	ErrTypeMismatch     = errors.New("type mismatch")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrArity            = errors.New("wrong number of arguments")
	ErrNoLvalue         = errors.New("assignment without a target")
	ErrNoInstance       = errors.New("instance does not exist")
	ErrNotInstanceID    = errors.New("value is not an instance id")
	ErrNoField          = errors.New("instance contains no such variable")
	ErrStackUnderflow   = errors.New("not enough values on the stack")
	ErrTruthOfText      = errors.New("tried to take truth of text")
	ErrUnknownFunction  = errors.New("unknown function")
	ErrUnimplemented    = errors.New("unimplemented instruction")
	ErrMaxStepsExceeded = errors.New("maximum steps exceeded")
)

// RuntimeError is a script error. It halts the running program only.
type RuntimeError struct {
	PC  int
	Op  bytecode.Op
	Err error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s at %08X: %v", e.Op, e.PC, e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// InternalError is raised with panic when the bytecode or the VM state breaks an
// invariant that correctly compiled code never breaks
type InternalError struct {
	PC  int
	Msg string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("interpreter internal error at %08X: %s", e.PC, e.Msg)
}
