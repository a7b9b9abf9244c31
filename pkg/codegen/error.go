package codegen

import (
	"errors"
	"fmt"

	"gmlite/pkg/lexer"
)

var (
	ErrJumpTooFar  = errors.New("jump distance cannot be encoded")
	ErrNulByte     = errors.New("NUL byte in name or text")
	ErrTooManyArgs = errors.New("too many call arguments")
	ErrLoopControl = errors.New("break or continue outside of a loop")
	ErrBadNumber   = errors.New("malformed number literal")
)

// Error is a compile failure attributed to a node position
type Error struct {
	Pos lexer.Position
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Pos, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// InternalError is raised with panic when the tree handed to the compiler has a
// shape the parser never produces
type InternalError struct {
	Msg string
}

func (e *InternalError) Error() string {
	return "codegen internal error: " + e.Msg
}

func internalf(format string, args ...any) *InternalError {
	return &InternalError{Msg: fmt.Sprintf(format, args...)}
}
