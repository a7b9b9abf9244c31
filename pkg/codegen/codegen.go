// Package codegen lowers a syntax tree into the byte-oriented instruction stream
// executed by the interpreter.
package codegen

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/charmbracelet/log"

	"gmlite/pkg/ast"
	"gmlite/pkg/bytecode"
)

var binaryOps = map[string]bytecode.BinaryOp{
	"+":  bytecode.ADD,
	"-":  bytecode.SUB,
	"*":  bytecode.MUL,
	"/":  bytecode.DIV,
	"==": bytecode.EQ,
	"!=": bytecode.NEQ,
	">=": bytecode.GTE,
	"<=": bytecode.LTE,
	">":  bytecode.GT,
	"<":  bytecode.LT,
	"&&": bytecode.AND,
	"||": bytecode.OR,
}

var unaryOps = map[string]bytecode.UnaryOp{
	"+": bytecode.POSITIVE,
	"-": bytecode.NEGATIVE,
	"!": bytecode.NEGATION,
}

var assignOps = map[string]bytecode.AssignOp{
	"=":  bytecode.ASSIGN,
	"+=": bytecode.MUTADD,
	"-=": bytecode.MUTSUB,
	"*=": bytecode.MUTMUL,
	"/=": bytecode.MUTDIV,
}

var stepOps = map[string]bytecode.StepOp{
	"++": bytecode.INCREMENT,
	"--": bytecode.DECREMENT,
}

const maxArgs = math.MaxUint8

type Codegen struct {
	loops int // depth of enclosing loop bodies
}

// NewCodegen creates a new Codegen instance
func NewCodegen() *Codegen {
	return &Codegen{}
}

// Compile lowers root into bytecode using a fresh Codegen
func Compile(root *ast.Node) ([]byte, error) {
	return NewCodegen().Compile(root)
}

// Compile lowers root into bytecode. A malformed tree panics with *InternalError.
func (c *Codegen) Compile(root *ast.Node) ([]byte, error) {
	c.loops = 0

	var out chunk
	if err := c.emit(&out, root); err != nil {
		return nil, err
	}
	if len(out.breaks) > 0 || len(out.continues) > 0 {
		panic(internalf("%d unpatched loop exits", len(out.breaks)+len(out.continues)))
	}

	log.Debug("compiled program", "bytes", len(out.code))
	return out.code, nil
}

func (c *Codegen) emit(ch *chunk, n *ast.Node) error {
	if n == nil {
		panic(internalf("nil node"))
	}

	switch n.Kind {
	case ast.KindSequence:
		return c.emitAll(ch, n.Children)

	case ast.KindBlock:
		ch.op(bytecode.OPENSCOPE)
		if err := c.emitAll(ch, n.Children); err != nil {
			return err
		}
		ch.op(bytecode.EXITSCOPE)
		return nil

	case ast.KindEmpty:
		return nil

	case ast.KindNumber:
		// literals past the float64 range become ±Inf
		f, err := strconv.ParseFloat(n.Text, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return &Error{Pos: n.Pos, Err: fmt.Errorf("%w: %q", ErrBadNumber, n.Text)}
		}
		ch.op(bytecode.PUSHVAL)
		ch.code = bytecode.AppendNumber(ch.code, f)
		return nil

	case ast.KindText:
		return c.named(ch, bytecode.PUSHTEXT, n)

	case ast.KindName:
		return c.named(ch, bytecode.PUSHVAR, n)

	case ast.KindDeclaration:
		return c.declaration(ch, n)

	case ast.KindMutation:
		return c.mutation(ch, n)

	case ast.KindField:
		if err := c.emit(ch, child(n, n.Left, "object")); err != nil {
			return err
		}
		return c.named(ch, bytecode.INDEXP, n)

	case ast.KindBinary:
		op, ok := binaryOps[n.Text]
		if !ok {
			panic(internalf("unknown binary operator %q at %s", n.Text, n.Pos))
		}
		if err := c.emit(ch, child(n, n.Left, "left operand")); err != nil {
			return err
		}
		if err := c.emit(ch, child(n, n.Right, "right operand")); err != nil {
			return err
		}
		ch.sub(bytecode.BINOP, byte(op))
		return nil

	case ast.KindUnary:
		op, ok := unaryOps[n.Text]
		if !ok {
			panic(internalf("unknown unary operator %q at %s", n.Text, n.Pos))
		}
		if err := c.emit(ch, child(n, n.Right, "operand")); err != nil {
			return err
		}
		ch.sub(bytecode.UNOP, byte(op))
		return nil

	case ast.KindParen:
		return c.emit(ch, child(n, n.Right, "inner expression"))

	case ast.KindCall:
		return c.call(ch, n)

	case ast.KindExprStmt:
		if err := c.emit(ch, child(n, n.Right, "expression")); err != nil {
			return err
		}
		ch.op(bytecode.POP)
		return nil

	case ast.KindIf:
		return c.ifStatement(ch, n)

	case ast.KindWhile:
		return c.whileStatement(ch, n)

	case ast.KindFor:
		return c.forStatement(ch, n)

	case ast.KindBreak, ast.KindContinue:
		if c.loops == 0 {
			return &Error{Pos: n.Pos, Err: fmt.Errorf("%w: %s", ErrLoopControl, n.Kind)}
		}
		if n.Kind == ast.KindBreak {
			ch.pendingBreak(&ch.breaks)
		} else {
			ch.pendingBreak(&ch.continues)
		}
		return nil
	}

	panic(internalf("unexpected %s node at %s", n.Kind, n.Pos))
}

func (c *Codegen) emitAll(ch *chunk, nodes []*ast.Node) error {
	for _, n := range nodes {
		if err := c.emit(ch, n); err != nil {
			return err
		}
	}
	return nil
}

// named emits op with the node text as its NUL-terminated operand
func (c *Codegen) named(ch *chunk, op bytecode.Op, n *ast.Node) error {
	if bytecode.HasNul(n.Text) {
		return &Error{Pos: n.Pos, Err: fmt.Errorf("%w: %q", ErrNulByte, n.Text)}
	}
	ch.name(op, n.Text)
	return nil
}

func (c *Codegen) declaration(ch *chunk, n *ast.Node) error {
	if len(n.Children) == 0 {
		panic(internalf("declaration without declarators at %s", n.Pos))
	}

	for _, d := range n.Children {
		if d.Kind != ast.KindDeclarator {
			panic(internalf("unexpected %s in declaration at %s", d.Kind, d.Pos))
		}

		if d.Right == nil {
			if err := c.named(ch, bytecode.DECLARE, d); err != nil {
				return err
			}
			continue
		}

		if err := c.emit(ch, d.Right); err != nil {
			return err
		}
		if err := c.named(ch, bytecode.DECLSET, d); err != nil {
			return err
		}
	}

	return nil
}

// mutation emits the value (for binary forms), the lvalue, then the assignment
func (c *Codegen) mutation(ch *chunk, n *ast.Node) error {
	target := child(n, n.Left, "target")

	assign, binary := assignOps[n.Text]
	step, unary := stepOps[n.Text]
	switch {
	case binary:
		if err := c.emit(ch, child(n, n.Right, "value")); err != nil {
			return err
		}
	case unary:
		if n.Right != nil {
			panic(internalf("%s with a value at %s", n.Text, n.Pos))
		}
	default:
		panic(internalf("unknown assignment operator %q at %s", n.Text, n.Pos))
	}

	switch target.Kind {
	case ast.KindName:
		if err := c.named(ch, bytecode.DIRECT, target); err != nil {
			return err
		}
	case ast.KindField:
		if err := c.emit(ch, child(target, target.Left, "object")); err != nil {
			return err
		}
		if err := c.named(ch, bytecode.INDIRECT, target); err != nil {
			return err
		}
	default:
		panic(internalf("cannot assign to %s at %s", target.Kind, target.Pos))
	}

	if binary {
		ch.sub(bytecode.BINAS, byte(assign))
	} else {
		ch.sub(bytecode.UNAS, byte(step))
	}
	return nil
}

func (c *Codegen) call(ch *chunk, n *ast.Node) error {
	if len(n.Children) > maxArgs {
		return &Error{Pos: n.Pos, Err: fmt.Errorf("%w: %s has %d", ErrTooManyArgs, n.Text, len(n.Children))}
	}

	for _, arg := range n.Children {
		if err := c.emit(ch, arg); err != nil {
			return err
		}
	}
	if err := c.named(ch, bytecode.CALL, n); err != nil {
		return err
	}
	ch.code = append(ch.code, byte(len(n.Children)))
	return nil
}

// child asserts that a required child is present
func child(parent, n *ast.Node, what string) *ast.Node {
	if n == nil {
		panic(internalf("%s without %s at %s", parent.Kind, what, parent.Pos))
	}
	return n
}
