package interpreter

import (
	"fmt"
	"math"
	"strconv"

	"gmlite/pkg/bytecode"
)

// Value represents a dynamically-typed value in the interpreter.
// It is either a Number or a Text; no other implementations exist.
type Value interface {
	String() string
	Kind() string
	value()
}

type Number float64

type Text string

func (Number) value() {}
func (Text) value()   {}

func (Number) Kind() string { return "number" }
func (Text) Kind() string   { return "text" }

// String renders the number in its shortest exact decimal form, without exponent.
func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

func (t Text) String() string {
	return string(t)
}

// Truthy reports C truthiness: any nonzero number, NaN included
func (n Number) Truthy() bool {
	return n != 0
}

func boolNumber(b bool) Number {
	if b {
		return 1
	}
	return 0
}

// binary applies op to two values of the same tag
func binary(op bytecode.BinaryOp, l, r Value) (Value, error) {
	switch lv := l.(type) {
	case Number:
		rv, ok := r.(Number)
		if !ok {
			return nil, mismatch(op, l, r)
		}
		return numeric(op, lv, rv), nil

	case Text:
		rv, ok := r.(Text)
		if !ok {
			return nil, mismatch(op, l, r)
		}
		switch op {
		case bytecode.ADD:
			return lv + rv, nil
		case bytecode.EQ:
			return boolNumber(lv == rv), nil
		case bytecode.NEQ:
			return boolNumber(lv != rv), nil
		}
		return nil, fmt.Errorf("%w: %s on text", ErrInvalidOperation, op)
	}

	panic(&InternalError{Msg: fmt.Sprintf("value of type %T", l)})
}

func numeric(op bytecode.BinaryOp, l, r Number) Number {
	switch op {
	case bytecode.ADD:
		return l + r
	case bytecode.SUB:
		return l - r
	case bytecode.MUL:
		return l * r
	case bytecode.DIV:
		return l / r
	case bytecode.EQ:
		return boolNumber(l == r)
	case bytecode.NEQ:
		return boolNumber(l != r)
	case bytecode.GTE:
		return boolNumber(l >= r)
	case bytecode.LTE:
		return boolNumber(l <= r)
	case bytecode.GT:
		return boolNumber(l > r)
	case bytecode.LT:
		return boolNumber(l < r)
	case bytecode.AND:
		return boolNumber(l.Truthy() && r.Truthy())
	case bytecode.OR:
		return boolNumber(l.Truthy() || r.Truthy())
	}

	panic(&InternalError{Msg: "unknown binary operator " + op.String()})
}

func unary(op bytecode.UnaryOp, v Value) (Value, error) {
	n, ok := v.(Number)
	if !ok {
		return nil, fmt.Errorf("%w: %s on text", ErrInvalidOperation, op)
	}

	switch op {
	case bytecode.POSITIVE:
		return n, nil
	case bytecode.NEGATIVE:
		return -n, nil
	case bytecode.NEGATION:
		return boolNumber(!n.Truthy()), nil
	}

	panic(&InternalError{Msg: "unknown unary operator " + op.String()})
}

// assign applies a binary assignment to the value held in a cell and returns the new value
func assign(op bytecode.AssignOp, cur, v Value) (Value, error) {
	if op == bytecode.ASSIGN {
		return v, nil
	}

	switch cv := cur.(type) {
	case Number:
		rv, ok := v.(Number)
		if !ok {
			return nil, mismatch(op, cur, v)
		}
		switch op {
		case bytecode.MUTADD:
			return cv + rv, nil
		case bytecode.MUTSUB:
			return cv - rv, nil
		case bytecode.MUTMUL:
			return cv * rv, nil
		case bytecode.MUTDIV:
			return cv / rv, nil
		}

	case Text:
		rv, ok := v.(Text)
		if !ok {
			return nil, mismatch(op, cur, v)
		}
		if op == bytecode.MUTADD {
			return cv + rv, nil
		}
		return nil, fmt.Errorf("%w: %s on text", ErrInvalidOperation, op)
	}

	panic(&InternalError{Msg: "unknown assignment operator " + op.String()})
}

func step(op bytecode.StepOp, cur Value) (Value, error) {
	n, ok := cur.(Number)
	if !ok {
		return nil, fmt.Errorf("%w: %s on text", ErrInvalidOperation, op)
	}

	if op == bytecode.INCREMENT {
		return n + 1, nil
	}
	return n - 1, nil
}

// instanceID converts a value to a registry key. Only integral numbers qualify.
func instanceID(v Value) (int64, error) {
	n, ok := v.(Number)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrNotInstanceID, v.String())
	}

	f := float64(n)
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: %s", ErrNoInstance, n)
	}
	return int64(f), nil
}

func mismatch(op fmt.Stringer, l, r Value) error {
	return fmt.Errorf("%w: %s between %s and %s", ErrTypeMismatch, op, l.Kind(), r.Kind())
}
