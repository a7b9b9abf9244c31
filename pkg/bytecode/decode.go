package bytecode

import (
	"bytes"
	"errors"
	"fmt"
)

var (
	ErrTruncated     = errors.New("truncated operand")
	ErrUnknownOp     = errors.New("unknown opcode")
	ErrUnknownSubOp  = errors.New("unknown sub-opcode")
	ErrOutOfRange    = errors.New("offset outside of code")
	ErrMissingNulEnd = errors.New("missing NUL terminator")
)

// Instruction is one decoded instruction. Only the operand fields used by Op are set.
type Instruction struct {
	Offset int // address of the opcode byte
	Size   int // encoded length including the opcode
	Op     Op

	Number float64 // PUSHVAL
	Text   string  // PUSHTEXT payload, or the name operand
	Sub    byte    // BINOP, UNOP, BINAS, UNAS
	Jump   int64   // jumps and BREAK, relative to Offset
	Argc   int     // CALL
}

// Target returns the absolute address a jump instruction transfers to
func (in Instruction) Target() int64 {
	return int64(in.Offset) + in.Jump
}

// Next returns the address of the following instruction
func (in Instruction) Next() int {
	return in.Offset + in.Size
}

// Decode reads the instruction starting at code[pc]
func Decode(code []byte, pc int) (Instruction, error) {
	if pc < 0 || pc >= len(code) {
		return Instruction{}, fmt.Errorf("%w: %d", ErrOutOfRange, pc)
	}

	in := Instruction{Offset: pc, Op: Op(code[pc])}
	if !in.Op.Valid() {
		return in, fmt.Errorf("%w 0x%02X at %08X", ErrUnknownOp, code[pc], pc)
	}

	rest := code[pc+1:]
	size := 0

	need := func(n int) error {
		if len(rest) < n {
			return fmt.Errorf("%w: %s at %08X needs %d bytes, has %d", ErrTruncated, in.Op, pc, n, len(rest))
		}
		return nil
	}

	switch in.Op {
	case PUSHVAL:
		if err := need(8); err != nil {
			return in, err
		}
		in.Number = readNumber(rest)
		size = 8

	case PUSHTEXT, PUSHVAR, DECLARE, DECLSET, DIRECT, INDIRECT, INDEXP:
		end := bytes.IndexByte(rest, 0)
		if end < 0 {
			return in, fmt.Errorf("%w: %s at %08X", ErrMissingNulEnd, in.Op, pc)
		}
		in.Text = string(rest[:end])
		size = end + 1

	case CALL:
		end := bytes.IndexByte(rest, 0)
		if end < 0 {
			return in, fmt.Errorf("%w: %s at %08X", ErrMissingNulEnd, in.Op, pc)
		}
		if len(rest) < end+2 {
			return in, fmt.Errorf("%w: %s at %08X has no argument count", ErrTruncated, in.Op, pc)
		}
		in.Text = string(rest[:end])
		in.Argc = int(rest[end+1])
		size = end + 2

	case BINOP, UNOP, BINAS, UNAS:
		if err := need(1); err != nil {
			return in, err
		}
		in.Sub = rest[0]
		if !subValid(in.Op, in.Sub) {
			return in, fmt.Errorf("%w 0x%02X for %s at %08X", ErrUnknownSubOp, in.Sub, in.Op, pc)
		}
		size = 1

	default:
		if !in.Op.Jump() {
			break
		}
		if in.Op.Short() {
			if err := need(2); err != nil {
				return in, err
			}
			in.Jump = int64(readInt16(rest))
			size = 2
			break
		}
		if err := need(8); err != nil {
			return in, err
		}
		in.Jump = readInt64(rest)
		size = 8
	}

	in.Size = size + 1
	return in, nil
}

// DecodeAll decodes code from start to end in address order
func DecodeAll(code []byte) ([]Instruction, error) {
	var out []Instruction
	for pc := 0; pc < len(code); {
		in, err := Decode(code, pc)
		if err != nil {
			return out, err
		}
		out = append(out, in)
		pc = in.Next()
	}

	return out, nil
}

// Ops returns only the opcodes of a decoded stream
func Ops(ins []Instruction) []Op {
	ops := make([]Op, len(ins))
	for i, in := range ins {
		ops[i] = in.Op
	}
	return ops
}

func subValid(op Op, sub byte) bool {
	switch op {
	case BINOP:
		return BinaryOp(sub).Valid()
	case UNOP:
		return UnaryOp(sub).Valid()
	case BINAS:
		return AssignOp(sub).Valid()
	case UNAS:
		return StepOp(sub).Valid()
	}
	return false
}

func subName(op Op, sub byte) string {
	switch op {
	case BINOP:
		return BinaryOp(sub).String()
	case UNOP:
		return UnaryOp(sub).String()
	case BINAS:
		return AssignOp(sub).String()
	case UNAS:
		return StepOp(sub).String()
	}
	return fmt.Sprintf("0x%02X", sub)
}
