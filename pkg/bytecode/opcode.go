// Package bytecode holds the instruction set shared by the code generator and the
// interpreter: opcode values, the operand codec, a decoder and a disassembler.
//
// Multi-byte operands are big-endian. Jump offsets are signed and relative to
// the address of the jump opcode itself.
package bytecode

import "fmt"

type Op byte

const (
	NOP       Op = 0x00
	PUSHVAL   Op = 0x01 // f64
	PUSHTEXT  Op = 0x02 // bytes, 0x00
	PUSHVAR   Op = 0x03 // name
	POP       Op = 0x04
	DECLARE   Op = 0x05 // name
	DECLSET   Op = 0x06 // name
	BINOP     Op = 0x07 // sub
	UNOP      Op = 0x08 // sub
	DIRECT    Op = 0x09 // name
	INDIRECT  Op = 0x0A // name
	INDEXP    Op = 0x0B // name
	BINAS     Op = 0x0C // sub
	UNAS      Op = 0x0D // sub
	TRUTH     Op = 0x0E
	OPENSCOPE Op = 0x10
	EXITSCOPE Op = 0x11
	SAVESCOPE Op = 0x12
	LOADSCOPE Op = 0x13
	BREAK     Op = 0x14 // i64
	JSIT      Op = 0x15 // i16
	JLIT      Op = 0x16 // i64
	JSIF      Op = 0x17 // i16
	JLIF      Op = 0x18 // i64
	JS        Op = 0x19 // i16
	JL        Op = 0x1A // i64
	CALL      Op = 0x1B // name, u8
	FUNCDEF   Op = 0x1C
	RETURN    Op = 0x1D
)

var opNames = map[Op]string{
	NOP:       "NOP",
	PUSHVAL:   "PUSHVAL",
	PUSHTEXT:  "PUSHTEXT",
	PUSHVAR:   "PUSHVAR",
	POP:       "POP",
	DECLARE:   "DECLARE",
	DECLSET:   "DECLSET",
	BINOP:     "BINOP",
	UNOP:      "UNOP",
	DIRECT:    "DIRECT",
	INDIRECT:  "INDIRECT",
	INDEXP:    "INDEXP",
	BINAS:     "BINAS",
	UNAS:      "UNAS",
	TRUTH:     "TRUTH",
	OPENSCOPE: "OPENSCOPE",
	EXITSCOPE: "EXITSCOPE",
	SAVESCOPE: "SAVESCOPE",
	LOADSCOPE: "LOADSCOPE",
	BREAK:     "BREAK",
	JSIT:      "JSIT",
	JLIT:      "JLIT",
	JSIF:      "JSIF",
	JLIF:      "JLIF",
	JS:        "JS",
	JL:        "JL",
	CALL:      "CALL",
	FUNCDEF:   "FUNCDEF",
	RETURN:    "RETURN",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}

	return fmt.Sprintf("OP(0x%02X)", byte(o))
}

// Valid reports whether o is part of the instruction set
func (o Op) Valid() bool {
	_, ok := opNames[o]
	return ok
}

// Short reports whether o is a jump with a 16-bit offset
func (o Op) Short() bool {
	return o == JS || o == JSIT || o == JSIF
}

// Jump reports whether o transfers control by an offset operand
func (o Op) Jump() bool {
	switch o {
	case BREAK, JSIT, JLIT, JSIF, JLIF, JS, JL:
		return true
	}

	return false
}

// Sub-opcodes. Each family starts at 0x80, so the meaning of a sub-opcode byte
// depends on the opcode it follows.

type BinaryOp byte

const (
	ADD BinaryOp = 0x80 + iota
	SUB
	MUL
	DIV
	EQ
	NEQ
	GTE
	LTE
	GT
	LT
	AND
	OR
)

var binaryNames = [...]string{"ADD", "SUB", "MUL", "DIV", "EQ", "NEQ", "GTE", "LTE", "GT", "LT", "AND", "OR"}

func (b BinaryOp) Valid() bool { return b >= ADD && b <= OR }

func (b BinaryOp) String() string {
	if b.Valid() {
		return binaryNames[b-ADD]
	}
	return fmt.Sprintf("BINARY(0x%02X)", byte(b))
}

type UnaryOp byte

const (
	POSITIVE UnaryOp = 0x80 + iota
	NEGATIVE
	NEGATION
)

var unaryNames = [...]string{"POSITIVE", "NEGATIVE", "NEGATION"}

func (u UnaryOp) Valid() bool { return u >= POSITIVE && u <= NEGATION }

func (u UnaryOp) String() string {
	if u.Valid() {
		return unaryNames[u-POSITIVE]
	}
	return fmt.Sprintf("UNARY(0x%02X)", byte(u))
}

type AssignOp byte

const (
	ASSIGN AssignOp = 0x80 + iota
	MUTADD
	MUTSUB
	MUTMUL
	MUTDIV
)

var assignNames = [...]string{"ASSIGN", "MUTADD", "MUTSUB", "MUTMUL", "MUTDIV"}

func (a AssignOp) Valid() bool { return a >= ASSIGN && a <= MUTDIV }

func (a AssignOp) String() string {
	if a.Valid() {
		return assignNames[a-ASSIGN]
	}
	return fmt.Sprintf("ASSIGN(0x%02X)", byte(a))
}

type StepOp byte

const (
	INCREMENT StepOp = 0x80 + iota
	DECREMENT
)

func (s StepOp) Valid() bool { return s == INCREMENT || s == DECREMENT }

func (s StepOp) String() string {
	switch s {
	case INCREMENT:
		return "INCREMENT"
	case DECREMENT:
		return "DECREMENT"
	}
	return fmt.Sprintf("STEP(0x%02X)", byte(s))
}
