package bytecode

import (
	"fmt"
	"strconv"
	"strings"
)

// Styler decorates the address and the body of a disassembly line
type Styler func(addr, body string) string

func plain(addr, body string) string {
	return addr + ": " + body
}

// String renders the instruction as a single disassembly line
func (in Instruction) String() string {
	return plain(fmt.Sprintf("%08X", in.Offset), in.body())
}

// body is the mnemonic followed by the rendered operands
func (in Instruction) body() string {
	var operands string
	switch in.Op {
	case PUSHVAL:
		operands = strconv.FormatFloat(in.Number, 'f', -1, 64)
	case PUSHTEXT:
		operands = strconv.Quote(in.Text)
	case PUSHVAR, DECLARE, DECLSET, DIRECT, INDIRECT, INDEXP:
		operands = in.Text
	case CALL:
		operands = fmt.Sprintf("%s %d", in.Text, in.Argc)
	case BINOP, UNOP, BINAS, UNAS:
		operands = subName(in.Op, in.Sub)
	}
	if in.Op.Jump() {
		operands = fmt.Sprintf("%+d -> %08X", in.Jump, in.Target())
	}

	if operands == "" {
		return in.Op.String()
	}
	return in.Op.String() + " " + operands
}

// Disassemble renders code one instruction per line.
// On a decode error the lines produced so far are returned along with the error.
func Disassemble(code []byte) (string, error) {
	return DisassembleWith(code, nil)
}

// DisassembleWith is Disassemble with every line passed through style.
// A nil style gives the plain "%08X: body" form.
func DisassembleWith(code []byte, style Styler) (string, error) {
	if style == nil {
		style = plain
	}

	ins, err := DecodeAll(code)

	var sb strings.Builder
	for _, in := range ins {
		sb.WriteString(style(fmt.Sprintf("%08X", in.Offset), in.body()))
		sb.WriteByte('\n')
	}

	return sb.String(), err
}
