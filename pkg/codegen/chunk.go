package codegen

import (
	"math"

	"gmlite/pkg/bytecode"
)

// chunk is a block of code compiled on its own so that its size is known
// before the jump that skips it is emitted. Pending break and continue sites
// are offsets of BREAK opcodes within code.
type chunk struct {
	code      []byte
	breaks    []int
	continues []int
}

func (c *chunk) op(op bytecode.Op) {
	c.code = bytecode.AppendOp(c.code, op)
}

func (c *chunk) sub(op bytecode.Op, sub byte) {
	c.code = append(bytecode.AppendOp(c.code, op), sub)
}

func (c *chunk) name(op bytecode.Op, name string) {
	c.code = bytecode.AppendString(bytecode.AppendOp(c.code, op), name)
}

// pendingBreak emits a BREAK with a zero offset to be patched by the enclosing loop
func (c *chunk) pendingBreak(sites *[]int) {
	*sites = append(*sites, len(c.code))
	c.code = bytecode.AppendInt64(bytecode.AppendOp(c.code, bytecode.BREAK), 0)
}

// splice appends child and relocates its pending sites
func (c *chunk) splice(child *chunk) {
	base := len(c.code)
	c.code = append(c.code, child.code...)
	for _, at := range child.breaks {
		c.breaks = append(c.breaks, base+at)
	}
	for _, at := range child.continues {
		c.continues = append(c.continues, base+at)
	}
}

// patch writes the offset from a long jump at addr to target
func (c *chunk) patch(addr, target int) {
	bytecode.PutInt64(c.code[addr+1:], int64(target-addr))
}

// forward appends a jump that skips the next size bytes, picking the narrowest encoding
func (c *chunk) forward(short, long bytecode.Op, size int) error {
	switch {
	case size < 0:
		panic(internalf("negative jump size %d", size))
	case size < 0x8000-bytecode.ShortJumpSize:
		c.code = bytecode.AppendInt16(bytecode.AppendOp(c.code, short), int16(size+bytecode.ShortJumpSize))
	case size <= math.MaxInt64-bytecode.LongJumpSize:
		c.code = bytecode.AppendInt64(bytecode.AppendOp(c.code, long), int64(size+bytecode.LongJumpSize))
	default:
		return ErrJumpTooFar
	}

	return nil
}

// backward appends a jump to target, which must not lie after the jump itself
func (c *chunk) backward(short, long bytecode.Op, target int) {
	dist := len(c.code) - target
	if dist < 0 {
		panic(internalf("backward jump to %d from %d", target, len(c.code)))
	}

	if dist <= 0x8000 {
		c.code = bytecode.AppendInt16(bytecode.AppendOp(c.code, short), int16(-dist))
		return
	}
	c.code = bytecode.AppendInt64(bytecode.AppendOp(c.code, long), int64(-dist))
}
