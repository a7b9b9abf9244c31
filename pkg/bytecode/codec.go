package bytecode

import (
	"encoding/binary"
	"math"
	"strings"
)

// Encoded sizes of the fixed-width jump instructions
const (
	ShortJumpSize = 3
	LongJumpSize  = 9
)

// AppendOp appends a bare opcode
func AppendOp(b []byte, op Op) []byte {
	return append(b, byte(op))
}

// AppendNumber appends f as a big-endian IEEE-754 double
func AppendNumber(b []byte, f float64) []byte {
	return binary.BigEndian.AppendUint64(b, math.Float64bits(f))
}

// AppendString appends s followed by its NUL terminator.
// The caller is responsible for rejecting strings that contain 0x00.
func AppendString(b []byte, s string) []byte {
	b = append(b, s...)
	return append(b, 0)
}

func AppendInt16(b []byte, v int16) []byte {
	return binary.BigEndian.AppendUint16(b, uint16(v))
}

func AppendInt64(b []byte, v int64) []byte {
	return binary.BigEndian.AppendUint64(b, uint64(v))
}

// PutInt64 overwrites the 8 bytes at b[0:8]; used to backpatch long offsets
func PutInt64(b []byte, v int64) {
	binary.BigEndian.PutUint64(b, uint64(v))
}

func readInt16(b []byte) int16 {
	return int16(binary.BigEndian.Uint16(b))
}

func readInt64(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b))
}

func readNumber(b []byte) float64 {
	return math.Float64frombits(binary.BigEndian.Uint64(b))
}

// HasNul reports whether s cannot be encoded as a NUL-terminated operand
func HasNul(s string) bool {
	return strings.IndexByte(s, 0) >= 0
}
