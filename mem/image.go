// Package mem implements the process memory image of the controller: a fixed
// bank of Boolean inputs, Boolean outputs, and general-purpose memory bytes,
// plus the single-bit accumulator.
//
// All multi-byte accessors are big-endian, matching the on-disk program
// format. Float values alias the underlying 32 bits via their IEEE-754
// encoding; the bit material moves through math.Float32bits only, never
// pointer aliasing.

package mem

import (
	"encoding/binary"
	"math"

	"goil/mask"
)

// Array sizes are build-time constants. 10 bytes each is the classic
// small-PLC bank: 80 input bits, 80 output bits, 10 memory bytes.
const (
	InputSize  = 10
	OutputSize = 10
	MemorySize = 10
)

// An Image is the complete mutable state a program scan operates on. The
// executor owns it exclusively for the duration of a scan; the host may only
// write Inputs and read Outputs between scans.
type Image struct {
	Inputs   [InputSize]byte
	Outputs  [OutputSize]byte
	Memories [MemorySize]byte

	// Accumulator holds the current logical result, 0 or 1. It is reset at
	// the start of every scan.
	Accumulator byte
}

// Reset zeroes the whole image.
func (im *Image) Reset() {
	*im = Image{}
}

// Bit reads the bit at (addr, pos) from a.
func Bit(a []byte, addr uint16, pos byte) byte {
	return mask.Bit(a[addr], pos)
}

// SetBit writes v to the bit at (addr, pos) in a.
func SetBit(a []byte, addr uint16, pos byte, v byte) {
	a[addr] = mask.WithBit(a[addr], pos, v)
}

// Byte reads the signed byte at addr.
func Byte(a []byte, addr uint16) int8 {
	return int8(a[addr])
}

// SetByte writes v at addr.
func SetByte(a []byte, addr uint16, v int8) {
	a[addr] = byte(v)
}

// Word reads the big-endian 16-bit word at addr.
func Word(a []byte, addr uint16) int16 {
	return int16(mask.Word(a[addr], a[addr+1]))
}

// SetWord writes v at addr, big-endian.
func SetWord(a []byte, addr uint16, v int16) {
	a[addr], a[addr+1] = mask.Split(uint16(v))
}

// DWord reads the big-endian 32-bit double word at addr.
func DWord(a []byte, addr uint16) int32 {
	return int32(binary.BigEndian.Uint32(a[addr:]))
}

// SetDWord writes v at addr, big-endian.
func SetDWord(a []byte, addr uint16, v int32) {
	binary.BigEndian.PutUint32(a[addr:], uint32(v))
}

// QWord reads the big-endian 64-bit long word at addr.
func QWord(a []byte, addr uint16) int64 {
	return int64(binary.BigEndian.Uint64(a[addr:]))
}

// SetQWord writes v at addr, big-endian.
func SetQWord(a []byte, addr uint16, v int64) {
	binary.BigEndian.PutUint64(a[addr:], uint64(v))
}

// Float reads the IEEE-754 single at addr, stored as a big-endian dword.
func Float(a []byte, addr uint16) float32 {
	return math.Float32frombits(binary.BigEndian.Uint32(a[addr:]))
}

// SetFloat writes v at addr as a big-endian dword of its IEEE-754 bits.
func SetFloat(a []byte, addr uint16, v float32) {
	binary.BigEndian.PutUint32(a[addr:], math.Float32bits(v))
}
