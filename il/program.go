package il

import (
	"encoding/binary"
	"fmt"

	"goil/mask"
	"goil/mem"
)

// Program framing:
//
//	offset 0:           u16 programSize (header + body, excluding checksum)
//	offset 2:           instruction stream
//	offset programSize: u32 checksum, the byte sum of [0, programSize)
//
// Both fields are big-endian.

// HeaderSize is the byte length of the size header.
const HeaderSize = 2

// MaxProgramSize bounds programSize so the checksum footer still fits a
// 16-bit addressable buffer.
const MaxProgramSize = 0xffff - 4

// ProgramSize reads the declared size from a framed program. The buffer must
// hold at least the header.
func ProgramSize(p []byte) uint16 {
	return mask.Word(p[0], p[1])
}

// Checksum returns the unsigned byte sum of b modulo 2^32.
func Checksum(b []byte) uint32 {
	var sum uint32
	for _, c := range b {
		sum += uint32(c)
	}
	return sum
}

// Seal patches the size header of a program under construction (header plus
// body) and appends the checksum footer, producing the final artifact.
func Seal(p []byte) ([]byte, error) {
	if len(p) > MaxProgramSize {
		return nil, fmt.Errorf("%w: program is %d bytes", ErrBadHeader, len(p))
	}
	p[0], p[1] = mask.Split(uint16(len(p)))
	sum := Checksum(p)
	var footer [4]byte
	binary.BigEndian.PutUint32(footer[:], sum)
	return append(p, footer[:]...), nil
}

// Verify checks a framed program end to end: the header is present and
// sane, the checksum footer matches, every instruction decodes, and every
// direct operand lies inside its memory bank. A program that passes Verify
// executes without touching memory out of range.
func Verify(p []byte) error {
	if len(p) < HeaderSize {
		return fmt.Errorf("%w: missing header", ErrTruncated)
	}
	size := int(ProgramSize(p))
	if size < HeaderSize {
		return fmt.Errorf("%w: declared size %d", ErrBadHeader, size)
	}
	if len(p) < size+4 {
		return fmt.Errorf("%w: declared size %d, have %d bytes", ErrTruncated, size, len(p))
	}
	want := binary.BigEndian.Uint32(p[size : size+4])
	if got := Checksum(p[:size]); got != want {
		return fmt.Errorf("%w: computed 0x%08x, stored 0x%08x", ErrChecksum, got, want)
	}

	body := p[:size]
	for pos := HeaderSize; pos < size; {
		inst, next, err := Decode(body, pos)
		if err != nil {
			return err
		}
		for i, o := range inst.Operands {
			if err := checkOperandRange(o); err != nil {
				return fmt.Errorf("%s operand %d at offset %d: %w", inst.Opcode, i, pos, err)
			}
		}
		pos = next
	}
	return nil
}

func checkOperandRange(o Operand) error {
	var bank int
	switch o.Register {
	case I:
		bank = mem.InputSize
	case Q:
		bank = mem.OutputSize
	case M:
		bank = mem.MemorySize
	case K:
		// the decoder already bounds-checked the immediate
		return nil
	}
	if int(o.Address)+o.Memory.Size() > bank {
		return fmt.Errorf("%w: %s%s%d", ErrAddressRange, o.Register, o.Memory, o.Address)
	}
	return nil
}
