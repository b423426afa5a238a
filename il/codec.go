package il

import (
	"errors"
	"fmt"

	"goil/mask"
)

var (
	ErrTruncated    = errors.New("program truncated")
	ErrBadHeader    = errors.New("bad program header")
	ErrChecksum     = errors.New("checksum mismatch")
	ErrBadOpcode    = errors.New("unknown opcode")
	ErrAddressRange = errors.New("operand address out of range")
)

// Decode reads one instruction from program at pos and returns it together
// with the position of the next instruction. The byte at pos is the opcode;
// the operand count follows from the opcode. A K operand's Address is
// rewritten to the offset of its immediate inside program, so the constant
// can be read back later without copying it.
func Decode(program []byte, pos int) (Instruction, int, error) {
	if pos >= len(program) {
		return Instruction{}, 0, fmt.Errorf("%w: opcode at %d", ErrTruncated, pos)
	}
	op := Opcode(program[pos])
	spec, ok := Specs[op]
	if !ok {
		return Instruction{}, 0, fmt.Errorf("%w: %d at offset %d", ErrBadOpcode, op, pos)
	}
	pos++

	inst := Instruction{Opcode: op}
	for i := 0; i < spec.Operands; i++ {
		if pos >= len(program) {
			return Instruction{}, 0, fmt.Errorf("%w: operand %d of %s", ErrTruncated, i, op)
		}
		o := operandFromTypeByte(program[pos])
		pos++
		if !o.Memory.Valid() {
			return Instruction{}, 0, fmt.Errorf("%w: reserved memory type %d", ErrBadOpcode, o.Memory)
		}
		if o.Register != K {
			if pos+2 > len(program) {
				return Instruction{}, 0, fmt.Errorf("%w: address of operand %d of %s", ErrTruncated, i, op)
			}
			o.Address = mask.Word(program[pos], program[pos+1])
			pos += 2
		} else {
			n := o.Memory.Size()
			if pos+n > len(program) {
				return Instruction{}, 0, fmt.Errorf("%w: immediate of operand %d of %s", ErrTruncated, i, op)
			}
			o.Address = uint16(pos)
			pos += n
		}
		inst.Operands = append(inst.Operands, o)
	}
	return inst, pos, nil
}

// Append encodes one instruction onto dst and returns the extended slice.
// imms supplies the constant value for each K operand, indexed like
// operands; entries for non-K operands are ignored. An R constant's imm is
// the IEEE-754 bit pattern of the value.
func Append(dst []byte, op Opcode, operands []Operand, imms []uint64) []byte {
	dst = append(dst, byte(op))
	for i, o := range operands {
		dst = append(dst, o.typeByte())
		if o.Register != K {
			hi, lo := mask.Split(o.Address)
			dst = append(dst, hi, lo)
			continue
		}
		v := imms[i]
		switch o.Memory {
		case X, B:
			dst = append(dst, byte(v))
		case W:
			dst = append(dst, byte(v>>8), byte(v))
		case D, R:
			dst = append(dst, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
		case L:
			dst = append(dst, byte(v>>56), byte(v>>48), byte(v>>40), byte(v>>32),
				byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
		}
	}
	return dst
}
