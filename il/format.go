package il

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"goil/mask"
)

// Format renders the instruction back to source syntax. K operands read
// their constant out of program, which must be the image the instruction
// was decoded from.
func (inst Instruction) Format(program []byte) string {
	var b strings.Builder
	b.WriteString(inst.Opcode.String())
	for _, o := range inst.Operands {
		b.WriteByte(' ')
		b.WriteString(o.Format(program))
	}
	return b.String()
}

// Format renders one operand in source syntax: IX0.3, MW2, KW10, KR3.14.
func (o Operand) Format(program []byte) string {
	if o.Register != K {
		if o.Memory == X {
			return fmt.Sprintf("%s%s%d.%d", o.Register, o.Memory, o.Address, o.Bit)
		}
		return fmt.Sprintf("%s%s%d", o.Register, o.Memory, o.Address)
	}
	at := o.Address
	switch o.Memory {
	case X:
		v := byte(0)
		if program[at] != 0 {
			v = 1
		}
		return fmt.Sprintf("KX%d", v)
	case B:
		return fmt.Sprintf("KB%d", int8(program[at]))
	case W:
		return fmt.Sprintf("KW%d", int16(mask.Word(program[at], program[at+1])))
	case D:
		return fmt.Sprintf("KD%d", int32(binary.BigEndian.Uint32(program[at:])))
	case L:
		return fmt.Sprintf("KL%d", int64(binary.BigEndian.Uint64(program[at:])))
	case R:
		return fmt.Sprintf("KR%g", math.Float32frombits(binary.BigEndian.Uint32(program[at:])))
	}
	return "K?"
}

// Disassemble renders every instruction of a verified program, one per
// line, with its byte offset.
func Disassemble(p []byte) (string, error) {
	size := int(ProgramSize(p))
	body := p[:size]
	var b strings.Builder
	for pos := HeaderSize; pos < size; {
		inst, next, err := Decode(body, pos)
		if err != nil {
			return b.String(), err
		}
		fmt.Fprintf(&b, "%04x  %s\n", pos, inst.Format(body))
		pos = next
	}
	return b.String(), nil
}
