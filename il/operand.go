package il

import "goil/mask"

// A MemoryType is the width class of an operand.
type MemoryType byte

const (
	X MemoryType = 0 // bit
	B MemoryType = 1 // byte, 8 bits
	W MemoryType = 2 // word, 16 bits
	D MemoryType = 3 // double word, 32 bits
	L MemoryType = 4 // long word, 64 bits
	R MemoryType = 5 // real, IEEE-754 single
)

// Size returns the number of bytes the type occupies in memory, which is
// also the size of its inline constant encoding. X occupies the byte its
// bit lives in.
func (m MemoryType) Size() int {
	switch m {
	case X, B:
		return 1
	case W:
		return 2
	case D, R:
		return 4
	case L:
		return 8
	}
	return 0
}

// Valid reports whether m is one of the six defined width classes.
func (m MemoryType) Valid() bool {
	return m <= R
}

func (m MemoryType) String() string {
	switch m {
	case X:
		return "X"
	case B:
		return "B"
	case W:
		return "W"
	case D:
		return "D"
	case L:
		return "L"
	case R:
		return "R"
	}
	return "?"
}

// A RegisterType is the memory region an operand addresses.
type RegisterType byte

const (
	I RegisterType = 0 // input
	Q RegisterType = 1 // output
	M RegisterType = 2 // memory
	K RegisterType = 3 // inline constant in the program bytes
)

func (r RegisterType) String() string {
	switch r {
	case I:
		return "I"
	case Q:
		return "Q"
	case M:
		return "M"
	case K:
		return "K"
	}
	return "?"
}

// An Operand addresses one value. For I/Q/M the Address is a byte offset
// into the corresponding array; for K it is the offset of the inline
// constant inside the program image, so reads of the operand alias the
// program bytes. Bit is meaningful only when Memory is X.
type Operand struct {
	Memory   MemoryType
	Register RegisterType
	Bit      byte
	Address  uint16
}

// typeByte packs the operand header: [memorytype:3 | registertype:2 | bitNumber:3].
func (o Operand) typeByte() byte {
	return byte(o.Memory)<<5 | byte(o.Register)<<3 | o.Bit&0x07
}

func operandFromTypeByte(b byte) Operand {
	return Operand{
		Memory:   MemoryType(mask.Field(b, 5, 3)),
		Register: RegisterType(mask.Field(b, 3, 2)),
		Bit:      mask.Field(b, 0, 3),
	}
}

// An Instruction is one decoded operation. The operand count is fixed by
// the opcode.
type Instruction struct {
	Opcode   Opcode
	Operands []Operand
}
