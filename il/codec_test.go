package il

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeDirectOperand(t *testing.T) {
	// LD IX0.3
	p := []byte{byte(OpLD), 0b000_00_011, 0x00, 0x00}
	inst, next, err := Decode(p, 0)
	assert.NoError(t, err)
	assert.Equal(t, 4, next)
	assert.Equal(t, OpLD, inst.Opcode)
	assert.Equal(t, Operand{Memory: X, Register: I, Bit: 3, Address: 0}, inst.Operands[0])
}

func TestDecodeRewritesKAddress(t *testing.T) {
	// MOV KW258 MW2: the word constant lives at offset 2, the decoded
	// operand must point there.
	p := Append(nil, OpMOV,
		[]Operand{
			{Memory: W, Register: K},
			{Memory: W, Register: M, Address: 2},
		},
		[]uint64{258, 0},
	)
	inst, next, err := Decode(p, 0)
	assert.NoError(t, err)
	assert.Equal(t, len(p), next)
	assert.Equal(t, uint16(2), inst.Operands[0].Address)
	assert.Equal(t, []byte{0x01, 0x02}, p[2:4])
	assert.Equal(t, Operand{Memory: W, Register: M, Address: 2}, inst.Operands[1])
}

func TestEncodeImmediateWidths(t *testing.T) {
	for _, tc := range []struct {
		memory MemoryType
		imm    uint64
		want   []byte
	}{
		{X, 1, []byte{1}},
		{B, 0xab, []byte{0xab}},
		{W, 0x1234, []byte{0x12, 0x34}},
		{D, 0x01020304, []byte{1, 2, 3, 4}},
		{L, 0x0102030405060708, []byte{1, 2, 3, 4, 5, 6, 7, 8}},
		{R, uint64(math.Float32bits(3.14)), []byte{0x40, 0x48, 0xf5, 0xc3}},
	} {
		p := Append(nil, OpLD, []Operand{{Memory: tc.memory, Register: K}}, []uint64{tc.imm})
		assert.Equal(t, byte(OpLD), p[0])
		assert.Equal(t, tc.want, p[2:], "width %s", tc.memory)

		// round trip: decoding advances exactly past the immediate
		inst, next, err := Decode(p, 0)
		assert.NoError(t, err)
		assert.Equal(t, len(p), next)
		assert.Equal(t, uint16(2), inst.Operands[0].Address)
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	operands := []Operand{
		{Memory: W, Register: I, Address: 4},
		{Memory: W, Register: K},
		{Memory: W, Register: M, Address: 6},
	}
	p := Append(nil, OpADD, operands, []uint64{0, 7, 0})
	inst, next, err := Decode(p, 0)
	assert.NoError(t, err)
	assert.Equal(t, len(p), next)
	assert.Equal(t, OpADD, inst.Opcode)
	assert.Len(t, inst.Operands, 3)
	// non-K operands survive unchanged
	assert.Equal(t, operands[0], inst.Operands[0])
	assert.Equal(t, operands[2], inst.Operands[2])
}

func TestDecodeErrors(t *testing.T) {
	_, _, err := Decode([]byte{0xff}, 0)
	assert.ErrorIs(t, err, ErrBadOpcode)

	// opcode present, operand missing
	_, _, err = Decode([]byte{byte(OpLD)}, 0)
	assert.ErrorIs(t, err, ErrTruncated)

	// address cut short
	_, _, err = Decode([]byte{byte(OpLD), 0b000_00_000, 0x00}, 0)
	assert.ErrorIs(t, err, ErrTruncated)

	// K immediate cut short
	_, _, err = Decode([]byte{byte(OpLD), 0b010_11_000, 0x00}, 0)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestFormat(t *testing.T) {
	p := Append(nil, OpTON, []Operand{
		{Memory: B, Register: K},
		{Memory: X, Register: I, Bit: 0},
		{Memory: W, Register: K},
		{Memory: B, Register: K},
		{Memory: X, Register: Q, Bit: 1},
		{Memory: W, Register: M, Address: 2},
	}, []uint64{0, 0, 10, 1, 0, 0})
	inst, _, err := Decode(p, 0)
	assert.NoError(t, err)
	assert.Equal(t, "TON KB0 IX0.0 KW10 KB1 QX0.1 MW2", inst.Format(p))
}
