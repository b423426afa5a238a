package il

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func frame(t *testing.T, body ...byte) []byte {
	t.Helper()
	p, err := Seal(append([]byte{0, 0}, body...))
	assert.NoError(t, err)
	return p
}

func TestSealWritesSizeAndChecksum(t *testing.T) {
	// LD IX0.0; ST QX0.0
	p := frame(t,
		byte(OpLD), 0b000_00_000, 0x00, 0x00,
		byte(OpST), 0b000_01_000, 0x00, 0x00,
	)
	assert.Equal(t, uint16(10), ProgramSize(p))
	assert.Len(t, p, 14)

	// checksum law: footer equals the byte sum of everything before it
	var sum uint32
	for _, b := range p[:10] {
		sum += uint32(b)
	}
	assert.Equal(t, byte(sum>>24), p[10])
	assert.Equal(t, byte(sum>>16), p[11])
	assert.Equal(t, byte(sum>>8), p[12])
	assert.Equal(t, byte(sum), p[13])

	assert.NoError(t, Verify(p))
}

func TestVerifyRejectsShortStream(t *testing.T) {
	// header declares 20 bytes but the stream holds 18
	p := frame(t,
		byte(OpLD), 0b000_00_000, 0x00, 0x00,
		byte(OpAND), 0b000_00_001, 0x00, 0x00,
		byte(OpST), 0b000_01_000, 0x00, 0x00,
	)
	p[1] = 20
	assert.ErrorIs(t, Verify(p[:18]), ErrTruncated)
}

func TestVerifyRejectsBadChecksum(t *testing.T) {
	p := frame(t, byte(OpNOT))
	p[len(p)-1]++
	assert.ErrorIs(t, Verify(p), ErrChecksum)
}

func TestVerifyRejectsBadHeader(t *testing.T) {
	assert.ErrorIs(t, Verify([]byte{0}), ErrTruncated)

	p := frame(t, byte(OpNOT))
	p[0], p[1] = 0, 1 // declared size below the header itself
	assert.ErrorIs(t, Verify(p), ErrBadHeader)
}

func TestVerifyRejectsUnknownOpcode(t *testing.T) {
	p := frame(t, 0xfe)
	assert.ErrorIs(t, Verify(p), ErrBadOpcode)
}

func TestVerifyRejectsOutOfRangeAddress(t *testing.T) {
	// LD IB10: one past the input bank
	p := frame(t, byte(OpLD), 0b001_00_000, 0x00, 0x0a)
	assert.ErrorIs(t, Verify(p), ErrAddressRange)

	// MW9 needs two bytes, only one fits
	p = frame(t, byte(OpST), 0b010_10_000, 0x00, 0x09)
	assert.ErrorIs(t, Verify(p), ErrAddressRange)
}

func TestVerifyAcceptsEmptyProgram(t *testing.T) {
	p := frame(t)
	assert.Equal(t, uint16(2), ProgramSize(p))
	assert.NoError(t, Verify(p))
}
