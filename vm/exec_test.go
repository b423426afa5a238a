package vm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goil/il"
	"goil/mask"
)

// seal frames a hand-assembled body for the cases source syntax cannot
// express.
func seal(t *testing.T, body []byte) *Vm {
	t.Helper()
	p, err := il.Seal(body)
	require.NoError(t, err)
	v, err := New(p)
	require.NoError(t, err)
	return v
}

func TestFloatCompareNaN(t *testing.T) {
	nan := uint64(math.Float32bits(float32(math.NaN())))
	build := func(op il.Opcode) *Vm {
		body := []byte{0, 0}
		body = il.Append(body, il.OpLD, []il.Operand{{Memory: il.X, Register: il.K}}, []uint64{1})
		body = il.Append(body, op, []il.Operand{
			{Memory: il.R, Register: il.K},
			{Memory: il.R, Register: il.K},
		}, []uint64{nan, nan})
		body = il.Append(body, il.OpST, []il.Operand{{Memory: il.X, Register: il.Q}}, nil)
		return seal(t, body)
	}

	// every ordered predicate is false against NaN
	for _, op := range []il.Opcode{il.OpGT, il.OpGE, il.OpEQ, il.OpLT, il.OpLE} {
		v := build(op)
		require.NoError(t, v.Scan())
		assert.Equal(t, byte(0), mask.Bit(v.Outputs()[0], 0), op.String())
	}

	v := build(il.OpNE)
	require.NoError(t, v.Scan())
	assert.Equal(t, byte(1), mask.Bit(v.Outputs()[0], 0))
}

func TestSignExtension(t *testing.T) {
	// a byte of 0xff reads as -1 even in a word-width compare
	v := load(t, "LD KX1\nLT MB0 KW0\nST QX0.0\n")
	v.Mem.Memories[0] = 0xff
	require.NoError(t, v.Scan())
	assert.Equal(t, byte(1), mask.Bit(v.Outputs()[0], 0))
}

func TestRealTruncatesToInteger(t *testing.T) {
	v := load(t, "LD KX1\nMOV KR3.9 MW0\n")
	require.NoError(t, v.Scan())
	assert.Equal(t, []byte{0x00, 0x03}, v.Memories()[0:2])
}

func TestStoreToWideOperandIsNoOp(t *testing.T) {
	// the compiler rejects ST MB0; a hand-built binary must still be safe
	body := []byte{0, 0}
	body = il.Append(body, il.OpLD, []il.Operand{{Memory: il.X, Register: il.K}}, []uint64{1})
	body = il.Append(body, il.OpST, []il.Operand{{Memory: il.B, Register: il.M}}, nil)
	v := seal(t, body)
	require.NoError(t, v.Scan())
	assert.Equal(t, byte(0), v.Memories()[0])
}

func TestStoreToInputIsNoOp(t *testing.T) {
	v := load(t, "LD KX1\nST IX0.0\n")
	require.NoError(t, v.Scan())
	assert.Equal(t, byte(0), v.Mem.Inputs[0])
}

func TestAccumulatorResetsEachScan(t *testing.T) {
	v := load(t, "OR IX0.0\nST QX0.0\n")
	v.SetInputs([]byte{0})
	require.NoError(t, v.Scan())
	assert.Equal(t, byte(0), mask.Bit(v.Outputs()[0], 0))

	v.SetInputs([]byte{1})
	require.NoError(t, v.Scan())
	assert.Equal(t, byte(1), mask.Bit(v.Outputs()[0], 0))

	// the high accumulator from the last scan must not leak in
	v.SetInputs([]byte{0})
	require.NoError(t, v.Scan())
	assert.Equal(t, byte(0), mask.Bit(v.Outputs()[0], 0))
}

func TestKByteTruthInLogic(t *testing.T) {
	// a nonzero byte constant reads as logically true
	v := load(t, "LD KX1\nAND KB7\nST QX0.0\n")
	require.NoError(t, v.Scan())
	assert.Equal(t, byte(1), mask.Bit(v.Outputs()[0], 0))
}
