package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goil/mask"
	"goil/mem"
)

func TestCTUSaturates(t *testing.T) {
	c := Counter{PV: 3}
	pulse := func() {
		c.CO = 1
		c.runUp()
		c.CO = 0
		c.runUp()
	}
	for i := 1; i <= 5; i++ {
		pulse()
		want := uint16(i)
		if want > 3 {
			want = 3
		}
		assert.Equal(t, want, c.CV, "edge %d", i)
	}
	assert.Equal(t, byte(1), c.QO)

	// a held-high input is one edge, not many
	c = Counter{PV: 3}
	c.CO = 1
	c.runUp()
	c.runUp()
	c.runUp()
	assert.Equal(t, uint16(1), c.CV)
}

func TestCTUReset(t *testing.T) {
	c := Counter{PV: 2, CV: 2, QO: 1}
	c.RLD = 1
	c.runUp()
	assert.Equal(t, uint16(0), c.CV)
	assert.Equal(t, byte(0), c.QO)
}

func TestCTD(t *testing.T) {
	c := Counter{PV: 2}

	// LD reloads the preset
	c.RLD = 1
	c.runDown()
	assert.Equal(t, uint16(2), c.CV)
	assert.Equal(t, byte(0), c.QO)
	c.RLD = 0

	pulse := func() {
		c.CO = 1
		c.runDown()
		c.CO = 0
		c.runDown()
	}
	pulse()
	assert.Equal(t, uint16(1), c.CV)
	assert.Equal(t, byte(0), c.QO)
	pulse()
	assert.Equal(t, uint16(0), c.CV)
	assert.Equal(t, byte(1), c.QO)

	// counts stop at zero
	pulse()
	assert.Equal(t, uint16(0), c.CV)
}

func TestCTUProgram(t *testing.T) {
	v := load(t, "LD IX0.0\nCTU K0 IX0.0 KW3 IX0.1 QX0.2 MW4\n")

	// three rising edges across alternating scans
	for i := 0; i < 3; i++ {
		v.SetInputs([]byte{1})
		require.NoError(t, v.Scan())
		v.SetInputs([]byte{0})
		require.NoError(t, v.Scan())
	}

	assert.Equal(t, int16(3), mem.Word(v.Memories(), 4))
	assert.Equal(t, byte(1), mask.Bit(v.Outputs()[0], 2))
}

func TestCTUProgramReset(t *testing.T) {
	v := load(t, "CTU K0 IX0.0 KW3 IX0.1 QX0.2 MW4\n")
	v.SetInputs([]byte{0b01})
	require.NoError(t, v.Scan())
	assert.Equal(t, int16(1), mem.Word(v.Memories(), 4))

	// the reset input clears the count
	v.SetInputs([]byte{0b10})
	require.NoError(t, v.Scan())
	assert.Equal(t, int16(0), mem.Word(v.Memories(), 4))
}
