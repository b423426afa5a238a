package vm

// A Trigger is one R_TRIGGER/F_TRIGGER instance: a single previous-value
// register for edge detection.
type Trigger struct {
	CLK  byte // input
	Prev byte // internal
	QO   byte // output
}

// runRising pulses QO for exactly the scan on which CLK rose.
func (tr *Trigger) runRising() {
	tr.QO = tr.CLK & (tr.Prev ^ 1)
	tr.Prev = tr.CLK
}

// runFalling pulses QO for exactly the scan on which CLK fell. A fresh
// instance whose CLK is low on its first evaluation also pulses once, as
// Prev starts at 0.
func (tr *Trigger) runFalling() {
	tr.QO = (tr.CLK ^ 1) & (tr.Prev ^ 1)
	tr.Prev = tr.CLK ^ 1
}
