package vm

import (
	"fmt"

	"goil/il"
)

// Function-block instructions. The first operand selects the instance; the
// inputs are latched from the remaining operands, the block runs once, and
// its outputs are written back: QO to the bit operand, ET/CV to the W
// report slot.

func (v *Vm) ton(inst il.Instruction) error { return v.timerOp(inst, (*Timer).runTON) }
func (v *Vm) tof(inst il.Instruction) error { return v.timerOp(inst, (*Timer).runTOF) }
func (v *Vm) tp(inst il.Instruction) error  { return v.timerOp(inst, (*Timer).runTP) }

func (v *Vm) timerOp(inst il.Instruction, run func(*Timer, uint32)) error {
	idx := v.loadInt(inst.Operands[0])
	if idx < 0 || idx >= il.MaxTimers {
		return fmt.Errorf("%w: timer %d", ErrInstanceRange, idx)
	}
	t := &v.Timers[idx]
	t.IN = v.truth(inst.Operands[1])
	t.PT = uint16(v.loadInt(inst.Operands[2]))
	if p := v.loadInt(inst.Operands[3]); p < 1 {
		t.Prescaler = 1
	} else {
		t.Prescaler = uint32(p)
	}
	run(t, v.ticks)
	v.storeBit(inst.Operands[4], t.QO)
	v.storeWord(inst.Operands[5], int16(t.ET))
	return nil
}

func (v *Vm) ctu(inst il.Instruction) error { return v.counterOp(inst, (*Counter).runUp) }
func (v *Vm) ctd(inst il.Instruction) error { return v.counterOp(inst, (*Counter).runDown) }

func (v *Vm) counterOp(inst il.Instruction, run func(*Counter)) error {
	idx := v.loadInt(inst.Operands[0])
	if idx < 0 || idx >= il.MaxCounters {
		return fmt.Errorf("%w: counter %d", ErrInstanceRange, idx)
	}
	c := &v.Counters[idx]
	c.CO = v.truth(inst.Operands[1])
	c.PV = uint16(v.loadInt(inst.Operands[2]))
	c.RLD = v.truth(inst.Operands[3])
	run(c)
	v.storeBit(inst.Operands[4], c.QO)
	v.storeWord(inst.Operands[5], int16(c.CV))
	return nil
}

func (v *Vm) rtrig(inst il.Instruction) error { return v.triggerOp(inst, (*Trigger).runRising) }
func (v *Vm) ftrig(inst il.Instruction) error { return v.triggerOp(inst, (*Trigger).runFalling) }

func (v *Vm) triggerOp(inst il.Instruction, run func(*Trigger)) error {
	idx := v.loadInt(inst.Operands[0])
	if idx < 0 || idx >= il.MaxTriggers {
		return fmt.Errorf("%w: trigger %d", ErrInstanceRange, idx)
	}
	tr := &v.Triggers[idx]
	tr.CLK = v.truth(inst.Operands[1])
	run(tr)
	v.storeBit(inst.Operands[2], tr.QO)
	return nil
}
