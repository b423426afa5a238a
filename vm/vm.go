// Package vm implements the deterministic bytecode virtual machine that
// executes compiled IL programs. A Vm owns the complete machine state: the
// memory image, the parenthesis stack, the timer/counter/trigger instance
// banks, and the monotonic tick counter.
//
// The executor is single-threaded and cooperative. A scan runs the program
// body front to back without yielding; the host mutates Inputs and advances
// ticks only between scans.

package vm

import (
	"errors"
	"fmt"

	"goil/il"
	"goil/mem"
)

var (
	ErrStackOverflow  = errors.New("parenthesis stack overflow")
	ErrStackUnderflow = errors.New("parenthesis stack underflow")
	ErrDivideByZero   = errors.New("division by zero")
	ErrInstanceRange  = errors.New("function block index out of range")
)

// A Vm holds a verified program and everything it acts on. The zero value
// is not usable; construct with New.
type Vm struct {
	Mem mem.Image

	Timers   [il.MaxTimers]Timer
	Counters [il.MaxCounters]Counter
	Triggers [il.MaxTriggers]Trigger

	program []byte
	size    int
	stack   parenStack
	ticks   uint32
	pos     int // offset of the next instruction, for single stepping
}

// New verifies a framed binary program and returns a fresh machine for it.
// All memory and instance state starts zeroed, except that every timer's
// prescaler starts at 1.
func New(program []byte) (*Vm, error) {
	if err := il.Verify(program); err != nil {
		return nil, err
	}
	v := &Vm{program: append([]byte(nil), program...)}
	v.size = int(il.ProgramSize(v.program))
	for i := range v.Timers {
		v.Timers[i].Prescaler = 1
	}
	v.pos = v.size // the next Step begins a fresh scan
	return v, nil
}

// Program returns the loaded program image. Callers must not mutate it.
func (v *Vm) Program() []byte { return v.program }

// SetInputs copies b into the input bank. Call only between scans.
func (v *Vm) SetInputs(b []byte) { copy(v.Mem.Inputs[:], b) }

// Tick advances the monotonic tick counter by n quanta. Timers observe the
// counter once per evaluation, so a tick between scans moves every timer by
// the same amount.
func (v *Vm) Tick(n uint32) { v.ticks += n }

// Ticks returns the current tick count.
func (v *Vm) Ticks() uint32 { return v.ticks }

// Outputs returns a snapshot of the output bank.
func (v *Vm) Outputs() []byte {
	out := make([]byte, mem.OutputSize)
	copy(out, v.Mem.Outputs[:])
	return out
}

// Memories returns a snapshot of the memory bank.
func (v *Vm) Memories() []byte {
	out := make([]byte, mem.MemorySize)
	copy(out, v.Mem.Memories[:])
	return out
}

// beginScan resets the per-scan state: the accumulator and the parenthesis
// stack. Function-block instances and the memory banks persist.
func (v *Vm) beginScan() {
	v.Mem.Accumulator = 0
	v.stack.reset()
	v.pos = il.HeaderSize
}

// Scan runs one full decode-execute cycle over the program body. On error
// the scan is abandoned; writes that completed before the fault remain, and
// the next Scan starts over from the top.
func (v *Vm) Scan() error {
	v.beginScan()
	for v.pos < v.size {
		if _, err := v.step(); err != nil {
			v.pos = v.size
			return err
		}
	}
	return nil
}

// Step executes a single instruction, beginning a fresh scan if the
// previous one finished. It returns the instruction it executed.
func (v *Vm) Step() (il.Instruction, error) {
	if v.pos < il.HeaderSize || v.pos >= v.size {
		v.beginScan()
	}
	return v.step()
}

func (v *Vm) step() (il.Instruction, error) {
	at := v.pos
	inst, next, err := il.Decode(v.program[:v.size], at)
	if err != nil {
		return il.Instruction{}, err
	}
	v.pos = next
	if err := v.execute(inst); err != nil {
		return inst, fmt.Errorf("offset %04x: %s: %w", at, inst.Opcode, err)
	}
	return inst, nil
}
