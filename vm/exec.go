package vm

import (
	"math"

	"goil/il"
	"goil/mem"
)

// handlers maps each opcode to its implementation. Like the memory banks,
// dispatch hangs off the Vm so every instance array threads through one
// value.
var handlers = map[il.Opcode]func(*Vm, il.Instruction) error{
	il.OpLD:    (*Vm).ld,
	il.OpLDN:   (*Vm).ldn,
	il.OpST:    (*Vm).st,
	il.OpSTN:   (*Vm).stn,
	il.OpS:     (*Vm).set,
	il.OpR:     (*Vm).reset,
	il.OpMOV:   (*Vm).mov,
	il.OpAND:   (*Vm).logic,
	il.OpANDN:  (*Vm).logic,
	il.OpOR:    (*Vm).logic,
	il.OpORN:   (*Vm).logic,
	il.OpXOR:   (*Vm).logic,
	il.OpXORN:  (*Vm).logic,
	il.OpANDP:  (*Vm).open,
	il.OpANDNP: (*Vm).open,
	il.OpORP:   (*Vm).open,
	il.OpORNP:  (*Vm).open,
	il.OpXORP:  (*Vm).open,
	il.OpXORNP: (*Vm).open,
	il.OpNOT:   (*Vm).not,
	il.OpClose: (*Vm).closeGroup,
	il.OpADD:   (*Vm).arith,
	il.OpSUB:   (*Vm).arith,
	il.OpMUL:   (*Vm).arith,
	il.OpDIV:   (*Vm).arith,
	il.OpMOD:   (*Vm).arith,
	il.OpGT:    (*Vm).compare,
	il.OpGE:    (*Vm).compare,
	il.OpEQ:    (*Vm).compare,
	il.OpNE:    (*Vm).compare,
	il.OpLT:    (*Vm).compare,
	il.OpLE:    (*Vm).compare,
	il.OpTON:   (*Vm).ton,
	il.OpTOF:   (*Vm).tof,
	il.OpTP:    (*Vm).tp,
	il.OpCTU:   (*Vm).ctu,
	il.OpCTD:   (*Vm).ctd,
	il.OpRTrig: (*Vm).rtrig,
	il.OpFTrig: (*Vm).ftrig,
}

func (v *Vm) execute(inst il.Instruction) error {
	h, ok := handlers[inst.Opcode]
	if !ok {
		// unreachable after Verify
		return il.ErrBadOpcode
	}
	return h(v, inst)
}

// bank returns the byte array an operand's register class addresses. K
// operands read the program image itself.
func (v *Vm) bank(r il.RegisterType) []byte {
	switch r {
	case il.I:
		return v.Mem.Inputs[:]
	case il.Q:
		return v.Mem.Outputs[:]
	case il.M:
		return v.Mem.Memories[:]
	default:
		return v.program
	}
}

// truth reduces an operand to a logical bit: an X operand is the addressed
// bit, a wider operand is 1 iff its value is nonzero.
func (v *Vm) truth(o il.Operand) byte {
	switch o.Memory {
	case il.X:
		if o.Register == il.K {
			if v.program[o.Address] != 0 {
				return 1
			}
			return 0
		}
		return mem.Bit(v.bank(o.Register), o.Address, o.Bit)
	case il.R:
		if v.loadFloat(o) != 0 {
			return 1
		}
		return 0
	default:
		if v.loadInt(o) != 0 {
			return 1
		}
		return 0
	}
}

// loadInt reads an operand in its declared width, sign-extended to 64 bits.
// An R operand is truncated toward zero.
func (v *Vm) loadInt(o il.Operand) int64 {
	a := v.bank(o.Register)
	switch o.Memory {
	case il.X:
		return int64(v.truth(o))
	case il.B:
		return int64(mem.Byte(a, o.Address))
	case il.W:
		return int64(mem.Word(a, o.Address))
	case il.D:
		return int64(mem.DWord(a, o.Address))
	case il.L:
		return mem.QWord(a, o.Address)
	case il.R:
		return int64(mem.Float(a, o.Address))
	}
	return 0
}

// loadFloat reads an operand as a float32. Integer widths are converted.
func (v *Vm) loadFloat(o il.Operand) float32 {
	if o.Memory == il.R {
		return mem.Float(v.bank(o.Register), o.Address)
	}
	return float32(v.loadInt(o))
}

// store writes a value into a destination operand, truncating to the
// destination width. A bit destination takes the low bit. Only outputs and
// memories are writable; anything else is left untouched.
func (v *Vm) store(o il.Operand, val int64) {
	if o.Register != il.Q && o.Register != il.M {
		return
	}
	a := v.bank(o.Register)
	switch o.Memory {
	case il.X:
		mem.SetBit(a, o.Address, o.Bit, byte(val&0x01))
	case il.B:
		mem.SetByte(a, o.Address, int8(val))
	case il.W:
		mem.SetWord(a, o.Address, int16(val))
	case il.D:
		mem.SetDWord(a, o.Address, int32(val))
	case il.L:
		mem.SetQWord(a, o.Address, val)
	case il.R:
		mem.SetFloat(a, o.Address, float32(val))
	}
}

func (v *Vm) storeFloat(o il.Operand, val float32) {
	if o.Register != il.Q && o.Register != il.M {
		return
	}
	if o.Memory == il.R {
		mem.SetFloat(v.bank(o.Register), o.Address, val)
		return
	}
	v.store(o, int64(val))
}

// storeBit writes a bit to an X destination and ignores anything else. The
// function-block outputs route through here.
func (v *Vm) storeBit(o il.Operand, bit byte) {
	if o.Memory == il.X {
		v.store(o, int64(bit))
	}
}

// storeWord writes to a W destination and ignores anything else. ET and CV
// report slots route through here.
func (v *Vm) storeWord(o il.Operand, w int16) {
	if o.Memory == il.W {
		v.store(o, int64(w))
	}
}

// combine applies a logical combinator, immediate or deferred, to two bits.
// The negated variants invert their right operand.
func combine(op il.Opcode, a, b byte) byte {
	switch op {
	case il.OpAND, il.OpANDP:
		return a & b
	case il.OpANDN, il.OpANDNP:
		return a & (b ^ 1)
	case il.OpOR, il.OpORP:
		return a | b
	case il.OpORN, il.OpORNP:
		return a | (b ^ 1)
	case il.OpXOR, il.OpXORP:
		return a ^ b
	case il.OpXORN, il.OpXORNP:
		return a ^ b ^ 1
	}
	return a
}

func (v *Vm) ld(inst il.Instruction) error {
	v.Mem.Accumulator = v.truth(inst.Operands[0])
	return nil
}

func (v *Vm) ldn(inst il.Instruction) error {
	v.Mem.Accumulator = v.truth(inst.Operands[0]) ^ 1
	return nil
}

func (v *Vm) st(inst il.Instruction) error {
	if inst.Operands[0].Memory == il.X {
		v.store(inst.Operands[0], int64(v.Mem.Accumulator))
	}
	return nil
}

func (v *Vm) stn(inst il.Instruction) error {
	if inst.Operands[0].Memory == il.X {
		v.store(inst.Operands[0], int64(v.Mem.Accumulator^1))
	}
	return nil
}

func (v *Vm) set(inst il.Instruction) error {
	if v.Mem.Accumulator == 1 && inst.Operands[0].Memory == il.X {
		v.store(inst.Operands[0], 1)
	}
	return nil
}

func (v *Vm) reset(inst il.Instruction) error {
	if v.Mem.Accumulator == 1 && inst.Operands[0].Memory == il.X {
		v.store(inst.Operands[0], 0)
	}
	return nil
}

// mov copies operand 0 to operand 1 using the destination's width, gated on
// the accumulator.
func (v *Vm) mov(inst il.Instruction) error {
	if v.Mem.Accumulator != 1 {
		return nil
	}
	src, dst := inst.Operands[0], inst.Operands[1]
	switch dst.Memory {
	case il.R:
		v.storeFloat(dst, v.loadFloat(src))
	case il.X:
		v.store(dst, int64(v.truth(src)))
	default:
		v.store(dst, v.loadInt(src))
	}
	return nil
}

func (v *Vm) logic(inst il.Instruction) error {
	v.Mem.Accumulator = combine(inst.Opcode, v.Mem.Accumulator, v.truth(inst.Operands[0]))
	return nil
}

// open suspends the current combinator on the parenthesis stack and starts
// the group by loading the follow-operand.
func (v *Vm) open(inst il.Instruction) error {
	if err := v.stack.push(inst.Opcode, v.Mem.Accumulator); err != nil {
		return err
	}
	if len(inst.Operands) > 0 {
		v.Mem.Accumulator = v.truth(inst.Operands[0])
	}
	return nil
}

// closeGroup pops the deferred combinator and applies it to the saved
// accumulator and the group result.
func (v *Vm) closeGroup(il.Instruction) error {
	e, err := v.stack.pop()
	if err != nil {
		return err
	}
	v.Mem.Accumulator = combine(e.op, e.acc, v.Mem.Accumulator)
	return nil
}

func (v *Vm) not(il.Instruction) error {
	v.Mem.Accumulator ^= 1
	return nil
}

// arith computes in the width of the destination (third) operand, gated on
// the accumulator. Float arithmetic follows IEEE-754; integer division and
// modulo by zero abort the scan.
func (v *Vm) arith(inst il.Instruction) error {
	if v.Mem.Accumulator != 1 {
		return nil
	}
	a, b, dst := inst.Operands[0], inst.Operands[1], inst.Operands[2]
	if dst.Memory == il.R {
		x, y := v.loadFloat(a), v.loadFloat(b)
		var r float32
		switch inst.Opcode {
		case il.OpADD:
			r = x + y
		case il.OpSUB:
			r = x - y
		case il.OpMUL:
			r = x * y
		case il.OpDIV:
			r = x / y
		case il.OpMOD:
			// not defined for reals; the compiler rejects it
			return nil
		}
		v.storeFloat(dst, r)
		return nil
	}
	x, y := v.loadInt(a), v.loadInt(b)
	// narrow the sources to the destination width; a bit destination takes
	// the low bit of the full-width result
	switch dst.Memory {
	case il.B:
		x, y = int64(int8(x)), int64(int8(y))
	case il.W:
		x, y = int64(int16(x)), int64(int16(y))
	case il.D:
		x, y = int64(int32(x)), int64(int32(y))
	}
	var r int64
	switch inst.Opcode {
	case il.OpADD:
		r = x + y
	case il.OpSUB:
		r = x - y
	case il.OpMUL:
		r = x * y
	case il.OpDIV:
		if y == 0 {
			return ErrDivideByZero
		}
		if x == math.MinInt64 && y == -1 {
			r = x
		} else {
			r = x / y
		}
	case il.OpMOD:
		if y == 0 {
			return ErrDivideByZero
		}
		if x == math.MinInt64 && y == -1 {
			r = 0
		} else {
			r = x % y
		}
	}
	v.store(dst, r)
	return nil
}

// compare sets the accumulator from the predicate over both operands, read
// in the width of the second. Float compares are IEEE-ordered, so every
// ordered predicate is false against NaN and NE is true.
func (v *Vm) compare(inst il.Instruction) error {
	if v.Mem.Accumulator != 1 {
		return nil
	}
	a, b := inst.Operands[0], inst.Operands[1]
	var res bool
	if b.Memory == il.R {
		x, y := v.loadFloat(a), v.loadFloat(b)
		switch inst.Opcode {
		case il.OpGT:
			res = x > y
		case il.OpGE:
			res = x >= y
		case il.OpEQ:
			res = x == y
		case il.OpNE:
			res = x != y
		case il.OpLT:
			res = x < y
		case il.OpLE:
			res = x <= y
		}
	} else {
		x, y := v.loadInt(a), v.loadInt(b)
		// bring the first operand to the second operand's width
		switch b.Memory {
		case il.X:
			x = int64(v.truth(a))
		case il.B:
			x = int64(int8(x))
		case il.W:
			x = int64(int16(x))
		case il.D:
			x = int64(int32(x))
		}
		switch inst.Opcode {
		case il.OpGT:
			res = x > y
		case il.OpGE:
			res = x >= y
		case il.OpEQ:
			res = x == y
		case il.OpNE:
			res = x != y
		case il.OpLT:
			res = x < y
		case il.OpLE:
			res = x <= y
		}
	}
	if res {
		v.Mem.Accumulator = 1
	} else {
		v.Mem.Accumulator = 0
	}
	return nil
}
