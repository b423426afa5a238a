package compiler

import (
	"fmt"

	"goil/il"
	"goil/mem"
)

// check runs the per-instruction semantic checks after operand resolution.
// Addressing faults and writes to constants are fatal; width disagreements
// only warn.
func check(op il.Opcode, operands []il.Operand, imms []uint64, line int) ([]Warning, error) {
	var warnings []Warning
	warn := func(format string, args ...any) {
		warnings = append(warnings, Warning{Line: line, Message: fmt.Sprintf(format, args...)})
	}
	fatal := func(format string, args ...any) error {
		return fmt.Errorf("line %d: %s: %s", line, op, fmt.Sprintf(format, args...))
	}

	for i, o := range operands {
		var bank int
		switch o.Register {
		case il.I:
			bank = mem.InputSize
		case il.Q:
			bank = mem.OutputSize
		case il.M:
			bank = mem.MemorySize
		default:
			continue
		}
		if int(o.Address)+o.Memory.Size() > bank {
			return warnings, fatal("operand %d address out of range: %s%s%d", i+1, o.Register, o.Memory, o.Address)
		}
	}

	switch op {
	case il.OpST, il.OpSTN:
		if operands[0].Register == il.K {
			return warnings, fatal("cannot write to a constant")
		}
		if operands[0].Memory != il.X {
			return warnings, fatal("store needs a bit destination, got %s", operands[0].Memory)
		}

	case il.OpS, il.OpR:
		if operands[0].Register == il.K {
			return warnings, fatal("cannot write to a constant")
		}
		if operands[0].Memory != il.X {
			warn("set/reset on a %s operand has no effect", operands[0].Memory)
		}

	case il.OpMOV:
		if operands[1].Register == il.K {
			return warnings, fatal("cannot write to a constant")
		}

	case il.OpADD, il.OpSUB, il.OpMUL, il.OpDIV, il.OpMOD:
		if operands[2].Register == il.K {
			return warnings, fatal("cannot write to a constant")
		}
		if op == il.OpMOD {
			for _, o := range operands {
				if o.Memory == il.R {
					return warnings, fatal("MOD is not defined for real operands")
				}
			}
		}

	case il.OpTON, il.OpTOF, il.OpTP, il.OpCTU, il.OpCTD:
		if err := checkInstance(operands[0], imms[0], instanceBound(op)); err != nil {
			return warnings, fatal("%s", err)
		}
		if operands[4].Register == il.K || operands[5].Register == il.K {
			return warnings, fatal("cannot write to a constant")
		}

	case il.OpRTrig, il.OpFTrig:
		if err := checkInstance(operands[0], imms[0], il.MaxTriggers); err != nil {
			return warnings, fatal("%s", err)
		}
		if operands[2].Register == il.K {
			return warnings, fatal("cannot write to a constant")
		}
	}

	switch op {
	case il.OpMOV, il.OpGT, il.OpGE, il.OpEQ, il.OpNE, il.OpLT, il.OpLE:
		if operands[0].Memory != operands[1].Memory {
			warn("operands have different widths (%s vs %s)", operands[0].Memory, operands[1].Memory)
		}
	case il.OpADD, il.OpSUB, il.OpMUL, il.OpDIV, il.OpMOD:
		if operands[0].Memory != operands[1].Memory ||
			operands[0].Memory != operands[2].Memory {
			warn("operands have different widths (%s, %s, %s)",
				operands[0].Memory, operands[1].Memory, operands[2].Memory)
		}
	}

	return warnings, nil
}

func instanceBound(op il.Opcode) int {
	switch op {
	case il.OpCTU, il.OpCTD:
		return il.MaxCounters
	default:
		return il.MaxTimers
	}
}

// checkInstance rejects a constant instance index that is out of range.
// Indexes from memory can only be checked at run time.
func checkInstance(o il.Operand, imm uint64, bound int) error {
	if o.Register != il.K {
		return nil
	}
	if imm >= uint64(bound) {
		return fmt.Errorf("instance index %d out of range (max %d)", imm, bound-1)
	}
	return nil
}
