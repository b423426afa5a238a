// Package compiler translates IL source text into the framed binary program
// format: it lexes the source, resolves and range-checks operands, encodes
// each instruction, and seals the result with the size header and checksum.
//
// Errors are fatal and stop compilation at the offending line. Width
// disagreements between operands compile fine but are reported as warnings.

package compiler

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"goil/il"
)

// A Warning is a non-fatal diagnostic. Compilation continues past it.
type Warning struct {
	Line    int
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: warning: %s", w.Line, w.Message)
}

// Compile translates src into a sealed binary program. Warnings are
// returned alongside the binary; a non-nil error means no binary was
// produced.
func Compile(src []byte) ([]byte, []Warning, error) {
	s := newScanner(src)
	out := make([]byte, il.HeaderSize, 256)
	var warnings []Warning

	for {
		tok, line, ok := s.next()
		if !ok {
			break
		}
		op, ok := il.FromMnemonic(tok)
		if !ok {
			return nil, warnings, fmt.Errorf("line %d: unknown mnemonic %q", line, tok)
		}
		spec := il.Specs[op]
		operands := make([]il.Operand, 0, spec.Operands)
		imms := make([]uint64, spec.Operands)
		for i := 0; i < spec.Operands; i++ {
			otok, oline, ok := s.next()
			if !ok {
				return nil, warnings, fmt.Errorf("line %d: %s: missing operand %d of %d", oline, op, i+1, spec.Operands)
			}
			o, imm, err := parseOperand(otok)
			if err != nil {
				return nil, warnings, fmt.Errorf("line %d: %s: %w", oline, op, err)
			}
			operands = append(operands, o)
			imms[i] = imm
		}

		ws, err := check(op, operands, imms, line)
		warnings = append(warnings, ws...)
		if err != nil {
			return nil, warnings, err
		}

		out = il.Append(out, op, operands, imms)
	}

	sealed, err := il.Seal(out)
	if err != nil {
		return nil, warnings, err
	}
	return sealed, warnings, nil
}

func memoryLetter(c byte) (il.MemoryType, bool) {
	switch c {
	case 'X':
		return il.X, true
	case 'B':
		return il.B, true
	case 'W':
		return il.W, true
	case 'D':
		return il.D, true
	case 'L':
		return il.L, true
	case 'R':
		return il.R, true
	}
	return 0, false
}

// parseOperand resolves one operand token: register letter, memory letter,
// then an address with optional .bit for X sites, or a literal for K
// constants. A bare K<number> is taken as a byte constant.
func parseOperand(tok string) (il.Operand, uint64, error) {
	if len(tok) < 2 {
		return il.Operand{}, 0, fmt.Errorf("malformed operand %q", tok)
	}
	var o il.Operand
	switch tok[0] {
	case 'I':
		o.Register = il.I
	case 'Q':
		o.Register = il.Q
	case 'M':
		o.Register = il.M
	case 'K':
		o.Register = il.K
	default:
		return il.Operand{}, 0, fmt.Errorf("invalid register type %q in %q", tok[:1], tok)
	}
	rest := tok[1:]

	if o.Register == il.K {
		o.Memory = il.B
		lit := rest
		if m, ok := memoryLetter(rest[0]); ok {
			o.Memory = m
			lit = rest[1:]
		}
		imm, err := parseConstant(lit, o.Memory)
		if err != nil {
			return il.Operand{}, 0, err
		}
		return o, imm, nil
	}

	m, ok := memoryLetter(rest[0])
	if !ok {
		return il.Operand{}, 0, fmt.Errorf("invalid memory type %q in %q", rest[:1], tok)
	}
	o.Memory = m
	rest = rest[1:]

	if m == il.X {
		dot := strings.IndexByte(rest, '.')
		if dot < 0 {
			return il.Operand{}, 0, fmt.Errorf("bit operand %q needs a .bit suffix", tok)
		}
		addr, err := parseAddress(rest[:dot])
		if err != nil {
			return il.Operand{}, 0, fmt.Errorf("%w in %q", err, tok)
		}
		bit, err := strconv.ParseUint(rest[dot+1:], 10, 8)
		if err != nil || bit > 7 {
			return il.Operand{}, 0, fmt.Errorf("invalid bit number %q in %q", rest[dot+1:], tok)
		}
		o.Address = addr
		o.Bit = byte(bit)
		return o, 0, nil
	}

	addr, err := parseAddress(rest)
	if err != nil {
		return il.Operand{}, 0, fmt.Errorf("%w in %q", err, tok)
	}
	o.Address = addr
	return o, 0, nil
}

func parseAddress(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q", s)
	}
	return uint16(v), nil
}

// parseConstant reads a K literal: decimal or 0x hex for the integer
// widths, a float literal for R. The returned value is the encoding
// material: two's complement for integers, IEEE-754 bits for R.
func parseConstant(lit string, m il.MemoryType) (uint64, error) {
	if lit == "" {
		return 0, fmt.Errorf("empty constant")
	}
	if m == il.R {
		f, err := strconv.ParseFloat(lit, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid float constant %q", lit)
		}
		return uint64(math.Float32bits(float32(f))), nil
	}
	if strings.HasPrefix(lit, "0x") || strings.HasPrefix(lit, "0X") {
		v, err := strconv.ParseUint(lit[2:], 16, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid hex constant %q", lit)
		}
		return v, nil
	}
	if v, err := strconv.ParseInt(lit, 10, 64); err == nil {
		return uint64(v), nil
	}
	// full-range unsigned decimals still fit an L constant
	v, err := strconv.ParseUint(lit, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid constant %q", lit)
	}
	return v, nil
}
