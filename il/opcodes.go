// Package il defines the instruction set of the controller: opcodes,
// operands, the binary instruction codec, and the framed program format.

package il

// An Opcode is a single byte identifying one instruction. The decimal values
// are part of the wire format and stable across versions.
type Opcode byte

const (
	OpLD  Opcode = 0
	OpLDN Opcode = 1
	OpST  Opcode = 2
	OpSTN Opcode = 3
	OpS   Opcode = 4
	OpR   Opcode = 5
	OpMOV Opcode = 6

	// Bit combinators. The P ("paren") variants open a deferred group: the
	// current combinator and accumulator are pushed, and evaluation
	// restarts inside the parentheses.
	OpAND   Opcode = 7
	OpANDP  Opcode = 8
	OpANDN  Opcode = 9
	OpANDNP Opcode = 10
	OpOR    Opcode = 11
	OpORP   Opcode = 12
	OpORN   Opcode = 13
	OpORNP  Opcode = 14
	OpXOR   Opcode = 15
	OpXORP  Opcode = 16
	OpXORN  Opcode = 17
	OpXORNP Opcode = 18
	OpNOT   Opcode = 19

	OpADD Opcode = 20
	OpSUB Opcode = 21
	OpMUL Opcode = 22
	OpDIV Opcode = 23
	OpMOD Opcode = 24

	OpGT Opcode = 25
	OpGE Opcode = 26
	OpEQ Opcode = 27
	OpNE Opcode = 28
	OpLT Opcode = 29
	OpLE Opcode = 30

	// Standard function blocks. The first operand selects the instance.
	OpCTU Opcode = 31
	OpCTD Opcode = 32
	OpTON Opcode = 33
	OpTOF Opcode = 34

	OpClose Opcode = 35 // ")"

	OpTP    Opcode = 36
	OpRTrig Opcode = 37
	OpFTrig Opcode = 38
)

// MaxOperands is the largest operand count of any instruction.
const MaxOperands = 6

// Instance banks available to the function-block instructions. The index
// operand of a timer, counter, or trigger instruction must stay below the
// matching bound.
const (
	MaxTimers   = 10
	MaxCounters = 10
	MaxTriggers = 10
)

// A Spec carries the fixed per-opcode metadata: the source mnemonic and the
// operand count the decoder derives from the opcode alone.
type Spec struct {
	Mnemonic string
	Operands int
}

// Specs lists every opcode the machine recognises. An opcode absent from
// this table is illegal both on the wire and in source.
var Specs = map[Opcode]Spec{
	OpLD:    {"LD", 1},
	OpLDN:   {"LDN", 1},
	OpST:    {"ST", 1},
	OpSTN:   {"STN", 1},
	OpS:     {"S", 1},
	OpR:     {"R", 1},
	OpMOV:   {"MOV", 2},
	OpAND:   {"AND", 1},
	OpANDP:  {"AND(", 1},
	OpANDN:  {"ANDN", 1},
	OpANDNP: {"ANDN(", 1},
	OpOR:    {"OR", 1},
	OpORP:   {"OR(", 1},
	OpORN:   {"ORN", 1},
	OpORNP:  {"ORN(", 1},
	OpXOR:   {"XOR", 1},
	OpXORP:  {"XOR(", 1},
	OpXORN:  {"XORN", 1},
	OpXORNP: {"XORN(", 1},
	OpNOT:   {"NOT", 0},
	OpADD:   {"ADD", 3},
	OpSUB:   {"SUB", 3},
	OpMUL:   {"MUL", 3},
	OpDIV:   {"DIV", 3},
	OpMOD:   {"MOD", 3},
	OpGT:    {"GT", 2},
	OpGE:    {"GE", 2},
	OpEQ:    {"EQ", 2},
	OpNE:    {"NE", 2},
	OpLT:    {"LT", 2},
	OpLE:    {"LE", 2},
	OpCTU:   {"CTU", 6},
	OpCTD:   {"CTD", 6},
	OpTON:   {"TON", 6},
	OpTOF:   {"TOF", 6},
	OpClose: {")", 0},
	OpTP:    {"TP", 6},
	OpRTrig: {"R_TRIGGER", 3},
	OpFTrig: {"F_TRIGGER", 3},
}

var byMnemonic = func() map[string]Opcode {
	m := make(map[string]Opcode, len(Specs))
	for op, s := range Specs {
		m[s.Mnemonic] = op
	}
	return m
}()

// FromMnemonic resolves a source mnemonic to its opcode.
func FromMnemonic(s string) (Opcode, bool) {
	op, ok := byMnemonic[s]
	return op, ok
}

func (op Opcode) String() string {
	if s, ok := Specs[op]; ok {
		return s.Mnemonic
	}
	return "???"
}
