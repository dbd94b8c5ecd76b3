package code

import "fmt"

type Opcode byte

// Opcode values are part of the image encoding; keep the order.
const (
	OpNop   Opcode = iota // unused
	OpInt                 // trap; operand: BadLine
	OpHalt                // stop
	OpPrint               // pop and print
	OpInput               // read and push
	OpPush                // operand: immediate or slot
	OpPop                 // operand: slot
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpJmp // operand: address
	OpJz  // operand: address
	OpJp  // operand: address
)

// Mode says how an operand is interpreted. The values match the low nibble
// of an encoded instruction header.
type Mode byte

const (
	ModeNone      Mode = 0
	ModeImmediate Mode = 1
	ModeSlot      Mode = 2
	ModeAddress   Mode = 8
)

// BadLine is the INT operand the linker plants in place of a jump whose
// target line does not exist.
const BadLine int64 = 0xff

type Operand struct {
	Mode  Mode
	Value int64
}

func Imm(v int64) Operand { return Operand{Mode: ModeImmediate, Value: v} }
func Slot(n int) Operand  { return Operand{Mode: ModeSlot, Value: int64(n)} }
func Addr(a int) Operand  { return Operand{Mode: ModeAddress, Value: int64(a)} }

// Sigil is the disassembly prefix for the operand's mode.
func (o Operand) Sigil() string {
	switch o.Mode {
	case ModeImmediate:
		return "%"
	case ModeSlot:
		return "$"
	case ModeAddress:
		return "#"
	}
	return ""
}

type Instruction struct {
	Op  Opcode
	Arg Operand
}

// Program is a linked bytecode program; an instruction's index is its
// jump address.
type Program []Instruction

type Definition struct {
	Name  string
	Modes []Mode // accepted operand modes; nil means no operand
}

var definitions = map[Opcode]*Definition{
	OpNop:   {"NOP", nil},
	OpInt:   {"INT", []Mode{ModeImmediate}},
	OpHalt:  {"HALT", nil},
	OpPrint: {"PRINT", nil},
	OpInput: {"INPUT", nil},
	OpPush:  {"PUSH", []Mode{ModeImmediate, ModeSlot}},
	OpPop:   {"POP", []Mode{ModeSlot}},
	OpAdd:   {"ADD", nil},
	OpSub:   {"SUB", nil},
	OpMul:   {"MUL", nil},
	OpDiv:   {"DIV", nil},
	OpJmp:   {"JMP", []Mode{ModeAddress}},
	OpJz:    {"JZ", []Mode{ModeAddress}},
	OpJp:    {"JP", []Mode{ModeAddress}},
}

func Lookup(op Opcode) (*Definition, bool) {
	def, ok := definitions[op]
	return def, ok
}

func (op Opcode) String() string {
	if def, ok := definitions[op]; ok {
		return def.Name
	}
	return fmt.Sprintf("OP(%d)", byte(op))
}

// Accepts reports whether m is a legal operand mode for op.
func (d *Definition) Accepts(m Mode) bool {
	if m == ModeNone {
		return len(d.Modes) == 0
	}
	for _, want := range d.Modes {
		if want == m {
			return true
		}
	}
	return false
}

// Make builds one instruction. It panics on an operand the opcode does not
// take; the linker is the only producer and never does that.
func Make(op Opcode, arg ...Operand) Instruction {
	def, ok := definitions[op]
	if !ok {
		panic(fmt.Sprintf("unknown opcode %d", op))
	}
	ins := Instruction{Op: op}
	if len(arg) > 0 {
		ins.Arg = arg[0]
	}
	if !def.Accepts(ins.Arg.Mode) {
		panic(fmt.Sprintf("%s does not take mode %d", def.Name, ins.Arg.Mode))
	}
	return ins
}

// Trap is the instruction that replaces a dangling jump.
func Trap() Instruction {
	return Make(OpInt, Imm(BadLine))
}
