package vm

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"linebasic/internal/code"
	"linebasic/internal/fault"
	"linebasic/internal/limits"
	"linebasic/internal/semantics"
	"linebasic/internal/token"
)

// IO is the numeric channel PRINT and INPUT talk to. Input returns
// fault.ErrInvalidNumber or fault.ErrEndOfFile on failure.
type IO interface {
	Input() (int64, error)
	Output(v int64)
}

var (
	ErrStackUnderflow = errors.New("stack underflow")
	ErrBadSlot        = errors.New("slot out of range")
	ErrBadInstruction = errors.New("bad instruction")
)

type Registers struct {
	PC   int
	Step int64
	Stop bool
}

// Machine executes linked bytecode. Variables and the operand stack survive
// between runs; only Clear wipes them.
type Machine struct {
	vars  *Variables
	stack []int64
	reg   Registers

	budget *limits.Budget
	log    zerolog.Logger
}

func New() *Machine {
	return &Machine{
		vars: NewVariables(),
		log:  zerolog.Nop(),
	}
}

// Slot allocates (or finds) the slot for a variable name.
func (m *Machine) Slot(name string) int { return m.vars.Slot(name) }

func (m *Machine) Variables() *Variables { return m.vars }

func (m *Machine) Registers() Registers { return m.reg }

// Stack returns a copy of the operand stack, bottom first.
func (m *Machine) Stack() []int64 {
	return append([]int64(nil), m.stack...)
}

func (m *Machine) SetLogger(l zerolog.Logger) { m.log = l }

func (m *Machine) SetMaxSteps(max int64) {
	if max <= 0 {
		m.budget = nil
		return
	}
	m.budget = limits.NewBudget(max)
}

func (m *Machine) SetBudget(b *limits.Budget) { m.budget = b }

// Clear forgets every variable and empties the stack.
func (m *Machine) Clear() {
	m.vars.Reset()
	m.stack = nil
	m.reg = Registers{}
}

func (m *Machine) push(v int64) {
	m.stack = append(m.stack, v)
}

func (m *Machine) pop() (int64, error) {
	if len(m.stack) == 0 {
		return 0, ErrStackUnderflow
	}
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v, nil
}

var arithOps = map[code.Opcode]token.Type{
	code.OpAdd: token.PLUS,
	code.OpSub: token.MINUS,
	code.OpMul: token.STAR,
	code.OpDiv: token.SLASH,
}

// Run executes prog from address 0 until HALT, a fault, or the program
// counter leaves the program.
func (m *Machine) Run(prog code.Program, io IO) error {
	m.reg = Registers{}
	m.budget.Reset()

	for !m.reg.Stop && m.reg.PC >= 0 && m.reg.PC < len(prog) {
		pc := m.reg.PC
		ins := prog[pc]
		m.reg.PC++
		m.reg.Step++

		if err := m.budget.Charge(1); err != nil {
			return &fault.RuntimeError{Err: err, PC: pc, Line: -1}
		}
		if m.log.GetLevel() <= zerolog.TraceLevel {
			m.log.Trace().
				Int("pc", pc).
				Str("op", ins.Op.String()).
				Int64("arg", ins.Arg.Value).
				Int("depth", len(m.stack)).
				Msg("step")
		}
		if err := m.exec(ins, io); err != nil {
			m.log.Debug().Int("pc", pc).Err(err).Msg("fault")
			return &fault.RuntimeError{Err: err, PC: pc, Line: -1}
		}
	}
	return nil
}

func (m *Machine) exec(ins code.Instruction, io IO) error {
	switch ins.Op {
	case code.OpNop:

	case code.OpInt:
		return fault.ErrLineNumber

	case code.OpHalt:
		m.reg.Stop = true

	case code.OpPrint:
		v, err := m.pop()
		if err != nil {
			return err
		}
		io.Output(v)

	case code.OpInput:
		v, err := io.Input()
		if err != nil {
			return err
		}
		m.push(v)

	case code.OpPush:
		switch ins.Arg.Mode {
		case code.ModeImmediate:
			m.push(ins.Arg.Value)
		case code.ModeSlot:
			v, ok := m.vars.Get(int(ins.Arg.Value))
			if !ok {
				if ins.Arg.Value < 0 || ins.Arg.Value >= int64(m.vars.Len()) {
					return ErrBadSlot
				}
				return fault.ErrVariableNotDefined
			}
			m.push(v)
		default:
			return fmt.Errorf("%w: %s", ErrBadInstruction, ins)
		}

	case code.OpPop:
		v, err := m.pop()
		if err != nil {
			return err
		}
		if !m.vars.Set(int(ins.Arg.Value), v) {
			return ErrBadSlot
		}

	case code.OpAdd, code.OpSub, code.OpMul, code.OpDiv:
		if len(m.stack) < 2 {
			return ErrStackUnderflow
		}
		a, b := m.stack[len(m.stack)-2], m.stack[len(m.stack)-1]
		r, err := semantics.Arith(arithOps[ins.Op], a, b)
		if err != nil {
			// the operands stay on the stack
			return err
		}
		m.stack = m.stack[:len(m.stack)-2]
		m.push(r)

	case code.OpJmp:
		m.reg.PC = int(ins.Arg.Value)

	case code.OpJz, code.OpJp:
		v, err := m.pop()
		if err != nil {
			return err
		}
		if (ins.Op == code.OpJz && v == 0) || (ins.Op == code.OpJp && v > 0) {
			m.reg.PC = int(ins.Arg.Value)
		}

	default:
		return fmt.Errorf("%w: %s", ErrBadInstruction, ins)
	}
	return nil
}
