package evaluator

import (
	"fmt"

	"linebasic/internal/ast"
	"linebasic/internal/fault"
	"linebasic/internal/limits"
	"linebasic/internal/program"
	"linebasic/internal/semantics"
	"linebasic/internal/token"
	"linebasic/internal/vm"
)

// Interpreter runs a stored program straight from its commands, one line
// at a time, without linking. It shares the machine's variable table so
// both engines see the same state.
type Interpreter struct {
	vars   *vm.Variables
	budget *limits.Budget
}

func New(vars *vm.Variables) *Interpreter {
	if vars == nil {
		vars = vm.NewVariables()
	}
	return &Interpreter{vars: vars}
}

func (in *Interpreter) Variables() *vm.Variables { return in.vars }

func (in *Interpreter) SetMaxSteps(max int64) {
	if max <= 0 {
		in.budget = nil
		return
	}
	in.budget = limits.NewBudget(max)
}

// Run executes src from its first line until END, a fault, or the end of
// the program.
func (in *Interpreter) Run(src *program.Store, io vm.IO) error {
	in.budget.Reset()
	line, ok := src.AscendFrom(0)
	for ok {
		if err := in.budget.Charge(1); err != nil {
			return &fault.RuntimeError{Err: err, PC: -1, Line: int64(line.Number)}
		}
		jump, stop, err := in.exec(line.Cmd, io)
		if err != nil {
			return &fault.RuntimeError{Err: err, PC: -1, Line: int64(line.Number)}
		}
		if stop {
			return nil
		}
		if target, ok := ast.JumpTarget(line.Cmd); ok {
			// a jump to a missing line faults whether or not it is taken
			dest, found := src.Get(target)
			if !found {
				return &fault.RuntimeError{Err: fault.ErrLineNumber, PC: -1, Line: int64(line.Number)}
			}
			if jump {
				line = dest
				continue
			}
		}
		line, ok = src.Next(line.Number)
	}
	return nil
}

func (in *Interpreter) exec(cmd ast.Command, io vm.IO) (jump, stop bool, err error) {
	switch c := cmd.(type) {
	case *ast.Rem:

	case *ast.Let:
		v, err := in.Eval(c.Value)
		if err != nil {
			return false, false, err
		}
		in.vars.Set(in.vars.Slot(c.Target), v)

	case *ast.Print:
		v, err := in.Eval(c.Value)
		if err != nil {
			return false, false, err
		}
		io.Output(v)

	case *ast.Input:
		v, err := io.Input()
		if err != nil {
			return false, false, err
		}
		in.vars.Set(in.vars.Slot(c.Target), v)

	case *ast.Goto:
		return true, false, nil

	case *ast.If:
		// operands are evaluated in the order the bytecode pushes them
		first, second := c.Left, c.Right
		if c.Cmp == token.LT {
			first, second = c.Right, c.Left
		}
		a, err := in.Eval(first)
		if err != nil {
			return false, false, err
		}
		b, err := in.Eval(second)
		if err != nil {
			return false, false, err
		}
		l, r := a, b
		if c.Cmp == token.LT {
			l, r = b, a
		}
		taken, err := semantics.Compare(c.Cmp, l, r)
		if err != nil {
			return false, false, err
		}
		return taken, false, nil

	case *ast.End:
		return false, true, nil

	default:
		return false, false, fmt.Errorf("cannot execute %T", cmd)
	}
	return false, false, nil
}

// Eval evaluates a postfix expression against the variable table.
func (in *Interpreter) Eval(e ast.Expr) (int64, error) {
	var stack []int64
	for _, tok := range e {
		switch {
		case tok.Type == token.INT:
			stack = append(stack, tok.Value)
		case tok.Type == token.IDENT:
			v, ok := in.vars.Get(in.vars.Slot(tok.Literal))
			if !ok {
				return 0, fault.ErrVariableNotDefined
			}
			stack = append(stack, v)
		case tok.IsOperator():
			if len(stack) < 2 {
				return 0, vm.ErrStackUnderflow
			}
			r, err := semantics.Arith(tok.Type, stack[len(stack)-2], stack[len(stack)-1])
			if err != nil {
				return 0, err
			}
			stack = append(stack[:len(stack)-2], r)
		default:
			return 0, fmt.Errorf("unexpected %s in expression", tok.Type)
		}
	}
	if len(stack) != 1 {
		return 0, vm.ErrStackUnderflow
	}
	return stack[0], nil
}
