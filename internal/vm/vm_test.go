package vm

import (
	"errors"
	"math"
	"testing"

	"linebasic/internal/code"
	"linebasic/internal/fault"
	"linebasic/internal/limits"
	"linebasic/internal/runtimeio"
)

func run(t *testing.T, m *Machine, prog code.Program, input ...string) (*runtimeio.Script, error) {
	t.Helper()
	io := runtimeio.NewScript(input...)
	return io, m.Run(prog, io)
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		op   code.Opcode
		a, b int64
		want int64
	}{
		{code.OpAdd, 2, 3, 5},
		{code.OpSub, 2, 3, -1},
		{code.OpMul, 6, 7, 42},
		{code.OpDiv, 7, 2, 3},
		{code.OpDiv, -7, 2, -3},
		{code.OpAdd, math.MaxInt64, 1, math.MinInt64},
	}
	for _, tt := range tests {
		prog := code.Program{
			code.Make(code.OpPush, code.Imm(tt.a)),
			code.Make(code.OpPush, code.Imm(tt.b)),
			code.Make(tt.op),
			code.Make(code.OpPrint),
		}
		out, err := run(t, New(), prog)
		if err != nil {
			t.Fatalf("%s %d %d: %v", tt.op, tt.a, tt.b, err)
		}
		if len(out.Outputs) != 1 || out.Outputs[0] != tt.want {
			t.Fatalf("%s %d %d: got %v, want %d", tt.op, tt.a, tt.b, out.Outputs, tt.want)
		}
	}
}

func TestDivideByZeroLeavesStack(t *testing.T) {
	m := New()
	prog := code.Program{
		code.Make(code.OpPush, code.Imm(9)),
		code.Make(code.OpPush, code.Imm(0)),
		code.Make(code.OpDiv),
	}
	_, err := run(t, m, prog)
	if !errors.Is(err, fault.ErrDividedByZero) {
		t.Fatalf("expected DIVIDE BY ZERO, got %v", err)
	}
	var re *fault.RuntimeError
	if !errors.As(err, &re) || re.PC != 2 {
		t.Fatalf("expected fault at 2, got %+v", re)
	}
	stack := m.Stack()
	if len(stack) != 2 || stack[0] != 9 || stack[1] != 0 {
		t.Fatalf("operands must stay on the stack, got %v", stack)
	}
}

func TestVariables(t *testing.T) {
	m := New()
	a := m.Slot("A")
	prog := code.Program{
		code.Make(code.OpPush, code.Imm(5)),
		code.Make(code.OpPop, code.Slot(a)),
		code.Make(code.OpPush, code.Slot(a)),
		code.Make(code.OpPrint),
	}
	out, err := run(t, m, prog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Text() != "5\n" {
		t.Fatalf("unexpected output %q", out.Text())
	}
	if v, ok := m.Variables().Value("A"); !ok || v != 5 {
		t.Fatalf("expected A=5, got %d %v", v, ok)
	}
}

func TestUndefinedVariableAndPersistence(t *testing.T) {
	m := New()
	b := m.Slot("B")
	read := code.Program{
		code.Make(code.OpPush, code.Slot(b)),
		code.Make(code.OpPrint),
	}
	if _, err := run(t, m, read); !errors.Is(err, fault.ErrVariableNotDefined) {
		t.Fatalf("expected VARIABLE NOT DEFINED, got %v", err)
	}

	write := code.Program{
		code.Make(code.OpPush, code.Imm(11)),
		code.Make(code.OpPop, code.Slot(b)),
	}
	if _, err := run(t, m, write); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := run(t, m, read)
	if err != nil || out.Text() != "11\n" {
		t.Fatalf("value should survive between runs, got %q, %v", out.Text(), err)
	}

	m.Clear()
	if m.Variables().Len() != 0 {
		t.Fatal("Clear should drop every slot")
	}
	if _, err := run(t, m, read); err == nil {
		t.Fatal("expected an error reading a slot after Clear")
	}
}

func TestJumps(t *testing.T) {
	// count N down from 3, printing each value
	m := New()
	n := m.Slot("N")
	prog := code.Program{
		code.Make(code.OpPush, code.Imm(3)),
		code.Make(code.OpPop, code.Slot(n)),
		code.Make(code.OpPush, code.Slot(n)), // 2
		code.Make(code.OpPrint),
		code.Make(code.OpPush, code.Slot(n)),
		code.Make(code.OpPush, code.Imm(1)),
		code.Make(code.OpSub),
		code.Make(code.OpPop, code.Slot(n)),
		code.Make(code.OpPush, code.Slot(n)),
		code.Make(code.OpJz, code.Addr(11)),
		code.Make(code.OpJmp, code.Addr(2)),
		code.Make(code.OpHalt), // 11
		code.Make(code.OpPush, code.Imm(99)),
		code.Make(code.OpPrint),
	}
	out, err := run(t, m, prog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Text() != "3\n2\n1\n" {
		t.Fatalf("unexpected output %q", out.Text())
	}
	if !m.Registers().Stop || m.Registers().PC != 12 {
		t.Fatalf("unexpected registers %+v", m.Registers())
	}
}

func TestJumpIfPositive(t *testing.T) {
	for _, v := range []int64{-1, 0, 1} {
		prog := code.Program{
			code.Make(code.OpPush, code.Imm(v)),
			code.Make(code.OpJp, code.Addr(4)),
			code.Make(code.OpPush, code.Imm(0)),
			code.Make(code.OpHalt),
			code.Make(code.OpPush, code.Imm(1)),
		}
		m := New()
		if _, err := run(t, m, prog); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		stack := m.Stack()
		want := int64(0)
		if v > 0 {
			want = 1
		}
		if len(stack) != 1 || stack[0] != want {
			t.Fatalf("JP on %d: stack %v", v, stack)
		}
	}
}

func TestTrap(t *testing.T) {
	prog := code.Program{code.Make(code.OpNop), code.Trap()}
	_, err := run(t, New(), prog)
	if !errors.Is(err, fault.ErrLineNumber) {
		t.Fatalf("expected LINE NUMBER ERROR, got %v", err)
	}
	if fault.Label(err) != "LINE NUMBER ERROR" {
		t.Fatalf("unexpected label %q", fault.Label(err))
	}
}

func TestInput(t *testing.T) {
	m := New()
	prog := code.Program{
		code.Make(code.OpInput),
		code.Make(code.OpPrint),
		code.Make(code.OpInput),
	}
	out, err := run(t, m, prog, "-8")
	if !errors.Is(err, fault.ErrEndOfFile) {
		t.Fatalf("expected END OF FILE, got %v", err)
	}
	if out.Text() != "-8\n" {
		t.Fatalf("unexpected output %q", out.Text())
	}

	if _, err := run(t, New(), prog, "x"); !errors.Is(err, fault.ErrInvalidNumber) {
		t.Fatalf("expected INVALID NUMBER, got %v", err)
	}
}

func TestRunResetsRegistersOnly(t *testing.T) {
	m := New()
	prog := code.Program{code.Make(code.OpPush, code.Imm(1)), code.Make(code.OpHalt)}
	for i := 0; i < 2; i++ {
		if _, err := run(t, m, prog); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if len(m.Stack()) != 2 {
		t.Fatalf("stack should carry over between runs, got %v", m.Stack())
	}
	if m.Registers().Step != 2 {
		t.Fatalf("expected 2 steps in the last run, got %d", m.Registers().Step)
	}
}

func TestMalformedPrograms(t *testing.T) {
	tests := []struct {
		name string
		prog code.Program
		want error
	}{
		{"print on empty stack", code.Program{code.Make(code.OpPrint)}, ErrStackUnderflow},
		{"add with one value", code.Program{code.Make(code.OpPush, code.Imm(1)), code.Make(code.OpAdd)}, ErrStackUnderflow},
		{"pop to unknown slot", code.Program{code.Make(code.OpPush, code.Imm(1)), code.Make(code.OpPop, code.Slot(4))}, ErrBadSlot},
		{"push unknown slot", code.Program{code.Make(code.OpPush, code.Slot(4))}, ErrBadSlot},
		{"unknown opcode", code.Program{{Op: code.Opcode(200)}}, ErrBadInstruction},
	}
	for _, tt := range tests {
		_, err := run(t, New(), tt.prog)
		if !errors.Is(err, tt.want) {
			t.Fatalf("%s: expected %v, got %v", tt.name, tt.want, err)
		}
	}
}

func TestStepLimit(t *testing.T) {
	m := New()
	m.SetMaxSteps(50)
	prog := code.Program{code.Make(code.OpJmp, code.Addr(0))}
	_, err := run(t, m, prog)
	var limitErr limits.MaxStepsError
	if !errors.As(err, &limitErr) || limitErr.Limit != 50 {
		t.Fatalf("expected step limit error, got %v", err)
	}
	if err.Error() != "STEP LIMIT EXCEEDED (50)" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
