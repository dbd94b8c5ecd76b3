package session

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"linebasic/internal/ast"
	"linebasic/internal/compiler"
	"linebasic/internal/evaluator"
	"linebasic/internal/fault"
	"linebasic/internal/linker"
	"linebasic/internal/numlit"
	"linebasic/internal/program"
	"linebasic/internal/vm"
)

// Session is one interactive workspace: the stored program, the machine
// that runs it and the bytecode linked from it. Any edit marks the bytecode
// stale; it is relinked on the next Run or Asm.
type Session struct {
	store   *program.Store
	comp    *compiler.Compiler
	machine *vm.Machine
	linker  *linker.Linker

	linked *linker.Linked
	dirty  bool

	// OnCompile, when set, sees every command stored by Submit.
	OnCompile func(n uint64, cmd ast.Command)
}

func New() *Session {
	m := vm.New()
	return &Session{
		store:   program.New(),
		comp:    compiler.New(),
		machine: m,
		linker:  linker.New(m),
		dirty:   true,
	}
}

func (s *Session) Store() *program.Store { return s.store }

func (s *Session) Machine() *vm.Machine { return s.machine }

// Dirty reports whether the stored program changed since the last link.
func (s *Session) Dirty() bool { return s.dirty }

func (s *Session) SetLogger(log zerolog.Logger) {
	s.machine.SetLogger(log)
	s.linker.SetLogger(log)
}

func (s *Session) SetMaxSteps(max int64) { s.machine.SetMaxSteps(max) }

// Submit handles a line that starts with a line number. It reports false,
// doing nothing, when line has no leading number. A number with nothing
// after it deletes that line; a statement that does not compile leaves the
// program as it was.
func (s *Session) Submit(line string) (bool, error) {
	line = strings.TrimLeft(line, " \t")
	n, rest, ok, err := numlit.ParseLineNumber(line)
	if !ok {
		return false, nil
	}
	if err != nil {
		return true, err
	}

	cmd, err := s.comp.Compile(rest)
	if errors.Is(err, fault.ErrEmptyCommand) {
		s.store.Delete(n)
		s.dirty = true
		return true, nil
	}
	if err != nil {
		return true, err
	}
	if s.OnCompile != nil {
		s.OnCompile(n, cmd)
	}
	s.store.Set(n, rest, cmd)
	s.dirty = true
	return true, nil
}

// Link returns the bytecode for the stored program, relinking only when
// the program changed.
func (s *Session) Link() (*linker.Linked, error) {
	if !s.dirty && s.linked != nil {
		return s.linked, nil
	}
	lk, err := s.linker.Link(s.store)
	if err != nil {
		return nil, err
	}
	s.linked = lk
	s.dirty = false
	return lk, nil
}

// Run links if needed and executes the program. A runtime fault carries
// the line that raised it.
func (s *Session) Run(io vm.IO) error {
	lk, err := s.Link()
	if err != nil {
		return err
	}
	err = s.machine.Run(lk.Program, io)
	var re *fault.RuntimeError
	if errors.As(err, &re) {
		if n, ok := lk.LineAt(re.PC); ok {
			re.Line = int64(n)
		}
	}
	return err
}

// Interpret runs the stored program with the tree-walking interpreter
// against the same variables the machine uses.
func (s *Session) Interpret(io vm.IO, maxSteps int64) error {
	in := evaluator.New(s.machine.Variables())
	in.SetMaxSteps(maxSteps)
	return in.Run(s.store, io)
}

// Asm writes the linked program listing.
func (s *Session) Asm(w io.Writer) error {
	lk, err := s.Link()
	if err != nil {
		return err
	}
	return lk.Program.Disassemble(w)
}

func (s *Session) List(w io.Writer) error {
	return s.store.List(w)
}

// Clear drops the program, the bytecode and every variable.
func (s *Session) Clear() {
	s.store.Clear()
	s.machine.Clear()
	s.linked = nil
	s.dirty = true
}

// Immediate compiles stmt as a lone line 0 and runs it on the session's
// machine, leaving the stored program alone. Only LET, PRINT and INPUT may
// run this way.
func (s *Session) Immediate(stmt string, io vm.IO) error {
	fields := strings.Fields(stmt)
	if len(fields) == 0 {
		return fault.ErrEmptyCommand
	}
	switch fields[0] {
	case "LET", "PRINT", "INPUT":
	default:
		return &fault.SyntaxError{Col: strings.Index(stmt, fields[0]) + 1}
	}
	cmd, err := s.comp.Compile(stmt)
	if err != nil {
		return err
	}
	src := linker.SourceFunc(func(fn func(uint64, ast.Command) bool) { fn(0, cmd) })
	lk, err := s.linker.Link(src)
	if err != nil {
		return err
	}
	return s.machine.Run(lk.Program, io)
}

// LoadError is a program file line that could not be stored.
type LoadError struct {
	Line int
	Text string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%d: %s", e.Line, fault.Label(e.Err))
}

func (e *LoadError) Unwrap() error { return e.Err }

// Load submits every line of a program file. Blank lines are skipped; the
// rest must be numbered. Failing lines are reported and skipped.
func (s *Session) Load(r io.Reader) ([]*LoadError, error) {
	var errs []*LoadError
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		ok, err := s.Submit(text)
		if !ok {
			err = fault.ErrLineNumber
		}
		if err != nil {
			errs = append(errs, &LoadError{Line: lineNo, Text: text, Err: err})
		}
	}
	return errs, scanner.Err()
}
