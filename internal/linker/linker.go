package linker

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"linebasic/internal/ast"
	"linebasic/internal/code"
	"linebasic/internal/token"
)

// Source yields program lines in ascending line order.
type Source interface {
	Ascend(fn func(n uint64, cmd ast.Command) bool)
}

// SourceFunc adapts a plain function to Source.
type SourceFunc func(fn func(n uint64, cmd ast.Command) bool)

func (f SourceFunc) Ascend(fn func(n uint64, cmd ast.Command) bool) { f(fn) }

// SlotAllocator hands out variable slots. The machine that will run the
// program owns the table, so slots stay stable across links.
type SlotAllocator interface {
	Slot(name string) int
}

// LineAddr is the address of the first instruction emitted for a line.
type LineAddr struct {
	Number uint64
	Addr   int
}

// Jump is a GOTO or IF whose target line was not found.
type Jump struct {
	Addr   int
	Line   uint64
	Target uint64
}

// Linked is a program lowered to bytecode plus the tables needed to map
// addresses back to lines.
type Linked struct {
	Program  code.Program
	Lines    []LineAddr
	Dangling []Jump
}

// Addr returns the address line n starts at.
func (lk *Linked) Addr(n uint64) (int, bool) {
	i := sort.Search(len(lk.Lines), func(i int) bool { return lk.Lines[i].Number >= n })
	if i < len(lk.Lines) && lk.Lines[i].Number == n {
		return lk.Lines[i].Addr, true
	}
	return 0, false
}

// LineAt returns the line that emitted the instruction at pc.
func (lk *Linked) LineAt(pc int) (uint64, bool) {
	if pc < 0 || pc >= len(lk.Program) {
		return 0, false
	}
	i := sort.Search(len(lk.Lines), func(i int) bool { return lk.Lines[i].Addr > pc })
	if i == 0 {
		return 0, false
	}
	return lk.Lines[i-1].Number, true
}

type pending struct {
	addr   int
	line   uint64
	target uint64
}

type Linker struct {
	slots SlotAllocator
	log   zerolog.Logger

	prog    code.Program
	lines   []LineAddr
	addrs   map[uint64]int
	pending []pending
	line    uint64
}

func New(slots SlotAllocator) *Linker {
	return &Linker{slots: slots, log: zerolog.Nop()}
}

func (l *Linker) SetLogger(log zerolog.Logger) { l.log = log }

// Link is shorthand for New(slots).Link(src).
func Link(src Source, slots SlotAllocator) (*Linked, error) {
	return New(slots).Link(src)
}

// Link lowers every line of src. The first pass emits code and records
// where each line starts; the second resolves jumps, turning a jump to a
// missing line into a trap.
func (l *Linker) Link(src Source) (*Linked, error) {
	l.prog = nil
	l.lines = nil
	l.addrs = map[uint64]int{}
	l.pending = nil

	var err error
	src.Ascend(func(n uint64, cmd ast.Command) bool {
		l.line = n
		l.addrs[n] = len(l.prog)
		l.lines = append(l.lines, LineAddr{Number: n, Addr: len(l.prog)})
		l.log.Trace().Uint64("line", n).Int("addr", len(l.prog)).Msg("link line")
		err = l.emitCommand(cmd)
		return err == nil
	})
	if err != nil {
		return nil, err
	}

	out := &Linked{Program: l.prog, Lines: l.lines}
	for _, p := range l.pending {
		addr, ok := l.addrs[p.target]
		if !ok {
			l.log.Debug().Uint64("line", p.line).Uint64("target", p.target).Msg("dangling jump")
			l.prog[p.addr] = code.Trap()
			out.Dangling = append(out.Dangling, Jump{Addr: p.addr, Line: p.line, Target: p.target})
			continue
		}
		l.log.Trace().Int("addr", p.addr).Int("to", addr).Msg("patch jump")
		l.prog[p.addr].Arg = code.Addr(addr)
	}
	return out, nil
}

func (l *Linker) emit(op code.Opcode, arg ...code.Operand) int {
	pos := len(l.prog)
	l.prog = append(l.prog, code.Make(op, arg...))
	return pos
}

// emitJump leaves the address unresolved until every line is placed.
func (l *Linker) emitJump(op code.Opcode, target uint64) {
	pos := l.emit(op, code.Addr(0))
	l.pending = append(l.pending, pending{addr: pos, line: l.line, target: target})
}

func (l *Linker) emitCommand(cmd ast.Command) error {
	switch c := cmd.(type) {
	case *ast.Rem:

	case *ast.Let:
		if err := l.emitExpr(c.Value); err != nil {
			return err
		}
		l.emit(code.OpPop, code.Slot(l.slots.Slot(c.Target)))

	case *ast.Print:
		if err := l.emitExpr(c.Value); err != nil {
			return err
		}
		l.emit(code.OpPrint)

	case *ast.Input:
		l.emit(code.OpInput)
		l.emit(code.OpPop, code.Slot(l.slots.Slot(c.Target)))

	case *ast.Goto:
		l.emitJump(code.OpJmp, c.Target)

	case *ast.If:
		first, second := c.Left, c.Right
		if c.Cmp == token.LT {
			// A < B is B > A
			first, second = c.Right, c.Left
		}
		if err := l.emitExpr(first); err != nil {
			return err
		}
		if err := l.emitExpr(second); err != nil {
			return err
		}
		l.emit(code.OpSub)
		switch c.Cmp {
		case token.ASSIGN:
			l.emitJump(code.OpJz, c.Target)
		case token.LT, token.GT:
			l.emitJump(code.OpJp, c.Target)
		default:
			return fmt.Errorf("line %d: unknown comparator %q", l.line, c.Cmp)
		}

	case *ast.End:
		l.emit(code.OpHalt)

	default:
		return fmt.Errorf("line %d: cannot link %T", l.line, cmd)
	}
	return nil
}

func (l *Linker) emitExpr(e ast.Expr) error {
	for _, tok := range e {
		switch tok.Type {
		case token.INT:
			l.emit(code.OpPush, code.Imm(tok.Value))
		case token.IDENT:
			l.emit(code.OpPush, code.Slot(l.slots.Slot(tok.Literal)))
		case token.PLUS:
			l.emit(code.OpAdd)
		case token.MINUS:
			l.emit(code.OpSub)
		case token.STAR:
			l.emit(code.OpMul)
		case token.SLASH:
			l.emit(code.OpDiv)
		default:
			return fmt.Errorf("line %d: unexpected %s in expression", l.line, tok.Type)
		}
	}
	return nil
}
