package session

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"linebasic/internal/ast"
	"linebasic/internal/fault"
	"linebasic/internal/runtimeio"
)

func submit(t *testing.T, s *Session, lines ...string) {
	t.Helper()
	for _, line := range lines {
		ok, err := s.Submit(line)
		if !ok || err != nil {
			t.Fatalf("%q: ok=%v err=%v", line, ok, err)
		}
	}
}

func TestSubmitAndRun(t *testing.T) {
	s := New()
	submit(t, s, "10 INPUT A", "20 PRINT A * 2", "30 END")
	io := runtimeio.NewScript("21")
	if err := s.Run(io); err != nil {
		t.Fatalf("run: %v", err)
	}
	if io.Text() != "42\n" {
		t.Fatalf("unexpected output %q", io.Text())
	}
}

func TestSubmitNotNumbered(t *testing.T) {
	s := New()
	ok, err := s.Submit("PRINT 1")
	if ok || err != nil {
		t.Fatalf("expected a non-program line, got ok=%v err=%v", ok, err)
	}
	if _, err := s.Submit("99999999999999999999999 PRINT 1"); !errors.Is(err, fault.ErrLineNumberTooLarge) {
		t.Fatalf("expected LINE NUMBER TOO LARGE, got %v", err)
	}
}

func TestSyntaxErrorKeepsProgram(t *testing.T) {
	s := New()
	submit(t, s, "10 PRINT 1")
	if _, err := s.Link(); err != nil {
		t.Fatalf("link: %v", err)
	}
	if _, err := s.Submit("10 PRINT 1 +"); !errors.Is(err, fault.ErrSyntax) {
		t.Fatalf("expected SYNTAX ERROR, got %v", err)
	}
	if s.Dirty() {
		t.Fatal("a failed compile must not invalidate the bytecode")
	}
	var out bytes.Buffer
	_ = s.List(&out)
	if out.String() != "10 PRINT 1\n" {
		t.Fatalf("program changed: %q", out.String())
	}
}

func TestReplaceAndDeleteRelink(t *testing.T) {
	s := New()
	submit(t, s, "10 PRINT 1", "20 PRINT 2")

	io := runtimeio.NewScript()
	if err := s.Run(io); err != nil || io.Text() != "1\n2\n" {
		t.Fatalf("first run: %q %v", io.Text(), err)
	}

	submit(t, s, "10 PRINT 5")
	io = runtimeio.NewScript()
	if err := s.Run(io); err != nil || io.Text() != "5\n2\n" {
		t.Fatalf("after replace: %q %v", io.Text(), err)
	}

	submit(t, s, "20")
	io = runtimeio.NewScript()
	if err := s.Run(io); err != nil || io.Text() != "5\n" {
		t.Fatalf("after delete: %q %v", io.Text(), err)
	}
	if s.Store().Len() != 1 {
		t.Fatalf("expected one line, got %d", s.Store().Len())
	}
}

func TestLinkCached(t *testing.T) {
	s := New()
	submit(t, s, "10 PRINT 1")
	first, err := s.Link()
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	second, _ := s.Link()
	if first != second {
		t.Fatal("expected the cached link to be reused")
	}
	submit(t, s, "20 END")
	third, _ := s.Link()
	if third == first {
		t.Fatal("an edit must force a relink")
	}
}

func TestRuntimeErrorLine(t *testing.T) {
	s := New()
	submit(t, s, "10 LET A = 4", "20 REM", "30 PRINT A / (A - 4)")
	err := s.Run(runtimeio.NewScript())
	var re *fault.RuntimeError
	if !errors.As(err, &re) {
		t.Fatalf("expected runtime error, got %v", err)
	}
	if re.Line != 30 || fault.Label(err) != "DIVIDE BY ZERO" {
		t.Fatalf("unexpected fault %v %s", fault.Label(err), re.Where())
	}
}

func TestVariablesPersistAcrossRuns(t *testing.T) {
	s := New()
	submit(t, s, "10 PRINT B")
	if err := s.Run(runtimeio.NewScript()); !errors.Is(err, fault.ErrVariableNotDefined) {
		t.Fatalf("expected VARIABLE NOT DEFINED, got %v", err)
	}
	if err := s.Immediate("LET B = 3", runtimeio.NewScript()); err != nil {
		t.Fatalf("immediate: %v", err)
	}
	io := runtimeio.NewScript()
	if err := s.Run(io); err != nil || io.Text() != "3\n" {
		t.Fatalf("expected 3, got %q %v", io.Text(), err)
	}

	s.Clear()
	if s.Store().Len() != 0 {
		t.Fatal("Clear should drop the program")
	}
	if _, ok := s.Machine().Variables().Value("B"); ok {
		t.Fatal("Clear should drop variables")
	}
}

func TestImmediate(t *testing.T) {
	s := New()
	io := runtimeio.NewScript("8")
	if err := s.Immediate("INPUT X", io); err != nil {
		t.Fatalf("input: %v", err)
	}
	if err := s.Immediate("PRINT X + 1", io); err != nil {
		t.Fatalf("print: %v", err)
	}
	if io.Text() != "9\n" {
		t.Fatalf("unexpected output %q", io.Text())
	}
	for _, stmt := range []string{"GOTO 10", "END", "FOO"} {
		if err := s.Immediate(stmt, io); !errors.Is(err, fault.ErrSyntax) {
			t.Fatalf("%q: expected SYNTAX ERROR, got %v", stmt, err)
		}
	}
}

func TestAsm(t *testing.T) {
	s := New()
	submit(t, s, "10 LET A = 1 + 2")
	var out bytes.Buffer
	if err := s.Asm(&out); err != nil {
		t.Fatalf("asm: %v", err)
	}
	expected := "0\tPUSH\t%1\n1\tPUSH\t%2\n2\tADD\n3\tPOP\t$0\n"
	if out.String() != expected {
		t.Fatalf("wrong listing.\nwant=%q\ngot=%q", expected, out.String())
	}
}

func TestLoad(t *testing.T) {
	src := "10 LET A = 2\n\n20 PRINT A *\nPRINT 3\n30 PRINT A\n"
	s := New()
	errs, err := s.Load(strings.NewReader(src))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(errs) != 2 {
		t.Fatalf("expected 2 load errors, got %v", errs)
	}
	if errs[0].Line != 3 || !errors.Is(errs[0], fault.ErrSyntax) {
		t.Fatalf("unexpected first error %+v", errs[0])
	}
	if errs[1].Line != 4 || errs[1].Error() != "4: LINE NUMBER ERROR" {
		t.Fatalf("unexpected second error %v", errs[1])
	}
	if s.Store().Len() != 2 {
		t.Fatalf("expected 2 stored lines, got %d", s.Store().Len())
	}
}

func TestOnCompile(t *testing.T) {
	s := New()
	var seen []uint64
	s.OnCompile = func(n uint64, _ ast.Command) { seen = append(seen, n) }
	submit(t, s, "10 END", "5 REM")
	if len(seen) != 2 || seen[0] != 10 || seen[1] != 5 {
		t.Fatalf("unexpected hook calls %v", seen)
	}
}
