package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeProgram(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func runCLI(stdin string, args ...string) (int, string, string) {
	var out, errOut bytes.Buffer
	code := run(args, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRunProgram(t *testing.T) {
	path := writeProgram(t, t.TempDir(), "double.bas", "10 INPUT A\n20 PRINT A * 2\n")

	for _, args := range [][]string{{"run", path}, {"run", "-interp", path}} {
		code, out, errOut := runCLI("x\n21\n", args...)
		if code != 0 {
			t.Fatalf("%v: exit %d, stderr %q", args, code, errOut)
		}
		if out != " ? INVALID NUMBER\n ? 42\n" {
			t.Fatalf("%v: unexpected output %q", args, out)
		}
	}
}

func TestRunReportsFaultLine(t *testing.T) {
	path := writeProgram(t, t.TempDir(), "div.bas", "10 PRINT 7\n20 PRINT 1 / 0\n")

	code, out, errOut := runCLI("", "run", path)
	if code != 1 || out != "7\n" {
		t.Fatalf("exit %d, output %q", code, out)
	}
	if !strings.HasPrefix(errOut, "DIVIDE BY ZERO at ") || !strings.Contains(errOut, "(line 20)") {
		t.Fatalf("unexpected report %q", errOut)
	}

	code, _, errOut = runCLI("", "run", "-interp", path)
	if code != 1 || errOut != "DIVIDE BY ZERO at line 20\n" {
		t.Fatalf("interp: exit %d, report %q", code, errOut)
	}
}

func TestRunStepLimitFromManifest(t *testing.T) {
	dir := t.TempDir()
	writeProgram(t, dir, "basic.toml", "entry = \"loop.bas\"\nmax_steps = \"20\"\n")
	writeProgram(t, dir, "loop.bas", "10 GOTO 10\n")

	code, _, errOut := runCLI("", "run", dir)
	if code != 1 || !strings.Contains(errOut, "STEP LIMIT EXCEEDED (20)") {
		t.Fatalf("exit %d, stderr %q", code, errOut)
	}

	code, _, errOut = runCLI("", "run", "-max-steps", "5", dir)
	if code != 1 || !strings.Contains(errOut, "STEP LIMIT EXCEEDED (5)") {
		t.Fatalf("flag must override manifest: exit %d, stderr %q", code, errOut)
	}
}

func TestRunRejectsBadLines(t *testing.T) {
	path := writeProgram(t, t.TempDir(), "bad.bas", "10 PRINT 1\nPRINT 2\n30 PRINT (\n")

	code, out, errOut := runCLI("", "run", path)
	if code != 1 || out != "" {
		t.Fatalf("exit %d, output %q", code, out)
	}
	for _, want := range []string{"2: LINE NUMBER ERROR", "3: SYNTAX ERROR", "2 bad lines"} {
		if !strings.Contains(errOut, want) {
			t.Fatalf("stderr %q is missing %q", errOut, want)
		}
	}
}

func TestAsm(t *testing.T) {
	path := writeProgram(t, t.TempDir(), "let.bas", "10 LET A = 1 + 2\n")

	code, out, errOut := runCLI("", "asm", path)
	if code != 0 {
		t.Fatalf("exit %d, stderr %q", code, errOut)
	}
	want := "0\tPUSH\t%1\n1\tPUSH\t%2\n2\tADD\n3\tPOP\t$0\n"
	if out != want {
		t.Fatalf("want=%q\ngot=%q", want, out)
	}
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	writeProgram(t, dir, "ok.bas", "10 PRINT 1\n")
	writeProgram(t, dir, "notes.txt", "not a program\n")
	bad := writeProgram(t, dir, "bad.bas", "10 PRINT (1\n20 GOTO 99\n")

	code, out, _ := runCLI("", "check", dir)
	if code != 1 {
		t.Fatalf("expected failure, got exit %d", code)
	}
	if !strings.Contains(out, bad+":1:") || !strings.Contains(out, "BL0001") || !strings.Contains(out, "BL0003") {
		t.Fatalf("unexpected report %q", out)
	}
	if strings.Contains(out, "notes.txt") {
		t.Fatalf("only .bas files are checked: %q", out)
	}

	if code, out, _ := runCLI("", "check", filepath.Join(dir, "ok.bas")); code != 0 || out != "" {
		t.Fatalf("clean file: exit %d, output %q", code, out)
	}
}

func TestFmt(t *testing.T) {
	path := writeProgram(t, t.TempDir(), "messy.bas", "20 END\n10 PRINT  1+2\n")

	code, out, errOut := runCLI("", "fmt", path)
	if code != 0 {
		t.Fatalf("exit %d, stderr %q", code, errOut)
	}
	if out != "10 PRINT 1 + 2\n20 END\n" {
		t.Fatalf("unexpected output %q", out)
	}

	code, out, _ = runCLI("", "fmt", "-w", "-renum", "-start", "100", path)
	if code != 0 || out != "formatted "+path+"\n" {
		t.Fatalf("exit %d, output %q", code, out)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(b) != "100 PRINT 1 + 2\n110 END\n" {
		t.Fatalf("unexpected file %q", string(b))
	}
}

func TestBuildAndExec(t *testing.T) {
	dir := t.TempDir()
	path := writeProgram(t, dir, "double.bas", "10 INPUT A\n20 PRINT A * 2\n")
	img := filepath.Join(dir, "double.bbc")

	code, out, errOut := runCLI("", "build", "-o", img, path)
	if code != 0 {
		t.Fatalf("build: exit %d, stderr %q", code, errOut)
	}
	if !strings.Contains(out, "6 instructions, 1 variables") {
		t.Fatalf("unexpected build report %q", out)
	}

	code, out, errOut = runCLI("-4\n", "exec", img)
	if code != 0 || out != " ? -8\n" {
		t.Fatalf("exec: exit %d, output %q, stderr %q", code, out, errOut)
	}

	writeProgram(t, dir, "junk.bbc", "junk")
	if code, _, _ := runCLI("", "exec", filepath.Join(dir, "junk.bbc")); code != 1 {
		t.Fatalf("a bad image must fail, got exit %d", code)
	}
}

func TestInit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "hello")

	code, out, errOut := runCLI("", "init", dir)
	if code != 0 {
		t.Fatalf("exit %d, stderr %q", code, errOut)
	}
	if strings.Count(out, "created ") != 2 {
		t.Fatalf("unexpected output %q", out)
	}
	b, err := os.ReadFile(filepath.Join(dir, "basic.toml"))
	if err != nil || !strings.Contains(string(b), `name = "hello"`) {
		t.Fatalf("manifest %q %v", string(b), err)
	}

	code, out, _ = runCLI("", "run", dir)
	if code != 0 || out != "1\n2\n3\n" {
		t.Fatalf("starter program: exit %d, output %q", code, out)
	}

	if _, out, _ := runCLI("", "init", dir); !strings.Contains(out, "already initialized") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestReplFromPipe(t *testing.T) {
	code, out, _ := runCLI("10 PRINT 6 * 7\nRUN\nQUIT\n", "repl")
	if code != 0 || out != "42\n" {
		t.Fatalf("exit %d, output %q", code, out)
	}
}

func TestUnknownCommand(t *testing.T) {
	if code, _, errOut := runCLI("", "frobnicate"); code != 2 || !strings.Contains(errOut, "unknown command") {
		t.Fatalf("exit %d, stderr %q", code, errOut)
	}
}
