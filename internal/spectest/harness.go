// Package spectest runs whole programs for the conformance suite. A case
// is program text plus scripted input; the result is what PRINT wrote,
// the error label the run stopped with and the final variables.
package spectest

import (
	"os"
	"strings"
	"testing"

	"linebasic/internal/config"
	"linebasic/internal/fault"
	"linebasic/internal/runtimeio"
	"linebasic/internal/session"
)

type Mode string

const (
	ModeInterpreter Mode = "interp"
	ModeVM          Mode = "vm"
)

// DefaultMaxSteps keeps a runaway case from hanging the suite.
const DefaultMaxSteps = 100000

type Options struct {
	Mode     Mode
	Source   string
	Input    []string
	MaxSteps int64
	// Dir runs Source as the entry of a project directory with a manifest
	// instead of loading it directly.
	Dir bool
}

type Expectation struct {
	Stdout      string
	Err         string
	ErrContains string
	Vars        map[string]int64
}

type Result struct {
	Stdout string
	Err    string
	Vars   map[string]int64
	Unread int
}

func Run(t *testing.T, opts Options) Result {
	t.Helper()

	src := opts.Source
	if opts.Dir {
		src = readProject(t, opts.Source)
	}

	sess := session.New()
	errs, err := sess.Load(strings.NewReader(src))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(errs) > 0 {
		return Result{Err: fault.Label(errs[0].Err)}
	}

	max := opts.MaxSteps
	if max == 0 {
		max = DefaultMaxSteps
	}

	io := runtimeio.NewScript(opts.Input...)
	switch opts.Mode {
	case ModeVM:
		sess.SetMaxSteps(max)
		err = sess.Run(io)
	case ModeInterpreter:
		err = sess.Interpret(io, max)
	default:
		t.Fatalf("unknown mode: %q", opts.Mode)
	}

	res := Result{
		Stdout: io.Text(),
		Err:    fault.Label(err),
		Vars:   map[string]int64{},
		Unread: io.Remaining(),
	}
	vars := sess.Machine().Variables()
	for _, name := range vars.Names() {
		if v, ok := vars.Value(name); ok {
			res.Vars[name] = v
		}
	}
	return res
}

func Assert(t *testing.T, res Result, exp Expectation) {
	t.Helper()

	ok, reason, err := MatchStdout(res.Stdout, StdoutExpectation{
		Mode:  StdoutExact,
		Value: exp.Stdout,
	}, "")
	if err != nil {
		t.Fatalf("stdout check failed: %v", err)
	}
	if !ok {
		t.Fatal(reason)
	}

	wantErr := exp.Err != "" || exp.ErrContains != ""
	if wantErr && res.Err == "" {
		t.Fatalf("expected error %q, got none", exp.Err+exp.ErrContains)
	}
	if !wantErr && res.Err != "" {
		t.Fatalf("unexpected error: %q", res.Err)
	}
	if exp.Err != "" && res.Err != exp.Err {
		t.Fatalf("error mismatch: expected %q, got %q", exp.Err, res.Err)
	}
	if exp.ErrContains != "" && !strings.Contains(res.Err, exp.ErrContains) {
		t.Fatalf("error mismatch: expected to contain %q, got %q", exp.ErrContains, res.Err)
	}

	for name, want := range exp.Vars {
		got, ok := res.Vars[name]
		if !ok {
			t.Fatalf("variable %s not defined", name)
		}
		if got != want {
			t.Fatalf("variable %s = %d, want %d", name, got, want)
		}
	}
}

// readProject lays source out as a project directory and reads the entry
// back through its manifest.
func readProject(t *testing.T, source string) string {
	t.Helper()

	dir := t.TempDir()
	if _, err := config.Init(dir, "case"); err != nil {
		t.Fatalf("init project: %v", err)
	}
	entry, _, err := config.ResolveEntry(dir)
	if err != nil {
		t.Fatalf("resolve entry: %v", err)
	}
	if err := os.WriteFile(entry, []byte(source), 0o644); err != nil {
		t.Fatalf("failed to write entry: %v", err)
	}
	b, err := os.ReadFile(entry)
	if err != nil {
		t.Fatalf("failed to read entry: %v", err)
	}
	return string(b)
}

func ExpectBoth(exp Expectation) map[Mode]Expectation {
	return map[Mode]Expectation{
		ModeInterpreter: exp,
		ModeVM:          exp,
	}
}

func Expect(mode Mode, exp Expectation) map[Mode]Expectation {
	return map[Mode]Expectation{mode: exp}
}
