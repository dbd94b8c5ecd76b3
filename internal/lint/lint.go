package lint

import (
	"linebasic/internal/diag"
	"linebasic/internal/program"
)

type Options struct {
	CheckJumps      bool
	CheckUnassigned bool
}

func DefaultOptions() Options {
	return Options{CheckJumps: true, CheckUnassigned: true}
}

type Linter struct {
	opts Options
}

func New() *Linter {
	return &Linter{opts: DefaultOptions()}
}

func NewWithOptions(opts Options) *Linter {
	return &Linter{opts: opts}
}

// Check lints a whole program file.
func Check(src string) []diag.Diagnostic {
	return New().Check(src)
}

func (l *Linter) Check(src string) []diag.Diagnostic {
	return l.Run(program.ParseSource(src))
}

// Run lints already parsed lines. The diagnostics come back sorted by
// position.
func (l *Linter) Run(lines []program.SourceLine) []diag.Diagnostic {
	r := &Runner{opts: l.opts, final: map[uint64]program.SourceLine{}}
	r.walk(lines)
	diag.Sort(r.diags)
	return r.diags
}
