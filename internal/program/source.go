package program

import (
	"strings"

	"linebasic/internal/ast"
	"linebasic/internal/compiler"
	"linebasic/internal/numlit"
)

// SourceLine is one non-blank line of a program file after compiling it.
type SourceLine struct {
	Row       int // 1-based file line
	Indent    int // leading blank bytes
	HasNumber bool
	Number    uint64
	Digits    int
	Stmt      string
	Cmd       ast.Command
	// Err is nil, fault.ErrEmptyCommand for a bare number, a
	// *fault.SyntaxError, or fault.ErrLineNumberTooLarge.
	Err error
}

// Col converts a 1-based statement column into a 1-based file column.
func (l SourceLine) Col(stmtCol int) int {
	return l.Indent + l.Digits + stmtCol
}

// ParseSource splits a program file into lines and compiles each one.
func ParseSource(src string) []SourceLine {
	var out []SourceLine
	comp := compiler.New()
	for i, raw := range strings.Split(src, "\n") {
		raw = strings.TrimRight(raw, "\r")
		if strings.TrimSpace(raw) == "" {
			continue
		}
		trimmed := strings.TrimLeft(raw, " \t")
		line := SourceLine{Row: i + 1, Indent: len(raw) - len(trimmed)}

		n, rest, ok, err := numlit.ParseLineNumber(trimmed)
		line.HasNumber = ok
		line.Number = n
		line.Digits = numlit.DigitRun(trimmed)
		line.Stmt = rest
		if !ok || err != nil {
			line.Err = err
			out = append(out, line)
			continue
		}
		line.Cmd, line.Err = comp.Compile(rest)
		out = append(out, line)
	}
	return out
}
