package lint

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"linebasic/internal/ast"
	"linebasic/internal/diag"
	"linebasic/internal/fault"
	"linebasic/internal/numlit"
	"linebasic/internal/program"
)

const (
	CodeSyntax        = "BL0001"
	CodeLineNumber    = "BL0002"
	CodeUndefinedJump = "BL0003"
	CodeUnassigned    = "BL0004"
	CodeDuplicate     = "BL0005"
)

type Runner struct {
	diags []diag.Diagnostic
	opts  Options
	// final is the program as loading the file would leave it.
	final map[uint64]program.SourceLine
}

func (r *Runner) report(sev diag.Severity, code string, row, col, length int, msg string) {
	if length < 1 {
		length = 1
	}
	r.diags = append(r.diags, diag.Diagnostic{
		Code:     code,
		Message:  msg,
		Severity: sev,
		Range:    diag.Range{Line: row, Col: col, Length: length},
	})
}

func (r *Runner) walk(lines []program.SourceLine) {
	for _, line := range lines {
		r.walkLine(line)
	}
	if r.opts.CheckJumps {
		r.checkJumps()
	}
	if r.opts.CheckUnassigned {
		r.checkUnassigned()
	}
}

func (r *Runner) walkLine(line program.SourceLine) {
	if !line.HasNumber {
		r.report(diag.SeverityError, CodeLineNumber, line.Row, line.Indent+1, 1, "missing line number")
		return
	}
	if errors.Is(line.Err, fault.ErrLineNumberTooLarge) {
		r.report(diag.SeverityError, CodeLineNumber, line.Row, line.Indent+1, line.Digits, "line number too large")
		return
	}
	if errors.Is(line.Err, fault.ErrEmptyCommand) {
		delete(r.final, line.Number)
		return
	}
	var se *fault.SyntaxError
	if errors.As(line.Err, &se) {
		r.report(diag.SeverityError, CodeSyntax, line.Row, line.Col(se.Col), 1, fault.Label(line.Err))
		return
	}
	if prev, ok := r.final[line.Number]; ok {
		r.report(diag.SeverityInfo, CodeDuplicate, line.Row, line.Indent+1, line.Digits,
			fmt.Sprintf("line %d replaces the one on file line %d", line.Number, prev.Row))
	}
	r.final[line.Number] = line
}

func (r *Runner) ordered() []program.SourceLine {
	out := make([]program.SourceLine, 0, len(r.final))
	for _, line := range r.final {
		out = append(out, line)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

func (r *Runner) checkJumps() {
	for _, line := range r.ordered() {
		target, ok := ast.JumpTarget(line.Cmd)
		if !ok {
			continue
		}
		if _, found := r.final[target]; found {
			continue
		}
		digits := strconv.FormatUint(target, 10)
		col := TargetCol(line.Stmt)
		r.report(diag.SeverityWarning, CodeUndefinedJump, line.Row, line.Col(col), len(digits),
			fmt.Sprintf("jump to undefined line %d", target))
	}
}

func (r *Runner) checkUnassigned() {
	lines := r.ordered()
	assigned := map[string]bool{}
	for _, line := range lines {
		if name, ok := ast.Assigned(line.Cmd); ok {
			assigned[name] = true
		}
	}
	reported := map[string]bool{}
	for _, line := range lines {
		for _, tok := range ast.ReadTokens(line.Cmd) {
			if assigned[tok.Literal] || reported[tok.Literal] {
				continue
			}
			reported[tok.Literal] = true
			r.report(diag.SeverityWarning, CodeUnassigned, line.Row, line.Col(tok.Col), len(tok.Literal),
				fmt.Sprintf("variable %s is read but never assigned", tok.Literal))
		}
	}
}

// TargetCol returns the 1-based column of the line number that ends a
// GOTO or IF statement.
func TargetCol(stmt string) int {
	s := strings.TrimRight(stmt, " \t\r\n\v\f")
	end := len(s)
	start := end
	for start > 0 && numlit.IsDigit(s[start-1]) {
		start--
	}
	if start == end {
		return 1
	}
	return start + 1
}
