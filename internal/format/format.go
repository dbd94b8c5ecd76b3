package format

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"linebasic/internal/ast"
	"linebasic/internal/fault"
	"linebasic/internal/program"
)

type Options struct {
	Renumber bool
	Start    uint64 // first number when renumbering; default 10
	Step     uint64 // gap between numbers when renumbering; default 10
}

// Error is the first line that kept a file from being formatted.
type Error struct {
	Row int
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %s", e.Row, fault.Label(e.Err))
}

func (e *Error) Unwrap() error { return e.Err }

// Format rewrites a program file in canonical form: lines in ascending
// order, replaced and deleted lines dropped, one space after the line
// number and canonical spacing inside each statement.
func Format(src string, opt Options) (string, error) {
	if opt.Start == 0 {
		opt.Start = 10
	}
	if opt.Step == 0 {
		opt.Step = 10
	}

	final := map[uint64]ast.Command{}
	for _, line := range program.ParseSource(src) {
		switch {
		case !line.HasNumber:
			return "", &Error{Row: line.Row, Err: fault.ErrLineNumber}
		case errors.Is(line.Err, fault.ErrEmptyCommand):
			delete(final, line.Number)
		case line.Err != nil:
			return "", &Error{Row: line.Row, Err: line.Err}
		default:
			final[line.Number] = line.Cmd
		}
	}

	numbers := make([]uint64, 0, len(final))
	for n := range final {
		numbers = append(numbers, n)
	}
	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })

	renum := map[uint64]uint64{}
	if opt.Renumber {
		next := opt.Start
		for _, n := range numbers {
			renum[n] = next
			next += opt.Step
		}
	}

	var out bytes.Buffer
	for _, n := range numbers {
		cmd := final[n]
		if opt.Renumber {
			n = renum[n]
			// jumps to missing lines keep their target
			if target, ok := ast.JumpTarget(cmd); ok {
				if moved, found := renum[target]; found {
					cmd = ast.Retarget(cmd, moved)
				}
			}
		}
		fmt.Fprintf(&out, "%d %s\n", n, cmd.String())
	}
	return out.String(), nil
}
