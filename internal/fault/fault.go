package fault

import (
	"errors"
	"fmt"
)

// Every BASIC error prints as a fixed label; collaborators show it verbatim.
var (
	ErrEmptyCommand       = errors.New("EMPTY COMMAND")
	ErrSyntax             = errors.New("SYNTAX ERROR")
	ErrInvalidNumber      = errors.New("INVALID NUMBER")
	ErrVariableNotDefined = errors.New("VARIABLE NOT DEFINED")
	ErrDividedByZero      = errors.New("DIVIDE BY ZERO")
	ErrLineNumber         = errors.New("LINE NUMBER ERROR")
	ErrEndOfFile          = errors.New("END OF FILE")
	ErrLineNumberTooLarge = errors.New("LINE NUMBER TOO LARGE")
)

// SyntaxError is a compile-time failure. Col is the 1-based column in the
// statement text where the compiler gave up.
type SyntaxError struct {
	Col int
}

func (e *SyntaxError) Error() string { return ErrSyntax.Error() }

func (e *SyntaxError) Is(target error) bool { return target == ErrSyntax }

// RuntimeError wraps a runtime sentinel with the address that raised it.
// Line is the source line owning PC, or -1 when unknown. PC is -1 for
// faults raised without bytecode.
type RuntimeError struct {
	Err  error
	PC   int
	Line int64
}

func (e *RuntimeError) Error() string { return e.Err.Error() }

func (e *RuntimeError) Unwrap() error { return e.Err }

// Where renders the fault location for verbose output.
func (e *RuntimeError) Where() string {
	if e.Line < 0 {
		return fmt.Sprintf("at %d", e.PC)
	}
	if e.PC < 0 {
		return fmt.Sprintf("at line %d", e.Line)
	}
	return fmt.Sprintf("at %d (line %d)", e.PC, e.Line)
}

// Label returns the display text for err.
func Label(err error) string {
	if err == nil {
		return ""
	}
	for _, s := range []error{
		ErrEmptyCommand, ErrSyntax, ErrInvalidNumber, ErrVariableNotDefined,
		ErrDividedByZero, ErrLineNumber, ErrEndOfFile, ErrLineNumberTooLarge,
	} {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return err.Error()
}

// IsRuntime reports whether err aborts a run rather than a compile.
func IsRuntime(err error) bool {
	var re *RuntimeError
	return errors.As(err, &re)
}
