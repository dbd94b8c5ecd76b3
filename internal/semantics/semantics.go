package semantics

import (
	"fmt"

	"linebasic/internal/fault"
	"linebasic/internal/token"
)

// Arith applies an arithmetic operator with int64 wraparound. Division
// truncates toward zero; a zero divisor is fault.ErrDividedByZero.
func Arith(op token.Type, left, right int64) (int64, error) {
	switch op {
	case token.PLUS:
		return left + right, nil
	case token.MINUS:
		return left - right, nil
	case token.STAR:
		return left * right, nil
	case token.SLASH:
		if right == 0 {
			return 0, fault.ErrDividedByZero
		}
		return left / right, nil
	}
	return 0, fmt.Errorf("unknown operator: %s", op)
}

// Compare decides an IF condition the way the bytecode does: by the sign of
// a wrapping subtraction. `<` is `>` with the operands swapped.
func Compare(cmp token.Type, left, right int64) (bool, error) {
	switch cmp {
	case token.ASSIGN:
		return left-right == 0, nil
	case token.GT:
		return left-right > 0, nil
	case token.LT:
		return right-left > 0, nil
	}
	return false, fmt.Errorf("unknown comparator: %s", cmp)
}
