package numlit

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"linebasic/internal/fault"
)

func IsDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// DigitRun returns the length of the leading run of ASCII digits in s.
func DigitRun(s string) int {
	n := 0
	for n < len(s) && IsDigit(s[n]) {
		n++
	}
	return n
}

// ParseDecimal parses a run of ASCII digits. Values beyond MaxInt64
// saturate instead of failing.
func ParseDecimal(digits string) (int64, bool) {
	if digits == "" || DigitRun(digits) != len(digits) {
		return 0, false
	}
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && numErr.Err == strconv.ErrRange {
			return math.MaxInt64, true
		}
		return 0, false
	}
	return v, true
}

// ParseInput parses one line typed at an INPUT prompt: optional blanks, an
// optional sign, digits, optional trailing blanks. Anything else, including
// values outside int64, is fault.ErrInvalidNumber.
func ParseInput(line string) (int64, error) {
	s := strings.TrimSpace(line)
	if s == "" {
		return 0, fault.ErrInvalidNumber
	}
	body := s
	if body[0] == '+' || body[0] == '-' {
		body = body[1:]
	}
	if body == "" || DigitRun(body) != len(body) {
		return 0, fault.ErrInvalidNumber
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fault.ErrInvalidNumber
	}
	return v, nil
}

// ParseLineNumber splits a program line into its leading line number and
// the statement text that follows it. ok is false when the line does not
// start with a digit. A number that does not fit an unsigned 64-bit value
// yields fault.ErrLineNumberTooLarge.
func ParseLineNumber(line string) (n uint64, rest string, ok bool, err error) {
	end := DigitRun(line)
	if end == 0 {
		return 0, line, false, nil
	}
	n, err = strconv.ParseUint(line[:end], 10, 64)
	if err != nil {
		return 0, line, true, fault.ErrLineNumberTooLarge
	}
	return n, line[end:], true, nil
}
