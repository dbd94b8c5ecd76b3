package format

import (
	"errors"
	"testing"

	"linebasic/internal/fault"
)

func TestFormatCanonical(t *testing.T) {
	src := "30 END\n10   LET  X=(1+2)*3\n  20 IF X>2 THEN 30\n25 PRINT 1\n25\n5 REM   hello  \n"
	want := "5 REM hello\n10 LET X = (1 + 2) * 3\n20 IF X > 2 THEN 30\n30 END\n"
	got, err := Format(src, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Fatalf("unexpected output.\nwant=%q\ngot=%q", want, got)
	}
	again, err := Format(got, Options{})
	if err != nil || again != got {
		t.Fatalf("formatting must be stable, got %q %v", again, err)
	}
}

func TestFormatRenumber(t *testing.T) {
	src := "1 INPUT N\n2 IF N < 0 THEN 7\n3 PRINT N\n4 GOTO 1\n7 GOTO 99\n"
	want := "100 INPUT N\n105 IF N < 0 THEN 120\n110 PRINT N\n115 GOTO 100\n120 GOTO 99\n"
	got, err := Format(src, Options{Renumber: true, Start: 100, Step: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Fatalf("unexpected output.\nwant=%q\ngot=%q", want, got)
	}
}

func TestFormatErrors(t *testing.T) {
	_, err := Format("10 PRINT 1\n20 PRINT (\n", Options{})
	var fe *Error
	if !errors.As(err, &fe) || fe.Row != 2 || !errors.Is(err, fault.ErrSyntax) {
		t.Fatalf("expected syntax error on line 2, got %v", err)
	}
	if err.Error() != "line 2: SYNTAX ERROR" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if _, err := Format("PRINT 1\n", Options{}); !errors.Is(err, fault.ErrLineNumber) {
		t.Fatalf("expected LINE NUMBER ERROR, got %v", err)
	}
}
