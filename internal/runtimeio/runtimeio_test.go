package runtimeio

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"linebasic/internal/fault"
)

func TestConsoleReprompts(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(strings.NewReader("abc\n12x\n  -42 \n"), &out)
	v, err := c.Input()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != -42 {
		t.Fatalf("expected -42, got %d", v)
	}
	want := " ? INVALID NUMBER\n ? INVALID NUMBER\n ? "
	if out.String() != want {
		t.Fatalf("unexpected console text %q", out.String())
	}
}

func TestConsoleEndOfFile(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(strings.NewReader("7"), &out)
	if v, err := c.Input(); err != nil || v != 7 {
		t.Fatalf("expected 7 from an unterminated last line, got %d, %v", v, err)
	}
	if _, err := c.Input(); !errors.Is(err, fault.ErrEndOfFile) {
		t.Fatalf("expected END OF FILE, got %v", err)
	}
}

func TestConsoleOutput(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(strings.NewReader(""), &out)
	c.Output(3)
	c.Output(-9)
	if out.String() != "3\n-9\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestScript(t *testing.T) {
	s := NewScript("5", "five")
	if v, err := s.Input(); err != nil || v != 5 {
		t.Fatalf("expected 5, got %d, %v", v, err)
	}
	if _, err := s.Input(); !errors.Is(err, fault.ErrInvalidNumber) {
		t.Fatalf("expected INVALID NUMBER, got %v", err)
	}
	if _, err := s.Input(); !errors.Is(err, fault.ErrEndOfFile) {
		t.Fatalf("expected END OF FILE, got %v", err)
	}
	s.Output(1)
	s.Output(2)
	if s.Text() != "1\n2\n" || s.Remaining() != 0 {
		t.Fatalf("unexpected script state %q %d", s.Text(), s.Remaining())
	}
}
