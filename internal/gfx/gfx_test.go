package gfx

import (
	"errors"
	"strings"
	"testing"

	"linebasic/internal/fault"
	"linebasic/internal/gfx/screen"
)

func newConsole() *console {
	return &console{
		screen: screen.New(4),
		lines:  make(chan string, 1),
		done:   make(chan error, 1),
		status: "RUNNING",
	}
}

func TestResultWhileProgramStillRunning(t *testing.T) {
	c := newConsole()
	if err := c.result(); !errors.Is(err, ErrInterrupted) {
		t.Fatalf("expected ErrInterrupted, got %v", err)
	}
	if c.finished {
		t.Fatalf("console should not be marked finished")
	}
}

func TestResultCollectsLateFinish(t *testing.T) {
	c := newConsole()
	c.done <- nil
	if err := c.result(); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if !strings.HasPrefix(c.status, "DONE") {
		t.Fatalf("unexpected status %q", c.status)
	}
}

func TestResultReportsProgramError(t *testing.T) {
	c := newConsole()
	c.finish(fault.ErrDividedByZero)
	if err := c.result(); !errors.Is(err, fault.ErrDividedByZero) {
		t.Fatalf("expected ErrDividedByZero, got %v", err)
	}
	if got := strings.Join(c.screen.Snapshot(), "\n"); !strings.Contains(got, fault.Label(fault.ErrDividedByZero)) {
		t.Fatalf("label not printed: %q", got)
	}
	if !strings.HasPrefix(c.status, "STOPPED") {
		t.Fatalf("unexpected status %q", c.status)
	}
}
