package runtimeio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"linebasic/internal/fault"
	"linebasic/internal/numlit"
)

// DefaultPrompt is what INPUT prints before reading a number.
const DefaultPrompt = " ? "

func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Console is the terminal side of PRINT and INPUT. A line that is not a
// number prints INVALID NUMBER and prompts again.
type Console struct {
	in     *bufio.Reader
	out    io.Writer
	Prompt string
}

func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{
		in:     bufio.NewReader(in),
		out:    out,
		Prompt: DefaultPrompt,
	}
}

// Reader exposes the buffered input so a REPL can share it with INPUT.
func (c *Console) Reader() *bufio.Reader { return c.in }

func (c *Console) Input() (int64, error) {
	for {
		if c.Prompt != "" {
			_, _ = fmt.Fprint(c.out, c.Prompt)
		}
		line, err := readLine(c.in)
		if err != nil {
			return 0, err
		}
		v, err := numlit.ParseInput(line)
		if errors.Is(err, fault.ErrInvalidNumber) {
			_, _ = fmt.Fprintln(c.out, fault.Label(err))
			continue
		}
		return v, err
	}
}

func (c *Console) Output(v int64) {
	_, _ = fmt.Fprintln(c.out, v)
}

// ReadLine reads one line without its terminator. A final line without a
// newline is returned as is; nothing left is fault.ErrEndOfFile.
func ReadLine(r *bufio.Reader) (string, error) {
	return readLine(r)
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			if line == "" {
				return "", fault.ErrEndOfFile
			}
			return strings.TrimRight(line, "\r"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Script is a canned IO for tests and batch runs: Input consumes lines in
// order and Output records every value.
type Script struct {
	Lines   []string
	Outputs []int64
	next    int
}

func NewScript(lines ...string) *Script {
	return &Script{Lines: lines}
}

func (s *Script) Input() (int64, error) {
	if s.next >= len(s.Lines) {
		return 0, fault.ErrEndOfFile
	}
	line := s.Lines[s.next]
	s.next++
	return numlit.ParseInput(line)
}

func (s *Script) Output(v int64) {
	s.Outputs = append(s.Outputs, v)
}

// Text renders the outputs the way a Console would print them.
func (s *Script) Text() string {
	var b strings.Builder
	for _, v := range s.Outputs {
		fmt.Fprintln(&b, v)
	}
	return b.String()
}

// Remaining reports how many input lines were not consumed.
func (s *Script) Remaining() int {
	return len(s.Lines) - s.next
}
