// Package screen is the text model behind the graphical console: a
// scrolling buffer of printed lines plus the line being typed.
package screen

import (
	"errors"
	"strconv"
	"sync"

	"linebasic/internal/fault"
	"linebasic/internal/numlit"
)

// Cursor is drawn after the edit line while input is pending.
const Cursor = "_"

type Screen struct {
	mu      sync.Mutex
	rows    int
	lines   []string
	edit    []rune
	prompt  string
	editing bool
}

// New returns a screen that keeps the last rows lines.
func New(rows int) *Screen {
	if rows < 1 {
		rows = 1
	}
	return &Screen{rows: rows}
}

func (s *Screen) Println(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLine(text)
}

func (s *Screen) appendLine(text string) {
	s.lines = append(s.lines, text)
	if over := len(s.lines) - s.rows; over > 0 {
		s.lines = append(s.lines[:0], s.lines[over:]...)
	}
}

// BeginInput shows prompt and starts collecting typed characters.
func (s *Screen) BeginInput(prompt string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompt = prompt
	s.edit = s.edit[:0]
	s.editing = true
}

func (s *Screen) Editing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editing
}

// Type appends printable ASCII to the edit line. It is ignored while no
// input is pending.
func (s *Screen) Type(r rune) {
	if r < ' ' || r > '~' {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editing {
		s.edit = append(s.edit, r)
	}
}

func (s *Screen) Backspace() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editing && len(s.edit) > 0 {
		s.edit = s.edit[:len(s.edit)-1]
	}
}

// Submit ends input, echoing the prompt and the typed text into the buffer.
func (s *Screen) Submit() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.editing {
		return "", false
	}
	line := string(s.edit)
	s.appendLine(s.prompt + line)
	s.edit = s.edit[:0]
	s.editing = false
	return line, true
}

func (s *Screen) endInput() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editing = false
}

// Snapshot returns the visible rows, the edit line last.
func (s *Screen) Snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]string(nil), s.lines...)
	if s.editing {
		out = append(out, s.prompt+string(s.edit)+Cursor)
		if len(out) > s.rows {
			out = out[len(out)-s.rows:]
		}
	}
	return out
}

// ChanIO connects a running program to the screen. Input waits for a line
// on the channel; a closed channel is END OF FILE.
type ChanIO struct {
	screen *Screen
	lines  <-chan string
	Prompt string
}

func NewChanIO(s *Screen, lines <-chan string) *ChanIO {
	return &ChanIO{screen: s, lines: lines, Prompt: "? "}
}

func (c *ChanIO) Input() (int64, error) {
	for {
		c.screen.BeginInput(c.Prompt)
		line, ok := <-c.lines
		c.screen.endInput()
		if !ok {
			return 0, fault.ErrEndOfFile
		}
		v, err := numlit.ParseInput(line)
		if errors.Is(err, fault.ErrInvalidNumber) {
			c.screen.Println(fault.Label(err))
			continue
		}
		return v, err
	}
}

func (c *ChanIO) Output(v int64) {
	c.screen.Println(strconv.FormatInt(v, 10))
}
