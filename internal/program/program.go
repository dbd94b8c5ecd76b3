package program

import (
	"fmt"
	"io"

	"github.com/google/btree"

	"linebasic/internal/ast"
)

// Line is one stored program line. Text is the statement exactly as it was
// typed after the line number.
type Line struct {
	Number uint64
	Text   string
	Cmd    ast.Command
}

func (l Line) Less(than btree.Item) bool {
	return l.Number < than.(Line).Number
}

// Store keeps program lines ordered by number. Setting an existing number
// replaces the line.
type Store struct {
	lines *btree.BTree
}

func New() *Store {
	return &Store{lines: btree.New(4)}
}

func (s *Store) Set(n uint64, text string, cmd ast.Command) {
	s.lines.ReplaceOrInsert(Line{Number: n, Text: text, Cmd: cmd})
}

// Delete removes line n and reports whether it existed.
func (s *Store) Delete(n uint64) bool {
	return s.lines.Delete(Line{Number: n}) != nil
}

func (s *Store) Get(n uint64) (Line, bool) {
	item := s.lines.Get(Line{Number: n})
	if item == nil {
		return Line{}, false
	}
	return item.(Line), true
}

// Ascend calls fn for every line in ascending order until fn returns false.
func (s *Store) Ascend(fn func(n uint64, cmd ast.Command) bool) {
	s.lines.Ascend(func(item btree.Item) bool {
		line := item.(Line)
		return fn(line.Number, line.Cmd)
	})
}

// AscendFrom returns the first line whose number is at least n.
func (s *Store) AscendFrom(n uint64) (Line, bool) {
	var (
		line  Line
		found bool
	)
	s.lines.AscendGreaterOrEqual(Line{Number: n}, func(item btree.Item) bool {
		line = item.(Line)
		found = true
		return false
	})
	return line, found
}

// Next returns the line after n.
func (s *Store) Next(n uint64) (Line, bool) {
	if n == ^uint64(0) {
		return Line{}, false
	}
	return s.AscendFrom(n + 1)
}

// Lines returns every line in order.
func (s *Store) Lines() []Line {
	out := make([]Line, 0, s.lines.Len())
	s.lines.Ascend(func(item btree.Item) bool {
		out = append(out, item.(Line))
		return true
	})
	return out
}

// List writes the program the way LIST shows it: number then text.
func (s *Store) List(w io.Writer) error {
	var err error
	s.lines.Ascend(func(item btree.Item) bool {
		line := item.(Line)
		_, err = fmt.Fprintf(w, "%d%s\n", line.Number, line.Text)
		return err == nil
	})
	return err
}

func (s *Store) Len() int { return s.lines.Len() }

func (s *Store) Clear() {
	s.lines.Clear(false)
}
