package lsp

import (
	"errors"
	"fmt"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"linebasic/internal/ast"
	"linebasic/internal/fault"
	"linebasic/internal/format"
	"linebasic/internal/lint"
	"linebasic/internal/program"
)

func lineRange(text string, row int) protocol.Range {
	lines := strings.Split(text, "\n")
	end := 0
	if row >= 1 && row <= len(lines) {
		end = utf16Len(strings.TrimRight(lines[row-1], "\r"))
	}
	return protocol.Range{
		Start: protocol.Position{Line: uint32(row - 1), Character: 0},
		End:   protocol.Position{Line: uint32(row - 1), Character: uint32(end)},
	}
}

// defining returns, per line number, the file line that defines it after
// replacements and deletions.
func defining(lines []program.SourceLine) map[uint64]program.SourceLine {
	defs := map[uint64]program.SourceLine{}
	for _, line := range lines {
		if !line.HasNumber {
			continue
		}
		if errors.Is(line.Err, fault.ErrEmptyCommand) {
			delete(defs, line.Number)
			continue
		}
		if line.Cmd == nil {
			continue
		}
		defs[line.Number] = line
	}
	return defs
}

// DocumentSymbols lists one symbol per program line.
func DocumentSymbols(doc *Document) []protocol.DocumentSymbol {
	defs := defining(doc.Lines)
	out := make([]protocol.DocumentSymbol, 0, len(defs))
	for _, line := range doc.Lines {
		def, ok := defs[line.Number]
		if !ok || def.Row != line.Row {
			continue
		}
		rng := lineRange(doc.Text, line.Row)
		sel := protocol.Range{
			Start: protocol.Position{Line: rng.Start.Line, Character: uint32(line.Indent)},
			End:   protocol.Position{Line: rng.Start.Line, Character: uint32(line.Indent + line.Digits)},
		}
		detail := line.Cmd.String()
		out = append(out, protocol.DocumentSymbol{
			Name:           fmt.Sprintf("%d", line.Number),
			Detail:         &detail,
			Kind:           protocol.SymbolKindKey,
			Range:          rng,
			SelectionRange: sel,
		})
	}
	return out
}

// DefinitionAt resolves the GOTO or IF target under pos to the line that
// defines it.
func DefinitionAt(doc *Document, pos protocol.Position) (protocol.Range, bool) {
	row := int(pos.Line) + 1
	defs := defining(doc.Lines)
	for _, line := range doc.Lines {
		if line.Row != row {
			continue
		}
		target, ok := ast.JumpTarget(line.Cmd)
		if !ok {
			return protocol.Range{}, false
		}
		start := line.Col(lint.TargetCol(line.Stmt)) - 1
		end := line.Indent + line.Digits + len(strings.TrimRight(line.Stmt, " \t\r\n\v\f"))
		if int(pos.Character) < start || int(pos.Character) > end {
			return protocol.Range{}, false
		}
		def, found := defs[target]
		if !found {
			return protocol.Range{}, false
		}
		return lineRange(doc.Text, def.Row), true
	}
	return protocol.Range{}, false
}

// Formatting returns the edit that rewrites doc in canonical form, or
// nothing when the file has errors or is already formatted.
func Formatting(doc *Document) []protocol.TextEdit {
	formatted, err := format.Format(doc.Text, format.Options{})
	if err != nil || formatted == doc.Text {
		return []protocol.TextEdit{}
	}
	return []protocol.TextEdit{{Range: documentRange(doc.Text), NewText: formatted}}
}
