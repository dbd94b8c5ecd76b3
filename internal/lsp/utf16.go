package lsp

import (
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// utf16Len counts s in UTF-16 code units, the unit LSP columns are measured
// in. Runes outside the BMP take a surrogate pair.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n++
		if r > 0xffff {
			n++
		}
	}
	return n
}

// documentRange spans text from the first column to just past its last
// character, so an edit over it replaces the whole file.
func documentRange(text string) protocol.Range {
	last := text[strings.LastIndexByte(text, '\n')+1:]
	return protocol.Range{
		End: protocol.Position{
			Line:      uint32(strings.Count(text, "\n")),
			Character: uint32(utf16Len(last)),
		},
	}
}
