package lsp

import "sort"

// Token types, in legend order.
const (
	ttKeyword = iota
	ttNumber
	ttVariable
	ttOperator
	ttComment
)

// Token modifiers, as bits.
const (
	modDecl = 1 << iota
)

// Legend lists the token type and modifier names the server advertises.
var (
	TokenTypes     = []string{"keyword", "number", "variable", "operator", "comment"}
	TokenModifiers = []string{"declaration"}
)

// SemTok is an unencoded semantic token with 1-based position.
type SemTok struct {
	Line   int
	Col    int
	Length int
	Type   int
	Mods   int
}

func EncodeSemanticTokens(toks []SemTok) []uint32 {
	sort.Slice(toks, func(i, j int) bool {
		if toks[i].Line != toks[j].Line {
			return toks[i].Line < toks[j].Line
		}
		return toks[i].Col < toks[j].Col
	})

	var data []uint32
	prevLine := 1
	prevCol := 1

	for _, t := range toks {
		if t.Length <= 0 {
			continue
		}
		deltaLine := t.Line - prevLine
		deltaStart := t.Col - 1
		if deltaLine == 0 {
			deltaStart = t.Col - prevCol
		}

		data = append(data,
			uint32(deltaLine),
			uint32(deltaStart),
			uint32(t.Length),
			uint32(t.Type),
			uint32(t.Mods),
		)

		prevLine = t.Line
		prevCol = t.Col
	}

	return data
}
