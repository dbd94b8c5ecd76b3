package lsp

import (
	"strings"

	"linebasic/internal/lexer"
	"linebasic/internal/token"
)

// SemanticTokensForText returns unencoded semantic tokens for a program
// file. Lines are classified token by token, so a line with a syntax error
// still gets colored up to and past the error.
func SemanticTokensForText(text string) []SemTok {
	var sem []SemTok
	for i, raw := range strings.Split(text, "\n") {
		sem = append(sem, lineTokens(i+1, strings.TrimRight(raw, "\r"))...)
	}
	return sem
}

func lineTokens(row int, raw string) []SemTok {
	trimmed := strings.TrimLeft(raw, " \t")
	base := len(raw) - len(trimmed)

	var out []SemTok
	digits := 0
	for digits < len(trimmed) && trimmed[digits] >= '0' && trimmed[digits] <= '9' {
		digits++
	}
	if digits > 0 {
		out = append(out, SemTok{Line: row, Col: base + 1, Length: digits, Type: ttNumber, Mods: modDecl})
	}
	base += digits

	l := lexer.New(trimmed[digits:])
	for l.SkipBlank() {
		col := l.Col()
		tok, ok := l.NextToken()
		if !ok {
			tok, ok = l.ReadComparator()
		}
		if !ok {
			l.Skip()
			continue
		}
		length := l.Col() - col
		switch {
		case tok.Type == token.KEYWORD:
			out = append(out, SemTok{Line: row, Col: base + col, Length: length, Type: ttKeyword})
			if tok.Literal == token.REM {
				if l.SkipBlank() {
					rest := strings.TrimRight(l.Rest(), " \t")
					out = append(out, SemTok{Line: row, Col: base + l.Col(), Length: len(rest), Type: ttComment})
				}
				return out
			}
		case tok.Type == token.INT:
			out = append(out, SemTok{Line: row, Col: base + col, Length: length, Type: ttNumber})
		case tok.Type == token.IDENT:
			out = append(out, SemTok{Line: row, Col: base + col, Length: length, Type: ttVariable})
		default:
			out = append(out, SemTok{Line: row, Col: base + col, Length: length, Type: ttOperator})
		}
	}
	return out
}
