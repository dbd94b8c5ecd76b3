package lexer

import (
	"math"
	"testing"

	"linebasic/internal/token"
)

func TestLexer_ExpressionTokens(t *testing.T) {
	input := `(A1 + 23) * b -	7 / X THEN 100`

	tests := []struct {
		typ token.Type
		lit string
		col int
	}{
		{token.LPAREN, "(", 1},
		{token.IDENT, "A1", 2},
		{token.PLUS, "+", 5},
		{token.INT, "23", 7},
		{token.RPAREN, ")", 9},
		{token.STAR, "*", 11},
		{token.IDENT, "b", 13},
		{token.MINUS, "-", 15},
		{token.INT, "7", 17},
		{token.SLASH, "/", 19},
		{token.IDENT, "X", 21},
		{token.KEYWORD, "THEN", 23},
		{token.INT, "100", 28},
	}

	l := New(input)
	for i, tt := range tests {
		tok, ok := l.NextToken()
		if !ok {
			t.Fatalf("tests[%d] - expected a token, got none (rest=%q)", i, l.Rest())
		}
		if tok.Type != tt.typ {
			t.Fatalf("tests[%d] - wrong type. expected=%q got=%q", i, tt.typ, tok.Type)
		}
		if tok.String() != tt.lit {
			t.Fatalf("tests[%d] - wrong literal. expected=%q got=%q", i, tt.lit, tok.String())
		}
		if tok.Col != tt.col {
			t.Fatalf("tests[%d] - wrong col. expected=%d got=%d", i, tt.col, tok.Col)
		}
	}
	if _, ok := l.NextToken(); ok {
		t.Fatal("expected end of input")
	}
	if !l.AtEnd() {
		t.Fatal("expected AtEnd after last token")
	}
}

func TestLexer_ComparatorIsNotAnExpressionToken(t *testing.T) {
	l := New("A = 3")
	if tok, ok := l.NextToken(); !ok || tok.Type != token.IDENT {
		t.Fatalf("expected identifier, got %v %v", tok, ok)
	}
	if _, ok := l.NextToken(); ok {
		t.Fatal("comparator must not be read as an expression token")
	}
	if l.Rest() != " = 3" && l.Rest() != "= 3" {
		t.Fatalf("comparator must stay unread, rest=%q", l.Rest())
	}
	cmp, ok := l.ReadComparator()
	if !ok || cmp.Type != token.ASSIGN {
		t.Fatalf("expected '=', got %v", cmp)
	}
}

func TestLexer_NumberSaturates(t *testing.T) {
	l := New("123456789012345678901234567890")
	tok, ok := l.ReadNumber()
	if !ok || tok.Value != math.MaxInt64 {
		t.Fatalf("expected saturated literal, got %d", tok.Value)
	}
}

func TestLexer_Keywords(t *testing.T) {
	for _, kw := range []string{"END", "GOTO", "IF", "INPUT", "LET", "PRINT", "REM", "THEN"} {
		tok, ok := New(kw).ReadName()
		if !ok || tok.Type != token.KEYWORD || tok.Literal != kw {
			t.Fatalf("expected keyword %s, got %v", kw, tok)
		}
	}
	tok, ok := New("THENX").ReadName()
	if !ok || tok.Type != token.IDENT {
		t.Fatalf("THENX must be an identifier, got %v", tok)
	}
	tok, ok = New("then").ReadName()
	if !ok || tok.Type != token.IDENT {
		t.Fatalf("keywords are case-sensitive, got %v", tok)
	}
}

func TestLexer_ReadWord(t *testing.T) {
	l := New("  PRINT(1)  + 2")
	w, ok := l.ReadWord()
	if !ok || w != "PRINT(1)" {
		t.Fatalf("expected PRINT(1), got %q", w)
	}
	if !l.Expect('+') {
		t.Fatal("expected '+'")
	}
	if l.Expect('+') {
		t.Fatal("'+' already consumed")
	}
	if _, ok := New(" \t ").ReadWord(); ok {
		t.Fatal("blank input has no word")
	}
}
