package token

import "strconv"

type Type string

type Token struct {
	Type Type
	// Literal holds the operator, variable or keyword text.
	Literal string
	// Value is set for INT tokens.
	Value int64
	Col   int
}

const (
	INT     Type = "INT"
	IDENT   Type = "IDENT"
	KEYWORD Type = "KEYWORD"

	PLUS  Type = "+"
	MINUS Type = "-"
	STAR  Type = "*"
	SLASH Type = "/"

	ASSIGN Type = "="
	LT     Type = "<"
	GT     Type = ">"

	LPAREN Type = "("
	RPAREN Type = ")"
)

const (
	END   = "END"
	GOTO  = "GOTO"
	IF    = "IF"
	INPUT = "INPUT"
	LET   = "LET"
	PRINT = "PRINT"
	REM   = "REM"
	THEN  = "THEN"
)

var keywords = map[string]struct{}{
	END:   {},
	GOTO:  {},
	IF:    {},
	INPUT: {},
	LET:   {},
	PRINT: {},
	REM:   {},
	THEN:  {},
}

func IsKeyword(word string) bool {
	_, ok := keywords[word]
	return ok
}

func (t Token) IsValue() bool {
	return t.Type == INT || t.Type == IDENT
}

func (t Token) IsOperator() bool {
	switch t.Type {
	case PLUS, MINUS, STAR, SLASH:
		return true
	}
	return false
}

func (t Token) IsComparator() bool {
	switch t.Type {
	case ASSIGN, LT, GT:
		return true
	}
	return false
}

// Tighter reports whether t is a multiplicative operator.
func (t Token) Tighter() bool {
	return t.Type == STAR || t.Type == SLASH
}

func (t Token) String() string {
	if t.Type == INT {
		return strconv.FormatInt(t.Value, 10)
	}
	if t.Literal != "" {
		return t.Literal
	}
	return string(t.Type)
}

func Int(v int64) Token { return Token{Type: INT, Value: v} }

func Ident(name string) Token { return Token{Type: IDENT, Literal: name} }

func Op(t Type) Token { return Token{Type: t, Literal: string(t)} }

func Keyword(w string) Token { return Token{Type: KEYWORD, Literal: w} }
