package lexer

import (
	"linebasic/internal/numlit"
	"linebasic/internal/token"
)

// Lexer scans one statement. Reads that find nothing report ok=false and
// leave the cursor where it was; raising a syntax error is the caller's job.
type Lexer struct {
	input    string
	position int // index of the next unread byte
}

func New(input string) *Lexer {
	return &Lexer{input: input}
}

// Col is the 1-based column of the next unread byte.
func (l *Lexer) Col() int {
	return l.position + 1
}

// Rest returns the unread input.
func (l *Lexer) Rest() string {
	return l.input[l.position:]
}

// SkipBlank advances past blanks and reports whether input remains.
func (l *Lexer) SkipBlank() bool {
	for l.position < len(l.input) && isBlank(l.input[l.position]) {
		l.position++
	}
	return l.position < len(l.input)
}

// AtEnd reports whether only blanks remain.
func (l *Lexer) AtEnd() bool {
	return !l.SkipBlank()
}

// ReadWord reads a whitespace-delimited word.
func (l *Lexer) ReadWord() (string, bool) {
	if !l.SkipBlank() {
		return "", false
	}
	start := l.position
	for l.position < len(l.input) && !isBlank(l.input[l.position]) {
		l.position++
	}
	return l.input[start:l.position], true
}

// Skip steps over one byte the other reads refused.
func (l *Lexer) Skip() {
	if l.position < len(l.input) {
		l.position++
	}
}

// Expect consumes ch if it is the next non-blank byte.
func (l *Lexer) Expect(ch byte) bool {
	if !l.SkipBlank() || l.input[l.position] != ch {
		return false
	}
	l.position++
	return true
}

// ReadNumber reads an unsigned decimal literal.
func (l *Lexer) ReadNumber() (token.Token, bool) {
	if !l.SkipBlank() {
		return token.Token{}, false
	}
	n := numlit.DigitRun(l.input[l.position:])
	if n == 0 {
		return token.Token{}, false
	}
	col := l.Col()
	v, ok := numlit.ParseDecimal(l.input[l.position : l.position+n])
	if !ok {
		return token.Token{}, false
	}
	l.position += n
	tok := token.Int(v)
	tok.Col = col
	return tok, true
}

// ReadName reads an identifier. Reserved words come back as KEYWORD tokens
// so callers can tell a variable from a keyword such as THEN.
func (l *Lexer) ReadName() (token.Token, bool) {
	if !l.SkipBlank() || !isLetter(l.input[l.position]) {
		return token.Token{}, false
	}
	col := l.Col()
	start := l.position
	l.position++
	for l.position < len(l.input) && (isLetter(l.input[l.position]) || numlit.IsDigit(l.input[l.position])) {
		l.position++
	}
	word := l.input[start:l.position]
	var tok token.Token
	if token.IsKeyword(word) {
		tok = token.Keyword(word)
	} else {
		tok = token.Ident(word)
	}
	tok.Col = col
	return tok, true
}

// ReadValue reads a number, an identifier or a keyword.
func (l *Lexer) ReadValue() (token.Token, bool) {
	if tok, ok := l.ReadNumber(); ok {
		return tok, true
	}
	return l.ReadName()
}

// NextToken reads the next expression token: a parenthesis, an arithmetic
// operator or a value. Comparators and unknown bytes are left unread.
func (l *Lexer) NextToken() (token.Token, bool) {
	if !l.SkipBlank() {
		return token.Token{}, false
	}
	col := l.Col()
	var tok token.Token
	switch l.input[l.position] {
	case '(':
		tok = token.Op(token.LPAREN)
	case ')':
		tok = token.Op(token.RPAREN)
	case '+':
		tok = token.Op(token.PLUS)
	case '-':
		tok = token.Op(token.MINUS)
	case '*':
		tok = token.Op(token.STAR)
	case '/':
		tok = token.Op(token.SLASH)
	default:
		return l.ReadValue()
	}
	l.position++
	tok.Col = col
	return tok, true
}

// ReadComparator reads one of = < >.
func (l *Lexer) ReadComparator() (token.Token, bool) {
	if !l.SkipBlank() {
		return token.Token{}, false
	}
	col := l.Col()
	var tok token.Token
	switch l.input[l.position] {
	case '=':
		tok = token.Op(token.ASSIGN)
	case '<':
		tok = token.Op(token.LT)
	case '>':
		tok = token.Op(token.GT)
	default:
		return token.Token{}, false
	}
	l.position++
	tok.Col = col
	return tok, true
}

func isBlank(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == '\v' || ch == '\f'
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z'
}
