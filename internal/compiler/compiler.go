package compiler

import (
	"strings"

	"linebasic/internal/ast"
	"linebasic/internal/fault"
	"linebasic/internal/lexer"
	"linebasic/internal/token"
)

// Compiler turns one statement (the text after a line number) into a
// command. A Compiler keeps no state between calls; a failed compile never
// affects anything compiled before it.
type Compiler struct {
	l *lexer.Lexer
}

func New() *Compiler {
	return &Compiler{}
}

// Compile is a convenience wrapper around New().Compile.
func Compile(stmt string) (ast.Command, error) {
	return New().Compile(stmt)
}

// Compile returns fault.ErrEmptyCommand for a blank statement and a
// *fault.SyntaxError for anything malformed.
func (c *Compiler) Compile(stmt string) (ast.Command, error) {
	c.l = lexer.New(stmt)
	defer func() { c.l = nil }()

	wordCol := 0
	if c.l.SkipBlank() {
		wordCol = c.l.Col()
	}
	word, ok := c.l.ReadWord()
	if !ok {
		return nil, fault.ErrEmptyCommand
	}

	switch word {
	case token.REM:
		return &ast.Rem{Text: strings.TrimSpace(c.l.Rest())}, nil
	case token.LET:
		return c.compileLet()
	case token.PRINT:
		return c.compilePrint()
	case token.INPUT:
		return c.compileInput()
	case token.GOTO:
		return c.compileGoto()
	case token.IF:
		return c.compileIf()
	case token.END:
		if err := c.commandEnd(); err != nil {
			return nil, err
		}
		return &ast.End{}, nil
	}
	return nil, &fault.SyntaxError{Col: wordCol}
}

func (c *Compiler) compileLet() (ast.Command, error) {
	target, err := c.varTarget()
	if err != nil {
		return nil, err
	}
	if !c.l.Expect('=') {
		return nil, c.errorHere()
	}
	value, err := c.fullExpr()
	if err != nil {
		return nil, err
	}
	return &ast.Let{Target: target, Value: value}, nil
}

func (c *Compiler) compilePrint() (ast.Command, error) {
	value, err := c.fullExpr()
	if err != nil {
		return nil, err
	}
	return &ast.Print{Value: value}, nil
}

func (c *Compiler) compileInput() (ast.Command, error) {
	target, err := c.varTarget()
	if err != nil {
		return nil, err
	}
	if err := c.commandEnd(); err != nil {
		return nil, err
	}
	return &ast.Input{Target: target}, nil
}

func (c *Compiler) compileGoto() (ast.Command, error) {
	target, err := c.linenoTarget()
	if err != nil {
		return nil, err
	}
	if err := c.commandEnd(); err != nil {
		return nil, err
	}
	return &ast.Goto{Target: target}, nil
}

func (c *Compiler) compileIf() (ast.Command, error) {
	left, kw, err := c.expr()
	if err != nil {
		return nil, err
	}
	if kw != nil {
		return nil, &fault.SyntaxError{Col: kw.Col}
	}
	cmp, ok := c.l.ReadComparator()
	if !ok {
		return nil, c.errorHere()
	}
	right, kw, err := c.expr()
	if err != nil {
		return nil, err
	}
	if kw == nil {
		return nil, c.errorHere()
	}
	if kw.Literal != token.THEN {
		return nil, &fault.SyntaxError{Col: kw.Col}
	}
	target, err := c.linenoTarget()
	if err != nil {
		return nil, err
	}
	if err := c.commandEnd(); err != nil {
		return nil, err
	}
	return &ast.If{Left: left, Cmp: cmp.Type, Right: right, Target: target}, nil
}

// varTarget reads the variable a LET or INPUT assigns.
func (c *Compiler) varTarget() (string, error) {
	tok, ok := c.l.ReadName()
	if !ok {
		return "", c.errorHere()
	}
	if tok.Type != token.IDENT {
		return "", &fault.SyntaxError{Col: tok.Col}
	}
	return tok.Literal, nil
}

func (c *Compiler) linenoTarget() (uint64, error) {
	tok, ok := c.l.ReadNumber()
	if !ok {
		return 0, c.errorHere()
	}
	return uint64(tok.Value), nil
}

// fullExpr parses an expression that must run to the end of the statement.
func (c *Compiler) fullExpr() (ast.Expr, error) {
	e, kw, err := c.expr()
	if err != nil {
		return nil, err
	}
	if kw != nil {
		return nil, &fault.SyntaxError{Col: kw.Col}
	}
	if err := c.commandEnd(); err != nil {
		return nil, err
	}
	return e, nil
}

// commandEnd rejects trailing text after the last field.
func (c *Compiler) commandEnd() error {
	if !c.l.AtEnd() {
		return c.errorHere()
	}
	return nil
}

func (c *Compiler) errorHere() error {
	c.l.SkipBlank()
	return &fault.SyntaxError{Col: c.l.Col()}
}
