package compiler

import (
	"linebasic/internal/ast"
	"linebasic/internal/fault"
	"linebasic/internal/token"
)

type lastRead int

const (
	readNothing lastRead = iota
	readValue
	readOperator
)

// expr scans tokens up to the first one that cannot belong to an
// expression and converts them to postfix with the shunting-yard
// algorithm. A reserved word that stopped the scan is returned as kw.
func (c *Compiler) expr() (ast.Expr, *token.Token, error) {
	var infix []token.Token
	var kw *token.Token
	for {
		tok, ok := c.l.NextToken()
		if !ok {
			break
		}
		if tok.Type == token.KEYWORD {
			kw = &tok
			break
		}
		infix = append(infix, tok)
	}

	out := make(ast.Expr, 0, len(infix))
	var ops []token.Token
	prev := readNothing

	for _, tok := range infix {
		switch {
		case tok.IsValue():
			if prev == readValue {
				return nil, nil, &fault.SyntaxError{Col: tok.Col}
			}
			prev = readValue
			out = append(out, tok)

		case tok.IsOperator():
			if prev != readValue {
				return nil, nil, &fault.SyntaxError{Col: tok.Col}
			}
			prev = readOperator
			for len(ops) > 0 {
				top := ops[len(ops)-1]
				if !top.IsOperator() || !precedenceLE(tok, top) {
					break
				}
				out = append(out, top)
				ops = ops[:len(ops)-1]
			}
			ops = append(ops, tok)

		case tok.Type == token.LPAREN:
			if prev == readValue {
				return nil, nil, &fault.SyntaxError{Col: tok.Col}
			}
			prev = readNothing
			ops = append(ops, tok)

		case tok.Type == token.RPAREN:
			if prev != readValue {
				return nil, nil, &fault.SyntaxError{Col: tok.Col}
			}
			for {
				if len(ops) == 0 {
					return nil, nil, &fault.SyntaxError{Col: tok.Col}
				}
				top := ops[len(ops)-1]
				ops = ops[:len(ops)-1]
				if top.Type == token.LPAREN {
					break
				}
				out = append(out, top)
			}
		}
	}

	if prev != readValue {
		col := c.l.Col()
		if kw != nil {
			col = kw.Col
		}
		return nil, nil, &fault.SyntaxError{Col: col}
	}
	for len(ops) > 0 {
		top := ops[len(ops)-1]
		ops = ops[:len(ops)-1]
		if top.Type == token.LPAREN {
			return nil, nil, &fault.SyntaxError{Col: top.Col}
		}
		out = append(out, top)
	}
	return out, kw, nil
}

// precedenceLE reports whether incoming binds no tighter than top, in which
// case top is emitted first. Equal tiers pop, giving left associativity.
func precedenceLE(incoming, top token.Token) bool {
	return !incoming.Tighter() || top.Tighter()
}
