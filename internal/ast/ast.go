package ast

import (
	"bytes"
	"strconv"

	"linebasic/internal/token"
)

type Node interface {
	TokenLiteral() string
	String() string
}

// Command is one compiled statement.
type Command interface {
	Node
	commandNode()
}

// Expr is an expression in postfix order. Only INT, IDENT and arithmetic
// operator tokens appear, and evaluating it on a stack leaves one value.
type Expr []token.Token

const (
	precAddSub = 1
	precMulDiv = 2
	precAtom   = 3
)

// String renders the expression in infix form with the fewest parentheses
// that keep the tree shape.
func (e Expr) String() string {
	type part struct {
		text string
		prec int
	}
	var stack []part
	for _, tok := range e {
		if !tok.IsOperator() {
			stack = append(stack, part{tok.String(), precAtom})
			continue
		}
		if len(stack) < 2 {
			return "<malformed>"
		}
		r := stack[len(stack)-1]
		l := stack[len(stack)-2]
		stack = stack[:len(stack)-2]

		prec := precAddSub
		if tok.Tighter() {
			prec = precMulDiv
		}
		lt, rt := l.text, r.text
		if l.prec < prec {
			lt = "(" + lt + ")"
		}
		if r.prec <= prec {
			rt = "(" + rt + ")"
		}
		stack = append(stack, part{lt + " " + tok.Literal + " " + rt, prec})
	}
	if len(stack) != 1 {
		return "<malformed>"
	}
	return stack[0].text
}

/* -------------------- Commands -------------------- */

type Rem struct {
	Text string
}

func (*Rem) commandNode()         {}
func (*Rem) TokenLiteral() string { return token.REM }
func (r *Rem) String() string {
	if r.Text == "" {
		return token.REM
	}
	return token.REM + " " + r.Text
}

type Let struct {
	Target string
	Value  Expr
}

func (*Let) commandNode()         {}
func (*Let) TokenLiteral() string { return token.LET }
func (l *Let) String() string {
	return token.LET + " " + l.Target + " = " + l.Value.String()
}

type Print struct {
	Value Expr
}

func (*Print) commandNode()         {}
func (*Print) TokenLiteral() string { return token.PRINT }
func (p *Print) String() string {
	return token.PRINT + " " + p.Value.String()
}

type Input struct {
	Target string
}

func (*Input) commandNode()         {}
func (*Input) TokenLiteral() string { return token.INPUT }
func (i *Input) String() string {
	return token.INPUT + " " + i.Target
}

type Goto struct {
	Target uint64
}

func (*Goto) commandNode()         {}
func (*Goto) TokenLiteral() string { return token.GOTO }
func (g *Goto) String() string {
	return token.GOTO + " " + strconv.FormatUint(g.Target, 10)
}

type If struct {
	Left   Expr
	Cmp    token.Type // one of token.ASSIGN, token.LT, token.GT
	Right  Expr
	Target uint64
}

func (*If) commandNode()         {}
func (*If) TokenLiteral() string { return token.IF }
func (i *If) String() string {
	var out bytes.Buffer
	out.WriteString(token.IF + " ")
	out.WriteString(i.Left.String())
	out.WriteString(" " + string(i.Cmp) + " ")
	out.WriteString(i.Right.String())
	out.WriteString(" " + token.THEN + " ")
	out.WriteString(strconv.FormatUint(i.Target, 10))
	return out.String()
}

type End struct{}

func (*End) commandNode()         {}
func (*End) TokenLiteral() string { return token.END }
func (*End) String() string       { return token.END }
