package ast

import "linebasic/internal/token"

// JumpTarget returns the line a GOTO or IF transfers control to.
func JumpTarget(cmd Command) (uint64, bool) {
	switch c := cmd.(type) {
	case *Goto:
		return c.Target, true
	case *If:
		return c.Target, true
	}
	return 0, false
}

// Retarget returns a copy of cmd with its jump target replaced. Commands
// without a target are returned unchanged.
func Retarget(cmd Command, target uint64) Command {
	switch c := cmd.(type) {
	case *Goto:
		return &Goto{Target: target}
	case *If:
		cp := *c
		cp.Target = target
		return &cp
	}
	return cmd
}

// Assigned returns the variable a LET or INPUT writes.
func Assigned(cmd Command) (string, bool) {
	switch c := cmd.(type) {
	case *Let:
		return c.Target, true
	case *Input:
		return c.Target, true
	}
	return "", false
}

// Reads lists the variables cmd reads, in evaluation order.
func Reads(cmd Command) []string {
	var names []string
	for _, tok := range ReadTokens(cmd) {
		names = append(names, tok.Literal)
	}
	return names
}

// ReadTokens returns the variable tokens cmd reads, in source order.
func ReadTokens(cmd Command) []token.Token {
	var toks []token.Token
	collect := func(e Expr) {
		for _, tok := range e {
			if tok.Type == token.IDENT {
				toks = append(toks, tok)
			}
		}
	}
	switch c := cmd.(type) {
	case *Let:
		collect(c.Value)
	case *Print:
		collect(c.Value)
	case *If:
		collect(c.Left)
		collect(c.Right)
	}
	return toks
}

// Ends reports whether control never falls through cmd to the next line.
func Ends(cmd Command) bool {
	switch cmd.(type) {
	case *Goto, *End:
		return true
	}
	return false
}
