package basic

import "strings"

// Expression parsing over the token stream, following classic BASIC
// precedence lowest-to-highest: Imp, Eqv, Xor, Or, And, Not (unary),
// relational, additive, Mod, integer div, multiplicative, power
// (right-assoc), unary minus, primary.

func (p *Parser) parseExpr() Expr {
	return p.parseImp()
}

func (p *Parser) parseImp() Expr {
	left := p.parseEqv()
	for p.isKeyword("IMP") {
		p.advance()
		right := p.parseEqv()
		left = &BinaryExpr{Left: left, Op: "IMP", Right: right}
	}
	return left
}

func (p *Parser) parseEqv() Expr {
	left := p.parseXor()
	for p.isKeyword("EQV") {
		p.advance()
		right := p.parseXor()
		left = &BinaryExpr{Left: left, Op: "EQV", Right: right}
	}
	return left
}

func (p *Parser) parseXor() Expr {
	left := p.parseOr()
	for p.isKeyword("XOR") {
		p.advance()
		right := p.parseOr()
		left = &BinaryExpr{Left: left, Op: "XOR", Right: right}
	}
	return left
}

func (p *Parser) parseOr() Expr {
	left := p.parseAnd()
	for p.isKeyword("OR") {
		p.advance()
		right := p.parseAnd()
		left = &BinaryExpr{Left: left, Op: "OR", Right: right}
	}
	return left
}

func (p *Parser) parseAnd() Expr {
	left := p.parseNot()
	for p.isKeyword("AND") {
		p.advance()
		right := p.parseNot()
		left = &BinaryExpr{Left: left, Op: "AND", Right: right}
	}
	return left
}

func (p *Parser) parseNot() Expr {
	if p.isKeyword("NOT") {
		p.advance()
		return &UnaryExpr{Op: "NOT", Right: p.parseNot()}
	}
	return p.parseRelational()
}

func (p *Parser) parseRelational() Expr {
	left := p.parseAdditive()
	if p.tok.Kind == TokRelOp || p.isSymbol("=") {
		op := p.tok.Lexeme
		p.advance()
		right := p.parseAdditive()
		return &BinaryExpr{Left: left, Op: op, Right: right}
	}
	return left
}

func (p *Parser) parseAdditive() Expr {
	left := p.parseModOp()
	for p.isSymbol("+") || p.isSymbol("-") {
		op := p.tok.Lexeme
		p.advance()
		right := p.parseModOp()
		left = &BinaryExpr{Left: left, Op: op, Right: right}
	}
	return left
}

func (p *Parser) parseModOp() Expr {
	left := p.parseIntDiv()
	for p.isKeyword("MOD") {
		p.advance()
		right := p.parseIntDiv()
		left = &BinaryExpr{Left: left, Op: "MOD", Right: right}
	}
	return left
}

func (p *Parser) parseIntDiv() Expr {
	left := p.parseMultiplicative()
	for p.isSymbol("\\") {
		p.advance()
		right := p.parseMultiplicative()
		left = &BinaryExpr{Left: left, Op: "\\", Right: right}
	}
	return left
}

func (p *Parser) parseMultiplicative() Expr {
	left := p.parsePower()
	for p.isSymbol("*") || p.isSymbol("/") {
		op := p.tok.Lexeme
		p.advance()
		right := p.parsePower()
		left = &BinaryExpr{Left: left, Op: op, Right: right}
	}
	return left
}

// parsePower is right-associative.
func (p *Parser) parsePower() Expr {
	left := p.parseUnary()
	if p.isSymbol("^") {
		p.advance()
		right := p.parsePower()
		return &BinaryExpr{Left: left, Op: "^", Right: right}
	}
	return left
}

func (p *Parser) parseUnary() Expr {
	if p.isSymbol("-") {
		p.advance()
		return &UnaryExpr{Op: "-", Right: p.parseUnary()}
	}
	if p.isSymbol("+") {
		p.advance()
		return p.parseUnary()
	}
	return p.parsePrimary()
}

// parsePrimary: literal; Fn name(args); bare identifier optionally
// followed by (args); postfix .field chain. Whether a bare identifier
// is an array subscript, built-in call, or user-function call is left
// unresolved here — the evaluator decides at call time.
func (p *Parser) parsePrimary() Expr {
	switch {
	case p.tok.Kind == TokNumber:
		v := p.tok.NumVal
		p.advance()
		return &LiteralExpr{Num: v}
	case p.tok.Kind == TokString:
		s := p.tok.StrVal
		p.advance()
		return &LiteralExpr{IsText: true, Text: s}
	case p.isSymbol("("):
		p.advance()
		inner := p.parseExpr()
		p.expectSymbol(")")
		return p.parsePostfix(&GroupingExpr{Inner: inner})
	case p.isKeyword("FN"):
		p.advance()
		name := p.tok.Lexeme
		p.advance()
		var args []Expr
		if p.isSymbol("(") {
			p.advance()
			if !p.isSymbol(")") {
				args = append(args, p.parseExpr())
				for p.isSymbol(",") {
					p.advance()
					args = append(args, p.parseExpr())
				}
			}
			p.expectSymbol(")")
		}
		return &FnCallExpr{Name: name, Args: args}
	case p.tok.Kind == TokIdent || (p.tok.Kind == TokKeyword && isBuiltinKeywordName(p.tok.Lexeme)):
		name := p.tok.Lexeme
		p.advance()
		var args []Expr
		if p.isSymbol("(") {
			p.advance()
			if !p.isSymbol(")") {
				args = append(args, p.parseExpr())
				for p.isSymbol(",") {
					p.advance()
					args = append(args, p.parseExpr())
				}
			}
			p.expectSymbol(")")
		}
		return p.parsePostfix(&ArrayOrCallExpr{Name: name, Args: args})
	default:
		p.fail("expected expression")
		return &LiteralExpr{Num: 0}
	}
}

func (p *Parser) parsePostfix(e Expr) Expr {
	for p.isSymbol(".") {
		p.advance()
		if p.tok.Kind != TokIdent {
			break
		}
		field := p.tok.Lexeme
		p.advance()
		e = &FieldAccessExpr{Obj: e, Field: field}
	}
	return e
}

// isBuiltinKeywordName lets built-ins that collide with reserved words
// still parse as calls if ever lexed as keywords. Currently empty: the
// closed built-in table in builtins.go lexes entirely as TokIdent.
func isBuiltinKeywordName(s string) bool {
	_ = strings.ToUpper(s)
	return false
}
