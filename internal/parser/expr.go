package parser

import (
	"rivet/internal/ast"
	"rivet/internal/diag"
	"rivet/internal/source"
	"rivet/internal/token"
)

// Бинарные приоритеты (чем больше, тем сильнее связывание).
var binaryOps = map[token.Kind]struct {
	op   ast.ExprBinaryOp
	prec int
}{
	token.OrOr:    {ast.ExprBinaryOr, 1},
	token.AndAnd:  {ast.ExprBinaryAnd, 2},
	token.EqEq:    {ast.ExprBinaryEq, 3},
	token.NotEq:   {ast.ExprBinaryNotEq, 3},
	token.Lt:      {ast.ExprBinaryLt, 4},
	token.LtEq:    {ast.ExprBinaryLtEq, 4},
	token.Gt:      {ast.ExprBinaryGt, 4},
	token.GtEq:    {ast.ExprBinaryGtEq, 4},
	token.Plus:    {ast.ExprBinaryAdd, 5},
	token.Minus:   {ast.ExprBinarySub, 5},
	token.Star:    {ast.ExprBinaryMul, 6},
	token.Slash:   {ast.ExprBinaryDiv, 6},
	token.Percent: {ast.ExprBinaryMod, 6},
}

func (p *Parser) parseExpr() ast.ExprID {
	return p.parseAssign()
}

// parseAssign разбирает 'place = value' (правоассоциативно).
func (p *Parser) parseAssign() ast.ExprID {
	left := p.parseBinary(0)
	if !left.IsValid() {
		return ast.NoExprID
	}
	if p.at(token.Assign) {
		opSpan := p.tok.Span
		p.advance()
		right := p.parseAssign()
		if !right.IsValid() {
			return ast.NoExprID
		}
		span := p.builder.Exprs.Get(left).Span.Cover(p.builder.Exprs.Get(right).Span).Cover(opSpan)
		return p.builder.Exprs.NewBinary(span, ast.ExprBinaryAssign, left, right)
	}
	return left
}

func (p *Parser) parseBinary(minPrec int) ast.ExprID {
	left := p.parseUnary()
	if !left.IsValid() {
		return ast.NoExprID
	}
	for {
		entry, ok := binaryOps[p.tok.Kind]
		if !ok || entry.prec <= minPrec {
			return left
		}
		p.advance()
		right := p.parseBinary(entry.prec)
		if !right.IsValid() {
			return ast.NoExprID
		}
		span := p.builder.Exprs.Get(left).Span.Cover(p.builder.Exprs.Get(right).Span)
		left = p.builder.Exprs.NewBinary(span, entry.op, left, right)
	}
}

func (p *Parser) parseUnary() ast.ExprID {
	start := p.tok.Span
	switch p.tok.Kind {
	case token.Minus:
		p.advance()
		return p.newUnary(start, ast.ExprUnaryNeg)
	case token.Not:
		p.advance()
		return p.newUnary(start, ast.ExprUnaryNot)
	case token.Star:
		p.advance()
		return p.newUnary(start, ast.ExprUnaryDeref)
	case token.Amp:
		p.advance()
		if p.eat(token.KwMut) {
			return p.newUnary(start, ast.ExprUnaryRefMut)
		}
		return p.newUnary(start, ast.ExprUnaryRef)
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) newUnary(start source.Span, op ast.ExprUnaryOp) ast.ExprID {
	operand := p.parseUnary()
	if !operand.IsValid() {
		return ast.NoExprID
	}
	return p.builder.Exprs.NewUnary(start.Cover(p.builder.Exprs.Get(operand).Span), op, operand)
}

func (p *Parser) parsePostfix() ast.ExprID {
	expr := p.parsePrimary()
	if !expr.IsValid() {
		return ast.NoExprID
	}
	for {
		switch p.tok.Kind {
		case token.LParen:
			p.advance()
			var args []ast.ExprID
			for !p.at(token.RParen) && !p.at(token.EOF) {
				arg := p.parseExpr()
				if !arg.IsValid() {
					return ast.NoExprID
				}
				args = append(args, arg)
				if !p.eat(token.Comma) {
					break
				}
			}
			end := p.tok.Span
			if !p.expect(token.RParen, diag.SynUnclosedDelim) {
				return ast.NoExprID
			}
			span := p.builder.Exprs.Get(expr).Span.Cover(end)
			expr = p.builder.Exprs.NewCall(span, expr, args)

		case token.Dot:
			p.advance()
			if !p.at(token.Ident) {
				p.errorf(diag.SynExpectIdentifier, p.tok.Span, "expected field name after '.'")
				return ast.NoExprID
			}
			field := p.builder.Intern(p.tok.Text)
			span := p.builder.Exprs.Get(expr).Span.Cover(p.tok.Span)
			p.advance()
			expr = p.builder.Exprs.NewMember(span, expr, field)

		case token.LBracket:
			p.advance()
			index := p.parseExpr()
			if !index.IsValid() {
				return ast.NoExprID
			}
			end := p.tok.Span
			if !p.expect(token.RBracket, diag.SynUnclosedDelim) {
				return ast.NoExprID
			}
			span := p.builder.Exprs.Get(expr).Span.Cover(end)
			expr = p.builder.Exprs.NewIndex(span, expr, index)

		default:
			return expr
		}
	}
}

func (p *Parser) parsePrimary() ast.ExprID {
	start := p.tok.Span
	switch p.tok.Kind {
	case token.Ident:
		name := p.builder.Intern(p.tok.Text)
		p.advance()
		return p.builder.Exprs.NewIdent(start, name)

	case token.IntLit:
		value := p.builder.Intern(p.tok.Text)
		p.advance()
		return p.builder.Exprs.NewLiteral(start, ast.ExprLitInt, value)

	case token.FloatLit:
		value := p.builder.Intern(p.tok.Text)
		p.advance()
		return p.builder.Exprs.NewLiteral(start, ast.ExprLitFloat, value)

	case token.StringLit:
		value := p.builder.Intern(p.tok.Text)
		p.advance()
		return p.builder.Exprs.NewLiteral(start, ast.ExprLitString, value)

	case token.KwTrue:
		p.advance()
		return p.builder.Exprs.NewLiteral(start, ast.ExprLitTrue, p.builder.Intern("true"))

	case token.KwFalse:
		p.advance()
		return p.builder.Exprs.NewLiteral(start, ast.ExprLitFalse, p.builder.Intern("false"))

	case token.LParen:
		p.advance()
		first := p.parseExpr()
		if !first.IsValid() {
			return ast.NoExprID
		}
		// (expr) — группа, (a, b, ...) — кортеж
		if p.at(token.Comma) {
			elems := []ast.ExprID{first}
			for p.eat(token.Comma) {
				if p.at(token.RParen) {
					break
				}
				elem := p.parseExpr()
				if !elem.IsValid() {
					return ast.NoExprID
				}
				elems = append(elems, elem)
			}
			end := p.tok.Span
			if !p.expect(token.RParen, diag.SynUnclosedDelim) {
				return ast.NoExprID
			}
			return p.builder.Exprs.NewTuple(start.Cover(end), elems)
		}
		end := p.tok.Span
		if !p.expect(token.RParen, diag.SynUnclosedDelim) {
			return ast.NoExprID
		}
		return p.builder.Exprs.NewGroup(start.Cover(end), first)

	case token.LBracket:
		p.advance()
		var elems []ast.ExprID
		for !p.at(token.RBracket) && !p.at(token.EOF) {
			elem := p.parseExpr()
			if !elem.IsValid() {
				return ast.NoExprID
			}
			elems = append(elems, elem)
			if !p.eat(token.Comma) {
				break
			}
		}
		end := p.tok.Span
		if !p.expect(token.RBracket, diag.SynUnclosedDelim) {
			return ast.NoExprID
		}
		return p.builder.Exprs.NewArray(start.Cover(end), elems)

	default:
		p.errorf(diag.SynExpectExpression, p.tok.Span, "expected expression, found '%s'", p.tok.Kind)
		return ast.NoExprID
	}
}
