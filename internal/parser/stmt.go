package parser

import (
	"rivet/internal/ast"
	"rivet/internal/diag"
	"rivet/internal/token"
)

func (p *Parser) parseBlock() ast.StmtID {
	start := p.tok.Span
	if !p.expect(token.LBrace, diag.SynUnexpectedToken) {
		return ast.NoStmtID
	}
	var stmts []ast.StmtID
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		stmt := p.parseStmt()
		if !stmt.IsValid() {
			p.recoverToStmt()
			continue
		}
		stmts = append(stmts, stmt)
	}
	end := p.tok.Span
	if !p.expect(token.RBrace, diag.SynUnclosedDelim) {
		return ast.NoStmtID
	}
	return p.builder.Stmts.NewBlock(start.Cover(end), stmts)
}

func (p *Parser) parseStmt() ast.StmtID {
	switch p.tok.Kind {
	case token.KwLet:
		return p.parseLet()
	case token.KwIf:
		return p.parseIf()
	case token.KwWhile:
		return p.parseWhile()
	case token.KwReturn:
		return p.parseReturn()
	case token.LBrace:
		return p.parseBlock()
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseLet() ast.StmtID {
	start := p.tok.Span
	p.advance() // let

	mut := p.eat(token.KwMut)
	if !p.at(token.Ident) {
		p.errorf(diag.SynExpectIdentifier, p.tok.Span, "expected binding name")
		return ast.NoStmtID
	}
	name := p.builder.Intern(p.tok.Text)
	nameSpan := p.tok.Span
	p.advance()

	typ := ast.NoTypeID
	if p.eat(token.Colon) {
		typ = p.parseType()
		if !typ.IsValid() {
			return ast.NoStmtID
		}
	}

	if !p.expect(token.Assign, diag.SynUnexpectedToken) {
		return ast.NoStmtID
	}
	init := p.parseExpr()
	if !init.IsValid() {
		return ast.NoStmtID
	}
	end := p.tok.Span
	if !p.expect(token.Semicolon, diag.SynExpectSemicolon) {
		return ast.NoStmtID
	}
	return p.builder.Stmts.NewLet(start.Cover(end), name, nameSpan, typ, init, mut)
}

func (p *Parser) parseIf() ast.StmtID {
	start := p.tok.Span
	p.advance() // if

	cond := p.parseExpr()
	if !cond.IsValid() {
		return ast.NoStmtID
	}
	then := p.parseBlock()
	if !then.IsValid() {
		return ast.NoStmtID
	}
	els := ast.NoStmtID
	if p.eat(token.KwElse) {
		if p.at(token.KwIf) {
			els = p.parseIf()
		} else {
			els = p.parseBlock()
		}
		if !els.IsValid() {
			return ast.NoStmtID
		}
	}
	span := start.Cover(p.builder.Stmts.Get(then).Span)
	if els.IsValid() {
		span = span.Cover(p.builder.Stmts.Get(els).Span)
	}
	return p.builder.Stmts.NewIf(span, cond, then, els)
}

func (p *Parser) parseWhile() ast.StmtID {
	start := p.tok.Span
	p.advance() // while

	cond := p.parseExpr()
	if !cond.IsValid() {
		return ast.NoStmtID
	}
	body := p.parseBlock()
	if !body.IsValid() {
		return ast.NoStmtID
	}
	return p.builder.Stmts.NewWhile(start.Cover(p.builder.Stmts.Get(body).Span), cond, body)
}

func (p *Parser) parseReturn() ast.StmtID {
	start := p.tok.Span
	p.advance() // return

	value := ast.NoExprID
	if !p.at(token.Semicolon) {
		value = p.parseExpr()
		if !value.IsValid() {
			return ast.NoStmtID
		}
	}
	end := p.tok.Span
	if !p.expect(token.Semicolon, diag.SynExpectSemicolon) {
		return ast.NoStmtID
	}
	return p.builder.Stmts.NewReturn(start.Cover(end), value)
}

func (p *Parser) parseExprStmt() ast.StmtID {
	expr := p.parseExpr()
	if !expr.IsValid() {
		return ast.NoStmtID
	}
	span := p.builder.Exprs.Get(expr).Span
	end := p.tok.Span
	if !p.expect(token.Semicolon, diag.SynExpectSemicolon) {
		return ast.NoStmtID
	}
	return p.builder.Stmts.NewExpr(span.Cover(end), expr)
}
