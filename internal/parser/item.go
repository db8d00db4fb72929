package parser

import (
	"rivet/internal/ast"
	"rivet/internal/diag"
	"rivet/internal/token"
)

func (p *Parser) parseItem() ast.ItemID {
	hasDrop, hasCopy := p.parseAttrs()

	switch p.tok.Kind {
	case token.KwFn:
		if hasDrop || hasCopy {
			p.errorf(diag.SynBadAttribute, p.tok.Span, "attributes are only allowed on type declarations")
		}
		return p.parseFn()
	case token.KwType:
		return p.parseTypeDecl(hasDrop, hasCopy)
	default:
		p.errorf(diag.SynExpectItem, p.tok.Span, "expected 'fn' or 'type', found '%s'", p.tok.Kind)
		return ast.NoItemID
	}
}

// parseAttrs consumes a run of '@name' markers before an item.
func (p *Parser) parseAttrs() (hasDrop, hasCopy bool) {
	for p.at(token.At) {
		atSpan := p.tok.Span
		p.advance()
		if !p.at(token.Ident) {
			p.errorf(diag.SynBadAttribute, atSpan, "expected attribute name after '@'")
			return
		}
		switch p.tok.Text {
		case "drop":
			hasDrop = true
		case "copy":
			hasCopy = true
		default:
			p.errorf(diag.SynBadAttribute, p.tok.Span, "unknown attribute '@%s'", p.tok.Text)
		}
		p.advance()
	}
	return
}

func (p *Parser) parseFn() ast.ItemID {
	start := p.tok.Span
	p.advance() // fn

	if !p.at(token.Ident) {
		p.errorf(diag.SynExpectIdentifier, p.tok.Span, "expected function name")
		return ast.NoItemID
	}
	name := p.builder.Intern(p.tok.Text)
	nameSpan := p.tok.Span
	p.advance()

	if !p.expect(token.LParen, diag.SynUnexpectedToken) {
		return ast.NoItemID
	}
	var params []ast.FnParam
	for !p.at(token.RParen) && !p.at(token.EOF) {
		param, ok := p.parseParam()
		if !ok {
			p.recoverToItem()
			return ast.NoItemID
		}
		params = append(params, param)
		if !p.eat(token.Comma) {
			break
		}
	}
	if !p.expect(token.RParen, diag.SynUnclosedDelim) {
		return ast.NoItemID
	}

	result := ast.NoTypeID
	if p.eat(token.Arrow) {
		result = p.parseType()
		if !result.IsValid() {
			return ast.NoItemID
		}
	}

	body := p.parseBlock()
	if !body.IsValid() {
		return ast.NoItemID
	}

	span := start.Cover(p.builder.Stmts.Get(body).Span)
	return p.builder.Items.NewFn(span, name, nameSpan, params, result, body)
}

func (p *Parser) parseParam() (ast.FnParam, bool) {
	start := p.tok.Span
	mut := p.eat(token.KwMut)
	if !p.at(token.Ident) {
		p.errorf(diag.SynExpectIdentifier, p.tok.Span, "expected parameter name")
		return ast.FnParam{}, false
	}
	name := p.builder.Intern(p.tok.Text)
	p.advance()
	if !p.expect(token.Colon, diag.SynUnexpectedToken) {
		return ast.FnParam{}, false
	}
	typ := p.parseType()
	if !typ.IsValid() {
		return ast.FnParam{}, false
	}
	return ast.FnParam{
		Name: name,
		Mut:  mut,
		Type: typ,
		Span: start.Cover(p.builder.Types.Get(typ).Span),
	}, true
}

// parseTypeDecl разбирает 'type Name = { field: T, ... };'
func (p *Parser) parseTypeDecl(hasDrop, hasCopy bool) ast.ItemID {
	start := p.tok.Span
	p.advance() // type

	if !p.at(token.Ident) {
		p.errorf(diag.SynExpectIdentifier, p.tok.Span, "expected type name")
		return ast.NoItemID
	}
	name := p.builder.Intern(p.tok.Text)
	nameSpan := p.tok.Span
	p.advance()

	if !p.expect(token.Assign, diag.SynUnexpectedToken) {
		return ast.NoItemID
	}
	if !p.expect(token.LBrace, diag.SynUnexpectedToken) {
		return ast.NoItemID
	}

	var fields []ast.TypeField
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		if !p.at(token.Ident) {
			p.errorf(diag.SynExpectIdentifier, p.tok.Span, "expected field name")
			p.recoverToStmt()
			return ast.NoItemID
		}
		fieldName := p.builder.Intern(p.tok.Text)
		fieldSpan := p.tok.Span
		p.advance()
		if !p.expect(token.Colon, diag.SynUnexpectedToken) {
			return ast.NoItemID
		}
		fieldType := p.parseType()
		if !fieldType.IsValid() {
			return ast.NoItemID
		}
		fields = append(fields, ast.TypeField{
			Name: fieldName,
			Type: fieldType,
			Span: fieldSpan.Cover(p.builder.Types.Get(fieldType).Span),
		})
		if !p.eat(token.Comma) {
			break
		}
	}
	end := p.tok.Span
	if !p.expect(token.RBrace, diag.SynUnclosedDelim) {
		return ast.NoItemID
	}
	p.eat(token.Semicolon)

	return p.builder.Items.NewType(start.Cover(end), name, nameSpan, fields, hasDrop, hasCopy)
}

func (p *Parser) parseType() ast.TypeID {
	start := p.tok.Span
	switch p.tok.Kind {
	case token.Amp:
		p.advance()
		mut := p.eat(token.KwMut)
		elem := p.parseType()
		if !elem.IsValid() {
			return ast.NoTypeID
		}
		return p.builder.Types.NewRef(start.Cover(p.builder.Types.Get(elem).Span), mut, elem)

	case token.LParen:
		p.advance()
		var elems []ast.TypeID
		for !p.at(token.RParen) && !p.at(token.EOF) {
			elem := p.parseType()
			if !elem.IsValid() {
				return ast.NoTypeID
			}
			elems = append(elems, elem)
			if !p.eat(token.Comma) {
				break
			}
		}
		end := p.tok.Span
		if !p.expect(token.RParen, diag.SynUnclosedDelim) {
			return ast.NoTypeID
		}
		return p.builder.Types.NewTuple(start.Cover(end), elems)

	case token.LBracket:
		p.advance()
		elem := p.parseType()
		if !elem.IsValid() {
			return ast.NoTypeID
		}
		count := uint32(0)
		hasCount := false
		if p.eat(token.Semicolon) {
			if !p.at(token.IntLit) {
				p.errorf(diag.SynExpectType, p.tok.Span, "expected array length")
				return ast.NoTypeID
			}
			count = parseArrayLen(p.tok.Text)
			hasCount = true
			p.advance()
		}
		end := p.tok.Span
		if !p.expect(token.RBracket, diag.SynUnclosedDelim) {
			return ast.NoTypeID
		}
		return p.builder.Types.NewArray(start.Cover(end), elem, count, hasCount)

	case token.Ident:
		name := p.builder.Intern(p.tok.Text)
		p.advance()
		return p.builder.Types.NewPath(start, name)

	default:
		p.errorf(diag.SynExpectType, p.tok.Span, "expected type, found '%s'", p.tok.Kind)
		return ast.NoTypeID
	}
}

func parseArrayLen(text string) uint32 {
	var n uint32
	for _, ch := range text {
		if ch == '_' {
			continue
		}
		n = n*10 + uint32(ch-'0')
	}
	return n
}
