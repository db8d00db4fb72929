package lexer

import (
	"fmt"

	"rivet/internal/diag"
	"rivet/internal/token"
)

func (lx *Lexer) scanIdentOrKeyword() token.Token {
	start := lx.cursor.Offset()
	for !lx.cursor.EOF() && isIdentContinue(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	text := string(lx.cursor.Slice(start))
	span := lx.cursor.SpanFrom(start)
	if lx.opts.MaxTokenLen > 0 && span.Len() > lx.opts.MaxTokenLen {
		lx.report(diag.LexTokenTooLong, span, fmt.Sprintf("identifier longer than %d bytes", lx.opts.MaxTokenLen))
	}

	kind := token.LookupKeyword(text)
	if kind != token.Ident {
		return token.Token{Kind: kind, Span: span}
	}
	return token.Token{Kind: token.Ident, Span: span, Text: text}
}

func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Offset()
	isFloat := false
	for !lx.cursor.EOF() {
		ch := lx.cursor.Peek()
		switch {
		case isDec(ch) || ch == '_':
			lx.cursor.Bump()
		case ch == '.':
			// только одна точка, и за ней должна идти цифра
			if isFloat {
				goto done
			}
			if _, b1, ok := lx.cursor.Peek2(); !ok || !isDec(b1) {
				goto done
			}
			isFloat = true
			lx.cursor.Bump()
		default:
			goto done
		}
	}
done:
	span := lx.cursor.SpanFrom(start)
	text := string(lx.cursor.Slice(start))

	// идентификаторный хвост ("1abc") — ошибка
	if !lx.cursor.EOF() && isIdentStart(lx.cursor.Peek()) {
		for !lx.cursor.EOF() && isIdentContinue(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
		bad := lx.cursor.SpanFrom(start)
		lx.report(diag.LexBadNumber, bad, fmt.Sprintf("malformed number %q", string(lx.cursor.Slice(start))))
		return token.Token{Kind: token.Invalid, Span: bad, Text: string(lx.cursor.Slice(start))}
	}

	kind := token.IntLit
	if isFloat {
		kind = token.FloatLit
	}
	return token.Token{Kind: kind, Span: span, Text: text}
}

func (lx *Lexer) scanString() token.Token {
	start := lx.cursor.Offset()
	lx.cursor.Bump() // открывающая "
	var buf []byte
	for {
		if lx.cursor.EOF() || lx.cursor.Peek() == '\n' {
			span := lx.cursor.SpanFrom(start)
			lx.report(diag.LexUnterminatedString, span, "unterminated string literal")
			return token.Token{Kind: token.Invalid, Span: span, Text: string(buf)}
		}
		ch := lx.cursor.Bump()
		if ch == '"' {
			break
		}
		if ch == '\\' && !lx.cursor.EOF() {
			esc := lx.cursor.Bump()
			switch esc {
			case 'n':
				buf = append(buf, '\n')
			case 't':
				buf = append(buf, '\t')
			case '\\', '"':
				buf = append(buf, esc)
			default:
				buf = append(buf, '\\', esc)
			}
			continue
		}
		buf = append(buf, ch)
	}
	return token.Token{Kind: token.StringLit, Span: lx.cursor.SpanFrom(start), Text: string(buf)}
}

func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Offset()
	ch := lx.cursor.Bump()

	two := func(next byte, pair, single token.Kind) token.Token {
		if !lx.cursor.EOF() && lx.cursor.Peek() == next {
			lx.cursor.Bump()
			return token.Token{Kind: pair, Span: lx.cursor.SpanFrom(start)}
		}
		return token.Token{Kind: single, Span: lx.cursor.SpanFrom(start)}
	}

	switch ch {
	case '+':
		return token.Token{Kind: token.Plus, Span: lx.cursor.SpanFrom(start)}
	case '-':
		return two('>', token.Arrow, token.Minus)
	case '*':
		return token.Token{Kind: token.Star, Span: lx.cursor.SpanFrom(start)}
	case '/':
		return token.Token{Kind: token.Slash, Span: lx.cursor.SpanFrom(start)}
	case '%':
		return token.Token{Kind: token.Percent, Span: lx.cursor.SpanFrom(start)}
	case '=':
		return two('=', token.EqEq, token.Assign)
	case '!':
		return two('=', token.NotEq, token.Not)
	case '<':
		return two('=', token.LtEq, token.Lt)
	case '>':
		return two('=', token.GtEq, token.Gt)
	case '&':
		return two('&', token.AndAnd, token.Amp)
	case '|':
		if !lx.cursor.EOF() && lx.cursor.Peek() == '|' {
			lx.cursor.Bump()
			return token.Token{Kind: token.OrOr, Span: lx.cursor.SpanFrom(start)}
		}
	case '@':
		return token.Token{Kind: token.At, Span: lx.cursor.SpanFrom(start)}
	case '.':
		return token.Token{Kind: token.Dot, Span: lx.cursor.SpanFrom(start)}
	case ',':
		return token.Token{Kind: token.Comma, Span: lx.cursor.SpanFrom(start)}
	case ';':
		return token.Token{Kind: token.Semicolon, Span: lx.cursor.SpanFrom(start)}
	case ':':
		return token.Token{Kind: token.Colon, Span: lx.cursor.SpanFrom(start)}
	case '(':
		return token.Token{Kind: token.LParen, Span: lx.cursor.SpanFrom(start)}
	case ')':
		return token.Token{Kind: token.RParen, Span: lx.cursor.SpanFrom(start)}
	case '{':
		return token.Token{Kind: token.LBrace, Span: lx.cursor.SpanFrom(start)}
	case '}':
		return token.Token{Kind: token.RBrace, Span: lx.cursor.SpanFrom(start)}
	case '[':
		return token.Token{Kind: token.LBracket, Span: lx.cursor.SpanFrom(start)}
	case ']':
		return token.Token{Kind: token.RBracket, Span: lx.cursor.SpanFrom(start)}
	}

	span := lx.cursor.SpanFrom(start)
	lx.report(diag.LexUnknownChar, span, fmt.Sprintf("unknown character %q", ch))
	return token.Token{Kind: token.Invalid, Span: span, Text: string(ch)}
}
