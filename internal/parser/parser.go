package parser

import (
	"fmt"

	"rivet/internal/ast"
	"rivet/internal/diag"
	"rivet/internal/lexer"
	"rivet/internal/source"
	"rivet/internal/token"
)

// Parser поедает токены одного файла и наполняет ast.Builder.
type Parser struct {
	lx       *lexer.Lexer
	builder  *ast.Builder
	reporter diag.Reporter
	tok      token.Token // текущий токен
	fileID   source.FileID
}

// Options configures parsing.
type Options struct {
	Reporter diag.Reporter
}

// New creates a parser over a single file.
func New(file *source.File, builder *ast.Builder, opts Options) *Parser {
	reporter := opts.Reporter
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	p := &Parser{
		lx:       lexer.New(file, lexer.Options{Reporter: reporter}),
		builder:  builder,
		reporter: reporter,
		fileID:   file.ID,
	}
	p.advance()
	return p
}

// ParseFile parses the whole file and returns its AST root.
func (p *Parser) ParseFile() ast.FileID {
	fileSpan := source.Span{File: p.fileID}
	astFile := p.builder.Files.New(fileSpan)
	for p.tok.Kind != token.EOF {
		item := p.parseItem()
		if !item.IsValid() {
			// восстановление: до следующего fn/type/EOF
			p.recoverToItem()
			continue
		}
		p.builder.PushItem(astFile, item)
	}
	root := p.builder.Files.Get(astFile)
	root.Span = fileSpan
	return astFile
}

func (p *Parser) advance() {
	p.tok = p.lx.Next()
	// Invalid токены уже зарепорчены лексером — пропускаем их молча.
	for p.tok.Kind == token.Invalid {
		p.tok = p.lx.Next()
	}
}

func (p *Parser) at(kind token.Kind) bool {
	return p.tok.Kind == kind
}

func (p *Parser) eat(kind token.Kind) bool {
	if p.at(kind) {
		p.advance()
		return true
	}
	return false
}

// expect consumes kind or reports and returns false.
func (p *Parser) expect(kind token.Kind, code diag.Code) bool {
	if p.eat(kind) {
		return true
	}
	p.errorf(code, p.tok.Span, "expected '%s', found '%s'", kind, p.tok.Kind)
	return false
}

func (p *Parser) errorf(code diag.Code, span source.Span, format string, args ...any) {
	p.reporter.Report(code, diag.SevError, span, fmt.Sprintf(format, args...), nil, nil)
}

// recoverToItem skips tokens until a plausible item start.
func (p *Parser) recoverToItem() {
	for !p.tok.Is(token.EOF, token.KwFn, token.KwType, token.At) {
		p.advance()
	}
}

// recoverToStmt skips to the next ';' or block boundary.
func (p *Parser) recoverToStmt() {
	for !p.tok.Is(token.EOF, token.Semicolon, token.RBrace) {
		p.advance()
	}
	p.eat(token.Semicolon)
}
