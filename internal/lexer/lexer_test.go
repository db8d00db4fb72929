package lexer

import (
	"testing"

	"rivet/internal/diag"
	"rivet/internal/source"
	"rivet/internal/token"
)

func lex(t *testing.T, src string) ([]token.Token, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.rv", []byte(src))
	bag := diag.NewBag(16)
	lx := New(fs.Get(id), Options{Reporter: diag.BagReporter{Bag: bag}})
	return lx.Tokens(), bag
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, 0, len(toks))
	for _, tok := range toks {
		out = append(out, tok.Kind)
	}
	return out
}

func TestLexLetStatement(t *testing.T) {
	toks, bag := lex(t, `let mut x: int = 42;`)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	want := []token.Kind{
		token.KwLet, token.KwMut, token.Ident, token.Colon, token.Ident,
		token.Assign, token.IntLit, token.Semicolon, token.EOF,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("kinds[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if toks[2].Text != "x" || toks[6].Text != "42" {
		t.Fatalf("texts = %q %q", toks[2].Text, toks[6].Text)
	}
}

func TestLexBorrowOperators(t *testing.T) {
	toks, bag := lex(t, `&mut p.x && *r`)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	want := []token.Kind{
		token.Amp, token.KwMut, token.Ident, token.Dot, token.Ident,
		token.AndAnd, token.Star, token.Ident, token.EOF,
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Fatalf("kinds = %v, want %v", kinds(toks), want)
		}
	}
}

func TestLexSkipsComments(t *testing.T) {
	toks, _ := lex(t, "// header\nfn main() {} // trailing\n")
	want := []token.Kind{
		token.KwFn, token.Ident, token.LParen, token.RParen,
		token.LBrace, token.RBrace, token.EOF,
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Fatalf("kinds = %v, want %v", kinds(toks), want)
		}
	}
}

func TestLexStringEscapes(t *testing.T) {
	toks, bag := lex(t, `"a\nb\"c"`)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	if toks[0].Kind != token.StringLit || toks[0].Text != "a\nb\"c" {
		t.Fatalf("tok = %v text=%q", toks[0].Kind, toks[0].Text)
	}
}

func TestLexUnterminatedString(t *testing.T) {
	_, bag := lex(t, `"oops`)
	if !bag.HasErrors() {
		t.Fatal("expected diagnostic")
	}
	if bag.Items()[0].Code != diag.LexUnterminatedString {
		t.Fatalf("code = %v", bag.Items()[0].Code)
	}
}

func TestLexBadNumber(t *testing.T) {
	_, bag := lex(t, `let a = 1abc;`)
	if !bag.HasErrors() || bag.Items()[0].Code != diag.LexBadNumber {
		t.Fatalf("diags = %v", bag.Items())
	}
}

func TestLexFloatAndSpans(t *testing.T) {
	toks, bag := lex(t, "3.25")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	if toks[0].Kind != token.FloatLit || toks[0].Text != "3.25" {
		t.Fatalf("tok = %v", toks[0])
	}
	if toks[0].Span.Start != 0 || toks[0].Span.End != 4 {
		t.Fatalf("span = %v", toks[0].Span)
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("p.rv", []byte("let x"))
	lx := New(fs.Get(id), Options{})
	if lx.Peek().Kind != token.KwLet {
		t.Fatal("peek kind mismatch")
	}
	if lx.Next().Kind != token.KwLet {
		t.Fatal("next after peek mismatch")
	}
	if lx.Next().Kind != token.Ident {
		t.Fatal("second token mismatch")
	}
}
