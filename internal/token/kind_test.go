package token

import "testing"

func TestLookupKeyword(t *testing.T) {
	cases := map[string]Kind{
		"fn":     KwFn,
		"let":    KwLet,
		"mut":    KwMut,
		"while":  KwWhile,
		"owner":  Ident,
		"Fn":     Ident,
		"return": KwReturn,
	}
	for text, want := range cases {
		if got := LookupKeyword(text); got != want {
			t.Errorf("LookupKeyword(%q) = %v, want %v", text, got, want)
		}
	}
}

func TestKindStringCoversKeywords(t *testing.T) {
	for k := range kindNames {
		if k.String() == "unknown" {
			t.Fatalf("kind %d has no name", k)
		}
	}
	if !KwFn.IsKeyword() || Ident.IsKeyword() {
		t.Fatal("keyword classification broken")
	}
	if !IntLit.IsLiteral() || Plus.IsLiteral() {
		t.Fatal("literal classification broken")
	}
}
