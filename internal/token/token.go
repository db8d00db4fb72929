package token

import (
	"fmt"

	"rivet/internal/source"
)

// Token is a single lexeme with its source span.
type Token struct {
	Kind Kind
	Span source.Span
	Text string // для идентификаторов и литералов; пусто для пунктуации
}

func (t Token) String() string {
	if t.Text != "" {
		return fmt.Sprintf("%s(%q)@%s", t.Kind, t.Text, t.Span)
	}
	return fmt.Sprintf("%s@%s", t.Kind, t.Span)
}

// Is reports whether the token has any of the given kinds.
func (t Token) Is(kinds ...Kind) bool {
	for _, k := range kinds {
		if t.Kind == k {
			return true
		}
	}
	return false
}
