package lexer

import "rivet/internal/diag"

// Options configures lexing behaviour.
type Options struct {
	// Reporter receives lexical diagnostics; nil silences them.
	Reporter diag.Reporter
	// MaxTokenLen ограничивает длину одного токена в байтах (0 = без лимита).
	MaxTokenLen uint32
}
