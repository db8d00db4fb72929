package lexer

import (
	"fmt"

	"fortio.org/safecast"

	"rivet/internal/source"
)

// Cursor шагает по байтам файла, отслеживая смещение.
type Cursor struct {
	file *source.File
	off  uint32
}

func NewCursor(file *source.File) Cursor {
	return Cursor{file: file}
}

// EOF reports whether the cursor is past the last byte.
func (c *Cursor) EOF() bool {
	return int(c.off) >= len(c.file.Content)
}

// Peek returns the current byte without consuming it (0 at EOF).
func (c *Cursor) Peek() byte {
	if c.EOF() {
		return 0
	}
	return c.file.Content[c.off]
}

// Peek2 returns the current and next byte; ok is false near EOF.
func (c *Cursor) Peek2() (b0, b1 byte, ok bool) {
	if int(c.off)+1 >= len(c.file.Content) {
		return 0, 0, false
	}
	return c.file.Content[c.off], c.file.Content[c.off+1], true
}

// Bump consumes one byte.
func (c *Cursor) Bump() byte {
	b := c.Peek()
	if !c.EOF() {
		c.off++
	}
	return b
}

// Offset returns the current byte offset.
func (c *Cursor) Offset() uint32 {
	return c.off
}

// SpanFrom builds a span from start to the current offset.
func (c *Cursor) SpanFrom(start uint32) source.Span {
	return source.Span{File: c.file.ID, Start: start, End: c.off}
}

// Slice returns the raw bytes between start and the current offset.
func (c *Cursor) Slice(start uint32) []byte {
	end, err := safecast.Conv[int](c.off)
	if err != nil {
		panic(fmt.Errorf("cursor offset overflow: %w", err))
	}
	return c.file.Content[start:end]
}
