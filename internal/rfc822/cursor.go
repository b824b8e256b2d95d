// Package rfc822 parses and writes Internet Message Format messages
// (RFC 5322) with MIME structure (RFC 2045/2046). The parser is built
// for hostile input: it never panics on malformed bytes, degrades a
// broken sub-part to whatever was recognized instead of failing the
// whole message, and tolerates the common violations of real mail
// servers (bare LF line endings, missing terminal boundaries, unknown
// header syntax).
package rfc822

import "errors"

var (
	// ErrNoMatch reports that a grammar primitive did not find its
	// token at the current position. The cursor is left unchanged and
	// the caller may try an alternative production.
	ErrNoMatch = errors.New("rfc822: no match")

	// ErrOutOfBounds reports that a primitive would read past the end
	// of the input. Recoverable like ErrNoMatch for alternation.
	ErrOutOfBounds = errors.New("rfc822: out of bounds")

	// ErrTruncated reports that a structurally required element can no
	// longer be completed because the input ended.
	ErrTruncated = errors.New("rfc822: truncated input")
)

// Cursor is a read-only view into an input buffer plus a position.
// Primitives either advance the position past what they matched or
// fail leaving it untouched. The underlying buffer is never modified.
type Cursor struct {
	data []byte
	pos  int
}

// NewCursor returns a cursor over data positioned at the start.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Pos returns the current position.
func (c *Cursor) Pos() int { return c.pos }

// Len returns the total input length.
func (c *Cursor) Len() int { return len(c.data) }

// EOF reports whether the cursor is at the end of the input.
func (c *Cursor) EOF() bool { return c.pos >= len(c.data) }

// Peek returns the byte at the current position without advancing.
func (c *Cursor) Peek() (byte, error) {
	if c.EOF() {
		return 0, ErrOutOfBounds
	}
	return c.data[c.pos], nil
}

// PeekAt returns the byte at offset bytes past the current position.
func (c *Cursor) PeekAt(offset int) (byte, error) {
	if c.pos+offset >= len(c.data) || c.pos+offset < 0 {
		return 0, ErrOutOfBounds
	}
	return c.data[c.pos+offset], nil
}

// Advance moves the cursor forward n bytes, clamped to the end of the
// input.
func (c *Cursor) Advance(n int) {
	c.pos += n
	if c.pos > len(c.data) {
		c.pos = len(c.data)
	}
}

// Rest returns the unconsumed remainder of the input. The returned
// slice aliases the cursor's buffer.
func (c *Cursor) Rest() []byte { return c.data[c.pos:] }

// Slice returns the input between two positions.
func (c *Cursor) Slice(from, to int) []byte { return c.data[from:to] }
