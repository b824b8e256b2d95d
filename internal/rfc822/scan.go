package rfc822

// Token-level primitives. Each one either advances the cursor past the
// matched span and returns nil (plus the matched text where useful),
// or returns ErrNoMatch/ErrOutOfBounds with the cursor unchanged.

// atom specials per RFC 5322 §3.2.3; an atom byte is printable ASCII
// excluding these.
var atomSpecial = [128]bool{
	'(': true, ')': true, '<': true, '>': true,
	'[': true, ']': true, ':': true, ';': true,
	'@': true, '\\': true, ',': true, '.': true,
	'"': true,
}

// token specials per RFC 2045 §5.1 (tspecials), used for content-type
// tokens and parameter names.
var tokenSpecial = [128]bool{
	'(': true, ')': true, '<': true, '>': true,
	'@': true, ',': true, ';': true, ':': true,
	'\\': true, '"': true, '/': true, '[': true,
	']': true, '?': true, '=': true,
}

func isWSP(b byte) bool { return b == ' ' || b == '\t' }

func isAtomChar(b byte) bool {
	return b > 32 && b < 127 && !atomSpecial[b]
}

func isTokenChar(b byte) bool {
	return b > 32 && b < 127 && !tokenSpecial[b]
}

// ParseCRLF matches a CRLF pair, or a bare LF for legacy input.
func ParseCRLF(c *Cursor) error {
	b, err := c.Peek()
	if err != nil {
		return ErrOutOfBounds
	}
	switch b {
	case '\n':
		c.Advance(1)
		return nil
	case '\r':
		if nb, err := c.PeekAt(1); err == nil && nb == '\n' {
			c.Advance(2)
			return nil
		}
	}
	return ErrNoMatch
}

// ParseLWSP matches one or more units of linear white space: SP, TAB,
// or a line break followed by more input (folding). CR, LF and CRLF
// are all accepted as the break.
func ParseLWSP(c *Cursor) error {
	matched := false
	for !c.EOF() {
		b, _ := c.Peek()
		if isWSP(b) || b == '\r' || b == '\n' {
			c.Advance(1)
			matched = true
			continue
		}
		break
	}
	if !matched {
		if c.EOF() {
			return ErrOutOfBounds
		}
		return ErrNoMatch
	}
	return nil
}

// SkipWSP advances past SP and TAB only, never line breaks. It always
// succeeds.
func SkipWSP(c *Cursor) {
	for !c.EOF() {
		b, _ := c.Peek()
		if !isWSP(b) {
			return
		}
		c.Advance(1)
	}
}

// ParseAtom matches a run of atom characters and returns it.
func ParseAtom(c *Cursor) ([]byte, error) {
	if c.EOF() {
		return nil, ErrOutOfBounds
	}
	start := c.pos
	for !c.EOF() {
		b, _ := c.Peek()
		if !isAtomChar(b) {
			break
		}
		c.Advance(1)
	}
	if c.pos == start {
		return nil, ErrNoMatch
	}
	return c.Slice(start, c.pos), nil
}

// ParseToken matches an RFC 2045 token (content-type names, parameter
// attributes) and returns it.
func ParseToken(c *Cursor) ([]byte, error) {
	if c.EOF() {
		return nil, ErrOutOfBounds
	}
	start := c.pos
	for !c.EOF() {
		b, _ := c.Peek()
		if !isTokenChar(b) {
			break
		}
		c.Advance(1)
	}
	if c.pos == start {
		return nil, ErrNoMatch
	}
	return c.Slice(start, c.pos), nil
}

// ParseQuotedString matches a double-quoted string with backslash
// escapes and returns the unescaped content.
func ParseQuotedString(c *Cursor) ([]byte, error) {
	b, err := c.Peek()
	if err != nil {
		return nil, ErrOutOfBounds
	}
	if b != '"' {
		return nil, ErrNoMatch
	}
	out := make([]byte, 0, 16)
	i := 1 // relative offset past the opening quote
	for {
		b, err := c.PeekAt(i)
		if err != nil {
			// Unterminated quoted string: accept what was collected.
			// Strict failure here would drop legitimate parameters
			// from sloppy senders.
			c.Advance(i)
			return out, nil
		}
		switch b {
		case '"':
			c.Advance(i + 1)
			return out, nil
		case '\\':
			nb, err := c.PeekAt(i + 1)
			if err != nil {
				c.Advance(i + 1)
				return out, nil
			}
			out = append(out, nb)
			i += 2
		case '\r', '\n':
			// Folding inside a quoted string; the break itself is not
			// part of the value.
			i++
		default:
			out = append(out, b)
			i++
		}
	}
}

// ParseKeyword matches word at the cursor, ASCII case-insensitively.
func ParseKeyword(c *Cursor, word string) error {
	if c.pos+len(word) > len(c.data) {
		return ErrOutOfBounds
	}
	for i := 0; i < len(word); i++ {
		if lowerByte(c.data[c.pos+i]) != lowerByte(word[i]) {
			return ErrNoMatch
		}
	}
	c.Advance(len(word))
	return nil
}

func lowerByte(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

// ParseBoundary matches "--" followed by text at the cursor, the
// delimiter-line prefix of a multipart boundary.
func ParseBoundary(c *Cursor, text string) error {
	save := c.pos
	if err := ParseKeyword(c, "--"); err != nil {
		return err
	}
	if c.pos+len(text) > len(c.data) {
		c.pos = save
		return ErrOutOfBounds
	}
	if string(c.data[c.pos:c.pos+len(text)]) != text {
		c.pos = save
		return ErrNoMatch
	}
	c.Advance(len(text))
	return nil
}
