// Package codec implements the Content-Transfer-Encodings used by mail
// bodies and headers: quoted-printable and base64. Both decoders are
// deliberately permissive. Real-world mail contains truncated escapes,
// stray bytes and broken padding, and a strict decoder would reject
// deliverable messages. Decoding never fails; it recovers what it can.
package codec

import "bytes"

const hexUpper = "0123456789ABCDEF"

// qpSoftBreakCol is the column at which the encoder inserts a soft
// line break ("=\r\n"). RFC 2045 allows up to 76; staying at 72 leaves
// room for the trailing escape.
const qpSoftBreakCol = 72

func unhex(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	}
	return 0, false
}

// DecodeQuotedPrintable decodes a complete quoted-printable buffer.
// "=XX" hex escapes are replaced by the encoded byte, "=\r\n" and "=\n"
// soft breaks are removed, and in header mode "_" decodes to a space
// (RFC 2047 Q-encoding). A malformed escape is passed through as
// literal text rather than reported as an error.
func DecodeQuotedPrintable(in []byte, headerMode bool) []byte {
	out, _ := decodeQP(in, headerMode, false)
	return out
}

// DecodeQuotedPrintablePartial decodes as much of in as can be decoded
// without seeing more input. A trailing "=" or "=X" or "=\r" may be the
// start of an escape whose remainder arrives in the next chunk, so it
// is held back; the returned count says how many input bytes were
// consumed. Feed the unconsumed tail in front of the next chunk.
func DecodeQuotedPrintablePartial(in []byte, headerMode bool) ([]byte, int) {
	return decodeQP(in, headerMode, true)
}

func decodeQP(in []byte, headerMode, partial bool) ([]byte, int) {
	out := make([]byte, 0, len(in))
	i := 0
	for i < len(in) {
		c := in[i]
		if c == '_' && headerMode {
			out = append(out, ' ')
			i++
			continue
		}
		if c != '=' {
			out = append(out, c)
			i++
			continue
		}

		// Escape sequence. Decide between hex pair, soft break and
		// malformed passthrough.
		rest := in[i+1:]
		switch {
		case len(rest) >= 2:
			if hi, ok := unhex(rest[0]); ok {
				if lo, ok2 := unhex(rest[1]); ok2 {
					out = append(out, hi<<4|lo)
					i += 3
					continue
				}
			}
			if rest[0] == '\r' && rest[1] == '\n' {
				i += 3 // soft break, removed
				continue
			}
			if rest[0] == '\n' {
				i += 2 // soft break with a bare LF
				continue
			}
			// Malformed: keep the "=" as literal text.
			out = append(out, '=')
			i++
		case len(rest) == 1:
			if rest[0] == '\n' {
				i += 2
				continue
			}
			if partial {
				// "=X" or "=\r" may complete in the next chunk.
				return out, i
			}
			out = append(out, '=', rest[0])
			i += 2
		default:
			if partial {
				return out, i
			}
			// Dangling "=" at end of input, kept literally.
			out = append(out, '=')
			i++
		}
	}
	return out, i
}

// EncodeQuotedPrintable encodes in as quoted-printable. Printable ASCII
// except "=" passes through, everything else becomes "=XX". Lines are
// folded with a soft "=\r\n" break before column 72. For text input,
// CRLF sequences are kept as hard line breaks and a space or tab that
// would end a line is escaped (RFC 2045 rule 3); for binary input CR
// and LF are escaped like any other byte.
func EncodeQuotedPrintable(in []byte, isText bool) []byte {
	var out bytes.Buffer
	col := 0

	quote := func(c byte) {
		if col+3 > qpSoftBreakCol {
			out.WriteString("=\r\n")
			col = 0
		}
		out.WriteByte('=')
		out.WriteByte(hexUpper[c>>4])
		out.WriteByte(hexUpper[c&0x0f])
		col += 3
	}
	plain := func(c byte) {
		if col+1 > qpSoftBreakCol {
			out.WriteString("=\r\n")
			col = 0
		}
		out.WriteByte(c)
		col++
	}

	for i := 0; i < len(in); i++ {
		c := in[i]
		switch {
		case isText && c == '\r' && i+1 < len(in) && in[i+1] == '\n':
			out.WriteString("\r\n")
			col = 0
			i++
		case isText && c == '\n':
			out.WriteString("\r\n")
			col = 0
		case c == ' ' || c == '\t':
			if isText && lineEndsAfter(in, i) {
				quote(c)
			} else {
				plain(c)
			}
		case c >= 33 && c <= 126 && c != '=':
			plain(c)
		default:
			quote(c)
		}
	}
	return out.Bytes()
}

// lineEndsAfter reports whether the byte at i is the last one before a
// line break or the end of input.
func lineEndsAfter(in []byte, i int) bool {
	if i+1 >= len(in) {
		return true
	}
	next := in[i+1]
	return next == '\n' || (next == '\r' && i+2 < len(in) && in[i+2] == '\n')
}
