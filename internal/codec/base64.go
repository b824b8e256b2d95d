package codec

import "bytes"

const b64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// b64LineLen is the output column at which the encoder breaks lines,
// per RFC 2045 §6.8.
const b64LineLen = 76

var b64Reverse [256]int16

func init() {
	for i := range b64Reverse {
		b64Reverse[i] = -1
	}
	for i := 0; i < len(b64Alphabet); i++ {
		b64Reverse[b64Alphabet[i]] = int16(i)
	}
}

// DecodeBase64 decodes a complete base64 buffer. Bytes outside the
// alphabet (line breaks, whitespace, garbage inserted by relays) are
// skipped silently; "=" terminates the current quartet. An incomplete
// trailing quartet is decoded as far as it goes: two symbols yield one
// byte, three yield two.
func DecodeBase64(in []byte) []byte {
	out, _ := decodeB64(in, false)
	return out
}

// DecodeBase64Partial decodes the complete quartets of in and holds
// back a trailing incomplete one for the next chunk. The returned
// count is the number of input bytes consumed, including any skipped
// non-alphabet bytes before the held-back symbols.
func DecodeBase64Partial(in []byte) ([]byte, int) {
	return decodeB64(in, true)
}

func decodeB64(in []byte, partial bool) ([]byte, int) {
	out := make([]byte, 0, len(in)/4*3+3)

	var quad [4]byte
	n := 0           // symbols collected in quad
	consumed := 0    // input bytes consumed through the last flushed quartet
	ended := false   // saw "=" padding

	flush := func(count int) {
		// count symbols -> count-1 bytes
		v := uint32(0)
		for i := 0; i < 4; i++ {
			if i < count {
				v = v<<6 | uint32(quad[i])
			} else {
				v <<= 6
			}
		}
		switch count {
		case 4:
			out = append(out, byte(v>>16), byte(v>>8), byte(v))
		case 3:
			out = append(out, byte(v>>16), byte(v>>8))
		case 2:
			out = append(out, byte(v>>16))
		}
	}

	for i := 0; i < len(in); i++ {
		c := in[i]
		if c == '=' {
			ended = true
			consumed = i + 1
			continue
		}
		v := b64Reverse[c]
		if v < 0 {
			if n == 0 {
				consumed = i + 1
			}
			continue // silently skip non-alphabet bytes
		}
		if ended {
			// Data after padding: close out the padded quartet and
			// start a fresh stream, mirroring the leniency of servers
			// that concatenate encoded chunks.
			if n > 0 {
				flush(n)
				n = 0
			}
			ended = false
		}
		quad[n] = byte(v)
		n++
		if n == 4 {
			flush(4)
			n = 0
			consumed = i + 1
		}
	}

	if n > 0 {
		if partial && !ended {
			return out, consumed
		}
		flush(n)
		consumed = len(in)
	} else {
		consumed = len(in)
	}
	return out, consumed
}

// EncodeBase64 encodes in as base64 with a CRLF after every 76 output
// characters.
func EncodeBase64(in []byte) []byte {
	var out bytes.Buffer
	col := 0

	emit := func(c byte) {
		if col == b64LineLen {
			out.WriteString("\r\n")
			col = 0
		}
		out.WriteByte(c)
		col++
	}

	i := 0
	for ; i+3 <= len(in); i += 3 {
		v := uint32(in[i])<<16 | uint32(in[i+1])<<8 | uint32(in[i+2])
		emit(b64Alphabet[v>>18&0x3f])
		emit(b64Alphabet[v>>12&0x3f])
		emit(b64Alphabet[v>>6&0x3f])
		emit(b64Alphabet[v&0x3f])
	}
	switch len(in) - i {
	case 1:
		v := uint32(in[i]) << 16
		emit(b64Alphabet[v>>18&0x3f])
		emit(b64Alphabet[v>>12&0x3f])
		emit('=')
		emit('=')
	case 2:
		v := uint32(in[i])<<16 | uint32(in[i+1])<<8
		emit(b64Alphabet[v>>18&0x3f])
		emit(b64Alphabet[v>>12&0x3f])
		emit(b64Alphabet[v>>6&0x3f])
		emit('=')
	}
	return out.Bytes()
}
