package message

import (
	"bytes"
	"io"
	"mime"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
)

// decodeText converts a text body from its declared charset to UTF-8.
// Unknown charsets and conversion failures degrade to a lossy pass
// where invalid sequences become replacement runes; a broken charset
// never fails the message.
func decodeText(body []byte, label string) string {
	label = strings.TrimSpace(strings.ToLower(label))
	if label == "" || label == "utf-8" || label == "utf8" || label == "us-ascii" || label == "ascii" {
		return toValidUTF8(body)
	}
	r, err := charset.NewReaderLabel(label, bytes.NewReader(body))
	if err != nil {
		return toValidUTF8(body)
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return toValidUTF8(body)
	}
	return toValidUTF8(decoded)
}

func toValidUTF8(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), "�")
}

// headerDecoder decodes RFC 2047 encoded words in header values,
// resolving charsets through the same lenient table as bodies.
var headerDecoder = mime.WordDecoder{
	CharsetReader: func(label string, input io.Reader) (io.Reader, error) {
		return charset.NewReaderLabel(label, input)
	},
}

// decodeHeaderText decodes encoded words in a header value, returning
// the input unchanged when decoding fails.
func decodeHeaderText(value string) string {
	decoded, err := headerDecoder.DecodeHeader(value)
	if err != nil {
		return value
	}
	return decoded
}
