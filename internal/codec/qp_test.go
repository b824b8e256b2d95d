package codec

import (
	"bytes"
	"strings"
	"testing"
)

func TestDecodeQuotedPrintable(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		header bool
		want   string
	}{
		{"plain text", "hello world", false, "hello world"},
		{"hex escape", "caf=C3=A9", false, "caf\xc3\xa9"},
		{"lowercase hex", "=e2=82=ac", false, "\xe2\x82\xac"},
		{"soft break crlf", "foo=\r\nbar", false, "foobar"},
		{"soft break bare lf", "foo=\nbar", false, "foobar"},
		{"underscore in body stays", "a_b", false, "a_b"},
		{"underscore in header is space", "a_b", true, "a b"},
		{"malformed escape kept literal", "100=% sure", false, "100=% sure"},
		{"dangling equals", "abc=", false, "abc="},
		{"dangling equals with one hex", "abc=4", false, "abc=4"},
		{"equals equals", "a==3Db", false, "a==b"},
	}
	for _, tt := range tests {
		got := DecodeQuotedPrintable([]byte(tt.input), tt.header)
		if string(got) != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestDecodeQuotedPrintablePartial(t *testing.T) {
	out, consumed := DecodeQuotedPrintablePartial([]byte("abc="), false)
	if string(out) != "abc" || consumed != 3 {
		t.Errorf("Expected (abc, 3), got (%q, %d)", out, consumed)
	}

	out, consumed = DecodeQuotedPrintablePartial([]byte("abc=4"), false)
	if string(out) != "abc" || consumed != 3 {
		t.Errorf("Expected (abc, 3), got (%q, %d)", out, consumed)
	}

	// Feeding the held-back tail with the next chunk completes the escape.
	out2 := DecodeQuotedPrintable([]byte("=41rest"), false)
	if string(out2) != "Arest" {
		t.Errorf("Expected Arest, got %q", out2)
	}

	// A complete buffer is consumed entirely.
	out, consumed = DecodeQuotedPrintablePartial([]byte("=41=42"), false)
	if string(out) != "AB" || consumed != 6 {
		t.Errorf("Expected (AB, 6), got (%q, %d)", out, consumed)
	}
}

func TestEncodeQuotedPrintableEscapes(t *testing.T) {
	got := EncodeQuotedPrintable([]byte("caf\xc3\xa9"), true)
	if string(got) != "caf=C3=A9" {
		t.Errorf("Expected caf=C3=A9, got %q", got)
	}

	got = EncodeQuotedPrintable([]byte("a=b"), true)
	if string(got) != "a=3Db" {
		t.Errorf("Expected a=3Db, got %q", got)
	}
}

func TestEncodeQuotedPrintableFoldsLongLines(t *testing.T) {
	input := strings.Repeat("a", 100)
	got := string(EncodeQuotedPrintable([]byte(input), true))

	for _, line := range strings.Split(got, "\r\n") {
		if len(line) > 73 { // 72 plus the trailing soft-break "="
			t.Errorf("Line too long (%d): %q", len(line), line)
		}
	}
	if string(DecodeQuotedPrintable([]byte(got), false)) != input {
		t.Errorf("Fold round trip failed")
	}
}

func TestQuotedPrintableRoundTrip(t *testing.T) {
	// Binary mode must round-trip arbitrary bytes, including CR, LF,
	// "=", spaces and high bytes.
	inputs := [][]byte{
		[]byte("simple"),
		[]byte("line one\r\nline two\r\n"),
		[]byte("bare\nnewlines\nhere"),
		[]byte("trailing space \nand tab\t\n"),
		[]byte("= signs == everywhere ="),
		{0x01, 0x02, 0xfe, 0xff, 0x80, 0x0d, 0x0a, 0x20},
	}
	for _, input := range inputs {
		encoded := EncodeQuotedPrintable(input, false)
		decoded := DecodeQuotedPrintable(encoded, false)
		if !bytes.Equal(decoded, input) {
			t.Errorf("Round trip failed for %q: encoded %q, decoded %q", input, encoded, decoded)
		}
	}
}

func TestEncodeQuotedPrintableTextKeepsHardBreaks(t *testing.T) {
	got := EncodeQuotedPrintable([]byte("one\r\ntwo\r\n"), true)
	if string(got) != "one\r\ntwo\r\n" {
		t.Errorf("Expected hard breaks preserved, got %q", got)
	}

	// Bare LF is normalized to CRLF in text mode.
	got = EncodeQuotedPrintable([]byte("one\ntwo"), true)
	if string(got) != "one\r\ntwo" {
		t.Errorf("Expected one\\r\\ntwo, got %q", got)
	}
}

func TestEncodeQuotedPrintableTrailingSpace(t *testing.T) {
	// A space that would end a line must be escaped (RFC 2045 rule 3).
	got := string(EncodeQuotedPrintable([]byte("foo \r\nbar"), true))
	if got != "foo=20\r\nbar" {
		t.Errorf("Expected foo=20\\r\\nbar, got %q", got)
	}
}
