package rfc822

import (
	"strings"
	"testing"
)

// crlf converts the \n line breaks of a fixture literal to \r\n.
func crlf(s string) []byte {
	return []byte(strings.ReplaceAll(s, "\n", "\r\n"))
}

func TestParseSimpleMessage(t *testing.T) {
	raw := crlf(`From: Alice <alice@example.com>
To: bob@example.com
Subject: Greetings
Date: Tue, 03 Mar 2020 10:00:00 +0000
Message-ID: <m1@example.com>

Hello Bob
`)
	p, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if p.Kind != PartSingle {
		t.Errorf("Expected PartSingle, got %v", p.Kind)
	}
	if string(p.Body) != "Hello Bob\r\n" {
		t.Errorf("Unexpected body: %q", p.Body)
	}
	if p.Subject() != "Greetings" {
		t.Errorf("Unexpected subject: %q", p.Subject())
	}
	if p.MessageID() != "m1@example.com" {
		t.Errorf("Unexpected message id: %q", p.MessageID())
	}
	from := p.Addresses(FieldFrom)
	if len(from) != 1 || from[0].Address != "alice@example.com" || from[0].Name != "Alice" {
		t.Errorf("Unexpected From addresses: %v", from)
	}
	if p.Date().IsZero() {
		t.Errorf("Expected parsed date")
	}
	// Header-less entities default to text/plain.
	if p.ContentType.Type != "text" || p.ContentType.Subtype != "plain" {
		t.Errorf("Unexpected content type: %v", p.ContentType)
	}
}

func TestParseBareLFMessage(t *testing.T) {
	raw := []byte("Subject: lf only\n\nbody text\n")
	p, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if p.Subject() != "lf only" {
		t.Errorf("Unexpected subject: %q", p.Subject())
	}
	if string(p.Body) != "body text\n" {
		t.Errorf("Unexpected body: %q", p.Body)
	}
}

func TestParseFoldedHeader(t *testing.T) {
	raw := crlf(`Subject: part one
	part two
X-Junk

done
`)
	p, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if p.Subject() != "part one part two" {
		t.Errorf("Unexpected unfolded subject: %q", p.Subject())
	}
	// The colon-less X-Junk line is dropped, not an error.
	if p.HeaderValue("X-Junk") != "" {
		t.Errorf("Expected X-Junk to be dropped")
	}
}

func TestParseHeaderOnlyMessage(t *testing.T) {
	raw := crlf(`Subject: no body at all
From: a@example.com`)
	p, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if p.Subject() != "no body at all" {
		t.Errorf("Unexpected subject: %q", p.Subject())
	}
	if len(p.Body) != 0 {
		t.Errorf("Expected empty body, got %q", p.Body)
	}
}

func TestParseMultipart(t *testing.T) {
	raw := crlf(`From: a@example.com
Content-Type: multipart/mixed; boundary="XYZ"

This is the preamble.
--XYZ
Content-Type: text/plain

hello
--XYZ
Content-Type: application/octet-stream
Content-Transfer-Encoding: base64

SGVsbG8=
--XYZ--
This is the epilogue.
`)
	p, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if p.Kind != PartMultipart {
		t.Fatalf("Expected PartMultipart, got %v", p.Kind)
	}
	if len(p.Children) != 2 {
		t.Fatalf("Expected 2 children, got %d", len(p.Children))
	}
	if string(p.Preamble) != "This is the preamble." {
		t.Errorf("Unexpected preamble: %q", p.Preamble)
	}
	if string(p.Epilogue) != "This is the epilogue.\r\n" {
		t.Errorf("Unexpected epilogue: %q", p.Epilogue)
	}

	// The CRLF before each delimiter belongs to the delimiter, so the
	// first part's body has no trailing line break.
	if string(p.Children[0].Body) != "hello" {
		t.Errorf("Unexpected first body: %q", p.Children[0].Body)
	}
	if string(p.Children[1].Body) != "Hello" {
		t.Errorf("Expected base64 body decoded, got %q", p.Children[1].Body)
	}
	if p.Children[1].Encoding != EncodingBase64 {
		t.Errorf("Expected recorded base64 encoding")
	}
}

func TestParseMultipartBodyKeepsOwnBlankLine(t *testing.T) {
	raw := crlf(`Content-Type: multipart/mixed; boundary=b

--b

line one

--b--
`)
	p, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(p.Children) != 1 {
		t.Fatalf("Expected 1 child, got %d", len(p.Children))
	}
	// Exactly one CRLF is eaten by the delimiter; the body's own blank
	// line stays.
	if string(p.Children[0].Body) != "line one\r\n" {
		t.Errorf("Unexpected body: %q", p.Children[0].Body)
	}
}

func TestParseMultipartMissingTerminalBoundary(t *testing.T) {
	raw := crlf(`Content-Type: multipart/mixed; boundary=b

--b

first part
--b

second part runs to the end of input`)
	p, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(p.Children) != 2 {
		t.Fatalf("Expected 2 children, got %d", len(p.Children))
	}
	if string(p.Children[1].Body) != "second part runs to the end of input" {
		t.Errorf("Unexpected last body: %q", p.Children[1].Body)
	}
}

func TestParseBoundaryLookalikes(t *testing.T) {
	raw := crlf(`Content-Type: multipart/mixed; boundary=b

--b

-b is not a delimiter
--b- is not one either
--bx neither
--b--
`)
	p, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(p.Children) != 1 {
		t.Fatalf("Expected 1 child, got %d", len(p.Children))
	}
	want := "-b is not a delimiter\r\n--b- is not one either\r\n--bx neither"
	if string(p.Children[0].Body) != want {
		t.Errorf("Unexpected body: %q", p.Children[0].Body)
	}
}

func TestParseBoundaryTransportPadding(t *testing.T) {
	raw := []byte("Content-Type: multipart/mixed; boundary=b\r\n" +
		"\r\n" +
		"--b \t\r\npart\r\n--b-- \r\n")
	p, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(p.Children) != 1 || string(p.Children[0].Body) != "part" {
		t.Errorf("Padding after delimiter not tolerated: %+v", p.Children)
	}
}

func TestParseMultipartWithoutBoundaryDegrades(t *testing.T) {
	raw := crlf(`Content-Type: multipart/mixed

not really multipart
`)
	p, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if p.Kind != PartSingle {
		t.Errorf("Expected degradation to PartSingle, got %v", p.Kind)
	}
	if p.ContentType.Type != "text" || p.ContentType.Subtype != "plain" {
		t.Errorf("Expected text/plain fallback, got %v", p.ContentType)
	}
	if string(p.Body) != "not really multipart\r\n" {
		t.Errorf("Unexpected body: %q", p.Body)
	}
}

func TestParseDigestDefaultsToMessage(t *testing.T) {
	raw := crlf(`Content-Type: multipart/digest; boundary=d

--d

Subject: inner one

inner body
--d--
`)
	p, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(p.Children) != 1 {
		t.Fatalf("Expected 1 child, got %d", len(p.Children))
	}
	c := p.Children[0]
	if c.Kind != PartMessage {
		t.Fatalf("Expected digest child to default to message/rfc822, got %v", c.Kind)
	}
	if c.Embedded == nil || c.Embedded.Subject() != "inner one" {
		t.Errorf("Embedded message not parsed: %+v", c.Embedded)
	}
}

func TestParseEmbeddedMessage(t *testing.T) {
	raw := crlf(`Subject: outer
Content-Type: message/rfc822

Subject: inner
From: inner@example.com

inner body
`)
	p, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if p.Kind != PartMessage {
		t.Fatalf("Expected PartMessage, got %v", p.Kind)
	}
	inner := p.Embedded
	if inner == nil {
		t.Fatal("Expected embedded part")
	}
	if inner.Subject() != "inner" {
		t.Errorf("Unexpected inner subject: %q", inner.Subject())
	}
	if string(inner.Body) != "inner body\r\n" {
		t.Errorf("Unexpected inner body: %q", inner.Body)
	}
	if inner.Parent() != p {
		t.Errorf("Embedded parent link not set")
	}
}

func TestParseDepthLimit(t *testing.T) {
	// Build a message nested 5 levels deep.
	raw := "Subject: level 5\r\n\r\ninnermost"
	for i := 0; i < 4; i++ {
		raw = "Content-Type: message/rfc822\r\n\r\n" + raw
	}

	p, err := ParseDepth([]byte(raw), 2)
	if err != nil {
		t.Fatalf("ParseDepth failed: %v", err)
	}
	if p.Kind != PartMessage {
		t.Fatalf("Expected outer PartMessage, got %v", p.Kind)
	}
	// At the cap the inner message stays an opaque leaf.
	if p.Embedded.Kind != PartSingle {
		t.Errorf("Expected depth-capped leaf, got %v", p.Embedded.Kind)
	}

	deep, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	depth := 0
	for q := deep; q.Embedded != nil; q = q.Embedded {
		depth++
	}
	if depth != 4 {
		t.Errorf("Expected 4 nested messages, got %d", depth)
	}
}

func TestParseQuotedPrintableBody(t *testing.T) {
	raw := crlf(`Content-Type: text/plain; charset=utf-8
Content-Transfer-Encoding: quoted-printable

caf=C3=A9 says hi=
!
`)
	p, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if string(p.Body) != "caf\xc3\xa9 says hi!\r\n" {
		t.Errorf("Unexpected decoded body: %q", p.Body)
	}
}

func TestParseUnknownEncodingIsIdentity(t *testing.T) {
	raw := crlf(`Content-Transfer-Encoding: x-uuencode

raw bytes kept as-is
`)
	p, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if p.Encoding != EncodingBinary {
		t.Errorf("Expected unknown encoding mapped to binary, got %v", p.Encoding)
	}
	if string(p.Body) != "raw bytes kept as-is\r\n" {
		t.Errorf("Unexpected body: %q", p.Body)
	}
}

func TestParseBrokenAddressKeepsRaw(t *testing.T) {
	raw := crlf(`From: not an address at all
Subject: x

body
`)
	p, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	// The unparseable From is downgraded, never discarded.
	if p.HeaderValue("From") != "not an address at all" {
		t.Errorf("Raw From value lost: %q", p.HeaderValue("From"))
	}
	if p.Field(FieldFrom) != nil {
		t.Errorf("Expected broken From downgraded to optional")
	}
}

func TestParseAttachment(t *testing.T) {
	raw := crlf(`Content-Type: application/pdf; name="report.pdf"
Content-Disposition: attachment; filename="report.pdf"
Content-Transfer-Encoding: base64

JVBERg==
`)
	p, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !p.IsAttachment() {
		t.Errorf("Expected attachment disposition")
	}
	if p.Filename() != "report.pdf" {
		t.Errorf("Unexpected filename: %q", p.Filename())
	}
	if string(p.Body) != "%PDF" {
		t.Errorf("Unexpected decoded body: %q", p.Body)
	}
}
