package rfc822

import (
	"bytes"
	"strings"

	"kestrel/internal/codec"
)

// DefaultMaxDepth caps recursion into nested message/rfc822 parts. A
// hostile message can nest encapsulated messages thousands of levels
// deep; beyond the cap the inner message is kept as an opaque leaf.
const DefaultMaxDepth = 32

// Parse parses a raw RFC 5322 message into a part tree using
// DefaultMaxDepth. It fails only when the input cannot be interpreted
// as a message at all; malformed sub-parts and header fields degrade
// to whatever was recognized.
func Parse(raw []byte) (*Part, error) {
	return ParseDepth(raw, DefaultMaxDepth)
}

// ParseDepth is Parse with an explicit message/rfc822 nesting limit.
func ParseDepth(raw []byte, maxDepth int) (*Part, error) {
	if maxDepth < 1 {
		maxDepth = 1
	}
	p := parseEntity(raw, defaultContentType(), maxDepth)
	return p, nil
}

// parseEntity parses one entity (header block plus body) into a part.
// fallback is the content type assumed when the entity has none; it is
// text/plain except inside multipart/digest.
func parseEntity(raw []byte, fallback *ContentType, depth int) *Part {
	headerLen, bodyStart := splitHeaderBody(raw)
	fields := parseHeaderBlock(raw[:headerLen])
	body := raw[bodyStart:]

	part := &Part{Fields: fields}
	if f := part.Field(FieldContentType); f != nil && f.ContentType != nil {
		part.ContentType = f.ContentType
	} else {
		part.ContentType = fallback
	}
	if f := part.Field(FieldContentTransferEncoding); f != nil {
		part.Encoding = f.Encoding
	}

	switch {
	case part.ContentType.IsMultipart():
		boundary := part.ContentType.Boundary()
		if boundary == "" {
			// Malformed: a multipart type without a boundary cannot be
			// split. Degrade to a plain text leaf instead of failing
			// the message.
			part.Kind = PartSingle
			part.ContentType = defaultContentType()
			part.Body = decodeBody(body, part.Encoding)
			return part
		}
		part.Kind = PartMultipart
		preamble, segments, epilogue := splitMultipart(body, boundary)
		part.Preamble = preamble
		part.Epilogue = epilogue

		childFallback := defaultContentType()
		if part.ContentType.Subtype == "digest" {
			// RFC 2046 §5.1.5: in a digest the default part type is
			// message/rfc822.
			childFallback = &ContentType{Type: "message", Subtype: "rfc822"}
		}
		for _, seg := range segments {
			part.Children = append(part.Children, parseEntity(seg, childFallback, depth))
		}
		part.adopt()

	case part.ContentType.IsMessage() && depth > 1:
		part.Kind = PartMessage
		inner := decodeBody(body, part.Encoding)
		// Some senders put blank lines before the encapsulated
		// message's header.
		for len(inner) > 0 && (inner[0] == '\r' || inner[0] == '\n') {
			inner = inner[1:]
		}
		part.Embedded = parseEntity(inner, defaultContentType(), depth-1)
		part.adopt()

	default:
		part.Kind = PartSingle
		part.Body = decodeBody(body, part.Encoding)
	}
	return part
}

// decodeBody removes the Content-Transfer-Encoding from a body.
// Decoding never fails; malformed escapes pass through literally.
func decodeBody(body []byte, enc Encoding) []byte {
	switch enc {
	case EncodingQuotedPrintable:
		return codec.DecodeQuotedPrintable(body, false)
	case EncodingBase64:
		return codec.DecodeBase64(body)
	}
	return body
}

// splitHeaderBody locates the blank line separating header block and
// body. It returns the header length and the body start offset. When
// no blank line exists, input that looks like a header block is all
// headers with an empty body, anything else is all body.
func splitHeaderBody(raw []byte) (headerLen, bodyStart int) {
	// A leading blank line means the entity has no header at all.
	if len(raw) > 0 && raw[0] == '\n' {
		return 0, 1
	}
	if len(raw) > 1 && raw[0] == '\r' && raw[1] == '\n' {
		return 0, 2
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\n' {
			continue
		}
		// Line break at i; a following blank line ends the header.
		rest := raw[i+1:]
		if len(rest) == 0 {
			break
		}
		if rest[0] == '\n' {
			return i + 1, i + 2
		}
		if rest[0] == '\r' && len(rest) > 1 && rest[1] == '\n' {
			return i + 1, i + 3
		}
	}
	if looksLikeHeader(raw) {
		return len(raw), len(raw)
	}
	return 0, 0
}

// looksLikeHeader reports whether the first line of raw has the shape
// "name: value". Used only when the blank separator line is missing.
func looksLikeHeader(raw []byte) bool {
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case ':':
			return i > 0
		case ' ', '\t', '\r', '\n':
			return false
		}
	}
	return false
}

// parseHeaderBlock unfolds and parses a header block into fields.
// Unknown names become FieldOptional; lines with no colon at all are
// dropped. A partially unparseable block yields whatever fields were
// recognized.
func parseHeaderBlock(block []byte) []*Field {
	var fields []*Field

	var name, value string
	flush := func() {
		if name != "" {
			fields = append(fields, newField(name, value))
		}
		name, value = "", ""
	}

	for _, line := range splitLines(block) {
		line = bytes.TrimRight(line, "\r\n")
		if len(line) == 0 {
			continue
		}
		if isWSP(line[0]) {
			// Folded continuation of the previous field.
			if name != "" {
				value += " " + string(bytes.TrimLeft(line, " \t"))
			}
			continue
		}
		flush()
		colon := bytes.IndexByte(line, ':')
		if colon <= 0 {
			// Not a header line; mbox "From " separators and other
			// garbage end up here.
			continue
		}
		name = string(bytes.TrimRight(line[:colon], " \t"))
		value = strings.TrimLeft(string(line[colon+1:]), " \t")
	}
	flush()
	return fields
}

// splitLines splits data into lines, each including its terminator.
func splitLines(data []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i := 0; i < len(data); i++ {
		if data[i] == '\n' {
			lines = append(lines, data[start:i+1])
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, data[start:])
	}
	return lines
}

// multipartState is the scanner state while walking a multipart body.
type multipartState int

const (
	statePreamble multipartState = iota // before the first delimiter
	stateBodyPart                       // collecting a part's bytes
	stateEpilogue                       // after the closing delimiter
)

// splitMultipart cuts a multipart body into preamble, raw part
// segments and epilogue along "--boundary" delimiter lines. A missing
// terminal "--boundary--" is not an error: whatever was collected when
// the input ends becomes the last part's body.
func splitMultipart(body []byte, boundary string) (preamble []byte, segments [][]byte, epilogue []byte) {
	state := statePreamble
	segStart := 0

	for _, ln := range splitLineSpans(body) {
		delim, closing := matchBoundaryLine(body[ln.start:ln.end], boundary)
		if !delim {
			continue
		}

		switch state {
		case statePreamble:
			// The line break before the delimiter belongs to the
			// delimiter, not to the preamble.
			if pre := trimBoundaryCRLF(body[:ln.start]); len(pre) > 0 {
				preamble = pre
			}
		case stateBodyPart:
			segments = append(segments, trimBoundaryCRLF(body[segStart:ln.start]))
		case stateEpilogue:
			// Delimiters after the close are epilogue text.
			continue
		}

		if closing {
			state = stateEpilogue
			if tail := body[ln.next:]; len(tail) > 0 {
				epilogue = tail
			}
		} else {
			state = stateBodyPart
			segStart = ln.next
		}
	}

	if state == stateBodyPart {
		// No terminal boundary; accept the remainder as the last part.
		segments = append(segments, body[segStart:])
	}
	return preamble, segments, epilogue
}

// lineSpan is one line of a buffer: [start,end) excludes the
// terminator, next is the offset just past it.
type lineSpan struct {
	start, end, next int
}

func splitLineSpans(data []byte) []lineSpan {
	var spans []lineSpan
	start := 0
	for i := 0; i < len(data); i++ {
		if data[i] != '\n' {
			continue
		}
		end := i
		if end > start && data[end-1] == '\r' {
			end--
		}
		spans = append(spans, lineSpan{start: start, end: end, next: i + 1})
		start = i + 1
	}
	if start < len(data) {
		spans = append(spans, lineSpan{start: start, end: len(data), next: len(data)})
	}
	return spans
}

// trimBoundaryCRLF removes the single line break that separates a body
// from the following boundary delimiter (RFC 2046 §5.1.1: that CRLF is
// part of the delimiter). Only one break is removed; a body that ends
// with its own blank line keeps it.
func trimBoundaryCRLF(seg []byte) []byte {
	if n := len(seg); n > 0 && seg[n-1] == '\n' {
		seg = seg[:n-1]
		if n := len(seg); n > 0 && seg[n-1] == '\r' {
			seg = seg[:n-1]
		}
	}
	return seg
}

// dashState tracks the leading-dash sub-machine of a delimiter line.
// Boundary recognition needs exactly two dashes: a lone "-" at line
// start is ordinary body content, which is what this state machine
// disambiguates.
type dashState int

const (
	dashNone dashState = iota // no dash seen yet
	dashOne                   // one dash seen
	dashTwo                   // "--" complete, boundary text may follow
)

// matchBoundaryLine reports whether line (without terminator) is a
// delimiter line for boundary, and whether it is the closing
// "--boundary--" form. Trailing transport padding (WSP) is allowed.
func matchBoundaryLine(line []byte, boundary string) (delim, closing bool) {
	state := dashNone
	i := 0
	for ; i < len(line) && state != dashTwo; i++ {
		if line[i] != '-' {
			return false, false
		}
		switch state {
		case dashNone:
			state = dashOne
		case dashOne:
			state = dashTwo
		}
	}
	if state != dashTwo {
		return false, false
	}

	if len(line)-i < len(boundary) || string(line[i:i+len(boundary)]) != boundary {
		return false, false
	}
	i += len(boundary)

	// Optional closing dashes, again counted one at a time.
	state = dashNone
	for i < len(line) && line[i] == '-' && state != dashTwo {
		switch state {
		case dashNone:
			state = dashOne
		case dashOne:
			state = dashTwo
		}
		i++
	}
	switch state {
	case dashOne:
		// "--boundary-" is not a delimiter.
		return false, false
	case dashTwo:
		closing = true
	}

	for ; i < len(line); i++ {
		if !isWSP(line[i]) {
			return false, false
		}
	}
	return true, closing
}
