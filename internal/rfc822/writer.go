package rfc822

import (
	"bytes"
	"io"
	"strings"

	"kestrel/internal/codec"
)

// Writer serializes a part tree back into RFC 5322 bytes. It tracks
// the current output column to place header folds and stops at the
// first sink error; only sink failures abort serialization.
type Writer struct {
	w   io.Writer
	col int
	err error
}

// NewWriter returns a Writer emitting to w. Any io.Writer serves as
// the sink: a bytes.Buffer, a file, a network connection.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteMessage serializes the tree rooted at p to w. A message parsed
// and written back unmodified reproduces its input byte for byte,
// except for fold-point placement and for boundaries that had to be
// generated because the source had none.
func WriteMessage(w io.Writer, p *Part) error {
	wr := NewWriter(w)
	wr.writeEntity(p)
	return wr.err
}

func (w *Writer) writeString(s string) {
	w.writeBytes([]byte(s))
}

func (w *Writer) writeBytes(b []byte) {
	if w.err != nil {
		return
	}
	if _, err := w.w.Write(b); err != nil {
		w.err = err
		return
	}
	if i := bytes.LastIndexByte(b, '\n'); i >= 0 {
		w.col = len(b) - i - 1
	} else {
		w.col += len(b)
	}
}

// writeEntity emits one entity: header block, blank separator, body.
func (w *Writer) writeEntity(p *Part) {
	enc := w.bodyEncoding(p)
	w.writeHeader(p, enc)
	w.writeString("\r\n")
	w.writeBody(p, enc)
}

// bodyEncoding decides the Content-Transfer-Encoding for a leaf body.
// An encoding recorded during parse (or set by the compose layer) is
// kept; otherwise text bodies that need protection get
// quoted-printable, binary bodies get base64, and clean ASCII text
// stays 7bit.
func (w *Writer) bodyEncoding(p *Part) Encoding {
	if p.Kind != PartSingle {
		return EncodingNone
	}
	if p.Encoding != EncodingNone {
		return p.Encoding
	}
	ct := p.ContentType
	if ct == nil || ct.Type == "text" {
		if needsTransferEncoding(p.Body) {
			return EncodingQuotedPrintable
		}
		return Encoding7Bit
	}
	return EncodingBase64
}

// needsTransferEncoding reports whether a text body contains bytes or
// line lengths that cannot travel as 7bit.
func needsTransferEncoding(body []byte) bool {
	lineLen := 0
	for _, b := range body {
		if b == '\n' {
			lineLen = 0
			continue
		}
		lineLen++
		if b >= 0x80 || b == 0 || lineLen > hardMaxCol {
			return true
		}
	}
	return false
}

// writeHeader emits the fields of p, synthesizing Content-Type and
// Content-Transfer-Encoding headers when the tree carries structure
// the original header block does not.
func (w *Writer) writeHeader(p *Part, enc Encoding) {
	boundary := ""
	if p.Kind == PartMultipart && p.ContentType != nil {
		boundary = p.ContentType.Boundary()
		if boundary == "" {
			boundary = GenerateBoundary()
			p.ContentType.SetParam("boundary", boundary)
		}
	}

	wroteCT := false
	wroteCTE := false
	for _, f := range p.Fields {
		switch f.Kind {
		case FieldContentType:
			w.writeContentTypeField(p.ContentType)
			wroteCT = true
		case FieldContentTransferEncoding:
			switch {
			case enc != EncodingNone && enc != f.Encoding:
				w.writeRawField(f.Name, enc.String())
			case p.Kind != PartSingle && (f.Encoding == EncodingQuotedPrintable || f.Encoding == EncodingBase64):
				// The encapsulated content was decoded during parse
				// and is re-emitted as plain bytes.
				w.writeRawField(f.Name, Encoding7Bit.String())
			default:
				w.writeRawField(f.Name, f.Raw)
			}
			wroteCTE = true
		default:
			w.writeField(f)
		}
	}

	if !wroteCT && p.ContentType != nil && !isImplicitContentType(p) {
		w.writeContentTypeField(p.ContentType)
	}
	if !wroteCTE && enc != EncodingNone && enc != Encoding7Bit {
		w.writeRawField("Content-Transfer-Encoding", enc.String())
	}
}

// isImplicitContentType reports whether the part's content type is the
// parse-time default, in which case no header is synthesized and the
// output stays identical to an input that also had none.
func isImplicitContentType(p *Part) bool {
	ct := p.ContentType
	return p.Kind == PartSingle && ct.Type == "text" && ct.Subtype == "plain" &&
		strings.EqualFold(ct.Param("charset"), "us-ascii")
}

// writeField emits one field. Fields parsed from input keep their raw
// value text; fields built by a compose layer carry only structured
// payloads and are formatted from those.
func (w *Writer) writeField(f *Field) {
	if f.Raw != "" {
		w.writeRawField(f.Name, f.Raw)
		return
	}
	switch f.Kind {
	case FieldFrom, FieldSender, FieldReplyTo, FieldTo, FieldCc, FieldBcc:
		w.writeAddressField(f)
	case FieldMessageID, FieldInReplyTo, FieldReferences:
		w.writeMessageIDField(f)
	case FieldDate:
		w.writeRawField(f.Name, f.Date.Format("Mon, 02 Jan 2006 15:04:05 -0700"))
	default:
		w.writeRawField(f.Name, f.Raw)
	}
}

// writeRawField writes "Name: value" folding the value at white space.
func (w *Writer) writeRawField(name, value string) {
	w.writeString(name)
	w.writeString(":")
	sep := " "
	for _, tok := range splitValueTokens(value) {
		w.foldToken(sep, tok, foldValueCol)
		sep = " "
	}
	w.writeString("\r\n")
}

// writeAddressField writes a comma-separated mailbox list with fold
// points between addresses, never inside one: the quoted display name
// and the angle-addr of one mailbox always share a line.
func (w *Writer) writeAddressField(f *Field) {
	w.writeString(f.Name)
	w.writeString(":")
	for i, a := range f.Addresses {
		sep := " "
		if i > 0 {
			w.writeString(",")
		}
		w.foldToken(sep, a.String(), foldValueCol)
	}
	w.writeString("\r\n")
}

// writeMessageIDField writes a message-id list, folding between the
// angle-bracketed identifiers only.
func (w *Writer) writeMessageIDField(f *Field) {
	w.writeString(f.Name)
	w.writeString(":")
	for _, id := range f.MessageIDs {
		w.foldToken(" ", "<"+id+">", foldValueCol)
	}
	w.writeString("\r\n")
}

// writeContentTypeField formats a Content-Type header from the
// structured descriptor, folding before parameters. Parameters fold at
// the wider 78-column limit; a parameter never breaks internally.
func (w *Writer) writeContentTypeField(ct *ContentType) {
	w.writeString("Content-Type:")
	w.foldToken(" ", ct.String(), foldValueCol)
	for _, param := range ct.Params {
		w.writeString(";")
		w.foldToken(" ", formatParam(param), foldParamCol)
	}
	w.writeString("\r\n")
}

// formatParam renders name=value, quoting the value when it contains
// bytes outside the token alphabet.
func formatParam(p Param) string {
	if p.Value == "" {
		return p.Name + "=\"\""
	}
	plain := true
	for i := 0; i < len(p.Value); i++ {
		if !isTokenChar(p.Value[i]) {
			plain = false
			break
		}
	}
	if plain {
		return p.Name + "=" + p.Value
	}
	var b strings.Builder
	b.WriteString(p.Name)
	b.WriteString("=\"")
	for i := 0; i < len(p.Value); i++ {
		c := p.Value[i]
		if c == '"' || c == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	b.WriteString("\"")
	return b.String()
}

// writeBody emits the body of p according to its kind.
func (w *Writer) writeBody(p *Part, enc Encoding) {
	switch p.Kind {
	case PartMultipart:
		w.writeMultipartBody(p)
	case PartMessage:
		if p.Embedded != nil {
			w.writeEntity(p.Embedded)
		}
	default:
		w.writeLeafBody(p, enc)
	}
}

func (w *Writer) writeLeafBody(p *Part, enc Encoding) {
	isText := p.ContentType == nil || p.ContentType.Type == "text"
	body := p.Body
	if isText {
		body = normalizeCRLF(body)
	}
	switch enc {
	case EncodingQuotedPrintable:
		w.writeBytes(codec.EncodeQuotedPrintable(body, isText))
	case EncodingBase64:
		w.writeBytes(codec.EncodeBase64(body))
	default:
		w.writeBytes(body)
	}
}

func (w *Writer) writeMultipartBody(p *Part) {
	boundary := p.ContentType.Boundary()
	if len(p.Preamble) > 0 {
		w.writeBytes(p.Preamble)
		w.writeString("\r\n")
	}
	w.writeString("--" + boundary + "\r\n")
	for i, child := range p.Children {
		w.writeEntity(child)
		if i < len(p.Children)-1 {
			w.writeString("\r\n--" + boundary + "\r\n")
		}
	}
	w.writeString("\r\n--" + boundary + "--\r\n")
	if len(p.Epilogue) > 0 {
		w.writeBytes(p.Epilogue)
	}
}

// normalizeCRLF rewrites bare LF line endings as CRLF. Input that is
// already CRLF passes through unchanged.
func normalizeCRLF(body []byte) []byte {
	bare := false
	for i, b := range body {
		if b == '\n' && (i == 0 || body[i-1] != '\r') {
			bare = true
			break
		}
	}
	if !bare {
		return body
	}
	out := make([]byte, 0, len(body)+len(body)/16)
	for i, b := range body {
		if b == '\n' && (i == 0 || body[i-1] != '\r') {
			out = append(out, '\r')
		}
		out = append(out, b)
	}
	return out
}
