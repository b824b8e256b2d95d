package rfc822

import (
	"net/mail"
	"strings"
	"time"
)

// FieldKind identifies the semantic type of a header field.
type FieldKind int

const (
	FieldOptional FieldKind = iota
	FieldFrom
	FieldSender
	FieldReplyTo
	FieldTo
	FieldCc
	FieldBcc
	FieldSubject
	FieldDate
	FieldMessageID
	FieldInReplyTo
	FieldReferences
	FieldContentType
	FieldContentTransferEncoding
	FieldContentDisposition
	FieldContentID
	FieldMIMEVersion
)

// Encoding is a Content-Transfer-Encoding value.
type Encoding int

const (
	EncodingNone Encoding = iota
	Encoding7Bit
	Encoding8Bit
	EncodingBinary
	EncodingQuotedPrintable
	EncodingBase64
)

func (e Encoding) String() string {
	switch e {
	case Encoding7Bit:
		return "7bit"
	case Encoding8Bit:
		return "8bit"
	case EncodingBinary:
		return "binary"
	case EncodingQuotedPrintable:
		return "quoted-printable"
	case EncodingBase64:
		return "base64"
	}
	return ""
}

// ParseEncoding maps a Content-Transfer-Encoding header value to an
// Encoding. Unknown values decode as identity (EncodingBinary), which
// loses nothing.
func ParseEncoding(value string) Encoding {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "7bit", "":
		return Encoding7Bit
	case "8bit":
		return Encoding8Bit
	case "binary":
		return EncodingBinary
	case "quoted-printable":
		return EncodingQuotedPrintable
	case "base64":
		return EncodingBase64
	}
	return EncodingBinary
}

// Disposition is a parsed Content-Disposition header value.
type Disposition struct {
	Kind   string // "inline", "attachment", or an extension token
	Params []Param
}

// Param returns the last-match value of a disposition parameter.
func (d *Disposition) Param(name string) string {
	for i := len(d.Params) - 1; i >= 0; i-- {
		if strings.EqualFold(d.Params[i].Name, name) {
			return d.Params[i].Value
		}
	}
	return ""
}

// Field is one header field. Name keeps the original spelling, Raw the
// unfolded value text. The typed payload slots are filled according to
// Kind; a field whose typed payload failed to parse is downgraded to
// FieldOptional with only Name and Raw set, never discarded.
type Field struct {
	Kind FieldKind

	Name string
	Raw  string

	Addresses   []*mail.Address // From, Sender, Reply-To, To, Cc, Bcc
	MessageIDs  []string        // Message-ID, In-Reply-To, References
	Date        time.Time       // Date
	ContentType *ContentType    // Content-Type
	Disposition *Disposition    // Content-Disposition
	Encoding    Encoding        // Content-Transfer-Encoding
}

// fieldKinds maps canonical lowercased header names to kinds.
var fieldKinds = map[string]FieldKind{
	"from":                      FieldFrom,
	"sender":                    FieldSender,
	"reply-to":                  FieldReplyTo,
	"to":                        FieldTo,
	"cc":                        FieldCc,
	"bcc":                       FieldBcc,
	"subject":                   FieldSubject,
	"date":                      FieldDate,
	"message-id":                FieldMessageID,
	"in-reply-to":               FieldInReplyTo,
	"references":                FieldReferences,
	"content-type":              FieldContentType,
	"content-transfer-encoding": FieldContentTransferEncoding,
	"content-disposition":       FieldContentDisposition,
	"content-id":                FieldContentID,
	"mime-version":              FieldMIMEVersion,
}

// newField builds a typed field from a raw name/value pair. Payload
// parse failures downgrade the field to FieldOptional; the raw text is
// always preserved.
func newField(name, value string) *Field {
	f := &Field{Name: name, Raw: value}
	kind, ok := fieldKinds[strings.ToLower(name)]
	if !ok {
		return f
	}

	switch kind {
	case FieldFrom, FieldSender, FieldReplyTo, FieldTo, FieldCc, FieldBcc:
		addrs, err := mail.ParseAddressList(value)
		if err != nil || len(addrs) == 0 {
			return f
		}
		f.Addresses = addrs
	case FieldDate:
		d, err := mail.ParseDate(value)
		if err != nil {
			return f
		}
		f.Date = d
	case FieldMessageID, FieldInReplyTo, FieldReferences:
		ids := parseMessageIDs(value)
		if len(ids) == 0 {
			return f
		}
		f.MessageIDs = ids
	case FieldContentType:
		ct, err := ParseContentType([]byte(value))
		if err != nil {
			return f
		}
		f.ContentType = ct
	case FieldContentDisposition:
		d, err := parseDisposition(value)
		if err != nil {
			return f
		}
		f.Disposition = d
	case FieldContentTransferEncoding:
		f.Encoding = ParseEncoding(value)
	}
	f.Kind = kind
	return f
}

// parseMessageIDs extracts <...> message identifiers from a header
// value. Bare identifiers without angle brackets are accepted too when
// the whole value is one token.
func parseMessageIDs(value string) []string {
	var ids []string
	rest := value
	for {
		open := strings.IndexByte(rest, '<')
		if open < 0 {
			break
		}
		close := strings.IndexByte(rest[open:], '>')
		if close < 0 {
			break
		}
		id := rest[open+1 : open+close]
		if id != "" {
			ids = append(ids, id)
		}
		rest = rest[open+close+1:]
	}
	if len(ids) == 0 {
		if v := strings.TrimSpace(value); v != "" && !strings.ContainsAny(v, " \t") {
			ids = append(ids, v)
		}
	}
	return ids
}

func parseDisposition(value string) (*Disposition, error) {
	c := NewCursor([]byte(value))
	SkipWSP(c)
	kind, err := ParseToken(c)
	if err != nil {
		return nil, err
	}
	return &Disposition{
		Kind:   strings.ToLower(string(kind)),
		Params: parseParams(c),
	}, nil
}
