package rfc822

import (
	"net/mail"
	"strings"
	"time"
)

// PartKind says how a part's body is structured.
type PartKind int

const (
	// PartSingle is a leaf with a decoded body.
	PartSingle PartKind = iota
	// PartMultipart has ordered children separated by boundaries.
	PartMultipart
	// PartMessage encapsulates a full message (message/rfc822).
	PartMessage
)

// Part is one node of a parsed MIME tree. Each node owns its children;
// the parent link is a non-owning back-reference used only for
// position queries such as deriving a SectionID.
type Part struct {
	Kind        PartKind
	ContentType *ContentType
	Fields      []*Field

	// Body is the decoded body of a PartSingle leaf. Encoding records
	// which Content-Transfer-Encoding was removed during parsing.
	Body     []byte
	Encoding Encoding

	// Multipart payload.
	Children []*Part
	Preamble []byte
	Epilogue []byte

	// Embedded is the inner message of a PartMessage.
	Embedded *Part

	parent *Part
	index  int // position among siblings, 0-based
}

// Parent returns the enclosing part, nil for the root.
func (p *Part) Parent() *Part { return p.parent }

// Field returns the first field of the given kind, nil if absent.
func (p *Part) Field(kind FieldKind) *Field {
	for _, f := range p.Fields {
		if f.Kind == kind {
			return f
		}
	}
	return nil
}

// HeaderValue returns the raw unfolded value of the first field whose
// name matches, case-insensitively. "" if absent.
func (p *Part) HeaderValue(name string) string {
	for _, f := range p.Fields {
		if strings.EqualFold(f.Name, name) {
			return f.Raw
		}
	}
	return ""
}

// Subject returns the Subject field value, "" if absent.
func (p *Part) Subject() string {
	if f := p.Field(FieldSubject); f != nil {
		return f.Raw
	}
	return ""
}

// Addresses returns the parsed mailboxes of the given address field.
func (p *Part) Addresses(kind FieldKind) []*mail.Address {
	if f := p.Field(kind); f != nil {
		return f.Addresses
	}
	return nil
}

// MessageID returns the first Message-ID, "" if absent.
func (p *Part) MessageID() string {
	if f := p.Field(FieldMessageID); f != nil && len(f.MessageIDs) > 0 {
		return f.MessageIDs[0]
	}
	return ""
}

// Date returns the parsed Date field, zero if absent or unparseable.
func (p *Part) Date() time.Time {
	if f := p.Field(FieldDate); f != nil {
		return f.Date
	}
	return time.Time{}
}

// Disposition returns the parsed Content-Disposition, nil if absent.
func (p *Part) Disposition() *Disposition {
	if f := p.Field(FieldContentDisposition); f != nil {
		return f.Disposition
	}
	return nil
}

// Filename returns the attachment filename from Content-Disposition
// "filename", falling back to the Content-Type "name" parameter.
func (p *Part) Filename() string {
	if d := p.Disposition(); d != nil {
		if fn := d.Param("filename"); fn != "" {
			return fn
		}
	}
	if p.ContentType != nil {
		return p.ContentType.Param("name")
	}
	return ""
}

// IsAttachment reports whether the part is explicitly marked as an
// attachment.
func (p *Part) IsAttachment() bool {
	d := p.Disposition()
	return d != nil && d.Kind == "attachment"
}

// Walk visits p and every descendant in depth-first pre-order. The
// walk stops early if fn returns false.
func (p *Part) Walk(fn func(*Part) bool) bool {
	if !fn(p) {
		return false
	}
	for _, c := range p.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	if p.Embedded != nil {
		return p.Embedded.Walk(fn)
	}
	return true
}

// adopt wires children to their parent and records sibling positions.
func (p *Part) adopt() {
	for i, c := range p.Children {
		c.parent = p
		c.index = i
	}
	if p.Embedded != nil {
		p.Embedded.parent = p
		p.Embedded.index = 0
	}
}
