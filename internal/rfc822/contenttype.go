package rfc822

import (
	"fmt"
	"strings"
)

// ContentType describes a parsed Content-Type header value. Type and
// Subtype are stored lowercased. Params keeps the parameters in the
// order they appeared; the list is not deduplicated, and lookups take
// the last match, which is what mail servers do in practice when a
// sender repeats a parameter.
type ContentType struct {
	Type    string
	Subtype string
	Params  []Param
}

// Param is a single name=value content-type or content-disposition
// parameter. Names compare case-insensitively.
type Param struct {
	Name  string
	Value string
}

// Param returns the value of the last parameter with the given name,
// or "" if the parameter is absent.
func (ct *ContentType) Param(name string) string {
	for i := len(ct.Params) - 1; i >= 0; i-- {
		if strings.EqualFold(ct.Params[i].Name, name) {
			return ct.Params[i].Value
		}
	}
	return ""
}

// SetParam replaces the value of name, or appends it if absent.
func (ct *ContentType) SetParam(name, value string) {
	for i := len(ct.Params) - 1; i >= 0; i-- {
		if strings.EqualFold(ct.Params[i].Name, name) {
			ct.Params[i].Value = value
			return
		}
	}
	ct.Params = append(ct.Params, Param{Name: name, Value: value})
}

// IsMultipart reports whether this is a multipart/* type.
func (ct *ContentType) IsMultipart() bool { return ct.Type == "multipart" }

// IsMessage reports whether this is a message/rfc822 type.
func (ct *ContentType) IsMessage() bool {
	return ct.Type == "message" && (ct.Subtype == "rfc822" || ct.Subtype == "global")
}

// IsComposite reports whether the type is composite per RFC 2045
// (multipart or message), as opposed to a discrete type.
func (ct *ContentType) IsComposite() bool {
	return ct.Type == "multipart" || ct.Type == "message"
}

// Boundary returns the boundary parameter, "" if absent.
func (ct *ContentType) Boundary() string { return ct.Param("boundary") }

func (ct *ContentType) String() string {
	return ct.Type + "/" + ct.Subtype
}

// defaultContentType is what RFC 2045 §5.2 assumes when no
// Content-Type header is present.
func defaultContentType() *ContentType {
	return &ContentType{
		Type:    "text",
		Subtype: "plain",
		Params:  []Param{{Name: "charset", Value: "us-ascii"}},
	}
}

// ParseContentType parses a Content-Type header value, e.g.
// `multipart/mixed; boundary="xyz"`. Parameters that fail to parse are
// dropped individually; a value without a recognizable type/subtype
// returns an error so the caller can fall back to the default type.
func ParseContentType(value []byte) (*ContentType, error) {
	c := NewCursor(value)
	SkipWSP(c)

	typ, err := ParseToken(c)
	if err != nil {
		return nil, fmt.Errorf("content-type: missing type: %w", err)
	}
	if b, err := c.Peek(); err != nil || b != '/' {
		return nil, fmt.Errorf("content-type: missing subtype separator: %w", ErrNoMatch)
	}
	c.Advance(1)
	sub, err := ParseToken(c)
	if err != nil {
		return nil, fmt.Errorf("content-type: missing subtype: %w", err)
	}

	ct := &ContentType{
		Type:    strings.ToLower(string(typ)),
		Subtype: strings.ToLower(string(sub)),
	}
	ct.Params = parseParams(c)
	return ct, nil
}

// parseParams consumes ";" separated name=value parameters until the
// input ends or turns unparseable. Broken trailing parameters are
// ignored rather than reported.
func parseParams(c *Cursor) []Param {
	var params []Param
	for {
		skipFWS(c)
		b, err := c.Peek()
		if err != nil {
			return params
		}
		if b != ';' {
			return params
		}
		c.Advance(1)
		skipFWS(c)
		if c.EOF() {
			return params
		}

		name, err := ParseToken(c)
		if err != nil {
			return params
		}
		skipFWS(c)
		if b, err := c.Peek(); err != nil || b != '=' {
			// Parameter without a value; tolerate and move on.
			params = append(params, Param{Name: strings.ToLower(string(name))})
			continue
		}
		c.Advance(1)
		skipFWS(c)

		var value []byte
		if b, err := c.Peek(); err == nil && b == '"' {
			value, _ = ParseQuotedString(c)
		} else if value, err = ParseToken(c); err != nil {
			value = nil
		}
		params = append(params, Param{
			Name:  strings.ToLower(string(name)),
			Value: string(value),
		})
	}
}

// skipFWS advances past folding white space: WSP and line breaks that
// are followed by more content.
func skipFWS(c *Cursor) {
	for !c.EOF() {
		b, _ := c.Peek()
		if isWSP(b) || b == '\r' || b == '\n' {
			c.Advance(1)
			continue
		}
		return
	}
}
