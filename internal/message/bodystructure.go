package message

import (
	"fmt"
	"strings"

	"kestrel/internal/rfc822"
)

// BuildBodyStructure renders the IMAP BODYSTRUCTURE form (RFC 3501
// §7.4.2) of a parsed part tree. This is what lets an IMAP-side caller
// map SectionIDs to partial fetches without re-parsing raw bytes.
func BuildBodyStructure(p *rfc822.Part) string {
	return "BODYSTRUCTURE " + bodyStructure(p)
}

func bodyStructure(p *rfc822.Part) string {
	if p.Kind == rfc822.PartMultipart {
		var parts []string
		for _, c := range p.Children {
			parts = append(parts, bodyStructure(c))
		}
		subType := strings.ToUpper(p.ContentType.Subtype)
		return fmt.Sprintf("(%s %s)", strings.Join(parts, ""), quoteOrNIL(subType))
	}

	ct := p.ContentType
	mainType, subType := "TEXT", "PLAIN"
	if ct != nil {
		mainType = strings.ToUpper(ct.Type)
		subType = strings.ToUpper(ct.Subtype)
	}

	encoding := strings.ToUpper(p.Encoding.String())
	if encoding == "" {
		encoding = "7BIT"
	}

	contentID := p.HeaderValue("Content-ID")
	contentDesc := p.HeaderValue("Content-Description")

	size := len(p.Body)
	if mainType == "TEXT" {
		lines := strings.Count(string(p.Body), "\n")
		return fmt.Sprintf("(%s %s %s %s %s %s %d %d)",
			quoteOrNIL(mainType),
			quoteOrNIL(subType),
			paramList(ct),
			quoteOrNIL(contentID),
			quoteOrNIL(contentDesc),
			quoteOrNIL(encoding),
			size,
			lines,
		)
	}
	return fmt.Sprintf("(%s %s %s %s %s %s %d)",
		quoteOrNIL(mainType),
		quoteOrNIL(subType),
		paramList(ct),
		quoteOrNIL(contentID),
		quoteOrNIL(contentDesc),
		quoteOrNIL(encoding),
		size,
	)
}

// paramList renders content-type parameters as an IMAP parenthesized
// list, NIL when there are none. The boundary parameter is included,
// matching what servers report for multipart parts.
func paramList(ct *rfc822.ContentType) string {
	if ct == nil || len(ct.Params) == 0 {
		return "NIL"
	}
	var b strings.Builder
	b.WriteString("(")
	for i, param := range ct.Params {
		if i > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%q %q", strings.ToUpper(param.Name), param.Value)
	}
	b.WriteString(")")
	return b.String()
}

// quoteOrNIL quotes a string for an IMAP response, or returns NIL for
// an empty one.
func quoteOrNIL(s string) string {
	if s == "" {
		return "NIL"
	}
	return fmt.Sprintf("%q", s)
}
