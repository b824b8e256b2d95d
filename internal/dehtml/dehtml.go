// Package dehtml converts HTML message bodies to quote-aware plain
// text, and plain text back to HTML for display. The forward direction
// runs on a streaming tokenizer so malformed and unclosed markup
// cannot abort the conversion; when structural parsing produces
// nothing usable, a crude strip-everything-between-angle-brackets pass
// is the fallback.
package dehtml

import (
	"strings"

	"golang.org/x/net/html"
)

// divKind classifies a <div> for quote tracking. Mail clients mark
// quoted replies with <div name="quote"> wrapping a metadata header
// and a <div name="quoted-content"> holding the quoted text.
type divKind int

const (
	divPlain divKind = iota
	divQuote
	divQuotedContent
)

type converter struct {
	out         strings.Builder
	atLineStart bool

	divStack        []divKind
	quoteDepth      int // nested <div name="quote">
	quotedContent   int // nested <div name="quoted-content">
	blockquoteDepth int
	suppressDepth   int // inside <style>, <script>, <title>
	preDepth        int

	href string // open <a> target, "" when none
}

// Dehtml converts an HTML body to plain text. Text inside a quote div
// but outside its quoted-content div is client metadata and is
// dropped; quoted content and blockquote text gets each line prefixed
// with "> ".
func Dehtml(input string) string {
	c := &converter{atLineStart: true}
	z := html.NewTokenizer(strings.NewReader(input))

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			c.startTag(z, tt == html.SelfClosingTagToken)
		case html.EndTagToken:
			name, _ := z.TagName()
			c.endTag(string(name))
		case html.TextToken:
			c.text(string(z.Text()))
		}
	}

	result := strings.TrimRight(c.out.String(), " \n")
	result = strings.TrimLeft(result, "\n")
	if strings.TrimSpace(result) == "" {
		return stripTags(input)
	}
	return result
}

func (c *converter) startTag(z *html.Tokenizer, selfClosing bool) {
	name, hasAttr := z.TagName()
	attrs := map[string]string{}
	for hasAttr {
		var k, v []byte
		k, v, hasAttr = z.TagAttr()
		attrs[strings.ToLower(string(k))] = string(v)
	}

	switch string(name) {
	case "div":
		kind := divPlain
		switch attrs["name"] {
		case "quote":
			kind = divQuote
		case "quoted-content":
			kind = divQuotedContent
		}
		if !selfClosing {
			c.divStack = append(c.divStack, kind)
			switch kind {
			case divQuote:
				c.quoteDepth++
			case divQuotedContent:
				c.quotedContent++
			}
		}
		c.paragraphBreak()
	case "p", "table", "td":
		if !selfClosing {
			c.paragraphBreak()
		}
	case "br":
		c.lineBreak()
	case "blockquote":
		if !selfClosing {
			c.blockquoteDepth++
			c.paragraphBreak()
		}
	case "style", "script", "title":
		if !selfClosing {
			c.suppressDepth++
		}
	case "pre":
		if !selfClosing {
			c.preDepth++
			c.paragraphBreak()
		}
	case "a":
		if href, ok := attrs["href"]; ok && href != "" {
			c.href = strings.ToLower(href)
			c.emit("[")
		}
	case "b", "strong":
		c.emit("*")
	case "i", "em":
		c.emit("_")
	}
}

func (c *converter) endTag(name string) {
	switch name {
	case "div":
		if n := len(c.divStack); n > 0 {
			switch c.divStack[n-1] {
			case divQuote:
				c.quoteDepth--
			case divQuotedContent:
				c.quotedContent--
			}
			c.divStack = c.divStack[:n-1]
		}
		c.paragraphBreak()
	case "p", "table", "td":
		c.paragraphBreak()
	case "blockquote":
		if c.blockquoteDepth > 0 {
			c.blockquoteDepth--
		}
		c.paragraphBreak()
	case "style", "script", "title":
		if c.suppressDepth > 0 {
			c.suppressDepth--
		}
	case "pre":
		if c.preDepth > 0 {
			c.preDepth--
		}
		c.paragraphBreak()
	case "a":
		if c.href != "" {
			c.emit("](" + c.href + ")")
			c.href = ""
		}
	case "b", "strong":
		c.emit("*")
	case "i", "em":
		c.emit("_")
	}
}

// text handles a text token. Metadata inside a quote div (but outside
// its quoted-content) is dropped entirely.
func (c *converter) text(t string) {
	if c.suppressDepth > 0 {
		return
	}
	if c.quoteDepth > 0 && c.quotedContent == 0 {
		return
	}
	if c.preDepth > 0 {
		c.emit(t)
		return
	}
	// Collapse runs of white space to single spaces; a leading or
	// trailing run stays as one space so inline markup keeps its
	// separation.
	c.emit(collapseSpace(t))
}

func collapseSpace(t string) string {
	var b strings.Builder
	inSpace := false
	for _, r := range t {
		switch r {
		case ' ', '\t', '\n', '\r':
			inSpace = true
		default:
			if inSpace {
				b.WriteByte(' ')
			}
			inSpace = false
			b.WriteRune(r)
		}
	}
	s := b.String()
	if inSpace {
		s += " "
	}
	return s
}

// quoted reports whether emitted text currently belongs to a quote.
func (c *converter) quoted() bool {
	return c.blockquoteDepth > 0 || c.quotedContent > 0
}

// emit writes s, prefixing "> " at the start of every quoted line.
func (c *converter) emit(s string) {
	for _, r := range s {
		if c.atLineStart {
			if r == ' ' && c.preDepth == 0 {
				continue // no stray indent after breaks
			}
			if c.quoted() {
				c.out.WriteString("> ")
			}
			c.atLineStart = false
		}
		c.out.WriteRune(r)
		if r == '\n' {
			c.atLineStart = true
		}
	}
}

func (c *converter) lineBreak() {
	c.out.WriteString("\n")
	c.atLineStart = true
}

// paragraphBreak ensures the output ends with a blank line, without
// stacking breaks from adjacent structural tags.
func (c *converter) paragraphBreak() {
	s := c.out.String()
	if s == "" || strings.HasSuffix(s, "\n\n") {
		c.atLineStart = true
		return
	}
	if strings.HasSuffix(s, "\n") {
		c.out.WriteString("\n")
	} else {
		c.out.WriteString("\n\n")
	}
	c.atLineStart = true
}

// stripTags is the fallback conversion: drop everything between "<"
// and ">", keep the rest.
func stripTags(input string) string {
	var b strings.Builder
	inTag := false
	for _, r := range input {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
