package dehtml

import (
	"strings"
	"testing"
)

func TestDehtmlPlainParagraphs(t *testing.T) {
	got := Dehtml("<html><body><p>first</p><p>second</p></body></html>")
	if got != "first\n\nsecond" {
		t.Errorf("Unexpected output: %q", got)
	}
}

func TestDehtmlAnchor(t *testing.T) {
	got := Dehtml("<a href='https://example.com'> Foo </a>")
	if got != "[ Foo ](https://example.com)" {
		t.Errorf("Unexpected output: %q", got)
	}
}

func TestDehtmlAnchorWithoutHref(t *testing.T) {
	got := Dehtml("<a name='x'>just text</a>")
	if got != "just text" {
		t.Errorf("Unexpected output: %q", got)
	}
}

func TestDehtmlInlineMarkup(t *testing.T) {
	got := Dehtml("normal <b>bold</b> and <em>italic</em>")
	if got != "normal *bold* and _italic_" {
		t.Errorf("Unexpected output: %q", got)
	}
}

func TestDehtmlLineBreaks(t *testing.T) {
	got := Dehtml("one<br>two<br/>three")
	if got != "one\ntwo\nthree" {
		t.Errorf("Unexpected output: %q", got)
	}
}

func TestDehtmlQuoteDiv(t *testing.T) {
	input := `<div name="quote">On 01.01.1970 Bob wrote:<div name="quoted-content">quoted text</div></div>after`
	got := Dehtml(input)
	// The metadata between quote and quoted-content is dropped; the
	// quoted content gets the "> " prefix.
	if got != "> quoted text\n\nafter" {
		t.Errorf("Unexpected output: %q", got)
	}
}

func TestDehtmlBlockquote(t *testing.T) {
	got := Dehtml("<blockquote>q one<br>q two</blockquote>plain")
	if got != "> q one\n> q two\n\nplain" {
		t.Errorf("Unexpected output: %q", got)
	}
}

func TestDehtmlSuppressedElements(t *testing.T) {
	got := Dehtml("<style>p { color: red }</style>visible<script>alert(1)</script>")
	if got != "visible" {
		t.Errorf("Unexpected output: %q", got)
	}
}

func TestDehtmlCollapsesWhitespace(t *testing.T) {
	got := Dehtml("<p>lots    of\n\n   space</p>")
	if got != "lots of space" {
		t.Errorf("Unexpected output: %q", got)
	}
}

func TestDehtmlPreservesPre(t *testing.T) {
	got := Dehtml("<pre>col1   col2\n  indented</pre>")
	if !strings.Contains(got, "col1   col2") || !strings.Contains(got, "  indented") {
		t.Errorf("Pre spacing lost: %q", got)
	}
}

func TestDehtmlUnclosedMarkup(t *testing.T) {
	got := Dehtml("<div><p>unclosed everywhere")
	if got != "unclosed everywhere" {
		t.Errorf("Unexpected output: %q", got)
	}
}

func TestPlainToHTML(t *testing.T) {
	got := PlainToHTML("hello <world>\nvisit https://example.com or mail bob@example.com")
	if !strings.Contains(got, "hello &lt;world&gt;<br/>") {
		t.Errorf("Entities not escaped: %q", got)
	}
	if !strings.Contains(got, `<a href="https://example.com">https://example.com</a>`) {
		t.Errorf("URL not linkified: %q", got)
	}
	if !strings.Contains(got, `<a href="mailto:bob@example.com">bob@example.com</a>`) {
		t.Errorf("Mail address not linkified: %q", got)
	}
	if !strings.HasPrefix(got, "<!DOCTYPE html>") {
		t.Errorf("Missing document shell: %q", got)
	}
}

func TestUnwrapFlowed(t *testing.T) {
	got := UnwrapFlowed("This is a long \nflowed paragraph.\nHard break here.", false)
	if got != "This is a long flowed paragraph.\nHard break here." {
		t.Errorf("Unexpected output: %q", got)
	}
}

func TestUnwrapFlowedDelsp(t *testing.T) {
	got := UnwrapFlowed("one \ntwo", true)
	if got != "onetwo" {
		t.Errorf("Unexpected output: %q", got)
	}
}

func TestUnwrapFlowedSpaceStuffing(t *testing.T) {
	got := UnwrapFlowed(" From here\n >not a quote", false)
	if got != "From here\n>not a quote" {
		t.Errorf("Space stuffing not removed: %q", got)
	}
}

func TestUnwrapFlowedSignatureSeparatorStaysHard(t *testing.T) {
	got := UnwrapFlowed("body text\n-- \nsig", false)
	if got != "body text\n-- \nsig" {
		t.Errorf("Signature separator treated as soft break: %q", got)
	}
}
