package dehtml

import (
	"regexp"
	"strings"
)

// htmlEscape keeps its own tiny table instead of html.EscapeString so
// the output stays stable against upstream changes to that function's
// escape set.
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

var (
	urlPattern  = regexp.MustCompile(`\bhttps?://[^\s<>"]+`)
	mailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
)

// PlainToHTML renders a plain-text body as an HTML fragment: entities
// escaped, bare URLs and mail addresses turned into anchors, line
// breaks turned into <br/>.
func PlainToHTML(text string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><head>\n")
	b.WriteString("<meta http-equiv=\"Content-Type\" content=\"text/html; charset=utf-8\" />\n")
	b.WriteString("</head><body>\n")
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r", ""), "\n") {
		b.WriteString(linkify(line))
		b.WriteString("<br/>\n")
	}
	b.WriteString("</body></html>\n")
	return b.String()
}

// linkify escapes a line and wraps URLs and mail addresses in anchors.
// Escaping runs per segment so anchor markup itself survives.
func linkify(line string) string {
	var b strings.Builder
	rest := line
	for rest != "" {
		loc := urlPattern.FindStringIndex(rest)
		mloc := mailPattern.FindStringIndex(rest)
		isMail := false
		if loc == nil || (mloc != nil && mloc[0] < loc[0]) {
			loc = mloc
			isMail = loc != nil
		}
		if loc == nil {
			b.WriteString(htmlEscaper.Replace(rest))
			break
		}
		b.WriteString(htmlEscaper.Replace(rest[:loc[0]]))
		target := rest[loc[0]:loc[1]]
		esc := htmlEscaper.Replace(target)
		if isMail {
			b.WriteString(`<a href="mailto:` + esc + `">` + esc + `</a>`)
		} else {
			b.WriteString(`<a href="` + esc + `">` + esc + `</a>`)
		}
		rest = rest[loc[1]:]
	}
	return b.String()
}

// UnwrapFlowed merges the soft-wrapped lines of RFC 3676 format=flowed
// text: a line ending in a space continues on the next line. The
// single leading space that protects lines from looking like quotes
// ("space-stuffing") is removed first; with delsp the trailing
// soft-break space itself is deleted when joining.
func UnwrapFlowed(text string, delsp bool) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r", ""), "\n")
	var out []string
	flow := false
	for _, line := range lines {
		line = strings.TrimPrefix(line, " ") // space-stuffing
		soft := strings.HasSuffix(line, " ") && line != "-- "
		if delsp && soft {
			line = line[:len(line)-1]
		}
		if flow && len(out) > 0 {
			out[len(out)-1] += line
		} else {
			out = append(out, line)
		}
		flow = soft
	}
	return strings.Join(out, "\n")
}
