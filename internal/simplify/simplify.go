// Package simplify extracts the chat-displayable text from a decoded
// plain-text email body: it strips signature footers, quoted replies
// and forwarding headers, and normalizes blank lines. The algorithm is
// deterministic line arithmetic, no randomness and no locale
// dependence, so every decision here is testable with fixed fixtures.
package simplify

import "strings"

// Result is the outcome of simplifying one text body.
type Result struct {
	// Text is the remaining message text.
	Text string
	// IsForwarded is set when a synthetic forwarded-message header was
	// removed from the top.
	IsForwarded bool
	// IsCut is set when trailing content (footer, bottom quote) was
	// removed.
	IsCut bool
	// Quote is the removed quote block with its "> " prefixes
	// stripped, "" when no quote was found. Only one quote location is
	// ever reported; a top quote wins over a bottom one.
	Quote string
	// Footer is the removed signature footer, "" when none was found.
	Footer string
}

// footerEscape is the zero width space callers insert between the two
// dashes of legitimate "--" lines so they survive simplification.
const footerEscape = "​"

const forwardedHeader = "---------- Forwarded message ----------"

// Simplify reduces text to its chat-displayable core. Chat messages
// (sent by another instance of this protocol) only carry a standard
// footer; classic email additionally gets nonstandard footers and
// bottom quotes removed.
func Simplify(text string, isChatMessage bool) Result {
	var res Result

	text = strings.ReplaceAll(text, "\r", "")
	lines := strings.Split(text, "\n")

	lines, res.IsForwarded = removeForwardedHeader(lines)

	var topQuote string
	lines, topQuote = removeTopQuote(lines)

	var footer string
	var footerCut bool
	lines, footer, footerCut = removeStandardFooter(lines)
	res.Footer = footer
	if footerCut {
		res.IsCut = true
	}

	markerCut := false
	bottomQuote := ""
	if !isChatMessage {
		var cut bool
		lines, cut = removeNonstandardFooter(lines)
		markerCut = markerCut || cut

		lines, bottomQuote = removeBottomQuote(lines)
		if bottomQuote != "" {
			markerCut = true
		}
	}
	if markerCut {
		res.IsCut = true
	}

	if topQuote != "" {
		res.Quote = topQuote
	} else if bottomQuote != "" {
		res.Quote = bottomQuote
	}

	if allBlank(lines) {
		// Never return an empty simplification when the only content
		// was quote-like; fall back to the original lines.
		lines = strings.Split(text, "\n")
		markerCut = false
	}

	res.Text = render(lines, markerCut)
	return res
}

// removeForwardedHeader strips the exact three-line synthetic header
// this protocol puts in front of forwarded messages.
func removeForwardedHeader(lines []string) ([]string, bool) {
	if len(lines) >= 3 &&
		lines[0] == forwardedHeader &&
		strings.HasPrefix(lines[1], "From: ") &&
		lines[2] == "" {
		return lines[3:], true
	}
	return lines, false
}

// isQuotedHeadline reports whether line looks like the metadata line
// introducing a quote, e.g. `On 2021-01-01, Bob wrote:`. Kept
// deliberately loose: at most 80 characters and ending with a colon.
func isQuotedHeadline(line string) bool {
	return len(line) <= 80 && strings.HasSuffix(line, ":")
}

func isQuoteLine(line string) bool {
	return strings.HasPrefix(line, ">")
}

// stripQuotePrefix removes one level of "> " or ">" from a quote line.
func stripQuotePrefix(line string) string {
	line = strings.TrimPrefix(line, ">")
	return strings.TrimPrefix(line, " ")
}

// removeTopQuote removes a leading quote block: a contiguous run of
// ">"-prefixed lines at the top, allowing a single interior headline
// line (e.g. a second "... wrote:" inside the run). The preceding
// headline line, when present, is removed along with the block but not
// captured into the quote.
func removeTopQuote(lines []string) ([]string, string) {
	start := 0
	// A leading headline introducing the quote is absorbed.
	if len(lines) > 1 && isQuotedHeadline(lines[0]) && isQuoteLine(lines[1]) {
		start = 1
	}
	if start >= len(lines) || !isQuoteLine(lines[start]) {
		return lines, ""
	}

	var quote []string
	end := start
	headlineUsed := false
	for end < len(lines) {
		line := lines[end]
		if isQuoteLine(line) {
			quote = append(quote, stripQuotePrefix(line))
			end++
			continue
		}
		// Allow one interior headline if quoting continues after it.
		if !headlineUsed && isQuotedHeadline(line) &&
			end+1 < len(lines) && isQuoteLine(lines[end+1]) {
			headlineUsed = true
			quote = append(quote, line)
			end++
			continue
		}
		break
	}
	return lines[end:], strings.Join(quote, "\n")
}

// removeBottomQuote removes a trailing quote block: contiguous
// ">"-prefixed lines at the end (ignoring trailing blank lines),
// optionally preceded by a headline line, which is removed but not
// captured.
func removeBottomQuote(lines []string) ([]string, string) {
	end := len(lines)
	for end > 0 && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	if end == 0 || !isQuoteLine(lines[end-1]) {
		return lines, ""
	}
	start := end
	for start > 0 && isQuoteLine(lines[start-1]) {
		start--
	}
	quote := make([]string, 0, end-start)
	for _, line := range lines[start:end] {
		quote = append(quote, stripQuotePrefix(line))
	}
	if start > 0 && isQuotedHeadline(lines[start-1]) {
		start--
	}
	return lines[:start], strings.Join(quote, "\n")
}

// removeStandardFooter finds the RFC 3676 signature separator and cuts
// everything below it. "-- " is standard; "--  " survives
// quoted-printable round trips; a bare "--" counts only when flanked
// by a blank line above and content below, which keeps plain "--"
// dividers inside running text alive.
func removeStandardFooter(lines []string) (remaining []string, footer string, cut bool) {
	for i, line := range lines {
		standard := line == "-- " || line == "--  "
		nearStandard := line == "--" &&
			(i == 0 || strings.TrimSpace(lines[i-1]) == "") &&
			i+1 < len(lines) && strings.TrimSpace(lines[i+1]) != ""
		if standard || nearStandard {
			footer = strings.TrimRight(strings.Join(lines[i+1:], "\n"), " \n")
			return lines[:i], footer, true
		}
	}
	return lines, "", false
}

// nonstandardFooterPrefixes marks the separator lines various clients
// use instead of the standard "-- ".
var nonstandardFooterPrefixes = []string{"---", "_____", "=====", "*****", "~~~~~"}

// removeNonstandardFooter cuts the message at the first line starting
// with a recognized nonstandard separator.
func removeNonstandardFooter(lines []string) ([]string, bool) {
	for i, line := range lines {
		for _, prefix := range nonstandardFooterPrefixes {
			if strings.HasPrefix(line, prefix) {
				return lines[:i], true
			}
		}
	}
	return lines, false
}

func allBlank(lines []string) bool {
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			return false
		}
	}
	return true
}

// render joins the remaining lines: runs of three or more blank lines
// collapse to two, leading and trailing blanks are dropped, footer
// escape sentinels are removed, and a " [...]" marker is appended when
// trailing content was cut away.
func render(lines []string, markerCut bool) string {
	var out []string
	blanks := 0
	for _, line := range lines {
		line = UnescapeFooterMarks(line)
		if strings.TrimSpace(line) == "" {
			blanks++
			if len(out) == 0 || blanks > 2 {
				continue
			}
			out = append(out, "")
			continue
		}
		blanks = 0
		out = append(out, line)
	}
	// Drop trailing blank padding.
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}

	text := strings.Join(out, "\n")
	if markerCut && text != "" {
		text += " [...]"
	}
	return text
}

// EscapeFooterMarks protects outgoing text whose lines legitimately
// start with "--" (or a nonstandard separator) from being taken for a
// footer by the receiving side: a zero width space is inserted between
// the first two characters.
func EscapeFooterMarks(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "--") ||
			strings.HasPrefix(line, "__") ||
			strings.HasPrefix(line, "==") ||
			strings.HasPrefix(line, "**") ||
			strings.HasPrefix(line, "~~") {
			lines[i] = line[:1] + footerEscape + line[1:]
		}
	}
	return strings.Join(lines, "\n")
}

// UnescapeFooterMarks strips the sentinel inserted by
// EscapeFooterMarks.
func UnescapeFooterMarks(text string) string {
	return strings.ReplaceAll(text, footerEscape, "")
}
