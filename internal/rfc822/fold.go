package rfc822

// Header folding limits. Output aims to stay under foldValueCol for
// field values and foldParamCol for content-type parameters; hardMaxCol
// is the RFC 5322 line limit that is never exceeded, even when that
// forces a break with no white space to fold at.
const (
	foldValueCol = 72
	foldParamCol = 78
	hardMaxCol   = 998
)

// foldToken writes one token of a header value, inserting a CRLF plus
// a single leading space beforehand when appending the token would
// push the current line past limit. sep is written before the token
// when no fold happens (and dropped when one does, since the fold's
// space replaces it). Tokens longer than hardMaxCol are split
// unconditionally.
func (w *Writer) foldToken(sep, token string, limit int) {
	if w.col > 0 && len(sep)+len(token)+w.col > limit {
		w.writeString("\r\n ")
		w.col = 1
	} else {
		w.writeString(sep)
	}
	for len(token)+w.col > hardMaxCol {
		keep := hardMaxCol - w.col
		w.writeString(token[:keep])
		w.writeString("\r\n ")
		w.col = 1
		token = token[keep:]
	}
	w.writeString(token)
}

// splitValueTokens cuts a raw header value into white-space separated
// tokens for folding. Runs of WSP collapse to a single space at fold
// decisions, which is the information loss RFC 5322 folding permits.
func splitValueTokens(value string) []string {
	var tokens []string
	start := -1
	for i := 0; i < len(value); i++ {
		if isWSP(value[i]) {
			if start >= 0 {
				tokens = append(tokens, value[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		tokens = append(tokens, value[start:])
	}
	return tokens
}
