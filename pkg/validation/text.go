package validation

import (
	"strings"
	"unicode"
	"unicode/utf16"
)

// spaceClass is the set of characters browsers and mobile clients treat as
// white space in validation patterns: ASCII space and controls, vertical
// tab, every Unicode space separator and the byte order mark.
const spaceClass = `\s\x0B\p{Z}\x{FEFF}`

// isSpace matches the characters trimmed by client-side validation. NEL is
// not one of them.
func isSpace(r rune) bool {
	if r == '\uFEFF' {
		return true
	}
	return r != '\u0085' && unicode.IsSpace(r)
}

func trimText(s string) string {
	return strings.TrimFunc(s, isSpace)
}

// textLength counts UTF-16 code units, so characters outside the Basic
// Multilingual Plane count twice as they do in client-side length limits.
func textLength(s string) int {
	n := 0
	for _, r := range s {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return n
}
