package app

import (
	"strings"
	"unicode"
)

// Normalize lower-cases text, deletes "http" runs followed by at least one
// non-space character (which can join the words around them), keeps only a-z
// and whitespace, and collapses whitespace.
func Normalize(text string) string {
	s := stripURLs(strings.ToLower(text))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case isSpace(r):
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// isSpace also counts the ASCII separators U+001C..U+001F as whitespace.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// stripURLs deletes every "http" plus the non-whitespace run after it. A bare
// "http" (end of text or followed by whitespace) is kept.
func stripURLs(s string) string {
	i := strings.Index(s, "http")
	if i < 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i >= 0 {
		b.WriteString(s[:i])
		s = s[i+len("http"):]
		end := strings.IndexFunc(s, isSpace)
		switch {
		case end == 0:
			b.WriteString("http")
		case end < 0 && s == "":
			b.WriteString("http")
			return b.String()
		case end < 0:
			return b.String()
		default:
			s = s[end:]
		}
		i = strings.Index(s, "http")
	}
	b.WriteString(s)
	return b.String()
}
