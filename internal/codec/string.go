package codec

import "strings"

// specialChars are the characters spec §6 requires to survive round-trip
// through the grammar when embedded in a string value: ';', '=', '{',
// '}', '#', plus leading/trailing whitespace.
const specialChars = ";={}# \t\r\n"

// EscapeString produces the canonical escaped form of s: every special
// character (whitespace included) and every backslash is
// backslash-prefixed, so leading/trailing whitespace survives too.
func EscapeString(s string) string {
	if !needsEscape(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if strings.IndexByte(specialChars, c) >= 0 || c == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}

func needsEscape(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == ' ' || s[0] == '\t' || s[len(s)-1] == ' ' || s[len(s)-1] == '\t' {
		return true
	}
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(specialChars, s[i]) >= 0 || s[i] == '\\' {
			return true
		}
	}
	return false
}

// UnescapeString is the left inverse of EscapeString, used when
// ctx.InputStringsEscaped is set (spec §4.2 "String").
func UnescapeString(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			b.WriteByte(s[i])
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
