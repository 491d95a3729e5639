package adc

import "strings"

// Escape applies the ADC payload escape rules: space -> \s, newline -> \n,
// backslash -> \\. All other bytes pass through unchanged.
//
// The old flag selects the legacy encoding used only by the NMDC-bridge
// serializer, which additionally encodes space as a bare backslash instead
// of \s.
func Escape(s string, old bool) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case ' ':
			if old {
				b.WriteByte('\\')
			} else {
				b.WriteString(`\s`)
			}
		case '\n':
			b.WriteString(`\n`)
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Unescape reverses Escape. It fails on a trailing backslash or a
// backslash followed by any character other than 's', 'n', or '\\'.
func Unescape(s string) (string, error) {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			return "", &ParseError{Reason: "trailing backslash in parameter", Input: s}
		}
		switch s[i] {
		case 's':
			b.WriteByte(' ')
		case 'n':
			b.WriteByte('\n')
		case '\\':
			b.WriteByte('\\')
		default:
			return "", &ParseError{Reason: "invalid escape sequence", Input: s}
		}
	}
	return b.String(), nil
}
