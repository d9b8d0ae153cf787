// Package normalize canonicalizes user-supplied strings before they are
// compared or stored.
package normalize

import "strings"

// Email lower-cases and trims an email address. The result is the
// normalized identity used as the employee key.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace and collapses internal runs of spaces.
// Case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Header turns an upload column name into an attribute key:
// lower-cased, trimmed, inner whitespace replaced with underscores.
// "Hire Date" becomes "hire_date". Dots also become underscores and "$" is
// dropped, since the key is used inside MongoDB field paths.
func Header(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.Map(func(r rune) rune {
		switch r {
		case '.':
			return ' '
		case '$':
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(strings.ToLower(s)), "_")
}
