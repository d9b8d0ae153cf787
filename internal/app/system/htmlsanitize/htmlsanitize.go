// internal/app/system/htmlsanitize/htmlsanitize.go
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict strips every tag; script and style bodies are dropped entirely.
var strict = bluemonday.StrictPolicy()

// IsPlainText reports whether s carries no markup at all.
// A lone "<" or ">" (as in "5 < 10") is treated as text.
func IsPlainText(s string) bool {
	return !(strings.Contains(s, "<") && strings.Contains(s, ">"))
}

// PlainText returns s with all markup removed, suitable for storing as a
// text attribute. Entities produced by the sanitizer are decoded again so
// "Smith & Sons" round-trips unchanged.
func PlainText(s string) string {
	if s == "" || IsPlainText(s) {
		return s
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}
