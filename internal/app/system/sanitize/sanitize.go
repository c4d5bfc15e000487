// internal/app/system/sanitize/sanitize.go

// Package sanitize normalizes user-supplied text before it is persisted
// or fanned out: topics, aliases, and anonymous submissions.
package sanitize

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Text strips all markup from s and returns trimmed plain text. The
// sanitizer entity-escapes its output, so the result is unescaped back
// to plain text for storage.
func Text(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// Alias sanitizes a display name and caps it at max runes. Truncation
// happens on rune boundaries so a multi-byte name never persists as
// broken UTF-8.
func Alias(s string, max int) string {
	out := Text(s)
	if max > 0 && utf8.RuneCountInString(out) > max {
		runes := []rune(out)
		out = strings.TrimSpace(string(runes[:max]))
	}
	return out
}
