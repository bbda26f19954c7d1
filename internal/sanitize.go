package internal

import (
	"regexp"
	"strings"
)

// Go's \w and \s are ASCII only, so letters, digits and whitespace are
// spelled out. \p{Z} plus \s, \v and NEL is exactly unicode.IsSpace.
var unsafeNameChars = regexp.MustCompile(`[^\p{L}\p{N}_()\p{Z}\s\v\x{85}-]`)

// Sanitize maps an untrusted title or author to a filesystem-safe name
// component. Unsafe runes become "x"; leading and trailing "-" and "_" are
// trimmed.
func Sanitize(s string) string {
	return strings.Trim(unsafeNameChars.ReplaceAllString(s, "x"), "-_")
}
