package internal

import (
	"strings"
	"testing"
	"testing/quick"
	"unicode"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "Song A", "Song A"},
		{"punctuation", "Hello, World!", "Hellox Worldx"},
		{"slash", "AC/DC", "ACxDC"},
		{"colon", "Art:ist", "Artxist"},
		{"dot", "feat. Someone", "featx Someone"},
		{"parentheses kept", "Track (Live)", "Track (Live)"},
		{"unicode letters kept", "Canción de Ñandú", "Canción de Ñandú"},
		{"cjk kept", "日本語の歌", "日本語の歌"},
		{"emoji replaced", "🎵 song", "x song"},
		{"edges trimmed", "-_leading and trailing_-", "leading and trailing"},
		{"inner dashes kept", "a-b_c", "a-b_c"},
		{"only trim chars", "-_-_", ""},
		{"replacement not trimmed", "!name!", "xnamex"},
		{"whitespace kept", "  spaced  ", "  spaced  "},
		{"ideographic space kept", "夜に駆ける\u3000YOASOBI", "夜に駆ける\u3000YOASOBI"},
		{"no-break space kept", "Song\u00a0A", "Song\u00a0A"},
		{"vertical tab kept", "a\vb", "a\vb"},
		{"line separator kept", "a\u2028b", "a\u2028b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.in); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	f := func(s string) bool {
		once := Sanitize(s)
		return Sanitize(once) == once
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestSanitizeKeepsWhitespace(t *testing.T) {
	for r := rune(0); r <= unicode.MaxRune; r++ {
		if !unicode.IsSpace(r) {
			continue
		}
		in := "a" + string(r) + "b"
		if got := Sanitize(in); got != in {
			t.Errorf("Sanitize(%q) = %q, whitespace %U replaced", in, got, r)
		}
	}
}

func TestSanitizeOutputAlphabet(t *testing.T) {
	allowed := func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) || strings.ContainsRune("_()-", r)
	}
	f := func(s string) bool {
		out := Sanitize(s)
		for _, r := range out {
			if !allowed(r) {
				return false
			}
		}
		return !strings.HasPrefix(out, "-") && !strings.HasPrefix(out, "_") &&
			!strings.HasSuffix(out, "-") && !strings.HasSuffix(out, "_")
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}
