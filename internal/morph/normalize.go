package morph

import (
	"strings"
	"unicode"
)

// NormalizeWord lowercases s and drops every rune that is not a letter.
// Hyphens, apostrophes, digits and whitespace all disappear, so
// "Well-Being" and "well being" normalize to the same key. The coverage
// check and the decomposition cache both key on this form.
func NormalizeWord(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
