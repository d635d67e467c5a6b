package runstore

import (
	"strings"
	"unicode"
)

// slugify produces a safe filename component. Letters outside ASCII
// (e.g. CJK scenario names) are kept; everything else collapses to '-'.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	b.Grow(len(s))

	lastDash := true
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastDash = false
			continue
		}
		if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}

	return strings.TrimRight(b.String(), "-")
}
