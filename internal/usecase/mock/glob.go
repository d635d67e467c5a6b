package mock

import (
	"fmt"
	"regexp"
	"strings"
)

// CompileGlob turns a URL glob into an anchored regular expression.
//
//	**/  any directories (including none)
//	**   any characters
//	*    any characters except '/'
//	?    one character
//	{a,b} alternatives
func CompileGlob(pattern string) (*regexp.Regexp, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, fmt.Errorf("empty pattern")
	}

	var b strings.Builder
	b.WriteString("^")

	inGroup := false
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case c == '*' && i+1 < len(pattern) && pattern[i+1] == '*':
			i++
			if i+1 < len(pattern) && pattern[i+1] == '/' {
				i++
				b.WriteString("(?:.*/)?")
			} else {
				b.WriteString(".*")
			}
		case c == '*':
			b.WriteString("[^/]*")
		case c == '?':
			b.WriteString(".")
		case c == '{':
			if inGroup {
				return nil, fmt.Errorf("pattern %q: nested braces", pattern)
			}
			inGroup = true
			b.WriteString("(?:")
		case c == '}':
			if !inGroup {
				return nil, fmt.Errorf("pattern %q: unbalanced '}'", pattern)
			}
			inGroup = false
			b.WriteString(")")
		case c == ',' && inGroup:
			b.WriteString("|")
		case c == '\\' && i+1 < len(pattern):
			i++
			b.WriteString(regexp.QuoteMeta(string(pattern[i])))
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	if inGroup {
		return nil, fmt.Errorf("pattern %q: unclosed '{'", pattern)
	}

	b.WriteString("$")
	return regexp.Compile(b.String())
}

// Wildcard converts a glob into a coarser CDP Fetch pattern ('*' and '?' only).
// It matches a superset of the glob; exact matching happens in the table.
func Wildcard(pattern string) string {
	var b strings.Builder
	inGroup := false
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case inGroup:
			if c == '}' {
				inGroup = false
			}
		case c == '{':
			inGroup = true
			b.WriteByte('*')
		case c == '*':
			for i+1 < len(pattern) && pattern[i+1] == '*' {
				i++
			}
			b.WriteByte('*')
		case c == '\\' && i+1 < len(pattern):
			i++
			b.WriteByte('\\')
			b.WriteByte(pattern[i])
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
