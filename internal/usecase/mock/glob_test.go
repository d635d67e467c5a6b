package mock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileGlob(t *testing.T) {
	tests := []struct {
		pattern string
		url     string
		want    bool
	}{
		{"**/api/metadata*", "http://localhost:3000/api/metadata", true},
		{"**/api/metadata*", "http://localhost:3001/api/metadata?lang=zh", true},
		{"**/api/metadata*", "http://localhost:3000/api/metadata/extra", false},
		{"**/api/articles?*", "http://localhost:3000/api/articles?page=1&limit=10", true},
		{"**/api/articles?*", "http://localhost:3000/api/articles", false},
		{"**/api/admin/login", "http://localhost:3000/api/admin/login", true},
		{"**/api/admin/login", "http://localhost:3000/api/admin/login/x", false},
		{"**/api/rss-sources", "http://localhost:3000/api/rss-sources", true},
		{"**/api/rss-sources*", "http://localhost:3000/api/rss-sources?type=paper", true},
		{"**/api/{articles,metadata}", "http://h/api/metadata", true},
		{"**/api/{articles,metadata}", "http://h/api/sources", false},
		{"http://h/*.png", "http://h/a.png", true},
		{"http://h/*.png", "http://h/img/a.png", false},
		{"http://h/**.png", "http://h/img/a.png", true},
		{"**/a+b(c)", "http://h/a+b(c)", true},
		{"http://localhost:3000**", "http://localhost:3000/api/articles?page=2", true},
		{"**api/admin/**", "http://h/api/admin/login", true},
		{"**/items[0]", "http://h/items[0]", true},
		{"**/items[0]", "http://h/items0", false},
		{"**/a?c", "http://h/a/c", true},
		{`**/literal\*`, "http://h/literal*", true},
		{`**/literal\*`, "http://h/literalX", false},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+" "+tt.url, func(t *testing.T) {
			re, err := CompileGlob(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, re.MatchString(tt.url))
		})
	}
}

func TestCompileGlob_Errors(t *testing.T) {
	for _, p := range []string{"", "  ", "**/{a,b", "**/a}", "**/{a,{b}}"} {
		_, err := CompileGlob(p)
		assert.Error(t, err, "pattern %q", p)
	}
}

func TestWildcard(t *testing.T) {
	tests := map[string]string{
		"**/api/metadata*":        "*/api/metadata*",
		"**/api/articles?*":       "*/api/articles?*",
		"**/api/{articles,feeds}": "*/api/*",
		"http://h/x":              "http://h/x",
		`**/a\*b`:                 `*/a\*b`,
	}
	for in, want := range tests {
		assert.Equal(t, want, Wildcard(in), in)
	}
}
