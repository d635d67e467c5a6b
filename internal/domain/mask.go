package domain

import (
	"encoding/json"
	"net/url"
	"strings"
)

// MaskRun returns a copy of run with credentials replaced by MaskedValue.
// Captured request bodies (login forms), hit query strings and extracted vars
// are the only places where credentials end up in a run.
func MaskRun(run RunResult) RunResult {
	out := run
	out.Mocks = make([]MockResult, 0, len(run.Mocks))

	for _, m := range run.Mocks {
		c := m
		c.Extracted = Merge(nil, m.Extracted)
		for k := range c.Extracted {
			if IsSensitiveKey(k) {
				c.Extracted[k] = MaskedValue
			}
		}

		c.Hits = make([]MockHit, len(m.Hits))
		for i, h := range m.Hits {
			h.Body = maskBody(h.Body)
			h.URL = maskQuery(h.URL)
			c.Hits[i] = h
		}

		out.Mocks = append(out.Mocks, c)
	}

	return out
}

func maskBody(body string) string {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return body
	}

	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		var doc any
		if err := json.Unmarshal([]byte(trimmed), &doc); err == nil {
			b, err := json.Marshal(maskJSON(doc))
			if err == nil {
				return string(b)
			}
		}
		return body
	}

	if strings.Contains(trimmed, "=") {
		if vals, err := url.ParseQuery(trimmed); err == nil && MaskedValues(vals) {
			return vals.Encode()
		}
	}
	return body
}

func maskJSON(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			if IsSensitiveKey(k) {
				out[k] = MaskedValue
				continue
			}
			out[k] = maskJSON(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = maskJSON(vv)
		}
		return out
	default:
		return v
	}
}

func maskQuery(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.RawQuery == "" {
		return raw
	}
	q := u.Query()
	if !MaskedValues(q) {
		return raw
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// MaskedValues masks sensitive keys in place and reports whether anything changed.
func MaskedValues(vals url.Values) bool {
	changed := false
	for k, vs := range vals {
		if !IsSensitiveKey(k) {
			continue
		}
		for i := range vs {
			vs[i] = MaskedValue
		}
		changed = true
	}
	return changed
}
