package extract

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/aalvaropc/glimpse/internal/domain"
)

// Apply extracts variables from a captured JSON request body.
// rules: map[varName]jsonPathExpr
//
// A non-JSON body fails every rule. A failing rule is reported and the others still run.
func Apply(body []byte, rules domain.ExtractSpec) (domain.Vars, []domain.ExtractResult) {
	if len(rules) == 0 {
		return domain.Vars{}, []domain.ExtractResult{}
	}

	names := make([]string, 0, len(rules))
	for k := range rules {
		names = append(names, k)
	}
	sort.Strings(names)

	extracted := domain.Vars{}
	results := make([]domain.ExtractResult, 0, len(names))

	doc, docErr := parseJSON(body)
	for _, name := range names {
		expr := strings.TrimSpace(rules[name])
		val, err := evaluate(doc, docErr, expr)
		if err != nil {
			results = append(results, domain.ExtractResult{
				Name:    name,
				Message: fmt.Sprintf("extract %q (%s): %v", name, expr, err),
			})
			continue
		}
		extracted[name] = val
		results = append(results, domain.ExtractResult{
			Name:    name,
			Success: true,
			Message: fmt.Sprintf("extracted %q", name),
		})
	}

	return extracted, results
}

// FromHits runs the rules against the most recent hit carrying a body.
// Later hits win because a retried login should expose its final payload.
func FromHits(hits []domain.MockHit, rules domain.ExtractSpec) (domain.Vars, []domain.ExtractResult) {
	for i := len(hits) - 1; i >= 0; i-- {
		if strings.TrimSpace(hits[i].Body) != "" {
			return Apply([]byte(hits[i].Body), rules)
		}
	}
	return Apply(nil, rules)
}

func evaluate(doc any, docErr error, expr string) (string, error) {
	if expr == "" {
		return "", fmt.Errorf("empty jsonpath expression")
	}
	if docErr != nil {
		return "", fmt.Errorf("request body is not valid JSON")
	}
	val, err := jsonpath.Get(expr, doc)
	if isMissingPath(err) {
		return "", fmt.Errorf("no value found (%v)", err)
	}
	if err != nil {
		return "", fmt.Errorf("jsonpath error: %w", err)
	}
	if isEmptyValue(val) {
		return "", fmt.Errorf("no value found")
	}
	s, err := toString(val)
	if err != nil {
		return "", fmt.Errorf("cannot convert value to string: %w", err)
	}
	return s, nil
}

func parseJSON(body []byte) (any, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// isMissingPath reports whether jsonpath failed because the key or index is
// absent, as opposed to a malformed expression.
func isMissingPath(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "unknown key ") || strings.Contains(msg, "out of bounds")
}

func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}

func toString(v any) (string, error) {
	// jsonpath returns a slice for filters and wildcards
	if arr, ok := v.([]any); ok {
		switch len(arr) {
		case 0:
			return "", fmt.Errorf("empty array")
		case 1:
			return toString(arr[0])
		}
		b, err := json.Marshal(arr)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	switch t := v.(type) {
	case string:
		return t, nil
	case map[string]any:
		b, err := json.Marshal(t)
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		return fmt.Sprint(t), nil
	}
}
