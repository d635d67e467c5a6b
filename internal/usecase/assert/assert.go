package assert

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/aalvaropc/glimpse/internal/domain"
)

func pass(name, format string, args ...any) domain.AssertionResult {
	return domain.AssertionResult{Name: name, Passed: true, Message: fmt.Sprintf(format, args...)}
}

func fail(name, format string, args ...any) domain.AssertionResult {
	return domain.AssertionResult{Name: name, Passed: false, Message: fmt.Sprintf(format, args...)}
}

// Present checks that a locator matched at least one visible element.
func Present(loc domain.Locator, count int) domain.AssertionResult {
	if count > 0 {
		return pass("present", "%s found (%d)", loc, count)
	}
	return fail("present", "%s NOT found", loc)
}

// Absent checks that a locator matched nothing.
func Absent(loc domain.Locator, count int) domain.AssertionResult {
	if count == 0 {
		return pass("absent", "%s absent", loc)
	}
	return fail("absent", "expected %s to be absent, found %d", loc, count)
}

// URLContains checks the current page URL against an expected fragment.
func URLContains(fragment, url string) domain.AssertionResult {
	if strings.Contains(url, fragment) {
		return pass("url", "url %q contains %q", url, fragment)
	}
	return fail("url", "expected url to contain %q, got %q", fragment, url)
}

// Hits checks that a mock answered at least one request.
func Hits(mockName string, hits int) domain.AssertionResult {
	if hits > 0 {
		return pass("hits", "mock %q hit %d time(s)", mockName, hits)
	}
	return fail("hits", "mock %q was never requested", mockName)
}

// RequestBody applies JSONPath assertions to a captured request body.
// Expressions are evaluated in sorted order so results are stable.
func RequestBody(spec map[string]domain.JSONPathAssertion, body []byte) []domain.AssertionResult {
	if len(spec) == 0 {
		return nil
	}

	exprs := make([]string, 0, len(spec))
	for expr := range spec {
		exprs = append(exprs, expr)
	}
	sort.Strings(exprs)

	var out []domain.AssertionResult

	doc, err := parseJSON(body)
	if err != nil {
		for _, expr := range exprs {
			out = append(out, jsonPathChecks(expr, spec[expr], nil,
				fmt.Errorf("request body is not valid JSON"))...)
		}
		return out
	}

	for _, expr := range exprs {
		val, getErr := jsonpath.Get(expr, doc)
		out = append(out, jsonPathChecks(expr, spec[expr], val, getErr)...)
	}
	return out
}

func jsonPathChecks(expr string, a domain.JSONPathAssertion, val any, getErr error) []domain.AssertionResult {
	var out []domain.AssertionResult
	if a.Exists {
		out = append(out, checkExists(expr, val, getErr))
	}
	if a.Eq != nil {
		out = append(out, checkString("jsonpath.eq", expr, val, getErr, func(s string) domain.AssertionResult {
			if s == *a.Eq {
				return pass("jsonpath.eq", "jsonpath %q eq %q", expr, *a.Eq)
			}
			return fail("jsonpath.eq", "jsonpath %q: expected %q, got %q", expr, *a.Eq, s)
		}))
	}
	if a.Contains != nil {
		out = append(out, checkString("jsonpath.contains", expr, val, getErr, func(s string) domain.AssertionResult {
			if strings.Contains(s, *a.Contains) {
				return pass("jsonpath.contains", "jsonpath %q contains %q", expr, *a.Contains)
			}
			return fail("jsonpath.contains", "jsonpath %q: %q does not contain %q", expr, s, *a.Contains)
		}))
	}
	if a.Matches != nil {
		out = append(out, checkString("jsonpath.matches", expr, val, getErr, func(s string) domain.AssertionResult {
			re, err := regexp.Compile(*a.Matches)
			if err != nil {
				return fail("jsonpath.matches", "jsonpath %q: invalid regex %q: %v", expr, *a.Matches, err)
			}
			if re.MatchString(s) {
				return pass("jsonpath.matches", "jsonpath %q matches %q", expr, *a.Matches)
			}
			return fail("jsonpath.matches", "jsonpath %q: %q does not match %q", expr, s, *a.Matches)
		}))
	}
	if a.Gt != nil {
		out = append(out, checkNumber("jsonpath.gt", expr, val, getErr, func(f float64) domain.AssertionResult {
			if f > *a.Gt {
				return pass("jsonpath.gt", "jsonpath %q: %v > %v", expr, f, *a.Gt)
			}
			return fail("jsonpath.gt", "jsonpath %q: expected > %v, got %v", expr, *a.Gt, f)
		}))
	}
	if a.Lt != nil {
		out = append(out, checkNumber("jsonpath.lt", expr, val, getErr, func(f float64) domain.AssertionResult {
			if f < *a.Lt {
				return pass("jsonpath.lt", "jsonpath %q: %v < %v", expr, f, *a.Lt)
			}
			return fail("jsonpath.lt", "jsonpath %q: expected < %v, got %v", expr, *a.Lt, f)
		}))
	}
	return out
}

func checkExists(expr string, val any, getErr error) domain.AssertionResult {
	if getErr != nil {
		return fail("jsonpath.exists", "invalid jsonpath %q: %v", expr, getErr)
	}
	if isEmptyJSONPathValue(val) {
		return fail("jsonpath.exists", "jsonpath %q: expected value to exist, got empty", expr)
	}
	return pass("jsonpath.exists", "jsonpath %q exists", expr)
}

func checkString(name, expr string, val any, getErr error, check func(string) domain.AssertionResult) domain.AssertionResult {
	if getErr != nil {
		return fail(name, "jsonpath %q: %v", expr, getErr)
	}
	s, err := jsonPathToString(val)
	if err != nil {
		return fail(name, "jsonpath %q: %v", expr, err)
	}
	return check(s)
}

func checkNumber(name, expr string, val any, getErr error, check func(float64) domain.AssertionResult) domain.AssertionResult {
	if getErr != nil {
		return fail(name, "jsonpath %q: %v", expr, getErr)
	}
	f, err := jsonPathToFloat64(val)
	if err != nil {
		return fail(name, "jsonpath %q: %v", expr, err)
	}
	return check(f)
}

func jsonPathToString(val any) (string, error) {
	switch v := val.(type) {
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	case nil:
		return "", fmt.Errorf("value is null")
	default:
		return fmt.Sprint(v), nil
	}
}

func jsonPathToFloat64(val any) (float64, error) {
	switch v := val.(type) {
	case float64:
		return v, nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("value %q is not numeric", v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("value of type %T is not numeric", val)
	}
}

func parseJSON(body []byte) (any, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func isEmptyJSONPathValue(v any) bool {
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
