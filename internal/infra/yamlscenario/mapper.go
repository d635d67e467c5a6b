package yamlscenario

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aalvaropc/glimpse/internal/domain"
)

func mapAndValidate(path string, ys yamlScenario) (domain.Scenario, error) {
	if strings.TrimSpace(ys.Name) == "" {
		return domain.Scenario{}, invalidField(path, "name", "scenario name is required")
	}

	sc := domain.Scenario{
		Name:     ys.Name,
		Vars:     domain.Vars(ys.Vars),
		BaseURLs: make([]string, 0, len(ys.BaseURLs)),
		Mocks:    make([]domain.RouteMock, 0, len(ys.Mocks)),
		Steps:    make([]domain.StepSpec, 0, len(ys.Steps)),
	}
	if sc.Vars == nil {
		sc.Vars = domain.Vars{}
	}

	for _, u := range ys.BaseURLs {
		if u = strings.TrimSpace(u); u != "" {
			sc.BaseURLs = append(sc.BaseURLs, u)
		}
	}

	for i, m := range ys.Mocks {
		rm, err := mapMock(path, fmt.Sprintf("mocks[%d]", i), m)
		if err != nil {
			return domain.Scenario{}, err
		}
		sc.Mocks = append(sc.Mocks, rm)
	}

	names := map[string]bool{}
	for i, s := range ys.Steps {
		field := fmt.Sprintf("steps[%d]", i)
		step, err := mapStep(path, field, s)
		if err != nil {
			return domain.Scenario{}, err
		}
		if step.Name != "" {
			if names[step.Name] {
				return domain.Scenario{}, invalidField(path, field+".name", fmt.Sprintf("duplicate step name %q", step.Name))
			}
			names[step.Name] = true
		}
		sc.Steps = append(sc.Steps, step)
	}

	return sc, nil
}

func mapMock(path, field string, m yamlMock) (domain.RouteMock, error) {
	if strings.TrimSpace(m.Pattern) == "" {
		return domain.RouteMock{}, invalidField(path, field+".pattern", "mock pattern is required")
	}

	method, err := parseMethod(m.Method)
	if err != nil {
		return domain.RouteMock{}, invalidField(path, field+".method", err.Error())
	}
	if m.Status != 0 && (m.Status < 100 || m.Status > 599) {
		return domain.RouteMock{}, invalidField(path, field+".status", fmt.Sprintf("invalid status %d", m.Status))
	}
	if m.Times < 0 {
		return domain.RouteMock{}, invalidField(path, field+".times", "times must be >= 0")
	}
	if m.DelayMS < 0 {
		return domain.RouteMock{}, invalidField(path, field+".delay_ms", "delay_ms must be >= 0")
	}

	body, err := mapBody(path, field, m)
	if err != nil {
		return domain.RouteMock{}, err
	}

	rm := domain.RouteMock{
		Name:    strings.TrimSpace(m.Name),
		Pattern: strings.TrimSpace(m.Pattern),
		Method:  method,
		Status:  m.Status,
		Headers: domain.Headers(m.Headers),
		Body:    body,
		DelayMS: m.DelayMS,
		Times:   m.Times,
		Assert:  mapJSONPath(m.Assert),
		Extract: domain.ExtractSpec(m.Extract),
	}
	if rm.Headers == nil {
		rm.Headers = domain.Headers{}
	}
	if rm.Extract == nil {
		rm.Extract = domain.ExtractSpec{}
	}
	return rm, nil
}

// mapBody picks json, raw or body_file (at most one). body_file is read
// relative to the scenario file; .json files become JSON bodies so their
// string values still get {{vars}} resolved.
func mapBody(path, field string, m yamlMock) (domain.BodySpec, error) {
	set := 0
	if m.JSON != nil {
		set++
	}
	if m.Raw != "" {
		set++
	}
	if m.BodyFile != "" {
		set++
	}
	if set > 1 {
		return domain.BodySpec{}, invalidField(path, field, "only one of json, raw or body_file may be set")
	}

	ct := strings.TrimSpace(m.ContentType)
	switch {
	case m.JSON != nil:
		return domain.BodySpec{Type: domain.BodyJSON, JSON: m.JSON, ContentType: ct}, nil
	case m.Raw != "":
		return domain.BodySpec{Type: domain.BodyRaw, Raw: m.Raw, ContentType: ct}, nil
	case m.BodyFile != "":
		return readBodyFile(path, field, m.BodyFile, ct)
	default:
		return domain.BodySpec{Type: domain.BodyNone, ContentType: ct}, nil
	}
}

func readBodyFile(scenarioPath, field, file, ct string) (domain.BodySpec, error) {
	p := file
	if !filepath.IsAbs(p) {
		p = filepath.Join(filepath.Dir(scenarioPath), p)
	}

	b, err := os.ReadFile(p)
	if err != nil {
		return domain.BodySpec{}, &domain.OpError{
			Op:   "yamlscenario.body_file",
			Kind: domain.KindNotFound,
			Path: p,
			Err:  fmt.Errorf("field %s.body_file: %w", field, err),
		}
	}

	if !strings.EqualFold(filepath.Ext(p), ".json") {
		return domain.BodySpec{Type: domain.BodyRaw, Raw: string(b), ContentType: ct}, nil
	}

	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return domain.BodySpec{}, &domain.OpError{
			Op:   "yamlscenario.body_file",
			Kind: domain.KindInvalidConfig,
			Path: p,
			Err:  fmt.Errorf("field %s.body_file: %w", field, err),
		}
	}
	return domain.BodySpec{Type: domain.BodyJSON, JSON: doc, ContentType: ct}, nil
}

func mapStep(path, field string, s yamlStep) (domain.StepSpec, error) {
	step := domain.StepSpec{
		Name:      strings.TrimSpace(s.Name),
		Value:     s.Value,
		FullPage:  s.FullPage,
		TimeoutMS: s.TimeoutMS,
		Optional:  s.Optional,
		If:        trimRefs(s.If),
	}

	var kinds []domain.StepKind
	var loc *yamlLocator
	if s.Goto != nil {
		kinds = append(kinds, domain.StepGoto)
		step.URL = strings.TrimSpace(*s.Goto)
	}
	if s.ExpectURL != nil {
		kinds = append(kinds, domain.StepExpectURL)
		step.Value = *s.ExpectURL
	}
	if s.Screenshot != nil {
		kinds = append(kinds, domain.StepScreenshot)
		step.Screenshot = strings.TrimSpace(*s.Screenshot)
	}
	for _, c := range []struct {
		kind domain.StepKind
		loc  *yamlLocator
	}{
		{domain.StepWait, s.Wait},
		{domain.StepExpect, s.Expect},
		{domain.StepExpectAbsent, s.ExpectAbsent},
		{domain.StepClick, s.Click},
		{domain.StepFill, s.Fill},
	} {
		if c.loc != nil {
			kinds = append(kinds, c.kind)
			loc = c.loc
		}
	}

	if len(kinds) != 1 {
		return domain.StepSpec{}, invalidField(path, field,
			fmt.Sprintf("step needs exactly one action (goto, wait, expect, expect_absent, expect_url, click, fill, screenshot), got %d", len(kinds)))
	}
	step.Kind = kinds[0]

	if loc != nil {
		step.Locator = domain.Locator{
			Role:     strings.TrimSpace(loc.Role),
			Name:     loc.Name,
			Text:     loc.Text,
			Selector: strings.TrimSpace(loc.Selector),
			Exact:    loc.Exact,
		}
		if n := step.Locator.Strategies(); n != 1 {
			return domain.StepSpec{}, invalidField(path, field+"."+string(step.Kind),
				fmt.Sprintf("locator needs exactly one of role, text or selector, got %d", n))
		}
	}

	switch step.Kind {
	case domain.StepGoto:
		if step.URL == "" {
			return domain.StepSpec{}, invalidField(path, field+".goto", "url is required")
		}
	case domain.StepExpectURL:
		if strings.TrimSpace(step.Value) == "" {
			return domain.StepSpec{}, invalidField(path, field+".expect_url", "url fragment is required")
		}
	case domain.StepScreenshot:
		if step.Screenshot == "" {
			return domain.StepSpec{}, invalidField(path, field+".screenshot", "file name is required")
		}
		if filepath.Base(step.Screenshot) != step.Screenshot {
			return domain.StepSpec{}, invalidField(path, field+".screenshot", "file name must not contain directories")
		}
	}

	if s.TimeoutMS != nil && *s.TimeoutMS <= 0 {
		return domain.StepSpec{}, invalidField(path, field+".timeout_ms", "timeout_ms must be > 0")
	}

	return step, nil
}

func mapJSONPath(in map[string]yamlJSONPathAssertion) map[string]domain.JSONPathAssertion {
	if in == nil {
		return nil
	}
	out := make(map[string]domain.JSONPathAssertion, len(in))
	for k, v := range in {
		out[k] = domain.JSONPathAssertion{
			Exists:   v.Exists,
			Eq:       v.Eq,
			Contains: v.Contains,
			Matches:  v.Matches,
			Gt:       v.Gt,
			Lt:       v.Lt,
		}
	}
	return out
}

func parseMethod(m string) (domain.HTTPMethod, error) {
	up := strings.ToUpper(strings.TrimSpace(m))
	switch domain.HTTPMethod(up) {
	case domain.MethodAny,
		domain.MethodGet,
		domain.MethodPost,
		domain.MethodPut,
		domain.MethodPatch,
		domain.MethodDelete,
		domain.MethodHead,
		domain.MethodOptions:
		return domain.HTTPMethod(up), nil
	default:
		return "", fmt.Errorf("unsupported method %q", m)
	}
}

func invalidField(path, field, msg string) error {
	return &domain.OpError{
		Op:   "yamlscenario.validate",
		Kind: domain.KindInvalidConfig,
		Path: path,
		Err:  fmt.Errorf("field %s: %s", field, msg),
	}
}

func trimRefs(refs stepRefs) []string {
	var out []string
	for _, r := range refs {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}
