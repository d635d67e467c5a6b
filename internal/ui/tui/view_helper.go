package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/aalvaropc/glimpse/internal/domain"
)

func clampString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))

	n := 0
	for _, r := range s {
		if n >= maxLen {
			break
		}
		b.WriteRune(r)
		n++
	}
	return b.String() + "…"
}

func prettyBody(body string) string {
	if strings.TrimSpace(body) == "" {
		return "(empty)"
	}
	var js any
	if err := json.Unmarshal([]byte(body), &js); err == nil {
		b, _ := json.MarshalIndent(js, "", "  ")
		return string(b)
	}
	return string(bytes.TrimSpace([]byte(body)))
}

func renderScenarioPreview(sc domain.Scenario) string {
	var b strings.Builder

	b.WriteString("Scenario: ")
	b.WriteString(sc.Name)
	b.WriteString("\n\n")

	if len(sc.BaseURLs) > 0 {
		b.WriteString("Base URLs:\n")
		for _, u := range sc.BaseURLs {
			b.WriteString("  - ")
			b.WriteString(u)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(sc.Vars) > 0 {
		b.WriteString("Vars:\n")
		for _, k := range sortedVarKeys(sc.Vars) {
			fmt.Fprintf(&b, "  - %s = %s\n", k, sc.Vars[k])
		}
		b.WriteString("\n")
	}

	if len(sc.Mocks) > 0 {
		b.WriteString("Mocks:\n")
		for _, m := range sc.Mocks {
			method := string(m.Method)
			if method == "" {
				method = "*"
			}
			status := m.Status
			if status == 0 {
				status = 200
			}
			fmt.Fprintf(&b, "  - %-6s %s → %d", method, m.Pattern, status)
			if m.Name != "" {
				fmt.Fprintf(&b, "  (%s)", m.Name)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("Steps:\n")
	for i, s := range sc.Steps {
		fmt.Fprintf(&b, "  %2d. %-11s %s", i+1, s.Kind, stepTarget(s))
		if s.Optional {
			b.WriteString("  [optional]")
		}
		b.WriteString("\n")
	}

	return b.String()
}

func stepTarget(s domain.StepSpec) string {
	switch s.Kind {
	case domain.StepGoto:
		return s.URL
	case domain.StepScreenshot:
		return s.Screenshot
	case domain.StepExpectURL:
		return s.Value
	}
	if !s.Locator.IsZero() {
		if s.Value != "" && s.Kind == domain.StepFill {
			return s.Locator.String() + " ← " + clampString(s.Value, 24)
		}
		return s.Locator.String()
	}
	return s.Name
}

func renderRunProgress(t Theme, steps []runStepMsg) string {
	var b strings.Builder
	for _, s := range steps {
		fmt.Fprintf(&b, "%d/%d %s %s", s.index+1, s.total, t.stepMark(s.result), s.result.Name)
		if s.result.Message != "" {
			b.WriteString(" · ")
			b.WriteString(clampString(s.result.Message, 80))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func renderRunDetails(t Theme, run domain.RunResult, id string, runErr error) string {
	var b strings.Builder

	if runErr != nil {
		b.WriteString("Error:\n  ")
		b.WriteString(runErr.Error())
		b.WriteString("\n\n")
	}
	if run.Error != nil {
		fmt.Fprintf(&b, "Run error:\n  - kind: %s\n  - msg: %s\n\n", run.Error.Kind, run.Error.Message)
	}

	if run.BaseURL != "" {
		fmt.Fprintf(&b, "Base URL: %s\n", run.BaseURL)
	}
	if run.EnvironmentName != "" {
		fmt.Fprintf(&b, "Env: %s\n", run.EnvironmentName)
	}
	if id != "" {
		fmt.Fprintf(&b, "Run ID: %s\n", id)
	}
	b.WriteString("\n")

	if len(run.Steps) > 0 {
		b.WriteString("Steps:\n")
		for _, s := range run.Steps {
			fmt.Fprintf(&b, "  %s %s (%dms)", t.stepMark(s), s.Name, s.DurationMS)
			if s.Message != "" {
				b.WriteString(" ")
				b.WriteString(s.Message)
			}
			b.WriteString("\n")
			if s.Artifact != "" {
				b.WriteString("      ")
				b.WriteString(s.Artifact)
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
	}

	for _, m := range run.Mocks {
		fmt.Fprintf(&b, "Mock %s (%s): %d hit(s)\n", m.Name, m.Pattern, len(m.Hits))
		for _, a := range m.Assertions {
			status := "FAIL"
			if a.Passed {
				status = "PASS"
			}
			fmt.Fprintf(&b, "  - %s [%s] %s\n", a.Name, status, a.Message)
		}
		for _, e := range m.Extracts {
			status := "FAIL"
			if e.Success {
				status = "OK"
			}
			fmt.Fprintf(&b, "  - extract %s [%s] %s\n", e.Name, status, e.Message)
		}
		for _, k := range sortedVarKeys(m.Extracted) {
			fmt.Fprintf(&b, "  - %s = %s\n", k, m.Extracted[k])
		}
		if len(m.Hits) > 0 && m.Hits[len(m.Hits)-1].Body != "" {
			b.WriteString("  last body:\n")
			for _, line := range strings.Split(prettyBody(m.Hits[len(m.Hits)-1].Body), "\n") {
				b.WriteString("    ")
				b.WriteString(line)
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
	}

	passed, failed, skipped := run.Counts()
	fmt.Fprintf(&b, "%d passed, %d failed, %d skipped\n", passed, failed, skipped)
	return b.String()
}

func sortedVarKeys(v domain.Vars) []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
