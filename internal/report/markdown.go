// Package report renders runs as Markdown for CI job summaries and the TUI.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aalvaropc/glimpse/internal/domain"
)

// Markdown renders one run. runID may be empty (unsaved runs).
func Markdown(run domain.RunResult, runID string) string {
	var b strings.Builder

	verdict := "PASS"
	if !run.Passed() {
		verdict = "FAIL"
	}
	fmt.Fprintf(&b, "## %s: %s\n\n", run.ScenarioName, verdict)

	var meta []string
	if run.EnvironmentName != "" {
		meta = append(meta, "env `"+run.EnvironmentName+"`")
	}
	if run.BaseURL != "" {
		meta = append(meta, "base `"+run.BaseURL+"`")
	}
	if !run.StartedAt.IsZero() && !run.EndedAt.IsZero() {
		meta = append(meta, run.EndedAt.Sub(run.StartedAt).Round(time.Millisecond).String())
	}
	if runID != "" {
		meta = append(meta, "run `"+runID+"`")
	}
	if len(meta) > 0 {
		b.WriteString(strings.Join(meta, " · "))
		b.WriteString("\n\n")
	}

	if run.Error != nil {
		fmt.Fprintf(&b, "> **%s error:** %s\n\n", run.Error.Kind, cell(run.Error.Message))
	}

	if len(run.Steps) > 0 {
		b.WriteString("| # | step | result | ms | details |\n")
		b.WriteString("|---|---|---|---:|---|\n")
		for i, s := range run.Steps {
			details := s.Message
			if s.Artifact != "" {
				details = strings.TrimSpace(details + " `" + s.Artifact + "`")
			}
			fmt.Fprintf(&b, "| %d | %s | %s | %d | %s |\n", i+1, cell(s.Name), status(s), s.DurationMS, cell(details))
		}
		b.WriteString("\n")
	}

	if len(run.Mocks) > 0 {
		b.WriteString("| mock | pattern | hits | checks |\n")
		b.WriteString("|---|---|---:|---|\n")
		for _, m := range run.Mocks {
			fmt.Fprintf(&b, "| %s | `%s` | %d | %s |\n", cell(m.Name), m.Pattern, len(m.Hits), cell(checks(m)))
		}
		b.WriteString("\n")
	}

	passed, failed, skipped := run.Counts()
	fmt.Fprintf(&b, "**%d** passed, **%d** failed, **%d** skipped\n", passed, failed, skipped)
	return b.String()
}

func status(s domain.StepResult) string {
	switch {
	case s.Status == domain.StepPassed:
		return "✅ passed"
	case s.Status == domain.StepSkipped:
		return "⏭ skipped"
	case s.Optional:
		return "⚠️ failed (optional)"
	default:
		return "❌ failed"
	}
}

func checks(m domain.MockResult) string {
	var parts []string
	for _, a := range m.Assertions {
		mark := "✅"
		if !a.Passed {
			mark = "❌"
		}
		parts = append(parts, mark+" "+a.Name)
	}
	for _, e := range m.Extracts {
		if !e.Success {
			parts = append(parts, "⚠️ extract "+e.Name)
		}
	}
	keys := make([]string, 0, len(m.Extracted))
	for k := range m.Extracted {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, k+"="+m.Extracted[k])
	}
	return strings.Join(parts, ", ")
}

// cell keeps text on one table row.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}
