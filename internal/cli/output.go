package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/aalvaropc/glimpse/internal/app"
	"github.com/aalvaropc/glimpse/internal/domain"
	"github.com/aalvaropc/glimpse/internal/report"
	"github.com/aalvaropc/glimpse/internal/usecase"
)

var (
	passStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle  = lipgloss.NewStyle().Faint(true)
)

func stepMark(s domain.StepResult) string {
	switch {
	case s.Status == domain.StepPassed:
		return passStyle.Render("✓")
	case s.Status == domain.StepSkipped:
		return dimStyle.Render("-")
	case s.Optional:
		return warnStyle.Render("!")
	default:
		return failStyle.Render("✗")
	}
}

// redactResults masks credentials in place so stdout matches what runs/ stores.
func redactResults(ws *app.Workspace, results []usecase.SuiteResult) {
	for i := range results {
		results[i].Run = ws.Redact(results[i].Run)
	}
}

func printSuite(w io.Writer, results []usecase.SuiteResult, format string) error {
	switch format {
	case "json":
		type item struct {
			Path  string           `json:"path"`
			RunID string           `json:"run_id,omitempty"`
			Error string           `json:"error,omitempty"`
			Run   domain.RunResult `json:"run"`
		}
		payload := make([]item, 0, len(results))
		for _, r := range results {
			it := item{Path: r.Path, RunID: r.RunID, Run: r.Run}
			if r.Err != nil {
				it.Error = r.Err.Error()
			}
			payload = append(payload, it)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if len(payload) == 1 {
			return enc.Encode(payload[0])
		}
		return enc.Encode(payload)

	case "markdown", "md":
		for i, r := range results {
			if i > 0 {
				fmt.Fprint(w, "\n---\n\n")
			}
			if r.Err != nil && r.Run.ScenarioName == "" {
				fmt.Fprintf(w, "## %s: ERROR\n\n> %v\n", filepath.Base(r.Path), r.Err)
				continue
			}
			fmt.Fprint(w, report.Markdown(r.Run, r.RunID))
		}
		return nil

	case "pretty", "":
		for i, r := range results {
			if i > 0 {
				fmt.Fprintln(w)
			}
			printPrettyRun(w, r.Run, r.RunID)
			if r.Err != nil {
				fmt.Fprintf(w, "%s %s: %v\n", failStyle.Render("error"), filepath.Base(r.Path), r.Err)
			}
		}
		if len(results) > 1 {
			fmt.Fprintln(w)
			printSummary(w, results)
		}
		return nil

	default:
		return fmt.Errorf("unsupported format %q (expected pretty|json|markdown)", format)
	}
}

func printPrettyRun(w io.Writer, run domain.RunResult, runID string) {
	total := run.EndedAt.Sub(run.StartedAt)
	if run.StartedAt.IsZero() || run.EndedAt.IsZero() {
		total = 0
	}

	fmt.Fprintf(w, "Scenario: %s\n", run.ScenarioName)
	fmt.Fprintf(w, "Env:      %s\n", run.EnvironmentName)
	if run.BaseURL != "" {
		fmt.Fprintf(w, "Base URL: %s\n", run.BaseURL)
	}
	fmt.Fprintf(w, "Duration: %s\n", total.Round(time.Millisecond))
	if runID != "" {
		fmt.Fprintf(w, "Run ID:   %s\n", runID)
	}
	fmt.Fprintln(w)

	for _, s := range run.Steps {
		fmt.Fprintf(w, "  %s %-28s %6dms  %s\n", stepMark(s), s.Name, s.DurationMS, s.Message)
		if s.Error != nil && s.Status == domain.StepFailed {
			fmt.Fprintf(w, "      error: %s (%s)\n", s.Error.Message, s.Error.Kind)
		}
		if s.Artifact != "" {
			fmt.Fprintf(w, "      %s\n", dimStyle.Render(s.Artifact))
		}
	}

	if len(run.Mocks) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Mocks:")
		for _, m := range run.Mocks {
			fmt.Fprintf(w, "  - %s (%s) hits=%d\n", m.Name, m.Pattern, len(m.Hits))
			for _, a := range m.Assertions {
				mark := passStyle.Render("✓")
				if !a.Passed {
					mark = failStyle.Render("✗")
				}
				fmt.Fprintf(w, "      %s %s: %s\n", mark, a.Name, a.Message)
			}
			for _, e := range m.Extracts {
				if !e.Success {
					fmt.Fprintf(w, "      %s extract %s: %s\n", warnStyle.Render("!"), e.Name, e.Message)
				}
			}
			for _, k := range sortedKeys(m.Extracted) {
				fmt.Fprintf(w, "      %s = %s\n", k, m.Extracted[k])
			}
		}
	}

	if run.Error != nil {
		fmt.Fprintf(w, "\n%s %s (%s)\n", failStyle.Render("run error:"), run.Error.Message, run.Error.Kind)
	}

	passed, failed, skipped := run.Counts()
	verdict := passStyle.Render("PASS")
	if !run.Passed() {
		verdict = failStyle.Render("FAIL")
	}
	fmt.Fprintf(w, "\n%s  %d passed, %d failed, %d skipped\n", verdict, passed, failed, skipped)
}

func printSummary(w io.Writer, results []usecase.SuiteResult) {
	var names []string
	failed := 0
	for _, r := range results {
		if r.Err != nil || !r.Run.Passed() {
			failed++
			name := r.Run.ScenarioName
			if name == "" {
				name = filepath.Base(r.Path)
			}
			names = append(names, name)
		}
	}
	if failed == 0 {
		fmt.Fprintf(w, "%s all %d scenario(s) passed\n", passStyle.Render("PASS"), len(results))
		return
	}
	fmt.Fprintf(w, "%s %d of %d scenario(s) failed: %s\n", failStyle.Render("FAIL"), failed, len(results), strings.Join(names, ", "))
}

func countFailedRuns(results []usecase.SuiteResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil || !r.Run.Passed() {
			n++
		}
	}
	return n
}

func sortedKeys(v domain.Vars) []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
