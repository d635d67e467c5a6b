package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

// RunErrorKind is a high-level classification of runtime errors.
type RunErrorKind string

const (
	RunErrorUnknown    RunErrorKind = "unknown"
	RunErrorTimeout    RunErrorKind = "timeout"
	RunErrorCanceled   RunErrorKind = "canceled"
	RunErrorNavigation RunErrorKind = "navigation"
	RunErrorNotFound   RunErrorKind = "not_found"
	RunErrorBrowser    RunErrorKind = "browser"
	RunErrorConfig     RunErrorKind = "config"
)

// RunError represents a structured error produced while running a scenario.
type RunError struct {
	Kind    RunErrorKind
	Message string
}

// NewRunError classifies err and keeps its message.
func NewRunError(err error) *RunError {
	if err == nil {
		return nil
	}
	return &RunError{Kind: ClassifyRunError(err), Message: err.Error()}
}

// ClassifyRunError maps driver and config errors onto RunErrorKind.
func ClassifyRunError(err error) RunErrorKind {
	if err == nil {
		return RunErrorUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return RunErrorTimeout
	}
	if errors.Is(err, context.Canceled) {
		return RunErrorCanceled
	}

	var nav *NavigationError
	if errors.As(err, &nav) {
		return RunErrorNavigation
	}
	var nf *ElementNotFoundError
	if errors.As(err, &nf) {
		return RunErrorNotFound
	}

	var oe *OpError
	if errors.As(err, &oe) {
		switch oe.Kind {
		case KindInvalidConfig, KindMissingVar:
			return RunErrorConfig
		case KindNotFound:
			return RunErrorNotFound
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return RunErrorTimeout
	case strings.Contains(msg, "net::err_"):
		return RunErrorNavigation
	case strings.Contains(msg, "websocket") || strings.Contains(msg, "cdp") || strings.Contains(msg, "chrome"):
		return RunErrorBrowser
	}
	return RunErrorUnknown
}

// NavigationError reports that the browser could not load a URL.
type NavigationError struct {
	URL    string
	Reason string
}

func (e *NavigationError) Error() string {
	return "navigate " + e.URL + ": " + e.Reason
}

// ElementNotFoundError reports that a locator matched nothing before its deadline.
type ElementNotFoundError struct {
	Locator Locator
	Timeout time.Duration
}

func (e *ElementNotFoundError) Error() string {
	return "no element matches " + e.Locator.String() + " within " + e.Timeout.String()
}

// StepStatus is the outcome of a single step.
type StepStatus string

const (
	StepPassed  StepStatus = "passed"
	StepFailed  StepStatus = "failed"
	StepSkipped StepStatus = "skipped"
)

// AssertionResult is the output of a single assertion.
type AssertionResult struct {
	Name    string
	Passed  bool
	Message string
}

// ExtractResult is the output of a single extract rule.
type ExtractResult struct {
	Name    string
	Success bool
	Message string
}

// StepResult represents the result of executing a single step.
type StepResult struct {
	Name     string
	Kind     StepKind
	Status   StepStatus
	Optional bool
	Message  string

	// Count is the number of matched elements for locator steps.
	Count int
	// URL is the page URL after the step.
	URL      string
	Artifact string

	DurationMS int64
	Error      *RunError
}

// Failed reports whether the step failed in a way that fails the run.
func (s StepResult) Failed() bool {
	return s.Status == StepFailed && !s.Optional
}

// MockHit is one request answered by a mock.
type MockHit struct {
	Method string
	URL    string
	Body   string
	At     time.Time
}

// MockResult summarizes how a mock was used during the run.
type MockResult struct {
	Name    string
	Pattern string
	Hits    []MockHit

	Assertions []AssertionResult
	Extracts   []ExtractResult
	Extracted  Vars
}

// RunResult represents a whole scenario run; it is also the persisted artifact.
type RunResult struct {
	ID string

	ScenarioName    string
	ScenarioPath    string
	EnvironmentName string
	BaseURL         string

	StartedAt time.Time
	EndedAt   time.Time

	Steps     []StepResult
	Mocks     []MockResult
	Artifacts []string

	Error *RunError
}

// Passed reports whether the run succeeded.
func (r RunResult) Passed() bool {
	if r.Error != nil {
		return false
	}
	for _, s := range r.Steps {
		if s.Failed() {
			return false
		}
	}
	for _, m := range r.Mocks {
		for _, a := range m.Assertions {
			if !a.Passed {
				return false
			}
		}
	}
	return true
}

// Counts returns passed/failed/skipped step totals; optional failures count as failed.
func (r RunResult) Counts() (passed, failed, skipped int) {
	for _, s := range r.Steps {
		switch s.Status {
		case StepPassed:
			passed++
		case StepFailed:
			failed++
		case StepSkipped:
			skipped++
		}
	}
	return passed, failed, skipped
}
