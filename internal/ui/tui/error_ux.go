package tui

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aalvaropc/glimpse/internal/domain"
)

const genericMessage = "Unexpected error (see logs)"

var reLine = regexp.MustCompile(`(?i)\bline\s+(\d+)\b`)

// notFoundLabels maps an OpError op prefix to what was missing.
var notFoundLabels = []struct{ op, label string }{
	{"yamlscenario", "Scenario"},
	{"yamlenv", "Environment"},
	{"workspacefinder", "Workspace"},
}

// userMessage turns an error into a one-line toast for the status bar.
func userMessage(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, context.Canceled):
		return "Run canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "Run timed out"
	case errors.Is(err, domain.ErrNoReachableBase):
		return "No base URL is reachable (is the app running?)"
	}

	var nav *domain.NavigationError
	if errors.As(err, &nav) {
		return "Could not load " + nav.URL
	}

	var oe *domain.OpError
	if errors.As(err, &oe) {
		return opMessage(oe, err.Error())
	}

	msg := err.Error()
	if looksLikeYAMLProblem(msg) {
		if line := extractLine(msg); line != "" {
			return "Invalid YAML line " + line
		}
		return "Invalid YAML"
	}
	if strings.Contains(strings.ToLower(msg), "missing variable") {
		return missingVarMessage(msg)
	}
	return genericMessage
}

func opMessage(oe *domain.OpError, msg string) string {
	switch oe.Kind {
	case domain.KindNotFound:
		for _, l := range notFoundLabels {
			if strings.HasPrefix(oe.Op, l.op) {
				return l.label + " not found"
			}
		}
		return "Not found"

	case domain.KindMissingVar:
		return missingVarMessage(msg)

	case domain.KindInvalidConfig:
		base := "config"
		if strings.TrimSpace(oe.Path) != "" {
			base = filepath.Base(oe.Path)
		}
		if line := extractLine(msg); line != "" {
			return "Invalid YAML at " + base + " line " + line
		}
		if looksLikeYAMLProblem(msg) {
			return "Invalid YAML at " + base
		}
		return "Invalid config"

	case domain.KindExecution:
		if strings.HasPrefix(oe.Op, "rodbrowser.launch") || strings.HasPrefix(oe.Op, "rodbrowser.connect") {
			return "Browser failed to start (is Chrome installed?)"
		}
	}
	return genericMessage
}

func missingVarMessage(msg string) string {
	if v := extractMissingVarName(msg); v != "" {
		return "Missing variable " + v
	}
	return "Missing variable"
}

func looksLikeYAMLProblem(s string) bool {
	ls := strings.ToLower(s)
	for _, marker := range []string{"yaml:", "did not find expected", "cannot unmarshal"} {
		if strings.Contains(ls, marker) {
			return true
		}
	}
	return false
}

func extractLine(s string) string {
	if m := reLine.FindStringSubmatch(s); len(m) == 2 {
		return m[1]
	}
	return ""
}

func extractMissingVarName(s string) string {
	ls := strings.ToLower(s)

	for _, marker := range []string{"missing variable:", "missing variable "} {
		i := strings.LastIndex(ls, marker)
		if i < 0 {
			continue
		}
		fields := strings.Fields(strings.Trim(s[i+len(marker):], " .,:;\"'"))
		if len(fields) == 0 {
			return ""
		}
		return strings.Trim(fields[0], " .,:;\"'")
	}

	return ""
}
