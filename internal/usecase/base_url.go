package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/aalvaropc/glimpse/internal/domain"
	"github.com/aalvaropc/glimpse/internal/ports"
)

// candidateBaseURLs returns application roots in the order they should be tried.
// A comma-separated env var base_url replaces the scenario's own list.
func candidateBaseURLs(sc domain.Scenario, envVars domain.Vars) []string {
	var raw []string
	if v, ok := domain.Get(envVars, "base_url"); ok && strings.TrimSpace(v) != "" {
		raw = strings.Split(v, ",")
	} else {
		raw = sc.BaseURLs
	}

	seen := map[string]bool{}
	out := make([]string, 0, len(raw))
	for _, u := range raw {
		u = strings.TrimRight(strings.TrimSpace(u), "/")
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

// baseSelector tracks which candidate is in use. The first successful
// navigation locks the choice for the rest of the run.
type baseSelector struct {
	candidates []string
	idx        int
	locked     bool
}

func newBaseSelector(candidates []string) *baseSelector {
	return &baseSelector{candidates: candidates}
}

func (b *baseSelector) current() string {
	if b.idx < len(b.candidates) {
		return b.candidates[b.idx]
	}
	return ""
}

func (b *baseSelector) canFallback() bool {
	return !b.locked && b.idx+1 < len(b.candidates)
}

func (b *baseSelector) next() string {
	b.idx++
	return b.current()
}

func (b *baseSelector) lock() { b.locked = true }

// reorder moves reachable candidates to the front, keeping the declared order
// among them. Unreachable ones stay as navigation fallbacks.
func (b *baseSelector) reorder(ctx context.Context, p ports.Checker, log *slog.Logger) {
	if len(b.candidates) < 2 {
		return
	}

	var up, down []string
	for _, c := range b.candidates {
		if err := p.Check(ctx, c); err != nil {
			log.Info("base.unreachable", "url", c, "error", err)
			down = append(down, c)
			continue
		}
		up = append(up, c)
	}
	if len(up) == 0 {
		log.Warn("base.none_reachable", "candidates", b.candidates)
	}
	b.candidates = append(up, down...)
}

// joinURL resolves a step URL against a base.
// Absolute URLs are returned unchanged.
func joinURL(base, u string) string {
	if isAbsoluteURL(u) || base == "" {
		return u
	}
	if u == "" {
		return base + "/"
	}
	if !strings.HasPrefix(u, "/") {
		u = "/" + u
	}
	return base + u
}

func isAbsoluteURL(u string) bool {
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") ||
		strings.HasPrefix(u, "file://") || strings.HasPrefix(u, "about:") ||
		strings.HasPrefix(u, "data:")
}
