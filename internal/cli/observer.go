package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/aalvaropc/glimpse/internal/domain"
)

// liveObserver prints one line per finished step. Safe for parallel runs.
type liveObserver struct {
	mu     sync.Mutex
	w      io.Writer
	prefix bool
}

func newLiveObserver(w io.Writer, prefixScenario bool) *liveObserver {
	return &liveObserver{w: w, prefix: prefixScenario}
}

func (o *liveObserver) StepStarted(string, int, int, domain.StepSpec) {}

func (o *liveObserver) StepFinished(scenario string, index, total int, res domain.StepResult) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.prefix {
		fmt.Fprintf(o.w, "[%s] ", scenario)
	}
	fmt.Fprintf(o.w, "%d/%d %s %s", index+1, total, stepMark(res), res.Name)
	if res.Message != "" {
		fmt.Fprintf(o.w, " · %s", res.Message)
	}
	fmt.Fprintln(o.w)
}
