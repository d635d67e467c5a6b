package usecase

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/aalvaropc/glimpse/internal/domain"
)

// SuiteResult is the outcome of one scenario within a suite.
type SuiteResult struct {
	Path  string
	Run   domain.RunResult
	RunID string
	Err   error
}

// RunSuite runs several scenarios with bounded parallelism. All runs share the
// browser held by the underlying RunScenario; each gets its own session.
type RunSuite struct {
	run      *RunScenario
	parallel int
}

func NewRunSuite(run *RunScenario, parallel int) *RunSuite {
	if parallel < 1 {
		parallel = 1
	}
	return &RunSuite{run: run, parallel: parallel}
}

// Execute returns one result per path, in input order. A failing scenario does
// not stop the others; only cancellation is returned as an error.
func (s *RunSuite) Execute(ctx context.Context, scenarioPaths []string, envNameOrPath string) ([]SuiteResult, error) {
	results := make([]SuiteResult, len(scenarioPaths))

	var g errgroup.Group
	g.SetLimit(s.parallel)

	for i, path := range scenarioPaths {
		g.Go(func() error {
			results[i].Path = path
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			run, id, err := s.run.Execute(ctx, path, envNameOrPath)
			results[i].Run = run
			results[i].RunID = id
			results[i].Err = err
			return nil
		})
	}

	_ = g.Wait()
	return results, ctx.Err()
}

// Passed reports whether every scenario ran and passed.
func Passed(results []SuiteResult) bool {
	for _, r := range results {
		if r.Err != nil || !r.Run.Passed() {
			return false
		}
	}
	return true
}
