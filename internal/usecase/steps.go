package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aalvaropc/glimpse/internal/domain"
	"github.com/aalvaropc/glimpse/internal/ports"
	ucassert "github.com/aalvaropc/glimpse/internal/usecase/assert"
	"github.com/aalvaropc/glimpse/internal/usecase/mock"
)

const absentPollInterval = 100 * time.Millisecond

// stepRunner executes the steps of a single run against one page session.
type stepRunner struct {
	uc      *RunScenario
	session ports.PageSession
	table   *mock.Table
	bases   *baseSelector
	vars    domain.Vars
	run     *domain.RunResult
	log     *slog.Logger
}

// runAll executes steps in order. After the first hard failure the remaining
// steps are skipped and an error screenshot is attempted. It only returns an
// error for cancellation.
func (r *stepRunner) runAll(ctx context.Context, sc domain.Scenario) error {
	total := len(sc.Steps)
	status := make(map[string]domain.StepStatus, total)
	var hardFailure *domain.StepResult

	for i, step := range sc.Steps {
		name := stepName(step, i)

		if err := ctx.Err(); err != nil {
			r.skipRest(sc, i, "canceled")
			return err
		}

		if hardFailure != nil {
			res := skipped(step, name, fmt.Sprintf("skipped: step %q failed", hardFailure.Name))
			r.record(sc.Name, i, total, res, status)
			continue
		}

		if unmet, ok := unmetCondition(step.If, status); ok {
			res := skipped(step, name, fmt.Sprintf("skipped: condition %q not met", unmet))
			r.record(sc.Name, i, total, res, status)
			continue
		}

		r.uc.observer.StepStarted(sc.Name, i, total, step)
		res := r.runStep(ctx, step, name)
		r.record(sc.Name, i, total, res, status)

		if res.Failed() {
			hardFailure = &res
			r.captureError(ctx)
		}
	}

	return ctx.Err()
}

func (r *stepRunner) record(scenario string, i, total int, res domain.StepResult, status map[string]domain.StepStatus) {
	status[res.Name] = res.Status
	r.run.Steps = append(r.run.Steps, res)

	switch {
	case res.Status == domain.StepFailed && res.Optional:
		r.log.Info("step.optional_failed", "step", res.Name, "message", res.Message)
	case res.Status == domain.StepFailed:
		r.log.Warn("step.failed", "step", res.Name, "kind", res.Kind, "message", res.Message)
	default:
		r.log.Debug("step.done", "step", res.Name, "status", res.Status, "duration_ms", res.DurationMS)
	}

	r.uc.observer.StepFinished(scenario, i, total, res)
}

func (r *stepRunner) skipRest(sc domain.Scenario, from int, reason string) {
	for i := from; i < len(sc.Steps); i++ {
		res := skipped(sc.Steps[i], stepName(sc.Steps[i], i), "skipped: "+reason)
		r.run.Steps = append(r.run.Steps, res)
		r.uc.observer.StepFinished(sc.Name, i, len(sc.Steps), res)
	}
}

func (r *stepRunner) runStep(ctx context.Context, spec domain.StepSpec, name string) domain.StepResult {
	start := time.Now()
	res := domain.StepResult{
		Name:     name,
		Kind:     spec.Kind,
		Status:   domain.StepPassed,
		Optional: spec.Optional,
	}

	step, err := r.resolve(spec)
	if err == nil {
		err = r.exec(ctx, step, &res)
	}
	if err != nil {
		res.Status = domain.StepFailed
		res.Error = domain.NewRunError(err)
		if res.Message == "" {
			res.Message = err.Error()
		}
	}

	if u, uerr := r.session.URL(ctx); uerr == nil {
		res.URL = u
	}
	res.DurationMS = time.Since(start).Milliseconds()
	return res
}

// resolve applies vars, including anything extracted from mocked requests so far.
func (r *stepRunner) resolve(step domain.StepSpec) (domain.StepSpec, error) {
	vars := domain.Merge(r.vars, r.table.Extracted())
	if base := r.bases.current(); base != "" {
		vars["base_url"] = base
	}
	rt, err := r.uc.resolver.NewRuntime(vars)
	if err != nil {
		return domain.StepSpec{}, err
	}
	return rt.ResolveStep(step)
}

func (r *stepRunner) exec(ctx context.Context, step domain.StepSpec, res *domain.StepResult) error {
	timeout := r.uc.cfg.StepTimeout()
	if step.TimeoutMS != nil && *step.TimeoutMS > 0 {
		timeout = time.Duration(*step.TimeoutMS) * time.Millisecond
	}

	switch step.Kind {
	case domain.StepGoto:
		return r.gotoURL(ctx, step, res)

	case domain.StepWait:
		n, err := r.session.WaitFor(ctx, step.Locator, timeout)
		if err != nil {
			return err
		}
		res.Count = n
		res.Message = fmt.Sprintf("%s ready", step.Locator)
		return nil

	case domain.StepExpect:
		n, err := r.session.WaitFor(ctx, step.Locator, timeout)
		var nf *domain.ElementNotFoundError
		if err != nil && !errors.As(err, &nf) {
			return err
		}
		return r.check(ucassert.Present(step.Locator, n), res, n)

	case domain.StepExpectAbsent:
		n, err := r.waitAbsent(ctx, step.Locator, timeout)
		if err != nil {
			return err
		}
		return r.check(ucassert.Absent(step.Locator, n), res, n)

	case domain.StepExpectURL:
		u, err := r.session.WaitURL(ctx, step.Value, timeout)
		if err != nil && u == "" {
			return err
		}
		return r.check(ucassert.URLContains(step.Value, u), res, 0)

	case domain.StepClick:
		if err := r.session.Click(ctx, step.Locator, timeout); err != nil {
			return err
		}
		res.Message = fmt.Sprintf("clicked %s", step.Locator)
		return nil

	case domain.StepFill:
		if err := r.session.Fill(ctx, step.Locator, step.Value, timeout); err != nil {
			return err
		}
		res.Message = fmt.Sprintf("filled %s", step.Locator)
		return nil

	case domain.StepScreenshot:
		path, err := r.screenshot(ctx, step.Screenshot, step.FullPage)
		if err != nil {
			return err
		}
		res.Artifact = path
		res.Message = "saved " + step.Screenshot
		return nil

	default:
		return &domain.OpError{
			Op:   "step.exec",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("unknown step kind %q", step.Kind),
		}
	}
}

func (r *stepRunner) check(a domain.AssertionResult, res *domain.StepResult, count int) error {
	res.Count = count
	res.Message = a.Message
	if !a.Passed {
		return errors.New(a.Message)
	}
	return nil
}

// gotoURL navigates, falling back to the next base URL candidate while the
// base is not yet locked and the failure is a navigation error.
func (r *stepRunner) gotoURL(ctx context.Context, step domain.StepSpec, res *domain.StepResult) error {
	if isAbsoluteURL(step.URL) {
		if err := r.navigate(ctx, step.URL); err != nil {
			return err
		}
		res.Message = "loaded " + step.URL
		return nil
	}

	if r.bases.current() == "" {
		return &domain.OpError{
			Op:   "step.goto",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("relative url %q needs a base url (scenario base_urls or env base_url)", step.URL),
		}
	}

	var tried []string
	for {
		target := joinURL(r.bases.current(), step.URL)
		tried = append(tried, r.bases.current())

		err := r.navigate(ctx, target)
		if err == nil {
			r.bases.lock()
			res.Message = "loaded " + target
			return nil
		}

		var nav *domain.NavigationError
		if !errors.As(err, &nav) || !r.bases.canFallback() || ctx.Err() != nil {
			if len(tried) > 1 {
				return fmt.Errorf("%w (tried %v): %w", domain.ErrNoReachableBase, tried, err)
			}
			return err
		}

		next := r.bases.next()
		r.log.Info("base.fallback", "failed", target, "reason", nav.Reason, "next", next)
	}
}

func (r *stepRunner) navigate(ctx context.Context, url string) error {
	nctx, cancel := context.WithTimeout(ctx, r.uc.cfg.NavigationTimeout())
	defer cancel()
	return r.session.Navigate(nctx, url)
}

// waitAbsent polls until nothing matches or the timeout elapses, returning the last count.
func (r *stepRunner) waitAbsent(ctx context.Context, loc domain.Locator, timeout time.Duration) (int, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	tick := time.NewTicker(absentPollInterval)
	defer tick.Stop()

	for {
		n, err := r.session.Count(ctx, loc)
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, nil
		}
		select {
		case <-ctx.Done():
			return n, ctx.Err()
		case <-deadline.C:
			return n, nil
		case <-tick.C:
		}
	}
}

func (r *stepRunner) screenshot(ctx context.Context, name string, fullPage bool) (string, error) {
	png, err := r.session.Screenshot(ctx, fullPage)
	if err != nil {
		return "", err
	}
	if r.uc.store == nil {
		return "", nil
	}
	path, err := r.uc.store.SaveScreenshot(r.run.ID, name, png)
	if err != nil {
		return "", err
	}
	r.run.Artifacts = append(r.run.Artifacts, path)
	return path, nil
}

func (r *stepRunner) captureError(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	path, err := r.screenshot(ctx, errorScreenshot, false)
	if err != nil {
		r.log.Warn("screenshot.error_failed", "error", err)
		return
	}
	r.log.Info("screenshot.error_saved", "path", path)
}

func skipped(step domain.StepSpec, name, msg string) domain.StepResult {
	return domain.StepResult{
		Name:     name,
		Kind:     step.Kind,
		Status:   domain.StepSkipped,
		Optional: step.Optional,
		Message:  msg,
	}
}

func stepName(step domain.StepSpec, i int) string {
	if step.Name != "" {
		return step.Name
	}
	return fmt.Sprintf("%d:%s", i+1, step.Kind)
}

// unmetCondition returns the first named step that did not pass.
func unmetCondition(names []string, status map[string]domain.StepStatus) (string, bool) {
	for _, n := range names {
		if status[n] != domain.StepPassed {
			return n, true
		}
	}
	return "", false
}
