package usecase

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/aalvaropc/glimpse/internal/domain"
	"github.com/aalvaropc/glimpse/internal/ports"
	"github.com/aalvaropc/glimpse/internal/usecase/mock"
)

const errorScreenshot = "error.png"

type RunScenario struct {
	scenarios ports.ScenarioLoader
	envs      ports.EnvironmentLoader
	browser   ports.Browser
	store     ports.ArtifactStore

	checker  ports.Checker
	observer ports.RunObserver
	resolver *domain.VarResolver
	cfg      domain.BrowserConfig
	saveRun  bool
	log      *slog.Logger
	now      func() time.Time
}

type RunOption func(*RunScenario)

func WithChecker(p ports.Checker) RunOption {
	return func(uc *RunScenario) { uc.checker = p }
}

func WithObserver(o ports.RunObserver) RunOption {
	return func(uc *RunScenario) { uc.observer = o }
}

func WithBrowserConfig(cfg domain.BrowserConfig) RunOption {
	return func(uc *RunScenario) { uc.cfg = cfg }
}

// WithSaveRun controls whether the run JSON is persisted. Screenshots are always stored.
func WithSaveRun(save bool) RunOption {
	return func(uc *RunScenario) { uc.saveRun = save }
}

func WithRunLogger(l *slog.Logger) RunOption {
	return func(uc *RunScenario) {
		if l != nil {
			uc.log = l
		}
	}
}

func WithRunResolver(vr *domain.VarResolver) RunOption {
	return func(uc *RunScenario) {
		if vr != nil {
			uc.resolver = vr
		}
	}
}

func WithRunClock(now func() time.Time) RunOption {
	return func(uc *RunScenario) { uc.now = now }
}

func NewRunScenario(sl ports.ScenarioLoader, el ports.EnvironmentLoader, b ports.Browser, store ports.ArtifactStore, opts ...RunOption) *RunScenario {
	uc := &RunScenario{
		scenarios: sl,
		envs:      el,
		browser:   b,
		store:     store,
		resolver:  domain.NewVarResolver(),
		cfg:       domain.DefaultConfig().Browser,
		saveRun:   true,
		log:       slog.New(slog.NewJSONHandler(io.Discard, nil)),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	if uc.observer == nil {
		uc.observer = nopObserver{}
	}
	return uc
}

// Execute runs one scenario against one environment.
//
// Step failures are recorded in the result, not returned. The returned error is
// reserved for load failures, cancellation and artifact persistence.
func (uc *RunScenario) Execute(ctx context.Context, scenarioPath string, envNameOrPath string) (domain.RunResult, string, error) {
	sc, err := uc.scenarios.LoadScenario(scenarioPath)
	if err != nil {
		return domain.RunResult{}, "", err
	}

	env, err := uc.envs.LoadEnvironment(envNameOrPath)
	if err != nil {
		return domain.RunResult{}, "", err
	}

	run := domain.RunResult{
		ScenarioName:    sc.Name,
		ScenarioPath:    scenarioPath,
		EnvironmentName: env.Name,
		StartedAt:       uc.now(),
		Steps:           make([]domain.StepResult, 0, len(sc.Steps)),
		Mocks:           []domain.MockResult{},
		Artifacts:       []string{},
	}
	if uc.store != nil {
		run.ID = uc.store.NewRunID(sc.Name, run.StartedAt)
	}

	if err := ctx.Err(); err != nil {
		run.EndedAt = uc.now()
		return run, "", err
	}

	log := uc.log.With("run", run.ID, "scenario", sc.Name, "env", env.Name)
	log.Info("run.start", "path", scenarioPath, "steps", len(sc.Steps), "mocks", len(sc.Mocks))

	// scenario vars < env vars < extracted runtime vars
	vars := domain.Merge(sc.Vars, env.Vars)

	table, err := uc.buildTable(sc.Mocks, vars, log)
	if err != nil {
		return uc.finish(ctx, run, err, log)
	}

	bases := newBaseSelector(candidateBaseURLs(sc, env.Vars))
	if uc.checker != nil {
		bases.reorder(ctx, uc.checker, log)
	}

	session, err := uc.browser.NewSession(ctx, table)
	if err != nil {
		return uc.finish(ctx, run, err, log)
	}

	ex := &stepRunner{
		uc:      uc,
		session: session,
		table:   table,
		bases:   bases,
		vars:    vars,
		run:     &run,
		log:     log,
	}
	runErr := ex.runAll(ctx, sc)

	if err := session.Close(); err != nil {
		log.Warn("session.close_failed", "error", err)
	}

	run.Mocks = table.Results()
	run.BaseURL = bases.current()

	return uc.finish(ctx, run, runErr, log)
}

// finish stamps the end time and persists the run. Cancellation is returned
// to the caller and the run is not persisted.
func (uc *RunScenario) finish(ctx context.Context, run domain.RunResult, runErr error, log *slog.Logger) (domain.RunResult, string, error) {
	run.EndedAt = uc.now()
	if runErr != nil {
		run.Error = domain.NewRunError(runErr)
	}

	passed, failed, skipped := run.Counts()
	log.Info("run.end",
		"passed", passed, "failed", failed, "skipped", skipped,
		"ok", run.Passed(), "duration_ms", run.EndedAt.Sub(run.StartedAt).Milliseconds())

	if err := ctx.Err(); err != nil {
		return run, "", err
	}

	if uc.store == nil || !uc.saveRun {
		return run, "", nil
	}

	id, err := uc.store.SaveRun(run)
	if err != nil {
		log.Error("run.save_failed", "error", err)
		return run, "", err
	}
	return run, id, nil
}

func (uc *RunScenario) buildTable(mocks []domain.RouteMock, vars domain.Vars, log *slog.Logger) (*mock.Table, error) {
	return buildMockTable(uc.resolver, mocks, vars, mock.WithLogger(log), mock.WithClock(uc.now))
}

// buildMockTable resolves placeholders in every mock and compiles the table.
func buildMockTable(vr *domain.VarResolver, mocks []domain.RouteMock, vars domain.Vars, opts ...mock.Option) (*mock.Table, error) {
	rt, err := vr.NewRuntime(vars)
	if err != nil {
		return nil, err
	}
	resolved := make([]domain.RouteMock, 0, len(mocks))
	for _, m := range mocks {
		rm, err := rt.ResolveMock(m)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, rm)
	}
	return mock.NewTable(resolved, opts...)
}

type nopObserver struct{}

func (nopObserver) StepStarted(string, int, int, domain.StepSpec)    {}
func (nopObserver) StepFinished(string, int, int, domain.StepResult) {}
