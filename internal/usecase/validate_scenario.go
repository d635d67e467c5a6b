package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/aalvaropc/glimpse/internal/domain"
	"github.com/aalvaropc/glimpse/internal/ports"
	"github.com/aalvaropc/glimpse/internal/usecase/mock"
)

type ValidateScenario struct {
	scenarios ports.ScenarioLoader
	envs      ports.EnvironmentLoader
	resolver  *domain.VarResolver
}

type ValidateOption func(*ValidateScenario)

func WithVarResolver(vr *domain.VarResolver) ValidateOption {
	return func(uc *ValidateScenario) {
		if vr != nil {
			uc.resolver = vr
		}
	}
}

func NewValidateScenario(sl ports.ScenarioLoader, el ports.EnvironmentLoader, opts ...ValidateOption) *ValidateScenario {
	uc := &ValidateScenario{
		scenarios: sl,
		envs:      el,
		resolver:  domain.NewVarResolver(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Execute checks a scenario + environment pair without starting a browser.
// Every problem found is reported, joined into one error.
func (uc *ValidateScenario) Execute(ctx context.Context, scenarioPath string, envNameOrPath string) error {
	sc, err := uc.scenarios.LoadScenario(scenarioPath)
	if err != nil {
		return err
	}

	env, err := uc.envs.LoadEnvironment(envNameOrPath)
	if err != nil {
		return err
	}

	// scenario vars < env vars < extracted vars
	vars := domain.Merge(sc.Vars, env.Vars)
	vars["base_url"] = "http://validate.invalid"

	var errs []error

	resolved := make([]domain.RouteMock, 0, len(sc.Mocks))
	for i, m := range sc.Mocks {
		rt, err := uc.resolver.NewRuntime(vars)
		if err != nil {
			return err
		}
		rm, err := rt.ResolveMock(m)
		if err != nil {
			errs = append(errs, fmt.Errorf("mock %q: %w", mock.Label(m, i), err))
			continue
		}
		resolved = append(resolved, rm)
	}
	if _, err := mock.NewTable(resolved); err != nil {
		errs = append(errs, err)
	}

	// Extract keys become available once a mock has been hit.
	for _, m := range sc.Mocks {
		for k := range m.Extract {
			if _, ok := vars[k]; !ok {
				vars[k] = "x"
			}
		}
	}

	hasBase := len(candidateBaseURLs(sc, env.Vars)) > 0
	seen := map[string]bool{}

	for i, step := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := stepName(step, i)

		if err := checkStepShape(step, hasBase); err != nil {
			errs = append(errs, fmt.Errorf("step %q: %w", name, err))
		}
		for _, ref := range step.If {
			if !seen[ref] {
				errs = append(errs, fmt.Errorf("step %q: if refers to unknown or later step %q", name, ref))
			}
		}

		rt, err := uc.resolver.NewRuntime(vars)
		if err != nil {
			return err
		}
		if _, err := rt.ResolveStep(step); err != nil {
			errs = append(errs, fmt.Errorf("step %q: %w", name, err))
		}

		seen[name] = true
	}

	return errors.Join(errs...)
}

func checkStepShape(step domain.StepSpec, hasBase bool) error {
	invalid := func(format string, args ...any) error {
		return &domain.OpError{Op: "scenario.validate", Kind: domain.KindInvalidConfig, Err: fmt.Errorf(format, args...)}
	}

	switch step.Kind {
	case domain.StepGoto:
		if step.URL == "" {
			return invalid("goto needs url")
		}
		if !isAbsoluteURL(step.URL) && !hasBase {
			return invalid("relative url %q needs a base url", step.URL)
		}
	case domain.StepWait, domain.StepExpect, domain.StepExpectAbsent, domain.StepClick, domain.StepFill:
		if n := step.Locator.Strategies(); n != 1 {
			return invalid("%s needs exactly one of role, text or selector (got %d)", step.Kind, n)
		}
	case domain.StepExpectURL:
		if step.Value == "" {
			return invalid("expect_url needs value")
		}
	case domain.StepScreenshot:
		if step.Screenshot == "" {
			return invalid("screenshot needs a file name")
		}
	default:
		return invalid("unknown step kind %q", step.Kind)
	}
	if step.Locator.Name != "" && step.Locator.Role == "" {
		return invalid("locator name only applies to role lookups")
	}
	return nil
}
