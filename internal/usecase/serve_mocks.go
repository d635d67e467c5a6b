package usecase

import (
	"io"
	"log/slog"

	"github.com/aalvaropc/glimpse/internal/domain"
	"github.com/aalvaropc/glimpse/internal/ports"
	"github.com/aalvaropc/glimpse/internal/usecase/mock"
)

// ServeMocks builds the mock table of a scenario so it can be served over
// plain HTTP, without a browser.
type ServeMocks struct {
	scenarios ports.ScenarioLoader
	envs      ports.EnvironmentLoader
	resolver  *domain.VarResolver
	log       *slog.Logger
}

type ServeOption func(*ServeMocks)

func WithServeLogger(l *slog.Logger) ServeOption {
	return func(uc *ServeMocks) {
		if l != nil {
			uc.log = l
		}
	}
}

func NewServeMocks(sl ports.ScenarioLoader, el ports.EnvironmentLoader, opts ...ServeOption) *ServeMocks {
	uc := &ServeMocks{
		scenarios: sl,
		envs:      el,
		resolver:  domain.NewVarResolver(),
		log:       slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *ServeMocks) Table(scenarioPath, envNameOrPath string) (*mock.Table, error) {
	sc, err := uc.scenarios.LoadScenario(scenarioPath)
	if err != nil {
		return nil, err
	}
	env, err := uc.envs.LoadEnvironment(envNameOrPath)
	if err != nil {
		return nil, err
	}

	vars := domain.Merge(sc.Vars, env.Vars)
	table, err := buildMockTable(uc.resolver, sc.Mocks, vars, mock.WithLogger(uc.log.With("scenario", sc.Name)))
	if err != nil {
		return nil, err
	}
	uc.log.Info("mocks.ready", "scenario", sc.Name, "env", env.Name, "count", len(sc.Mocks))
	return table, nil
}
