package tui

import "github.com/aalvaropc/glimpse/internal/domain"

type workspaceRefreshedMsg struct {
	cwd   string
	found bool
	root  string
	err   error
}

type initWorkspaceDoneMsg struct {
	root string
	err  error
}

type scenariosLoadedMsg struct {
	root string
	refs []domain.ScenarioRef
	err  error
}

type envsLoadedMsg struct {
	root       string
	refs       []domain.EnvironmentRef
	defaultEnv string
	err        error
}

type scenarioPreviewMsg struct {
	path    string
	preview string
	err     error
}

type runStepMsg struct {
	index  int
	total  int
	result domain.StepResult
}

type runnerDoneMsg struct {
	run domain.RunResult
	id  string
	err error
}
