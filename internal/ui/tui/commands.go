package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aalvaropc/glimpse/internal/app"
	"github.com/aalvaropc/glimpse/internal/domain"
	"github.com/aalvaropc/glimpse/internal/infra/yamlscenario"
	"github.com/aalvaropc/glimpse/internal/usecase"
)

func cmdRefreshWorkspace(deps Deps) tea.Cmd {
	return func() tea.Msg {
		wd, err := os.Getwd()
		if err != nil {
			return workspaceRefreshedMsg{cwd: "", found: false, err: fmt.Errorf("getwd: %w", err)}
		}
		if deps.WorkspaceLocator == nil {
			return workspaceRefreshedMsg{cwd: wd, found: false, err: errors.New("WorkspaceLocator is nil")}
		}

		root, findErr := deps.WorkspaceLocator.FindRoot(wd)
		if findErr != nil {
			return workspaceRefreshedMsg{cwd: wd, found: false, err: findErr}
		}

		return workspaceRefreshedMsg{cwd: wd, found: true, root: root, err: nil}
	}
}

func cmdInitWorkspaceHere(deps Deps, root string) tea.Cmd {
	return func() tea.Msg {
		if deps.WorkspaceInitializer == nil {
			return initWorkspaceDoneMsg{root: root, err: errors.New("WorkspaceInitializer is nil")}
		}

		err := deps.WorkspaceInitializer.Init(domain.WorkspaceSpec{Root: root}, false)
		return initWorkspaceDoneMsg{root: root, err: err}
	}
}

func cmdLoadScenarios(root string, log *slog.Logger) tea.Cmd {
	return func() tea.Msg {
		ws, err := app.Open(root, log)
		if err != nil {
			return scenariosLoadedMsg{root: root, err: err}
		}

		refs, err := ws.Scenarios.ListScenarios(root)
		return scenariosLoadedMsg{root: root, refs: refs, err: err}
	}
}

func cmdLoadEnvironments(root string, log *slog.Logger) tea.Cmd {
	return func() tea.Msg {
		ws, err := app.Open(root, log)
		if err != nil {
			return envsLoadedMsg{root: root, err: err}
		}

		refs, err := ws.Envs.ListEnvironments(root)
		return envsLoadedMsg{root: root, refs: refs, defaultEnv: ws.Config.Defaults.Environment, err: err}
	}
}

func cmdPreviewScenario(path string) tea.Cmd {
	return func() tea.Msg {
		p := filepath.Clean(path)

		sc, err := yamlscenario.NewLoader().LoadScenario(p)
		if err != nil {
			return scenarioPreviewMsg{path: p, err: err}
		}
		return scenarioPreviewMsg{path: p, preview: renderScenarioPreview(sc)}
	}
}

func listenRunner(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return runnerDoneMsg{err: errors.New("runner channel closed")}
		}
		return msg
	}
}

// chanObserver forwards finished steps to the TUI; sends give up once ctx ends.
type chanObserver struct {
	ctx context.Context
	ch  chan<- tea.Msg
}

func (o chanObserver) StepStarted(string, int, int, domain.StepSpec) {}

func (o chanObserver) StepFinished(_ string, index, total int, res domain.StepResult) {
	select {
	case o.ch <- runStepMsg{index: index, total: total, result: res}:
	case <-o.ctx.Done():
	}
}

// startRunAsync launches a browser and runs one scenario in the background.
// The returned cancel stops the run.
func startRunAsync(
	parent context.Context,
	workspaceRoot, scenarioPath, envName string,
	deps Deps,
) (<-chan tea.Msg, context.CancelFunc, tea.Cmd) {
	ch := make(chan tea.Msg, 16)
	ctx, cancel := context.WithCancel(parent)

	log, debug := deps.Logger, deps.Debug
	if log == nil {
		log = slog.Default()
	}

	go func() {
		defer close(ch)

		log.Info("tui.run.start",
			"workspace", workspaceRoot,
			"scenario_path", scenarioPath,
			"env", envName,
			"debug", debug,
			"headful", deps.Browser.Headful,
		)

		done := func(msg runnerDoneMsg) {
			select {
			case ch <- msg:
			case <-ctx.Done():
				// ch is buffered; the result is dropped only if nobody drains it.
				select {
				case ch <- msg:
				default:
				}
			}
		}

		ws, err := app.Open(workspaceRoot, log)
		if err != nil {
			log.Error("run.open_workspace.failed", "err", err)
			done(runnerDoneMsg{err: err})
			return
		}

		b, err := ws.NewBrowser(ctx, deps.Browser)
		if err != nil {
			log.Error("run.browser.failed", "err", err)
			done(runnerDoneMsg{err: err})
			return
		}
		defer func() { _ = b.Close() }()

		uc := ws.RunScenario(b, usecase.WithObserver(chanObserver{ctx: ctx, ch: ch}))
		run, id, execErr := uc.Execute(ctx, scenarioPath, envName)

		if execErr != nil {
			log.Error("run.failed", "err", execErr, "saved_id", id)
		} else {
			log.Info("run.ok", "saved_id", id, "passed", run.Passed())
		}

		if debug {
			for _, s := range run.Steps {
				log.Debug("step.result",
					"name", s.Name,
					"kind", string(s.Kind),
					"status", string(s.Status),
					"duration_ms", s.DurationMS,
					"message", strings.TrimSpace(s.Message),
				)
			}
		}

		done(runnerDoneMsg{run: ws.Redact(run), id: id, err: execErr})
	}()

	return ch, cancel, listenRunner(ch)
}
