package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/aalvaropc/glimpse/internal/domain"
	"github.com/aalvaropc/glimpse/internal/report"
)

type screen int

const (
	screenHome screen = iota
	screenPreview
	screenRun
)

type scenarioItem struct {
	ref domain.ScenarioRef
	rel string
}

func (i scenarioItem) Title() string       { return i.ref.Name }
func (i scenarioItem) Description() string { return i.rel }
func (i scenarioItem) FilterValue() string { return i.ref.Name }

type model struct {
	ctx   context.Context
	theme Theme
	deps  Deps

	scr       screen
	scenarios list.Model
	view      viewport.Model
	spin      spinner.Model
	md        *glamour.TermRenderer
	width     int
	height    int

	cwd            string
	workspaceFound bool
	workspaceRoot  string

	envs   []string
	envIdx int

	previewPath string

	running    bool
	canceling  bool
	runName    string
	runCh      <-chan tea.Msg
	cancelRun  context.CancelFunc
	steps      []runStepMsg
	lastRun    *domain.RunResult
	lastRunID  string
	lastRunErr error
	toast      string
}

func Run(ctx context.Context, deps Deps) error {
	m := newModel(ctx, deps)
	p := tea.NewProgram(wrapSafe(m, deps.Logger), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func newModel(ctx context.Context, deps Deps) model {
	if ctx == nil {
		ctx = context.Background()
	}

	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Scenarios"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return model{
		ctx:       ctx,
		theme:     DefaultTheme(),
		deps:      deps,
		scr:       screenHome,
		scenarios: l,
		view:      viewport.New(0, 0),
		spin:      sp,
		md:        newMarkdownRenderer(80),
	}
}

// newMarkdownRenderer returns nil when glamour cannot build a renderer; run
// results then fall back to plain text.
func newMarkdownRenderer(width int) *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(max(width, 20)),
	)
	if err != nil {
		return nil
	}
	return r
}

func (m model) runContent(run domain.RunResult, id string, runErr error) string {
	if runErr == nil && m.md != nil {
		if out, err := m.md.Render(report.Markdown(run, id)); err == nil {
			return out
		}
	}
	return renderRunDetails(m.theme, run, id, runErr)
}

func (m model) Init() tea.Cmd { return cmdRefreshWorkspace(m.deps) }

func (m model) currentEnv() string {
	if len(m.envs) == 0 {
		return ""
	}
	return m.envs[m.envIdx%len(m.envs)]
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.scenarios.SetSize(msg.Width-4, msg.Height-10)
		m.view.Width = max(msg.Width-8, 0)
		m.view.Height = max(msg.Height-12, 0)
		m.md = newMarkdownRenderer(msg.Width - 12)
		return m, nil

	case workspaceRefreshedMsg:
		m.cwd = msg.cwd
		m.workspaceFound = msg.found
		m.workspaceRoot = msg.root
		if !msg.found {
			m.scenarios.SetItems(nil)
			m.envs = nil
			return m, nil
		}
		log := m.deps.Logger
		return m, tea.Batch(cmdLoadScenarios(msg.root, log), cmdLoadEnvironments(msg.root, log))

	case initWorkspaceDoneMsg:
		if msg.err != nil {
			m.toast = userMessage(msg.err)
			return m, nil
		}
		m.toast = "Workspace ready at " + msg.root
		return m, cmdRefreshWorkspace(m.deps)

	case scenariosLoadedMsg:
		if msg.root != m.workspaceRoot {
			return m, nil
		}
		if msg.err != nil {
			m.toast = userMessage(msg.err)
			return m, nil
		}
		items := make([]list.Item, 0, len(msg.refs))
		for _, r := range msg.refs {
			rel, err := filepath.Rel(msg.root, r.Path)
			if err != nil {
				rel = r.Path
			}
			items = append(items, scenarioItem{ref: r, rel: rel})
		}
		return m, m.scenarios.SetItems(items)

	case envsLoadedMsg:
		if msg.root != m.workspaceRoot {
			return m, nil
		}
		if msg.err != nil {
			m.toast = userMessage(msg.err)
			return m, nil
		}
		m.envs = make([]string, 0, len(msg.refs))
		m.envIdx = 0
		for i, r := range msg.refs {
			m.envs = append(m.envs, r.Name)
			if r.Name == msg.defaultEnv {
				m.envIdx = i
			}
		}
		return m, nil

	case scenarioPreviewMsg:
		if msg.err != nil {
			m.toast = userMessage(msg.err)
			m.scr = screenHome
			return m, nil
		}
		m.previewPath = msg.path
		m.view.SetContent(msg.preview)
		m.view.GotoTop()
		return m, nil

	case runStepMsg:
		m.steps = append(m.steps, msg)
		m.view.SetContent(renderRunProgress(m.theme, m.steps))
		m.view.GotoBottom()
		return m, listenRunner(m.runCh)

	case runnerDoneMsg:
		m.running = false
		m.canceling = false
		m.runCh = nil
		if m.cancelRun != nil {
			m.cancelRun()
			m.cancelRun = nil
		}
		run := msg.run
		m.lastRun = &run
		m.lastRunID = msg.id
		m.lastRunErr = msg.err
		if msg.err != nil {
			m.toast = userMessage(msg.err)
		} else if run.Passed() {
			m.toast = "PASS " + run.ScenarioName
		} else {
			m.toast = "FAIL " + run.ScenarioName
		}
		m.view.SetContent(m.runContent(run, msg.id, msg.err))
		m.view.GotoTop()
		return m, nil

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.scr == screenHome && m.scenarios.FilterState() == list.Filtering {
			break
		}
		return m.handleKey(msg)
	}

	return m.updateActive(msg)
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		if m.cancelRun != nil {
			m.cancelRun()
		}
		return m, tea.Quit

	case "q":
		if m.scr == screenHome {
			return m, tea.Quit
		}
		return m.back()

	case "esc", "b":
		if m.scr != screenHome {
			return m.back()
		}
	}

	switch m.scr {
	case screenHome:
		switch msg.String() {
		case "i":
			if !m.workspaceFound && m.cwd != "" {
				return m, cmdInitWorkspaceHere(m.deps, m.cwd)
			}
		case "r":
			m.toast = ""
			return m, cmdRefreshWorkspace(m.deps)
		case "e":
			if len(m.envs) > 0 {
				m.envIdx = (m.envIdx + 1) % len(m.envs)
			}
			return m, nil
		case "p":
			it, ok := m.scenarios.SelectedItem().(scenarioItem)
			if !ok {
				return m, nil
			}
			m.scr = screenPreview
			m.view.SetContent("Loading…")
			return m, cmdPreviewScenario(it.ref.Path)
		case "enter":
			it, ok := m.scenarios.SelectedItem().(scenarioItem)
			if !ok {
				return m, nil
			}
			return m.startRun(it)
		}

	case screenPreview:
		if msg.String() == "enter" {
			for _, item := range m.scenarios.Items() {
				if it, ok := item.(scenarioItem); ok && filepath.Clean(it.ref.Path) == m.previewPath {
					return m.startRun(it)
				}
			}
			return m, nil
		}
	}

	return m.updateActive(msg)
}

func (m model) startRun(it scenarioItem) (tea.Model, tea.Cmd) {
	if m.running {
		return m, nil
	}

	ch, cancel, listen := startRunAsync(m.ctx, m.workspaceRoot, it.ref.Path, m.currentEnv(), m.deps)
	m.scr = screenRun
	m.running = true
	m.canceling = false
	m.runName = it.ref.Name
	m.runCh = ch
	m.cancelRun = cancel
	m.steps = nil
	m.lastRun = nil
	m.lastRunID = ""
	m.lastRunErr = nil
	m.toast = ""
	m.view.SetContent("Starting browser…")
	return m, tea.Batch(listen, m.spin.Tick)
}

// back leaves the current screen; a running scenario is canceled first and
// the screen stays until the runner reports back.
func (m model) back() (tea.Model, tea.Cmd) {
	if m.scr == screenRun && m.running {
		if !m.canceling && m.cancelRun != nil {
			m.cancelRun()
			m.canceling = true
		}
		return m, nil
	}
	m.scr = screenHome
	m.previewPath = ""
	return m, nil
}

func (m model) resetAfterPanic() model {
	if m.cancelRun != nil {
		m.cancelRun()
		m.cancelRun = nil
	}
	m.scr = screenHome
	m.running = false
	m.canceling = false
	m.runCh = nil
	m.toast = panicToast
	return m
}

func (m model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.scr {
	case screenHome:
		m.scenarios, cmd = m.scenarios.Update(msg)
	case screenPreview, screenRun:
		m.view, cmd = m.view.Update(msg)
	}
	return m, cmd
}

func (m model) View() string {
	wrap := lipgloss.NewStyle().Padding(1, 2)
	header := m.theme.Title.Render("Glimpse") + "\n" +
		m.theme.Subtitle.Render("Browser checks against mocked backends") + "\n"

	var banner string
	if m.workspaceFound {
		env := m.currentEnv()
		if env == "" {
			env = "(none)"
		}
		banner = m.theme.Help.Render(fmt.Sprintf("Workspace: %s · env: %s", m.workspaceRoot, env))
	} else {
		banner = m.theme.Card.Render("⚠ No workspace found.\n\nPress i to create one in " + m.cwd)
	}

	var toast string
	if m.toast != "" {
		toast = "\n" + m.theme.Warn.Render(m.toast)
	}

	switch m.scr {
	case screenHome:
		help := m.theme.Help.Render("↑/↓ navigate • enter run • p preview • e env • r refresh • / search • q quit")
		body := ""
		if m.workspaceFound {
			body = "\n\n" + m.theme.Card.Render(m.scenarios.View())
		}
		return wrap.Render(header + "\n" + banner + body + toast + "\n" + help)

	case screenPreview:
		help := m.theme.Help.Render("enter run • ↑/↓ scroll • esc back")
		return wrap.Render(header + "\n" + banner + "\n\n" + m.theme.Card.Render(m.view.View()) + toast + "\n" + help)

	case screenRun:
		status := m.theme.Title.Render(m.runName)
		switch {
		case m.canceling:
			status += " " + m.theme.Warn.Render("canceling…")
		case m.running:
			status += " " + m.spin.View() + " running"
		case m.lastRun != nil && m.lastRunErr == nil && m.lastRun.Passed():
			status += " " + m.theme.Pass.Render("PASS")
		default:
			status += " " + m.theme.Fail.Render("FAIL")
		}
		help := m.theme.Help.Render("↑/↓ scroll • esc " + backLabel(m.running))
		return wrap.Render(header + "\n" + banner + "\n\n" + status + "\n" + m.theme.Card.Render(m.view.View()) + toast + "\n" + help)

	default:
		return wrap.Render(header + "\n" + "unknown state")
	}
}

func backLabel(running bool) string {
	if running {
		return "cancel"
	}
	return "back"
}
