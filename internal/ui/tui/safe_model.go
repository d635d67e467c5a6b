package tui

import (
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	panicToast = "Unexpected error (see logs)"

	// maxPanics consecutive Update panics end the program.
	maxPanics = 3
)

// safeModel keeps the program alive when the model panics: the panic is
// logged, any run in flight is canceled and the UI falls back to home.
type safeModel struct {
	m      model
	log    *slog.Logger
	panics int
}

func wrapSafe(m model, log *slog.Logger) safeModel {
	if log == nil {
		log = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return safeModel{m: m, log: log}
}

func (s safeModel) logPanic(where string, r any) {
	s.log.Error("panic.recovered",
		"where", where,
		"screen", int(s.m.scr),
		"panic", fmt.Sprint(r),
		"stack", string(debug.Stack()),
	)
}

func (s safeModel) Init() tea.Cmd {
	return s.m.Init()
}

func (s safeModel) Update(msg tea.Msg) (tm tea.Model, cmd tea.Cmd) {
	defer func() {
		if r := recover(); r != nil {
			s.logPanic("tui.update", r)
			s.m = s.m.resetAfterPanic()
			s.panics++
			tm, cmd = s, nil
			if s.panics >= maxPanics {
				cmd = tea.Quit
			}
		}
	}()

	inner, c := s.m.Update(msg)
	if mm, ok := inner.(model); ok {
		s.m = mm
	}
	s.panics = 0
	return s, c
}

func (s safeModel) View() (out string) {
	defer func() {
		if r := recover(); r != nil {
			s.logPanic("tui.view", r)
			out = panicToast
		}
	}()
	return s.m.View()
}

var _ tea.Model = (*safeModel)(nil)
