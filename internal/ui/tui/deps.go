package tui

import (
	"log/slog"

	"github.com/aalvaropc/glimpse/internal/app"
	"github.com/aalvaropc/glimpse/internal/ports"
)

// Deps are the collaborators the TUI cannot build itself. Workspaces are
// opened per action through app.Open so edits on disk are picked up.
type Deps struct {
	WorkspaceLocator     ports.WorkspaceLocator
	WorkspaceInitializer ports.WorkspaceInitializer

	// Browser applies to every run started from the TUI.
	Browser app.BrowserOptions

	Logger *slog.Logger
	Debug  bool
}
