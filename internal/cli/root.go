package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/glimpse/internal/app"
	"github.com/aalvaropc/glimpse/internal/infra/fsworkspace"
	"github.com/aalvaropc/glimpse/internal/infra/logger"
	"github.com/aalvaropc/glimpse/internal/infra/workspacefinder"
	"github.com/aalvaropc/glimpse/internal/ui/tui"
)

func Execute(ctx context.Context) int {
	cmd := newRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var debug bool
	var headful bool
	var cleanup func() error

	cmd := &cobra.Command{
		Use:          "glimpse",
		Short:        "Glimpse: declarative browser checks with mocked backends",
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			root, ok := logRoot()
			if !ok && !debug {
				return
			}
			cleanup, _ = logger.Setup(logger.Config{
				Root:  root,
				Debug: debug,
			})
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if cleanup != nil {
				_ = cleanup()
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps := tui.Deps{
				WorkspaceLocator:     workspacefinder.NewFinder(),
				WorkspaceInitializer: fsworkspace.NewInitializer(),
				Browser:              app.BrowserOptions{Headful: headful},
				Logger:               logger.L(),
				Debug:                debug,
			}
			return tui.Run(cmd.Context(), deps)
		},
	}

	cmd.Flags().BoolVar(&headful, "headful", false, "Show the browser window for runs started from the TUI")
	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable verbose logging to .glimpse/logs/glimpse.log")

	cmd.AddCommand(
		initCmd(),
		runCmd(),
		validateCmd(),
		scenariosCmd(),
		envsCmd(),
		mocksCmd(),
		versionCmd(),
	)
	return cmd
}

// logRoot is the workspace root when one is found above cwd, else cwd (ok=false).
func logRoot() (string, bool) {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	wd, _ = filepath.Abs(wd)

	if root, ferr := workspacefinder.NewFinder().FindRoot(wd); ferr == nil && root != "" {
		return root, true
	}
	return wd, false
}
