package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/glimpse/internal/app"
	"github.com/aalvaropc/glimpse/internal/infra/logger"
	"github.com/aalvaropc/glimpse/internal/infra/watcher"
	"github.com/aalvaropc/glimpse/internal/ports"
	"github.com/aalvaropc/glimpse/internal/usecase"
)

type runOptions struct {
	workspace string
	scenario  string
	env       string
	all       bool
	parallel  int
	noSave    bool
	format    string
	headful   bool
	watch     bool
}

func runCmd() *cobra.Command {
	var o runOptions

	c := &cobra.Command{
		Use:   "run",
		Short: "Run scenarios in a headless browser against mocked backends",
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch o.format {
			case "", "pretty", "json", "markdown", "md":
			default:
				return fmt.Errorf("unsupported format %q (expected pretty|json|markdown)", o.format)
			}
			if !o.all && strings.TrimSpace(o.scenario) == "" {
				return fmt.Errorf("scenario is required (use --scenario/-s or --all)")
			}

			ws, err := loadWorkspace(o.workspace)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			b, err := ws.NewBrowser(ctx, app.BrowserOptions{Headful: o.headful})
			if err != nil {
				return err
			}
			defer func() { _ = b.Close() }()

			out := cmd.OutOrStdout()
			if !o.watch {
				return runOnce(ctx, out, ws, b, o)
			}
			return watchAndRun(ctx, out, ws, b, o)
		},
	}

	c.Flags().StringVarP(&o.workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	c.Flags().StringVarP(&o.scenario, "scenario", "s", "", "Scenario name or path")
	c.Flags().StringVarP(&o.env, "env", "e", "", "Environment name or path (optional; defaults to workspace default env)")
	c.Flags().BoolVar(&o.all, "all", false, "Run every scenario in the workspace")
	c.Flags().IntVar(&o.parallel, "parallel", 1, "How many scenarios run at once with --all")
	c.Flags().BoolVar(&o.noSave, "no-save", false, "Do not save the run JSON under runs/ (screenshots are still written)")
	c.Flags().StringVar(&o.format, "format", "pretty", "Output format: pretty|json|markdown")
	c.Flags().BoolVar(&o.headful, "headful", false, "Show the browser window")
	c.Flags().BoolVar(&o.watch, "watch", false, "Rerun when scenario, env or fixture files change")
	return c
}

func scenarioPaths(ws *app.Workspace, o runOptions) ([]string, error) {
	if o.all {
		paths, err := ws.ScenarioPaths()
		if err != nil {
			return nil, err
		}
		if len(paths) == 0 {
			return nil, fmt.Errorf("no scenarios found under %s", ws.Config.Paths.ScenariosDir)
		}
		return paths, nil
	}
	p, err := ws.ResolveScenario(o.scenario)
	if err != nil {
		return nil, err
	}
	return []string{p}, nil
}

func runOnce(ctx context.Context, out io.Writer, ws *app.Workspace, b ports.Browser, o runOptions) error {
	paths, err := scenarioPaths(ws, o)
	if err != nil {
		return err
	}

	opts := []usecase.RunOption{usecase.WithSaveRun(!o.noSave)}
	live := o.format == "" || o.format == "pretty"
	if live {
		opts = append(opts, usecase.WithObserver(newLiveObserver(out, len(paths) > 1)))
	}

	suite := usecase.NewRunSuite(ws.RunScenario(b, opts...), o.parallel)
	results, err := suite.Execute(ctx, paths, ws.ResolveEnvironment(o.env))

	if live {
		fmt.Fprintln(out)
	}
	redactResults(ws, results)
	if perr := printSuite(out, results, o.format); perr != nil {
		return perr
	}
	if err != nil {
		return err
	}

	if n := countFailedRuns(results); n > 0 {
		return fmt.Errorf("run failed (%d of %d scenario(s))", n, len(results))
	}
	return nil
}

func watchAndRun(ctx context.Context, out io.Writer, ws *app.Workspace, b ports.Browser, o runOptions) error {
	w, err := watcher.New(ws.WatchDirs(),
		watcher.WithExtensions(".yaml", ".yml", ".json"),
		watcher.WithLogger(logger.L()),
	)
	if err != nil {
		return err
	}

	rerun := func() {
		if err := runOnce(ctx, out, ws, b, o); err != nil && ctx.Err() == nil {
			fmt.Fprintln(out, failStyle.Render(err.Error()))
		}
		fmt.Fprintln(out, dimStyle.Render("watching for changes (ctrl+c to stop)"))
	}

	rerun()
	return w.Run(ctx, func(paths []string) {
		logger.L().Info("watch.rerun", "changed", paths)
		fmt.Fprintf(out, "\n%s\n", dimStyle.Render("changed: "+strings.Join(paths, ", ")))
		rerun()
	})
}
