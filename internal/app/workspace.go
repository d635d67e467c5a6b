// Package app wires workspace config to the adapters and use cases.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aalvaropc/glimpse/internal/domain"
	"github.com/aalvaropc/glimpse/internal/infra/httpcheck"
	"github.com/aalvaropc/glimpse/internal/infra/rodbrowser"
	"github.com/aalvaropc/glimpse/internal/infra/runstore"
	"github.com/aalvaropc/glimpse/internal/infra/workspacefinder"
	"github.com/aalvaropc/glimpse/internal/infra/yamlenv"
	"github.com/aalvaropc/glimpse/internal/infra/yamlscenario"
	"github.com/aalvaropc/glimpse/internal/ports"
	"github.com/aalvaropc/glimpse/internal/usecase"
)

// Workspace is an opened glimpse workspace with its adapters.
type Workspace struct {
	Root   string
	Config domain.Config

	Scenarios *yamlscenario.Loader
	Envs      *yamlenv.Loader
	Store     *runstore.JSONStore

	log *slog.Logger
}

// Open loads glimpse.yaml under root and builds the file-backed adapters.
func Open(root string, log *slog.Logger) (*Workspace, error) {
	if log == nil {
		log = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	cfg, err := workspacefinder.LoadConfig(root)
	if err != nil {
		return nil, err
	}

	return &Workspace{
		Root:      root,
		Config:    cfg,
		Scenarios: yamlscenario.NewLoader(yamlscenario.WithScenariosDir(cfg.Paths.ScenariosDir)),
		Envs:      yamlenv.NewLoader(root, yamlenv.WithEnvDir(cfg.Paths.EnvironmentsDir)),
		Store:     runstore.NewJSONStore(root, cfg, runstore.WithIndex(true)),
		log:       log,
	}, nil
}

// FindRoot returns the absolute workspace root: flag when given, otherwise the
// nearest directory above cwd holding glimpse.yaml.
func FindRoot(flag string) (string, error) {
	w := strings.TrimSpace(flag)
	if w != "" {
		abs, err := filepath.Abs(w)
		if err != nil {
			return "", fmt.Errorf("invalid workspace path: %w", err)
		}
		return abs, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	root, err := workspacefinder.NewFinder().FindRoot(wd)
	if err != nil {
		return "", fmt.Errorf("workspace not found from %q (tip: run `glimpse init`): %w", wd, err)
	}
	return root, nil
}

// ResolveScenario accepts a path (relative to the root), a file stem or a scenario name.
func (w *Workspace) ResolveScenario(arg string) (string, error) {
	in := strings.TrimSpace(arg)
	if in == "" {
		return "", fmt.Errorf("scenario is required (use --scenario or -s)")
	}

	if looksLikePath(in) {
		p := in
		if !filepath.IsAbs(p) {
			p = filepath.Join(w.Root, p)
		}
		return filepath.Clean(p), nil
	}

	if hasYAMLExt(in) {
		p := filepath.Join(w.Root, w.Config.Paths.ScenariosDir, in)
		if fileExists(p) {
			return p, nil
		}
		in = strings.TrimSuffix(in, filepath.Ext(in))
	}

	p, err := w.Scenarios.Resolve(w.Root, in)
	if err != nil {
		return "", fmt.Errorf("scenario %q not found in %q: %w", arg, filepath.Join(w.Root, w.Config.Paths.ScenariosDir), err)
	}
	return p, nil
}

// ResolveEnvironment defaults to the workspace default env.
func (w *Workspace) ResolveEnvironment(arg string) string {
	in := strings.TrimSpace(arg)
	if in == "" {
		return w.Config.Defaults.Environment
	}

	if looksLikePath(in) {
		p := in
		if !filepath.IsAbs(p) {
			p = filepath.Join(w.Root, p)
		}
		return filepath.Clean(p)
	}

	if hasYAMLExt(in) {
		return filepath.Join(w.Root, w.Config.Paths.EnvironmentsDir, in)
	}
	return in
}

// ScenarioPaths lists every scenario file, sorted by scenario name.
func (w *Workspace) ScenarioPaths() ([]string, error) {
	refs, err := w.Scenarios.ListScenarios(w.Root)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.Path)
	}
	return out, nil
}

// WatchDirs are the directories whose changes should trigger a rerun.
func (w *Workspace) WatchDirs() []string {
	return []string{
		filepath.Join(w.Root, w.Config.Paths.ScenariosDir),
		filepath.Join(w.Root, w.Config.Paths.EnvironmentsDir),
		filepath.Join(w.Root, "fixtures"),
	}
}

// BrowserOptions tweak the configured browser for a single invocation.
type BrowserOptions struct {
	Headful bool
}

// NewBrowser launches or connects to Chrome per glimpse.yaml.
func (w *Workspace) NewBrowser(ctx context.Context, opts BrowserOptions) (*rodbrowser.Browser, error) {
	cfg := w.Config.Browser
	if opts.Headful {
		cfg.Headless = false
	}
	return rodbrowser.New(ctx, cfg, rodbrowser.WithLogger(w.log))
}

// RunScenario builds the run use case for browser b. extra options win over
// the workspace defaults.
func (w *Workspace) RunScenario(b ports.Browser, extra ...usecase.RunOption) *usecase.RunScenario {
	opts := []usecase.RunOption{
		usecase.WithChecker(httpcheck.New()),
		usecase.WithBrowserConfig(w.Config.Browser),
		usecase.WithRunLogger(w.log),
	}
	opts = append(opts, extra...)
	return usecase.NewRunScenario(w.Scenarios, w.Envs, b, w.Store, opts...)
}

func (w *Workspace) Validator() *usecase.ValidateScenario {
	return usecase.NewValidateScenario(w.Scenarios, w.Envs)
}

func (w *Workspace) MockServer() *usecase.ServeMocks {
	return usecase.NewServeMocks(w.Scenarios, w.Envs, usecase.WithServeLogger(w.log))
}

func looksLikePath(s string) bool {
	return strings.Contains(s, "/") || strings.Contains(s, string(filepath.Separator))
}

func hasYAMLExt(s string) bool {
	ext := strings.ToLower(filepath.Ext(s))
	return ext == ".yaml" || ext == ".yml"
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Redact applies the workspace masking policy to a run before it is shown.
// Saved runs are masked by the store with the same policy.
func (w *Workspace) Redact(run domain.RunResult) domain.RunResult {
	if !w.Config.Masking.Enabled {
		return run
	}
	return domain.MaskRun(run)
}
