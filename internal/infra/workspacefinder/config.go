package workspacefinder

import (
	"os"
	"path/filepath"

	"github.com/aalvaropc/glimpse/internal/domain"
	"gopkg.in/yaml.v3"
)

// ConfigFile is the marker file of a workspace root.
const ConfigFile = "glimpse.yaml"

// LoadConfig loads glimpse.yaml from the workspace root and applies defaults.
func LoadConfig(root string) (domain.Config, error) {
	cfg := domain.DefaultConfig()

	path := filepath.Join(root, ConfigFile)
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, &domain.OpError{
			Op:   "workspacefinder.loadconfig",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	var y yamlConfig
	if err := yaml.Unmarshal(b, &y); err != nil {
		return cfg, &domain.OpError{
			Op:   "workspacefinder.loadconfig",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	g := y.Glimpse
	if g.Masking.Enabled != nil {
		cfg.Masking.Enabled = *g.Masking.Enabled
	}
	setString(&cfg.Defaults.Environment, g.Defaults.Env)
	setString(&cfg.Paths.ScenariosDir, g.Paths.ScenariosDir)
	setString(&cfg.Paths.EnvironmentsDir, g.Paths.EnvironmentsDir)
	setString(&cfg.Paths.RunsDir, g.Paths.RunsDir)

	br := g.Browser
	setString(&cfg.Browser.DebuggerURL, br.DebuggerURL)
	setString(&cfg.Browser.Bin, br.Bin)
	if br.Headless != nil {
		cfg.Browser.Headless = *br.Headless
	}
	if br.NoSandbox != nil {
		cfg.Browser.NoSandbox = *br.NoSandbox
	}
	setPositive(&cfg.Browser.ViewportWidth, br.Viewport.Width)
	setPositive(&cfg.Browser.ViewportHeight, br.Viewport.Height)
	setPositive(&cfg.Browser.NavigationTimeoutMS, br.NavigationTimeoutMS)
	setPositive(&cfg.Browser.StepTimeoutMS, br.StepTimeoutMS)

	return cfg, nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setPositive(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

type yamlConfig struct {
	Glimpse struct {
		Masking struct {
			Enabled *bool `yaml:"enabled"`
		} `yaml:"masking"`

		Defaults struct {
			Env string `yaml:"env"`
		} `yaml:"defaults"`

		Paths struct {
			ScenariosDir    string `yaml:"scenarios_dir"`
			EnvironmentsDir string `yaml:"environments_dir"`
			RunsDir         string `yaml:"runs_dir"`
		} `yaml:"paths"`

		Browser struct {
			DebuggerURL string `yaml:"debugger_url"`
			Bin         string `yaml:"bin"`
			Headless    *bool  `yaml:"headless"`
			NoSandbox   *bool  `yaml:"no_sandbox"`
			Viewport    struct {
				Width  int `yaml:"width"`
				Height int `yaml:"height"`
			} `yaml:"viewport"`
			NavigationTimeoutMS int `yaml:"navigation_timeout_ms"`
			StepTimeoutMS       int `yaml:"step_timeout_ms"`
		} `yaml:"browser"`
	} `yaml:"glimpse"`
}
