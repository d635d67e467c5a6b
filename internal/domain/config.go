package domain

import "time"

// Config represents the Glimpse configuration loaded from glimpse.yaml.
type Config struct {
	Masking  MaskingConfig
	Defaults DefaultsConfig
	Paths    PathsConfig
	Browser  BrowserConfig
}

type MaskingConfig struct {
	Enabled bool
}

type DefaultsConfig struct {
	Environment string
}

type PathsConfig struct {
	ScenariosDir    string
	EnvironmentsDir string
	RunsDir         string
}

// BrowserConfig controls how the headless browser is obtained and driven.
type BrowserConfig struct {
	// DebuggerURL connects to an already running Chrome instead of launching one.
	DebuggerURL string
	Bin         string
	Headless    bool
	NoSandbox   bool

	ViewportWidth  int
	ViewportHeight int

	NavigationTimeoutMS int
	StepTimeoutMS       int
}

// NavigationTimeout returns the page load timeout.
func (c BrowserConfig) NavigationTimeout() time.Duration {
	if c.NavigationTimeoutMS <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.NavigationTimeoutMS) * time.Millisecond
}

// StepTimeout returns the default readiness timeout for waits and expectations.
func (c BrowserConfig) StepTimeout() time.Duration {
	if c.StepTimeoutMS <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.StepTimeoutMS) * time.Millisecond
}

// DefaultConfig provides sane defaults if glimpse.yaml is partially missing.
func DefaultConfig() Config {
	return Config{
		Masking: MaskingConfig{Enabled: true},
		Defaults: DefaultsConfig{
			Environment: "dev",
		},
		Paths: PathsConfig{
			ScenariosDir:    "scenarios",
			EnvironmentsDir: "env",
			RunsDir:         "runs",
		},
		Browser: BrowserConfig{
			Headless:            true,
			ViewportWidth:       1280,
			ViewportHeight:      800,
			NavigationTimeoutMS: 30000,
			StepTimeoutMS:       10000,
		},
	}
}
