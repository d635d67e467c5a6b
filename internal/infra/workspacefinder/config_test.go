package workspacefinder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/aalvaropc/glimpse/internal/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ConfigFile), []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return root
}

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	root := writeConfig(t, "glimpse:\n  masking:\n    enabled: false\n")

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}

	want := domain.DefaultConfig()
	want.Masking.Enabled = false
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfig_BrowserSection(t *testing.T) {
	root := writeConfig(t, `
glimpse:
  defaults:
    env: staging
  paths:
    scenarios_dir: flows
  browser:
    debugger_url: ws://127.0.0.1:9222/devtools/browser/abc
    headless: false
    no_sandbox: true
    viewport: {width: 1440, height: 900}
    navigation_timeout_ms: 45000
    step_timeout_ms: 0
`)

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}

	want := domain.DefaultConfig()
	want.Defaults.Environment = "staging"
	want.Paths.ScenariosDir = "flows"
	want.Browser.DebuggerURL = "ws://127.0.0.1:9222/devtools/browser/abc"
	want.Browser.Headless = false
	want.Browser.NoSandbox = true
	want.Browser.ViewportWidth = 1440
	want.Browser.ViewportHeight = 900
	want.Browser.NavigationTimeoutMS = 45000
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
	if cfg.Paths.ScenariosDir != "scenarios" {
		t.Fatalf("expected defaults on error, got %+v", cfg.Paths)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	root := writeConfig(t, "glimpse: [\n")
	if _, err := LoadConfig(root); !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("expected invalid_config, got %v", err)
	}
}
