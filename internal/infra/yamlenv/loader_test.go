package yamlenv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aalvaropc/glimpse/internal/domain"
)

func setupEnvDir(t *testing.T, files map[string]string) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "ws")
	envDir := filepath.Join(root, "env")
	if err := os.MkdirAll(envDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(envDir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return root
}

func TestLoadEnvironment_MergesSecrets(t *testing.T) {
	root := setupEnvDir(t, map[string]string{
		"dev.yaml":           "vars:\n  base_url: http://localhost:3000\n  admin_password: base\n",
		"secrets.local.yaml": "vars:\n  admin_password: secret\n",
	})

	env, err := NewLoader(root).LoadEnvironment("dev")
	if err != nil {
		t.Fatalf("LoadEnvironment error: %v", err)
	}

	if env.Vars["base_url"] != "http://localhost:3000" {
		t.Fatalf("expected base_url, got=%s", env.Vars["base_url"])
	}
	if env.Vars["admin_password"] != "secret" {
		t.Fatalf("expected admin_password=secret override, got=%s", env.Vars["admin_password"])
	}
}

func TestLoadEnvironment_BaseURLList(t *testing.T) {
	root := setupEnvDir(t, map[string]string{
		"dev.yaml": "base_urls:\n  - http://localhost:3000\n  - http://localhost:3001\n",
	})

	env, err := NewLoader(root).LoadEnvironment("dev")
	if err != nil {
		t.Fatalf("LoadEnvironment error: %v", err)
	}
	if got := env.Vars["base_url"]; got != "http://localhost:3000,http://localhost:3001" {
		t.Fatalf("unexpected base_url: %q", got)
	}
}

func TestLoadEnvironment_BaseURLConflict(t *testing.T) {
	root := setupEnvDir(t, map[string]string{
		"dev.yaml": "base_urls: [x]\nvars:\n  base_url: y\n",
	})
	_, err := NewLoader(root).LoadEnvironment("dev")
	if !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("expected invalid config, got %v", err)
	}
}

func TestLoadEnvironment_SecretsMissing(t *testing.T) {
	root := setupEnvDir(t, map[string]string{"dev.yaml": "vars:\n  base_url: http://localhost:3000\n"})

	env, err := NewLoader(root).LoadEnvironment("dev")
	if err != nil {
		t.Fatalf("LoadEnvironment error: %v", err)
	}
	if env.Vars["base_url"] != "http://localhost:3000" {
		t.Fatalf("expected base_url, got=%s", env.Vars["base_url"])
	}
}

func TestLoadEnvironment_EnvMissing(t *testing.T) {
	root := setupEnvDir(t, nil)
	_, err := NewLoader(root).LoadEnvironment("dev")
	if !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestLoadEnvironment_SupportsYML(t *testing.T) {
	root := setupEnvDir(t, map[string]string{"prod.yml": "vars:\n  base_url: https://news.example.com\n"})

	env, err := NewLoader(root).LoadEnvironment("prod")
	if err != nil {
		t.Fatalf("LoadEnvironment error: %v", err)
	}
	if env.Name != "prod" {
		t.Fatalf("expected name=prod, got=%s", env.Name)
	}
	if env.Vars["base_url"] != "https://news.example.com" {
		t.Fatalf("expected base_url, got=%s", env.Vars["base_url"])
	}
}

func TestLoadEnvironment_ByPath(t *testing.T) {
	root := setupEnvDir(t, map[string]string{"ci.yaml": "vars:\n  a: b\n"})

	env, err := NewLoader("/elsewhere").LoadEnvironment(filepath.Join(root, "env", "ci.yaml"))
	if err != nil {
		t.Fatalf("LoadEnvironment error: %v", err)
	}
	if env.Name != "ci" || env.Vars["a"] != "b" {
		t.Fatalf("unexpected env: %+v", env)
	}
}

func TestListEnvironments(t *testing.T) {
	root := setupEnvDir(t, map[string]string{
		"staging.yml":        "vars: {}\n",
		"dev.yaml":           "vars: {}\n",
		"secrets.local.yaml": "vars: {}\n",
		"README.md":          "x",
	})

	refs, err := NewLoader(root).ListEnvironments(root)
	if err != nil {
		t.Fatalf("ListEnvironments error: %v", err)
	}
	if len(refs) != 2 || refs[0].Name != "dev" || refs[1].Name != "staging" {
		t.Fatalf("unexpected refs: %+v", refs)
	}
}
