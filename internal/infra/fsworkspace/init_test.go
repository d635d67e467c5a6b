package fsworkspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/aalvaropc/glimpse/internal/domain"
	"github.com/aalvaropc/glimpse/internal/infra/workspacefinder"
	"github.com/aalvaropc/glimpse/internal/infra/yamlenv"
	"github.com/aalvaropc/glimpse/internal/infra/yamlscenario"
)

func TestInitializer_Init_CreatesWorkspaceFiles(t *testing.T) {
	tmp := t.TempDir()

	i := NewInitializer()
	if err := i.Init(domain.WorkspaceSpec{Root: tmp}, false); err != nil {
		t.Fatalf("Init error: %v", err)
	}

	assertFileExists(t, filepath.Join(tmp, "glimpse.yaml"))
	assertFileExists(t, filepath.Join(tmp, "scenarios", "news-paper.yaml"))
	assertFileExists(t, filepath.Join(tmp, "scenarios", "admin-login.yaml"))
	assertFileExists(t, filepath.Join(tmp, "fixtures", "articles.json"))
	assertFileExists(t, filepath.Join(tmp, "env", "dev.yaml"))
	assertFileExists(t, filepath.Join(tmp, ".glimpse", "logs"))

	secretPath := filepath.Join(tmp, "env", "secrets.local.yaml")
	assertFileExists(t, secretPath)
	info, err := os.Stat(secretPath)
	if err != nil {
		t.Fatalf("stat secrets file: %v", err)
	}
	if got := info.Mode().Perm(); got != 0o600 {
		t.Fatalf("expected secrets file mode 600, got %o", got)
	}
}

func TestInitializer_Init_TemplatesLoad(t *testing.T) {
	tmp := t.TempDir()
	if err := NewInitializer().Init(domain.WorkspaceSpec{Root: tmp}, false); err != nil {
		t.Fatalf("Init error: %v", err)
	}

	cfg, err := workspacefinder.LoadConfig(tmp)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Defaults.Environment != "dev" || !cfg.Browser.Headless {
		t.Fatalf("unexpected config %+v", cfg)
	}

	loader := yamlscenario.NewLoader()
	refs, err := loader.ListScenarios(tmp)
	if err != nil {
		t.Fatalf("ListScenarios: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("expected 2 scenarios, got %+v", refs)
	}
	wantMocks := map[string]int{"admin-login": 6, "news-paper": 4}
	for _, ref := range refs {
		sc, err := loader.LoadScenario(ref.Path)
		if err != nil {
			t.Fatalf("LoadScenario(%s): %v", ref.Path, err)
		}
		if len(sc.Mocks) != wantMocks[ref.Name] || len(sc.Steps) == 0 {
			t.Fatalf("%s: unexpected shape mocks=%d steps=%d", ref.Name, len(sc.Mocks), len(sc.Steps))
		}
	}

	env, err := yamlenv.NewLoader(tmp).LoadEnvironment("dev")
	if err != nil {
		t.Fatalf("LoadEnvironment: %v", err)
	}
	if env.Vars["base_url"] != "http://localhost:3000,http://localhost:3001" {
		t.Fatalf("unexpected base_url %q", env.Vars["base_url"])
	}
	if env.Vars["admin_password"] != "password" {
		t.Fatalf("expected secrets to be merged, got %v", env.Vars)
	}
}

func TestInitializer_Init_SkipsExistingFilesUnlessForce(t *testing.T) {
	tmp := t.TempDir()

	cfgPath := filepath.Join(tmp, "glimpse.yaml")
	if err := os.WriteFile(cfgPath, []byte("custom\n"), 0o644); err != nil {
		t.Fatalf("write existing glimpse.yaml: %v", err)
	}

	i := NewInitializer()

	if err := i.Init(domain.WorkspaceSpec{Root: tmp}, false); err != nil {
		t.Fatalf("Init (force=false) error: %v", err)
	}

	b, err := os.ReadFile(cfgPath)
	if err != nil {
		t.Fatalf("read glimpse.yaml: %v", err)
	}
	if string(b) != "custom\n" {
		t.Fatalf("expected glimpse.yaml preserved, got %q", string(b))
	}

	if err := i.Init(domain.WorkspaceSpec{Root: tmp}, true); err != nil {
		t.Fatalf("Init (force=true) error: %v", err)
	}

	b, err = os.ReadFile(cfgPath)
	if err != nil {
		t.Fatalf("read glimpse.yaml after force: %v", err)
	}
	if !strings.Contains(string(b), "glimpse:") {
		t.Fatalf("expected glimpse.yaml overwritten with template, got %q", string(b))
	}
}

func TestInitializer_Init_CustomTemplates(t *testing.T) {
	tmp := t.TempDir()
	tpl := fstest.MapFS{
		"glimpse.yaml":                 {Data: []byte("glimpse: {}\n")},
		"scenarios/smoke.yaml":         {Data: []byte("name: smoke\n")},
		"env/secrets.staging.yaml":     {Data: []byte("vars: {}\n")},
		"fixtures/nested/payload.json": {Data: []byte("{}")},
	}

	if err := NewInitializer(WithTemplates(tpl)).Init(domain.WorkspaceSpec{Root: tmp}, false); err != nil {
		t.Fatalf("Init error: %v", err)
	}

	assertFileExists(t, filepath.Join(tmp, "scenarios", "smoke.yaml"))
	assertFileExists(t, filepath.Join(tmp, "fixtures", "nested", "payload.json"))
	if _, err := os.Stat(filepath.Join(tmp, "scenarios", "news-paper.yaml")); !os.IsNotExist(err) {
		t.Fatalf("embedded templates should not be written, stat err=%v", err)
	}

	info, err := os.Stat(filepath.Join(tmp, "env", "secrets.staging.yaml"))
	if err != nil {
		t.Fatalf("stat secrets: %v", err)
	}
	if got := info.Mode().Perm(); got != 0o600 {
		t.Fatalf("expected secrets file mode 600, got %o", got)
	}
}

func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file %s, stat err=%v", path, err)
	}
}
