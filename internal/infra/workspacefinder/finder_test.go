package workspacefinder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aalvaropc/glimpse/internal/domain"
)

func TestFindRoot_FindsWorkspaceFromNestedDir(t *testing.T) {
	tmp := t.TempDir()
	root := filepath.Join(tmp, "ws")
	nested := filepath.Join(root, "scenarios", "fixtures")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, ConfigFile), []byte("glimpse:\n  masking:\n    enabled: true\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	got, err := NewFinder().FindRoot(nested)
	if err != nil {
		t.Fatalf("FindRoot returned error: %v", err)
	}
	if got != root {
		t.Fatalf("expected root=%s, got=%s", root, got)
	}
}

func TestFindRoot_FromFilePath(t *testing.T) {
	root := t.TempDir()
	scenario := filepath.Join(root, "scenarios", "admin-login.yaml")
	if err := os.MkdirAll(filepath.Dir(scenario), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for _, p := range []string{filepath.Join(root, ConfigFile), scenario} {
		if err := os.WriteFile(p, []byte("{}\n"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	got, err := NewFinder().FindRoot(scenario)
	if err != nil {
		t.Fatalf("FindRoot returned error: %v", err)
	}
	if got != root {
		t.Fatalf("expected root=%s, got=%s", root, got)
	}
}

func TestFindRoot_NotFound(t *testing.T) {
	tmp := t.TempDir()
	_ = os.MkdirAll(filepath.Join(tmp, "a", "b"), 0o755)

	_, err := NewFinder().FindRoot(filepath.Join(tmp, "a", "b"))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected KindNotFound, got: %v", err)
	}
}

func TestFindRoot_EmptyStart(t *testing.T) {
	if _, err := NewFinder().FindRoot(""); !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("expected KindInvalidConfig, got: %v", err)
	}
}

func TestFindRoot_StopsAtRepoRoot(t *testing.T) {
	tmp := t.TempDir()
	repo := filepath.Join(tmp, "repo")
	nested := filepath.Join(repo, "web")
	if err := os.MkdirAll(filepath.Join(repo, ".git"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(tmp, ConfigFile), []byte("{}\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := NewFinder().FindRoot(nested); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected KindNotFound inside repo, got: %v", err)
	}

	got, err := NewFinder(WithRepoBoundary(false)).FindRoot(nested)
	if err != nil {
		t.Fatalf("FindRoot without boundary: %v", err)
	}
	if got != tmp {
		t.Fatalf("expected root=%s, got=%s", tmp, got)
	}
}

func TestFindRoot_IgnoresConfigDirectoryAndCustomName(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "sub", ConfigFile), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "ci.yaml"), []byte("{}\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := NewFinder(WithConfigFile("ci.yaml")).FindRoot(filepath.Join(root, "sub"))
	if err != nil {
		t.Fatalf("FindRoot: %v", err)
	}
	if got != root {
		t.Fatalf("expected root=%s, got=%s", root, got)
	}
}
