package fsworkspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aalvaropc/glimpse/internal/domain"
)

func TestMergeIgnore(t *testing.T) {
	entries := ignoreEntries(domain.DefaultConfig().Paths)

	tests := []struct {
		name        string
		existing    string
		want        string
		wantChanged bool
	}{
		{
			name:        "empty",
			existing:    "",
			want:        "# Glimpse\nruns/\n.glimpse/\nenv/secrets.local.yaml\n",
			wantChanged: true,
		},
		{
			name:        "keeps foreign lines and header",
			existing:    "node_modules/\n# Glimpse\nruns/",
			want:        "node_modules/\n# Glimpse\nruns/\n\n.glimpse/\nenv/secrets.local.yaml\n",
			wantChanged: true,
		},
		{
			name:        "complete",
			existing:    "# Glimpse\n  runs/  \n.glimpse/\nenv/secrets.local.yaml\n",
			want:        "# Glimpse\n  runs/  \n.glimpse/\nenv/secrets.local.yaml\n",
			wantChanged: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := mergeIgnore(tt.existing, entries)
			if changed != tt.wantChanged {
				t.Fatalf("changed = %v, want %v", changed, tt.wantChanged)
			}
			if got != tt.want {
				t.Fatalf("mergeIgnore() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestIgnoreEntries_FollowsPaths(t *testing.T) {
	got := ignoreEntries(domain.PathsConfig{RunsDir: "out/runs/", EnvironmentsDir: "envs"})
	want := []string{"out/runs/", ".glimpse/", "envs/secrets.local.yaml"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ignoreEntries()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestEnsureGitignore_Idempotent(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, ".gitignore")
	entries := ignoreEntries(domain.DefaultConfig().Paths)

	if err := os.WriteFile(path, []byte("node_modules/\n"), 0o644); err != nil {
		t.Fatalf("write .gitignore: %v", err)
	}
	for range 2 {
		if err := ensureGitignore(tmp, entries); err != nil {
			t.Fatalf("ensureGitignore error: %v", err)
		}
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read .gitignore: %v", err)
	}
	s := string(b)
	if strings.Count(s, "# Glimpse") != 1 || strings.Count(s, "runs/") != 1 {
		t.Fatalf("expected a single Glimpse block, got:\n%s", s)
	}
	if !strings.HasPrefix(s, "node_modules/\n") {
		t.Fatalf("expected existing content preserved, got:\n%s", s)
	}
}
