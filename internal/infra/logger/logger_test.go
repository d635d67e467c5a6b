package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetup_WritesJSONLinesUnderWorkspace(t *testing.T) {
	root := t.TempDir()

	cleanup, err := Setup(Config{Root: root, Debug: true})
	if err != nil {
		t.Fatalf("Setup error: %v", err)
	}

	want := filepath.Join(root, ".glimpse", "logs", "glimpse.log")
	if Path() != want {
		t.Fatalf("expected path %s, got %s", want, Path())
	}

	L().Debug("step.done", "scenario", "news-paper")

	if err := cleanup(); err != nil {
		t.Fatalf("cleanup error: %v", err)
	}

	b, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	s := string(b)
	for _, w := range []string{`"msg":"logger.initialized"`, `"msg":"step.done"`, `"scenario":"news-paper"`} {
		if !strings.Contains(s, w) {
			t.Fatalf("expected log to contain %s, got:\n%s", w, s)
		}
	}

	if Path() != "" {
		t.Fatalf("expected logger reset after cleanup")
	}
}

func TestSetup_InfoLevelDropsDebug(t *testing.T) {
	root := t.TempDir()

	cleanup, err := Setup(Config{Root: root})
	if err != nil {
		t.Fatalf("Setup error: %v", err)
	}
	L().Debug("noisy")
	path := Path()
	_ = cleanup()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if strings.Contains(string(b), "noisy") {
		t.Fatalf("debug line should be filtered at info level")
	}
}

func TestSetup_RedactsSensitiveAttrs(t *testing.T) {
	root := t.TempDir()

	cleanup, err := Setup(Config{Root: root, Debug: true})
	if err != nil {
		t.Fatalf("Setup error: %v", err)
	}
	L().Debug("step.fill", "admin_password", "hunter2", "session_token", "abc", "value_len", 7)
	path := Path()
	_ = cleanup()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	s := string(b)
	if strings.Contains(s, "hunter2") || strings.Contains(s, `"abc"`) {
		t.Fatalf("secret leaked into log:\n%s", s)
	}
	if !strings.Contains(s, `"admin_password":"********"`) || !strings.Contains(s, `"value_len":7`) {
		t.Fatalf("unexpected log:\n%s", s)
	}
}

func TestRotate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "glimpse.log")

	if err := rotate(path, 10); err != nil {
		t.Fatalf("rotate on missing file: %v", err)
	}

	if err := os.WriteFile(path, []byte("0123456789abc"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := rotate(path, 10); err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if _, err := os.Stat(path + ".1"); err != nil {
		t.Fatalf("expected rotated file: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected original moved, stat err=%v", err)
	}
}
