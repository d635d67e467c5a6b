package fsworkspace

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aalvaropc/glimpse/internal/domain"
	"github.com/aalvaropc/glimpse/internal/ports"
)

const ignoreHeader = "# Glimpse"

// Initializer scaffolds a workspace: the directory layout from the default
// config, a .gitignore block and the template files.
type Initializer struct {
	templates fs.FS
}

type Option func(*Initializer)

// WithTemplates replaces the embedded template tree. Files are copied with
// their paths relative to the FS root.
func WithTemplates(fsys fs.FS) Option {
	return func(i *Initializer) { i.templates = fsys }
}

func NewInitializer(opts ...Option) *Initializer {
	i := &Initializer{}
	for _, opt := range opts {
		opt(i)
	}
	if i.templates == nil {
		sub, err := fs.Sub(templatesFS, "templates")
		if err != nil {
			panic(err)
		}
		i.templates = sub
	}
	return i
}

var _ ports.WorkspaceInitializer = (*Initializer)(nil)

func (i *Initializer) Init(spec domain.WorkspaceSpec, force bool) error {
	root := filepath.Clean(spec.Root)
	paths := domain.DefaultConfig().Paths

	for _, d := range layout(root, paths) {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return &domain.OpError{Op: "fsworkspace.mkdir", Kind: domain.KindExecution, Path: d, Err: err}
		}
	}

	if err := ensureGitignore(root, ignoreEntries(paths)); err != nil {
		return &domain.OpError{Op: "fsworkspace.gitignore", Kind: domain.KindExecution, Path: root, Err: err}
	}

	return i.copyTemplates(root, force)
}

func layout(root string, p domain.PathsConfig) []string {
	return []string{
		filepath.Join(root, p.ScenariosDir),
		filepath.Join(root, "fixtures"),
		filepath.Join(root, p.EnvironmentsDir),
		filepath.Join(root, p.RunsDir),
		filepath.Join(root, ".glimpse", "logs"),
	}
}

// copyTemplates writes every template file under root. Existing files are
// kept unless force is set.
func (i *Initializer) copyTemplates(root string, force bool) error {
	return fs.WalkDir(i.templates, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		dst := filepath.Join(root, filepath.FromSlash(p))
		if !force {
			if _, statErr := os.Stat(dst); statErr == nil {
				return nil
			} else if !errors.Is(statErr, fs.ErrNotExist) {
				return templateError(dst, statErr)
			}
		}

		b, err := fs.ReadFile(i.templates, p)
		if err != nil {
			return templateError(dst, err)
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return templateError(dst, err)
		}
		if err := os.WriteFile(dst, b, templateMode(p)); err != nil {
			return templateError(dst, err)
		}
		return nil
	})
}

// templateMode keeps secrets files private to the owner.
func templateMode(p string) fs.FileMode {
	if strings.HasPrefix(strings.ToLower(path.Base(p)), "secrets") {
		return 0o600
	}
	return 0o644
}

func templateError(path string, err error) error {
	return &domain.OpError{Op: "fsworkspace.template", Kind: domain.KindExecution, Path: path, Err: err}
}

func ignoreEntries(p domain.PathsConfig) []string {
	return []string{
		strings.TrimSuffix(p.RunsDir, "/") + "/",
		".glimpse/",
		path.Join(p.EnvironmentsDir, "secrets.local.yaml"),
	}
}

func ensureGitignore(root string, entries []string) error {
	p := filepath.Join(root, ".gitignore")

	b, err := os.ReadFile(p)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	out, changed := mergeIgnore(string(b), entries)
	if !changed {
		return nil
	}
	return os.WriteFile(p, []byte(out), 0o644)
}

// mergeIgnore appends the entries missing from existing under the Glimpse
// header. changed is false when nothing needed adding.
func mergeIgnore(existing string, entries []string) (out string, changed bool) {
	present := map[string]bool{}
	for _, line := range strings.Split(existing, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			present[trimmed] = true
		}
	}

	var missing []string
	for _, e := range entries {
		if !present[e] {
			missing = append(missing, e)
		}
	}
	if len(missing) == 0 {
		return existing, false
	}

	var b strings.Builder
	b.Grow(len(existing) + 64)

	if existing != "" {
		b.WriteString(existing)
		if !strings.HasSuffix(existing, "\n") {
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	if !present[ignoreHeader] {
		b.WriteString(ignoreHeader)
		b.WriteByte('\n')
	}
	for _, e := range missing {
		b.WriteString(e)
		b.WriteByte('\n')
	}
	return b.String(), true
}
