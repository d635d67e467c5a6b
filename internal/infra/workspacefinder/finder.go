package workspacefinder

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/aalvaropc/glimpse/internal/domain"
	"github.com/aalvaropc/glimpse/internal/ports"
)

// Finder walks up from a start directory looking for glimpse.yaml. The walk
// stops at the first directory holding .git (the repository root) unless
// WithRepoBoundary(false) is given.
type Finder struct {
	configFile   string
	repoBoundary bool
}

type Option func(*Finder)

func WithConfigFile(name string) Option {
	return func(f *Finder) { f.configFile = name }
}

func WithRepoBoundary(stop bool) Option {
	return func(f *Finder) { f.repoBoundary = stop }
}

func NewFinder(opts ...Option) *Finder {
	f := &Finder{configFile: ConfigFile, repoBoundary: true}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

var _ ports.WorkspaceLocator = (*Finder)(nil)

func (f *Finder) FindRoot(startDir string) (string, error) {
	if startDir == "" {
		return "", &domain.OpError{
			Op:   "workspacefinder.findroot",
			Kind: domain.KindInvalidConfig,
			Err:  errors.New("startDir is empty"),
		}
	}

	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", &domain.OpError{
			Op:   "workspacefinder.findroot",
			Kind: domain.KindExecution,
			Err:  err,
		}
	}

	// A file path (e.g. a scenario) starts the search from its directory.
	if info, statErr := os.Stat(abs); statErr == nil && !info.IsDir() {
		abs = filepath.Dir(abs)
	}

	for cur := filepath.Clean(abs); ; {
		if isFile(filepath.Join(cur, f.configFile)) {
			return cur, nil
		}
		if f.repoBoundary && exists(filepath.Join(cur, ".git")) {
			break
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			break
		}
		cur = parent
	}

	return "", &domain.OpError{
		Op:   "workspacefinder.findroot",
		Kind: domain.KindNotFound,
		Path: abs,
		Err:  domain.ErrNotFound,
	}
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

func exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
