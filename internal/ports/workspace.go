package ports

import "github.com/aalvaropc/glimpse/internal/domain"

// WorkspaceLocator finds a Glimpse workspace root starting from an arbitrary directory.
type WorkspaceLocator interface {
	FindRoot(startDir string) (string, error)
}

// WorkspaceInitializer scaffolds a workspace on disk. Existing files are kept
// unless force is set.
type WorkspaceInitializer interface {
	Init(spec domain.WorkspaceSpec, force bool) error
}
