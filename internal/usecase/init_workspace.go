package usecase

import (
	"strings"

	"github.com/aalvaropc/glimpse/internal/domain"
	"github.com/aalvaropc/glimpse/internal/ports"
)

type InitWorkspace struct {
	initializer ports.WorkspaceInitializer
}

func NewInitWorkspace(initializer ports.WorkspaceInitializer) *InitWorkspace {
	return &InitWorkspace{initializer: initializer}
}

// Execute scaffolds a workspace in root (current directory when empty).
func (uc *InitWorkspace) Execute(root string, force bool) error {
	if strings.TrimSpace(root) == "" {
		root = "."
	}
	return uc.initializer.Init(domain.WorkspaceSpec{Root: root}, force)
}
