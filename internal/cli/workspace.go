package cli

import (
	"github.com/aalvaropc/glimpse/internal/app"
	"github.com/aalvaropc/glimpse/internal/infra/logger"
)

func loadWorkspace(workspaceFlag string) (*app.Workspace, error) {
	root, err := app.FindRoot(workspaceFlag)
	if err != nil {
		return nil, err
	}
	return app.Open(root, logger.L())
}
