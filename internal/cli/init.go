package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/glimpse/internal/infra/fsworkspace"
	"github.com/aalvaropc/glimpse/internal/usecase"
)

func initCmd() *cobra.Command {
	var path string
	var force bool

	c := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a workspace with example scenarios, fixtures and environments",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := path
			if len(args) == 1 {
				dir = args[0]
			}
			if dir == "" {
				dir = "."
			}

			abs, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("invalid path: %w", err)
			}

			uc := usecase.NewInitWorkspace(fsworkspace.NewInitializer())
			if err := uc.Execute(abs, force); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Workspace ready at %s\n", abs)
			fmt.Fprintln(cmd.OutOrStdout(), "Next: glimpse run -s news-paper")
			return nil
		},
	}

	c.Flags().StringVarP(&path, "path", "p", "", "Target directory (default: current directory)")
	c.Flags().BoolVar(&force, "force", false, "Overwrite existing template files")
	return c
}
