package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

func scenariosCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "scenarios",
		Short: "Manage scenarios in a workspace",
	}

	c.AddCommand(scenariosListCmd())
	return c
}

func scenariosListCmd() *cobra.Command {
	var workspace string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List scenarios",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}

			refs, err := ws.Scenarios.ListScenarios(ws.Root)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(refs) == 0 {
				fmt.Fprintln(out, "(no scenarios found)")
				return nil
			}

			fmt.Fprintf(out, "Workspace: %s\n\n", ws.Root)
			for _, r := range refs {
				rel, _ := filepath.Rel(ws.Root, r.Path)
				fmt.Fprintf(out, "- %s  (%s)\n", r.Name, rel)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	return cmd
}
