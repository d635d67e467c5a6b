package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/glimpse/internal/domain"
)

func envsCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "envs",
		Short: "Manage environments in a workspace",
	}

	c.AddCommand(envsListCmd())
	return c
}

func envsListCmd() *cobra.Command {
	var workspace string
	var showVars bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List environments (* marks the default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}

			refs, err := ws.Envs.ListEnvironments(ws.Root)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(refs) == 0 {
				fmt.Fprintln(out, "(no environments found)")
				return nil
			}

			def := ws.Config.Defaults.Environment
			fmt.Fprintf(out, "Workspace: %s\n", ws.Root)
			fmt.Fprintf(out, "Default:   %s\n\n", def)

			for _, r := range refs {
				mark := "-"
				if r.Name == def {
					mark = "*"
				}
				rel, _ := filepath.Rel(ws.Root, r.Path)
				fmt.Fprintf(out, "%s %s  (%s)\n", mark, r.Name, rel)

				if !showVars {
					continue
				}
				env, err := ws.Envs.LoadEnvironment(r.Name)
				if err != nil {
					fmt.Fprintf(out, "    %s %v\n", failStyle.Render("error:"), err)
					continue
				}
				for _, k := range sortedKeys(env.Vars) {
					v := env.Vars[k]
					if domain.IsSensitiveKey(k) {
						v = domain.MaskedValue
					}
					fmt.Fprintf(out, "    %s = %s\n", k, v)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	cmd.Flags().BoolVar(&showVars, "vars", false, "Print each environment's vars (secrets merged, values masked)")
	return cmd
}
