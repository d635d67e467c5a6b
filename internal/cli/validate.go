package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func validateCmd() *cobra.Command {
	var workspace string
	var scenario string
	var env string
	var all bool

	c := &cobra.Command{
		Use:   "validate",
		Short: "Validate scenarios against an environment (no browser)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !all && strings.TrimSpace(scenario) == "" {
				return fmt.Errorf("scenario is required (use --scenario/-s or --all)")
			}

			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}

			paths, err := scenarioPaths(ws, runOptions{scenario: scenario, all: all})
			if err != nil {
				return err
			}

			envArg := ws.ResolveEnvironment(env)
			uc := ws.Validator()

			failed := 0
			for _, p := range paths {
				if err := uc.Execute(cmd.Context(), p, envArg); err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n%v\n", failStyle.Render("✗"), p, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", passStyle.Render("✓"), p)
			}

			if failed > 0 {
				return fmt.Errorf("%d scenario(s) invalid", failed)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return nil
		},
	}

	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	c.Flags().StringVarP(&scenario, "scenario", "s", "", "Scenario name or path")
	c.Flags().StringVarP(&env, "env", "e", "", "Environment name or path (optional; defaults to workspace default env)")
	c.Flags().BoolVar(&all, "all", false, "Validate every scenario in the workspace")
	return c
}
