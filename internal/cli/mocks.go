package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/glimpse/internal/infra/logger"
)

func mocksCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "mocks",
		Short: "Work with scenario mocks",
	}

	c.AddCommand(mocksServeCmd())
	return c
}

func mocksServeCmd() *cobra.Command {
	var workspace string
	var scenario string
	var env string
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a scenario's mocks over HTTP (404 for anything unmatched)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}

			path, err := ws.ResolveScenario(scenario)
			if err != nil {
				return err
			}

			table, err := ws.MockServer().Table(path, ws.ResolveEnvironment(env))
			if err != nil {
				return err
			}

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", addr, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Serving %d mock(s) from %s on http://%s (ctrl+c to stop)\n",
				table.Len(), path, ln.Addr())

			return serveUntilDone(cmd.Context(), ln, table.Handler())
		},
	}

	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	cmd.Flags().StringVarP(&scenario, "scenario", "s", "", "Scenario name or path (required)")
	cmd.Flags().StringVarP(&env, "env", "e", "", "Environment name or path (optional; defaults to workspace default env)")
	cmd.Flags().StringVar(&addr, "addr", ":3900", "Listen address")
	_ = cmd.MarkFlagRequired("scenario")
	return cmd
}

// serveUntilDone serves h on ln until ctx is canceled, then shuts down gracefully.
func serveUntilDone(ctx context.Context, ln net.Listener, h http.Handler) error {
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.L().Info("mocks.shutdown", "addr", ln.Addr().String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	}
}
