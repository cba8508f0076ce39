package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/vsinha/supplyplan/pkg/interfaces/api"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(app *App) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the planning reports and forecast edits over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port == 0 {
				port = app.Config.Server.Port
			}

			handler := api.NewPlanningHandler(app.Service, app.Logger, nil)
			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", port),
				Handler:           api.NewRouter(handler, app.Logger, app.Config.Server.Mode),
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				app.Logger.WithField("addr", srv.Addr).Info("Starting server")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			case <-cmd.Context().Done():
			}

			app.Logger.Info("Shutting down server...")
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				return fmt.Errorf("server forced to shutdown: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on (0 uses server.port)")
	return cmd
}
