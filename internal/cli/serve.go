package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ananmuhameed/therapy-ai-platform/internal/wire"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	var noWorkers bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API with embedded pipeline workers",
		Long: `Run the HTTP API server. Pipeline workers run in the same process
by default, polling the durable job queue for transcription and
report-generation work.

Examples:
  therapyd serve                # API plus embedded workers
  therapyd serve --no-workers   # API only, workers run elsewhere`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger := wire.Logger()
			server := wire.HTTPServer()

			var pool interface{ Wait() }
			if !noWorkers {
				p := wire.WorkerPool()
				p.Start(ctx)
				pool = p
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Printf("listening on :%s", wire.Config().Port)
				errCh <- server.Run()
			}()

			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			case <-ctx.Done():
				logger.Printf("shutting down")
				if err := server.Shutdown(context.Background()); err != nil {
					logger.Printf("shutdown: %v", err)
				}
			}

			if pool != nil {
				pool.Wait()
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noWorkers, "no-workers", false, "serve the API without embedded workers")

	return cmd
}
