package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ananmuhameed/therapy-ai-platform/internal/wire"
)

// WorkerCmd returns the worker command
func WorkerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run pipeline workers without the HTTP API",
		Long: `Run only the pipeline workers. They poll the durable job queue for
transcription and report-generation work until interrupted.

Useful when the API and the workers are scaled separately.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			pool := wire.WorkerPool()
			pool.Start(ctx)

			<-ctx.Done()
			wire.Logger().Printf("shutting down workers")
			pool.Wait()
			return nil
		},
	}

	return cmd
}
