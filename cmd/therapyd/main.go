package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ananmuhameed/therapy-ai-platform/internal/cli"
	"github.com/ananmuhameed/therapy-ai-platform/internal/version"
)

func main() {
	// Missing .env is fine; the environment is the source of truth.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:     "therapyd",
		Short:   "therapyd - therapy session processing service",
		Version: version.String(),
		Long: `therapyd ingests therapy session audio, transcribes it, and generates
structured clinical reports. It serves an HTTP API and processes the
pipeline through a durable job queue.`,
	}

	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.WorkerCmd())
	rootCmd.AddCommand(cli.MigrateCmd())
	rootCmd.AddCommand(cli.PipelineCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
