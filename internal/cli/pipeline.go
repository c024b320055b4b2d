package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ananmuhameed/therapy-ai-platform/internal/ports/primary"
	"github.com/ananmuhameed/therapy-ai-platform/internal/wire"
)

// PipelineCmd returns the pipeline command
func PipelineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Drive pipeline stages directly",
		Long: `Run pipeline stages synchronously, bypassing the job queue. Intended
for debugging a single session; production traffic goes through the
workers.`,
	}

	cmd.AddCommand(pipelineRunCmd())
	cmd.AddCommand(pipelineDrainCmd())

	return cmd
}

func pipelineRunCmd() *cobra.Command {
	var stage string
	var force bool

	cmd := &cobra.Command{
		Use:   "run [session-id]",
		Short: "Run one pipeline stage for a session",
		Long: `Run one stage synchronously for a session and print the outcome.

Examples:
  therapyd pipeline run 6e3f... --stage transcribe
  therapyd pipeline run 6e3f... --stage report --force`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			attempt := primary.TaskAttempt{
				SessionID:   args[0],
				Attempt:     1,
				MaxAttempts: 1,
				Force:       force,
			}

			var result *primary.TaskResult
			var err error
			switch stage {
			case "transcribe":
				result, err = wire.PipelineTaskService().RunTranscription(ctx, attempt)
			case "report":
				result, err = wire.PipelineTaskService().RunReportGeneration(ctx, attempt)
			default:
				return fmt.Errorf("unknown stage %q (want transcribe or report)", stage)
			}
			if err != nil {
				return fmt.Errorf("stage %s failed: %w", stage, err)
			}

			if result.Skipped {
				fmt.Printf("%s stage %s skipped: %s\n", color.YellowString("→"), stage, result.SkipReason)
				return nil
			}
			fmt.Printf("%s stage %s completed for session %s\n", color.GreenString("✓"), stage, result.SessionID)
			return nil
		},
	}

	cmd.Flags().StringVar(&stage, "stage", "transcribe", "stage to run (transcribe or report)")
	cmd.Flags().BoolVar(&force, "force", false, "regenerate a completed report")

	return cmd
}

func pipelineDrainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drain",
		Short: "Run all due queued jobs, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			pool := wire.WorkerPool()

			ran := 0
			for {
				done, err := pool.RunNext(ctx)
				if err != nil {
					return err
				}
				if !done {
					break
				}
				ran++
			}

			fmt.Printf("%s drained %d job(s)\n", color.GreenString("✓"), ran)
			return nil
		},
	}

	return cmd
}
