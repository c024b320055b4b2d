package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ananmuhameed/therapy-ai-platform/internal/config"
	"github.com/ananmuhameed/therapy-ai-platform/internal/db"
)

// MigrateCmd returns the migrate command
func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Long: `Open the configured database and apply the schema. Safe to run
repeatedly; existing tables are left untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			database, err := db.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer database.Close()

			if err := db.InitSchema(database); err != nil {
				return fmt.Errorf("failed to apply schema: %w", err)
			}

			fmt.Printf("✓ Schema applied to %s\n", cfg.DBPath)
			return nil
		},
	}

	return cmd
}
