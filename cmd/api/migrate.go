package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
}

func init() {
	for _, direction := range []persistence.MigrationDirection{
		persistence.MigrateUp,
		persistence.MigrateDown,
		persistence.MigrateStatus,
	} {
		migrateCmd.AddCommand(newMigrateCommand(direction))
	}
}

func newMigrateCommand(direction persistence.MigrationDirection) *cobra.Command {
	short := map[persistence.MigrationDirection]string{
		persistence.MigrateUp:     "Apply all pending migrations",
		persistence.MigrateDown:   "Roll back the most recent migration",
		persistence.MigrateStatus: "Show migration status",
	}[direction]

	return &cobra.Command{
		Use:   string(direction),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, err := observability.NewLogger(cfg.Logger)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer logger.Sync() //nolint:errcheck

			pg, err := persistence.NewPostgres(cmd.Context(), cfg.Postgres, logger)
			if err != nil {
				return fmt.Errorf("connect postgres: %w", err)
			}
			defer pg.Close()

			return persistence.RunMigrations(cmd.Context(), pg.PoolHandle(), logger, direction)
		},
	}
}
