package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/mrops-br/marketplace-ops-api/internal/infrastructure/config"
	"github.com/mrops-br/marketplace-ops-api/internal/infrastructure/repository/postgres"
	"github.com/mrops-br/marketplace-ops-api/internal/infrastructure/telemetry"
	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	var (
		version uint
		force   int
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database schema migrations",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Migrate to the latest version, or to --version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context(), postgres.MigrationConfig{Version: version, Force: force})
		},
	}
	up.Flags().UintVar(&version, "version", 0, "target schema version (0 = latest)")
	up.Flags().IntVar(&force, "force", 0, "force the recorded version before migrating")

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back every migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context(), postgres.MigrationConfig{Down: true, Force: force})
		},
	}
	down.Flags().IntVar(&force, "force", 0, "force the recorded version before rolling back")

	cmd.AddCommand(up, down)
	return cmd
}

func runMigrate(ctx context.Context, migration postgres.MigrationConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := config.LoadConfig()
	if cfg.Storage.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}

	logger := telemetry.NewLogger(os.Stdout, &cfg.OTLP)

	db, err := postgres.Open(ctx, postgres.Config{URL: cfg.Storage.DatabaseURL, MaxOpenConns: 1})
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db, migration, logger); err != nil {
		logger.Error("Migration failed", slog.String("error", err.Error()))
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
