package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// migrationLogger adapts slog to the migrate.Logger interface
type migrationLogger struct {
	logger *slog.Logger
}

func (l migrationLogger) Verbose() bool {
	return true
}

func (l migrationLogger) Printf(format string, v ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// MigrationConfig selects the target schema version. Version 0 means latest.
type MigrationConfig struct {
	Version uint
	Force   int
	Down    bool
}

// Migrate applies the embedded schema migrations
func Migrate(ctx context.Context, db *sqlx.DB, cfg MigrationConfig, logger *slog.Logger) error {
	logger = logger.With(slog.String("component", "migrations"))

	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	driver, err := migratepg.WithConnection(ctx, conn, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}
	defer driver.Close()

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		logger.Error("Failed to create migrate instance", slog.String("error", err.Error()))
		return err
	}
	m.Log = migrationLogger{logger: logger}

	if cfg.Force != 0 {
		if err := m.Force(cfg.Force); err != nil {
			logger.Error("Failed to force database version",
				slog.Int("version", cfg.Force),
				slog.String("error", err.Error()),
			)
			return err
		}
	}

	previous, dirty, versionErr := m.Version()
	if versionErr != nil && !errors.Is(versionErr, migrate.ErrNilVersion) {
		logger.Warn("Failed to get current migration version", slog.String("error", versionErr.Error()))
	}
	if dirty {
		return fmt.Errorf("database is dirty at version %d, force a version first", previous)
	}

	startTime := time.Now()

	var migrationErr error
	switch {
	case cfg.Down:
		migrationErr = m.Down()
	case cfg.Version != 0:
		migrationErr = m.Migrate(cfg.Version)
	default:
		migrationErr = m.Up()
	}

	if errors.Is(migrationErr, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply", slog.Uint64("version", uint64(previous)))
		return nil
	}
	if migrationErr != nil {
		logger.Error("Database migrations failed", slog.String("error", migrationErr.Error()))
		return migrationErr
	}

	current, _, _ := m.Version()
	logger.Info("Database migrations completed",
		slog.Uint64("from_version", uint64(previous)),
		slog.Uint64("to_version", uint64(current)),
		slog.Duration("elapsed", time.Since(startTime)),
	)
	return nil
}
