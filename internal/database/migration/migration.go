// Package migration creates the upload metadata schema on first start.
package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_uploads",
		SQL: `CREATE TABLE IF NOT EXISTS uploads (
  id            UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  filename      TEXT        NOT NULL,
  original_name TEXT        NOT NULL,
  storage_path  TEXT        NOT NULL UNIQUE,
  size          BIGINT      NOT NULL CHECK (size >= 0),
  content_type  TEXT        NOT NULL,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_uploads_original_name",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_uploads_original_name ON uploads (original_name);`,
	},
	{
		Name: "create_index_uploads_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_uploads_created_at ON uploads (created_at);`,
	},
}

// EnsureMigrated runs every step when the uploads table is missing.
// An existing table means the schema is current and nothing runs.
func EnsureMigrated(ctx context.Context, db *sql.DB, logger *zap.Logger, dbHost string) error {
	start := time.Now()
	log := logger.With(zap.String("component", "database"), zap.String("db_host", dbHost))

	log.Info("db_migration_check")

	var exists bool
	if err := db.QueryRowContext(ctx, "SELECT to_regclass('public.uploads') IS NOT NULL").Scan(&exists); err != nil {
		log.Error("db_migration_failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip", zap.Duration("duration", time.Since(start)))
		return nil
	}

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				zap.String("migration_step", step.Name),
				zap.Error(err),
				zap.Duration("step_duration", time.Since(stepStart)),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}
		log.Debug("db_migration_step", zap.String("migration_step", step.Name), zap.Duration("step_duration", time.Since(stepStart)))
	}

	log.Info("db_migration_success", zap.Int("steps", len(steps)), zap.Duration("duration", time.Since(start)))
	return nil
}
