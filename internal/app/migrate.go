package app

import (
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/guttosm/spimexpulse/db/migrations"
	"github.com/guttosm/spimexpulse/internal/logger"
)

// RunMigrations applies every pending migration embedded in db/migrations.
func RunMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, err := goose.GetDBVersion(db)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	logger.L().Info().Int64("version", version).Msg("migrations applied")
	return nil
}

// migrator is an indirection used by InitializeApp; overridden in tests.
var migrator = RunMigrations
