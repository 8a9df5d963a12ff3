package journal

import (
	"context"
	"database/sql"
	"embed"
	"errors"

	"github.com/pressly/goose/v3"
)

const migrationsDir = "migrations"

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate brings the events table schema up to date. It creates the default "events" table;
// journals configured WithTableName need their table created separately.
func Migrate(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return ErrNilDatabaseConnection
	}

	goose.SetBaseFS(migrations)

	if err := goose.SetDialect(dialectPostgres); err != nil {
		return errors.Join(ErrMigrationFailed, err)
	}

	if err := goose.UpContext(ctx, db, migrationsDir); err != nil {
		return errors.Join(ErrMigrationFailed, err)
	}

	return nil
}
