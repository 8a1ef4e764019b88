package sqlite

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies all pending schema migrations to the local database.
func (t *Translator) Migrate() error {
	if t.db == nil {
		return fmt.Errorf("database not opened")
	}
	return MigrateDB(t.db)
}

// MigrateDB runs the embedded migrations against a raw connection. Useful
// for tests that manage their own handle.
func MigrateDB(db *sql.DB) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
