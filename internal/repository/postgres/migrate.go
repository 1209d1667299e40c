package postgres

import (
	"context"
	"database/sql"
	"embed"

	"eventhub/internal/repository/sqldb"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies the embedded schema migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	return sqldb.Migrate(ctx, db, migrationsFS, "migrations")
}
