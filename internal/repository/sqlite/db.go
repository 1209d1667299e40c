// Package sqlite runs the SQL repositories on an embedded, cgo-free SQLite
// database. It backs local development and the concurrency tests.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"eventhub/internal/domain"
	"eventhub/internal/repository/sqldb"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Dialect is the modernc.org/sqlite flavour of the SQL repositories.
var Dialect = sqldb.Dialect{
	UniqueViolation: func(err error) bool {
		return hasCode(err, sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY) ||
			strings.Contains(err.Error(), "UNIQUE constraint failed")
	},
	ForeignKeyViolation: func(err error) bool {
		return hasCode(err, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY) ||
			strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
	},
}

func hasCode(err error, codes ...int) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	for _, c := range codes {
		if sqliteErr.Code() == c {
			return true
		}
	}
	return false
}

// DSN builds a file DSN with foreign keys on and a busy timeout.
func DSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
}

// Open opens the database file at path. A single connection serializes
// writers, which keeps the admission transaction free of SQLITE_BUSY.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

// Migrate applies the embedded schema.
func Migrate(ctx context.Context, db *sql.DB) error {
	return sqldb.Migrate(ctx, db, migrationsFS, "migrations")
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return sqldb.NewEventRepository(db, Dialect)
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return sqldb.NewUserRepository(db, Dialect)
}

func NewRegistrationRepository(db *sql.DB) domain.RegistrationRepository {
	return sqldb.NewRegistrationRepository(db, Dialect)
}
