package postgres

import (
	"database/sql"

	"eventhub/internal/domain"
	"eventhub/internal/repository/sqldb"
)

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return sqldb.NewEventRepository(db, Dialect)
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return sqldb.NewUserRepository(db, Dialect)
}

func NewRegistrationRepository(db *sql.DB) domain.RegistrationRepository {
	return sqldb.NewRegistrationRepository(db, Dialect)
}
