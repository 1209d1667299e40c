package sqldb

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"eventhub/internal/domain"
)

const userColumns = `id, email, password_hash, name, bio, organization, website, location, timezone, created_at, updated_at`

func scanUser(s scanner) (*domain.User, error) {
	u := &domain.User{}
	err := s.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Bio, &u.Organization,
		&u.Website, &u.Location, &u.Timezone, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// UserRepository implements domain.UserRepository over database/sql.
type UserRepository struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewUserRepository(db *sql.DB, dialect Dialect) *UserRepository {
	return &UserRepository{DB: db, Dialect: dialect}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	query := r.Dialect.Rebind(`
		INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := r.DB.ExecContext(ctx, query, u.ID, domain.NormalizeEmail(u.Email), u.PasswordHash, u.Name,
		u.Bio, u.Organization, u.Website, u.Location, u.Timezone, u.CreatedAt.UTC(), u.UpdatedAt.UTC())
	if err != nil {
		if r.Dialect.isUnique(err) {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := r.Dialect.Rebind(`SELECT ` + userColumns + ` FROM users WHERE email = ?`)
	return r.getOne(ctx, query, domain.NormalizeEmail(email))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := r.Dialect.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)
	return r.getOne(ctx, query, id)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg string) (*domain.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// Update writes the profile fields. Email and password are not changed here.
func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	query := r.Dialect.Rebind(`
		UPDATE users
		SET name = ?, bio = ?, organization = ?, website = ?, location = ?, timezone = ?, updated_at = ?
		WHERE id = ?
	`)
	result, err := r.DB.ExecContext(ctx, query, u.Name, u.Bio, u.Organization, u.Website,
		u.Location, u.Timezone, u.UpdatedAt.UTC(), u.ID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
