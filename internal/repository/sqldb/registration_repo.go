package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventhub/internal/domain"
)

const registrationColumns = `id, user_id, event_id, status, payment_status, price, registered_at, notes, created_at, updated_at`

const activeStatusList = `('pending', 'confirmed')`

func registrationDest(reg *domain.Registration) []any {
	return []any{&reg.ID, &reg.UserID, &reg.EventID, &reg.Status, &reg.PaymentStatus,
		&reg.PriceSnapshot, &reg.RegisteredAt, &reg.Notes, &reg.CreatedAt, &reg.UpdatedAt}
}

func scanRegistration(s scanner) (*domain.Registration, error) {
	reg := &domain.Registration{}
	if err := s.Scan(registrationDest(reg)...); err != nil {
		return nil, err
	}
	return reg, nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// RegistrationRepository implements domain.RegistrationRepository over database/sql.
type RegistrationRepository struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewRegistrationRepository(db *sql.DB, dialect Dialect) *RegistrationRepository {
	return &RegistrationRepository{DB: db, Dialect: dialect}
}

// Admit claims a slot and records the registration in one transaction. The
// conditional increment takes the event row lock, so concurrent admissions for
// the same event serialize on it and can never push attending past capacity.
func (r *RegistrationRepository) Admit(ctx context.Context, reg *domain.Registration) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	claim := r.Dialect.Rebind(`
		UPDATE events
		SET attending = attending + 1, updated_at = ?
		WHERE id = ? AND attending < capacity
		RETURNING price
	`)
	var price float64
	err = tx.QueryRowContext(ctx, claim, reg.CreatedAt.UTC(), reg.EventID).Scan(&price)
	if errors.Is(err, sql.ErrNoRows) {
		exists, err := r.eventExists(ctx, tx, reg.EventID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrEventNotFound
		}
		return domain.ErrEventFull
	}
	if err != nil {
		return fmt.Errorf("claim slot: %w", err)
	}

	id := uuid.NewString()
	insert := r.Dialect.Rebind(`
		INSERT INTO registrations (id, user_id, event_id, status, payment_status, price, registered_at, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err = tx.ExecContext(ctx, insert, id, reg.UserID, reg.EventID, string(reg.Status), string(reg.PaymentStatus),
		price, reg.RegisteredAt.UTC(), reg.Notes, reg.CreatedAt.UTC(), reg.UpdatedAt.UTC())
	if err != nil {
		if r.Dialect.isUnique(err) {
			return domain.ErrDuplicateRegistration
		}
		if r.Dialect.isForeignKey(err) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("insert registration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	reg.ID = id
	reg.PriceSnapshot = price
	return nil
}

func (r *RegistrationRepository) eventExists(ctx context.Context, q querier, eventID string) (bool, error) {
	var n int
	query := r.Dialect.Rebind(`SELECT COUNT(*) FROM events WHERE id = ?`)
	if err := q.QueryRowContext(ctx, query, eventID).Scan(&n); err != nil {
		return false, fmt.Errorf("check event: %w", err)
	}
	return n > 0, nil
}

func (r *RegistrationRepository) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	query := r.Dialect.Rebind(`SELECT ` + registrationColumns + ` FROM registrations WHERE id = ?`)
	reg, err := scanRegistration(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRegistrationNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *RegistrationRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	query := r.Dialect.Rebind(`
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE event_id = ? AND user_id = ?
	`)
	reg, err := scanRegistration(r.DB.QueryRowContext(ctx, query, eventID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRegistrationNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *RegistrationRepository) CountActiveByEvent(ctx context.Context, eventID string) (int, error) {
	query := r.Dialect.Rebind(`
		SELECT COUNT(*) FROM registrations
		WHERE event_id = ? AND status IN ` + activeStatusList)
	var n int
	if err := r.DB.QueryRowContext(ctx, query, eventID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// ListByEvent returns the event's registrations with the registrant, newest first.
func (r *RegistrationRepository) ListByEvent(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.RegisteredUser, int, error) {
	var total int
	countQuery := r.Dialect.Rebind(`
		SELECT COUNT(*)
		FROM registrations r
		JOIN users u ON u.id = r.user_id
		WHERE r.event_id = ?
	`)
	if err := r.DB.QueryRowContext(ctx, countQuery, eventID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count registrations: %w", err)
	}

	query := r.Dialect.Rebind(`
		SELECT ` + prefixed("r", registrationColumns) + `, u.id, u.name, u.email
		FROM registrations r
		JOIN users u ON u.id = r.user_id
		WHERE r.event_id = ?
		ORDER BY r.registered_at DESC, r.id DESC
		LIMIT ? OFFSET ?
	`)
	rows, err := r.DB.QueryContext(ctx, query, eventID, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []*domain.RegisteredUser{}
	for rows.Next() {
		item := &domain.RegisteredUser{Registration: &domain.Registration{}}
		dest := append(registrationDest(item.Registration), &item.User.ID, &item.User.Name, &item.User.Email)
		if err := rows.Scan(dest...); err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListByUser returns the user's registrations joined with their events.
func (r *RegistrationRepository) ListByUser(ctx context.Context, userID string, filter domain.RegisteredEventsFilter, params domain.PaginationParams) ([]*domain.RegisteredEvent, int, error) {
	where := []string{"r.user_id = ?"}
	args := []any{userID}
	if q := strings.TrimSpace(filter.Query); q != "" {
		where = append(where, `LOWER(e.title) LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(q))
	}
	if c := strings.TrimSpace(filter.Category); c != "" {
		where = append(where, "e.category = ?")
		args = append(args, c)
	}
	from := `
		FROM registrations r
		JOIN events e ON e.id = r.event_id
		WHERE ` + strings.Join(where, " AND ")

	var total int
	if err := r.DB.QueryRowContext(ctx, r.Dialect.Rebind(`SELECT COUNT(*)`+from), args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count registrations: %w", err)
	}

	order := "DESC"
	if filter.Order == domain.OrderOldest {
		order = "ASC"
	}
	query := r.Dialect.Rebind(`SELECT ` + prefixed("r", registrationColumns) + `, ` + prefixed("e", eventColumns) + from +
		` ORDER BY r.registered_at ` + order + `, r.id ` + order + ` LIMIT ? OFFSET ?`)
	rows, err := r.DB.QueryContext(ctx, query, append(args, params.PageSize, params.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []*domain.RegisteredEvent{}
	for rows.Next() {
		reg := &domain.Registration{}
		e := &domain.Event{}
		dest := append(registrationDest(reg),
			&e.ID, &e.Title, &e.Category, &e.DateTime, &e.VenueType, &e.Location, &e.Price,
			&e.Capacity, &e.Attending, &e.BannerURL, &e.Description, &e.OrganizerID, &e.CreatedAt, &e.UpdatedAt)
		if err := rows.Scan(dest...); err != nil {
			return nil, 0, err
		}
		items = append(items, &domain.RegisteredEvent{Registration: reg, Event: e})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *RegistrationRepository) ListByEventIDs(ctx context.Context, eventIDs []string) ([]*domain.Registration, error) {
	regs := []*domain.Registration{}
	if len(eventIDs) == 0 {
		return regs, nil
	}
	args := make([]any, len(eventIDs))
	for i, id := range eventIDs {
		args[i] = id
	}
	query := r.Dialect.Rebind(`
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE event_id IN (` + placeholders(len(eventIDs)) + `)
	`)
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

func (r *RegistrationRepository) Confirm(ctx context.Context, id string, at time.Time) (*domain.Registration, error) {
	query := r.Dialect.Rebind(`
		UPDATE registrations
		SET status = 'confirmed', updated_at = ?
		WHERE id = ? AND status = 'pending'
		RETURNING ` + registrationColumns)
	return r.transition(ctx, r.DB, query, at.UTC(), id)
}

func (r *RegistrationRepository) MarkPaid(ctx context.Context, id string, at time.Time) (*domain.Registration, error) {
	query := r.Dialect.Rebind(`
		UPDATE registrations
		SET payment_status = 'paid', updated_at = ?
		WHERE id = ? AND payment_status = 'unpaid' AND status <> 'cancelled'
		RETURNING ` + registrationColumns)
	return r.transition(ctx, r.DB, query, at.UTC(), id)
}

// Cancel releases the slot in the same transaction that cancels the registration.
func (r *RegistrationRepository) Cancel(ctx context.Context, id string, at time.Time) (*domain.Registration, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := r.Dialect.Rebind(`
		UPDATE registrations
		SET status = 'cancelled', updated_at = ?
		WHERE id = ? AND status IN ` + activeStatusList + `
		RETURNING ` + registrationColumns)
	reg, err := r.transition(ctx, tx, query, at.UTC(), id)
	if err != nil {
		return nil, err
	}

	release := r.Dialect.Rebind(`
		UPDATE events
		SET attending = attending - 1, updated_at = ?
		WHERE id = ? AND attending > 0
	`)
	if _, err := tx.ExecContext(ctx, release, at.UTC(), reg.EventID); err != nil {
		return nil, fmt.Errorf("release slot: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return reg, nil
}

// transition runs a conditional UPDATE ... RETURNING. No row means either the
// registration is missing or its current state does not allow the change.
func (r *RegistrationRepository) transition(ctx context.Context, q querier, query string, args ...any) (*domain.Registration, error) {
	reg, err := scanRegistration(q.QueryRowContext(ctx, query, args...))
	if err == nil {
		return reg, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	var n int
	check := r.Dialect.Rebind(`SELECT COUNT(*) FROM registrations WHERE id = ?`)
	if err := q.QueryRowContext(ctx, check, args[len(args)-1]).Scan(&n); err != nil {
		return nil, fmt.Errorf("check registration: %w", err)
	}
	if n == 0 {
		return nil, domain.ErrRegistrationNotFound
	}
	return nil, domain.ErrInvalidTransition
}

// prefixed qualifies each column in a comma-separated list with alias.
func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
