package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"eventhub/internal/domain"
)

const eventColumns = `id, title, category, date_time, venue_type, location, price, capacity, attending, banner_url, description, organizer_id, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(s scanner) (*domain.Event, error) {
	e := &domain.Event{}
	err := s.Scan(
		&e.ID, &e.Title, &e.Category, &e.DateTime, &e.VenueType, &e.Location, &e.Price,
		&e.Capacity, &e.Attending, &e.BannerURL, &e.Description, &e.OrganizerID, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// EventRepository implements domain.EventRepository over database/sql.
type EventRepository struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewEventRepository(db *sql.DB, dialect Dialect) *EventRepository {
	return &EventRepository{DB: db, Dialect: dialect}
}

func (r *EventRepository) Create(ctx context.Context, e *domain.Event) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	query := r.Dialect.Rebind(`
		INSERT INTO events (` + eventColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := r.DB.ExecContext(ctx, query,
		e.ID, e.Title, e.Category, e.DateTime.UTC(), string(e.VenueType), e.Location, e.Price,
		e.Capacity, e.Attending, e.BannerURL, e.Description, e.OrganizerID, e.CreatedAt.UTC(), e.UpdatedAt.UTC(),
	)
	if err != nil {
		if r.Dialect.isForeignKey(err) {
			return domain.ErrUserNotFound
		}
		return err
	}
	return nil
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := r.Dialect.Rebind(`SELECT ` + eventColumns + ` FROM events WHERE id = ?`)
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *EventRepository) ListByOrganizer(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	query := r.Dialect.Rebind(`
		SELECT ` + eventColumns + `
		FROM events
		WHERE organizer_id = ?
		ORDER BY date_time DESC, id
	`)
	rows, err := r.DB.QueryContext(ctx, query, organizerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []*domain.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Update writes every mutable field except attending. The capacity floor is
// checked in the same statement so a concurrent admission cannot slip under it.
func (r *EventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := r.Dialect.Rebind(`
		UPDATE events
		SET title = ?, category = ?, date_time = ?, venue_type = ?, location = ?, price = ?,
			capacity = ?, banner_url = ?, description = ?, updated_at = ?
		WHERE id = ? AND attending <= ?
		RETURNING attending
	`)
	err := r.DB.QueryRowContext(ctx, query,
		e.Title, e.Category, e.DateTime.UTC(), string(e.VenueType), e.Location, e.Price,
		e.Capacity, e.BannerURL, e.Description, e.UpdatedAt.UTC(),
		e.ID, e.Capacity,
	).Scan(&e.Attending)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	exists, err := r.exists(ctx, e.ID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrEventNotFound
	}
	return domain.ErrCapacityBelowAttendance
}

// Delete removes an event with no active registrations. Cancelled
// registrations go with it through the foreign key cascade.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	query := r.Dialect.Rebind(`DELETE FROM events WHERE id = ? AND attending = 0`)
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	exists, err := r.exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrEventNotFound
	}
	return domain.ErrEventHasActiveRegistrations
}

func (r *EventRepository) exists(ctx context.Context, id string) (bool, error) {
	var n int
	query := r.Dialect.Rebind(`SELECT COUNT(*) FROM events WHERE id = ?`)
	if err := r.DB.QueryRowContext(ctx, query, id).Scan(&n); err != nil {
		return false, fmt.Errorf("check event: %w", err)
	}
	return n > 0, nil
}
