package domain

import (
	"context"
	"strings"
	"time"
)

// VenueType is where an event takes place.
type VenueType string

const (
	VenueOnline   VenueType = "online"
	VenueInPerson VenueType = "in-person"
)

// Valid reports whether v is a known venue type.
func (v VenueType) Valid() bool {
	return v == VenueOnline || v == VenueInPerson
}

// Event is an organizer-owned schedulable activity with a capacity and a price.
// Attending counts pending and confirmed registrations; it is only changed by the
// registration ledger inside the same storage operation that admits or cancels.
// swagger:model Event
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	DateTime    time.Time `json:"date_time"`
	VenueType   VenueType `json:"venue_type"`
	Location    string    `json:"location,omitempty"`
	Price       float64   `json:"price"`
	Capacity    int       `json:"capacity"`
	Attending   int       `json:"attending"`
	BannerURL   string    `json:"banner_url,omitempty"`
	Description string    `json:"description"`
	OrganizerID string    `json:"organizer_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewEvent returns an Event owned by organizerID. ID is set by the repository on create.
func NewEvent(organizerID, title, category string, dateTime time.Time, venue VenueType, location string, price float64, capacity int, now time.Time) *Event {
	return &Event{
		Title:       title,
		Category:    category,
		DateTime:    dateTime,
		VenueType:   venue,
		Location:    location,
		Price:       price,
		Capacity:    capacity,
		OrganizerID: organizerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate checks the field constraints of an event.
func (e *Event) Validate() error {
	switch {
	case strings.TrimSpace(e.Title) == "":
		return InvalidInput("title is required")
	case strings.TrimSpace(e.Category) == "":
		return InvalidInput("category is required")
	case e.DateTime.IsZero():
		return InvalidInput("date_time is required")
	case !e.VenueType.Valid():
		return InvalidInput(`venue_type must be "online" or "in-person"`)
	case e.VenueType == VenueInPerson && strings.TrimSpace(e.Location) == "":
		return InvalidInput("location is required for in-person events")
	case e.Price < 0:
		return InvalidInput("price must be >= 0")
	case e.Capacity < 0:
		return InvalidInput("capacity must be >= 0")
	case e.Attending > e.Capacity:
		return ErrCapacityBelowAttendance
	}
	return nil
}

// IsUpcoming reports whether the event starts at or after now.
func (e *Event) IsUpcoming(now time.Time) bool {
	return !e.DateTime.Before(now)
}

// SeatsLeft returns the number of slots still open.
func (e *Event) SeatsLeft() int {
	if e.Attending >= e.Capacity {
		return 0
	}
	return e.Capacity - e.Attending
}

// EventPatch is a partial update to an event; nil fields are left unchanged.
type EventPatch struct {
	Title       *string
	Category    *string
	DateTime    *time.Time
	VenueType   *VenueType
	Location    *string
	Price       *float64
	Capacity    *int
	BannerURL   *string
	Description *string
}

// Apply copies the set fields of p onto e.
func (p EventPatch) Apply(e *Event) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.DateTime != nil {
		e.DateTime = *p.DateTime
	}
	if p.VenueType != nil {
		e.VenueType = *p.VenueType
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Price != nil {
		e.Price = *p.Price
	}
	if p.Capacity != nil {
		e.Capacity = *p.Capacity
	}
	if p.BannerURL != nil {
		e.BannerURL = *p.BannerURL
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
}

// EventRepository defines storage operations for events.
//
// Update never writes Attending and must fail with ErrCapacityBelowAttendance
// when the new capacity is lower than the stored attendance. Delete must fail
// with ErrEventHasActiveRegistrations while attendance is non-zero, and removes
// the event's remaining (cancelled) registrations with it.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	ListByOrganizer(ctx context.Context, organizerID string) ([]*Event, error)
	Update(ctx context.Context, event *Event) error
	Delete(ctx context.Context, id string) error
}

// EventService defines organizer-facing event management.
type EventService interface {
	CreateEvent(ctx context.Context, organizerID string, event *Event) (*Event, error)
	GetEvent(ctx context.Context, id string) (*Event, error)
	UpdateEvent(ctx context.Context, organizerID, eventID string, patch EventPatch) (*Event, error)
	DeleteEvent(ctx context.Context, organizerID, eventID string) error
}
