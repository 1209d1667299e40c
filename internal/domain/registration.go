package domain

import (
	"context"
	"time"
)

// RegistrationStatus is the lifecycle state of a registration.
type RegistrationStatus string

const (
	StatusPending    RegistrationStatus = "pending"
	StatusConfirmed  RegistrationStatus = "confirmed"
	StatusCancelled  RegistrationStatus = "cancelled"
	StatusWaitlisted RegistrationStatus = "waitlisted"
)

// OccupiesSlot reports whether a registration in this status counts against capacity.
func (s RegistrationStatus) OccupiesSlot() bool {
	return s == StatusPending || s == StatusConfirmed
}

// ActiveStatuses are the statuses that occupy a capacity slot.
var ActiveStatuses = []RegistrationStatus{StatusPending, StatusConfirmed}

// PaymentStatus is the payment state of a registration.
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// Registration is one user's claim on one slot of one event.
// At most one exists per (UserID, EventID).
// swagger:model Registration
type Registration struct {
	ID            string             `json:"id"`
	UserID        string             `json:"user_id"`
	EventID       string             `json:"event_id"`
	Status        RegistrationStatus `json:"status"`
	PaymentStatus PaymentStatus      `json:"payment_status"`
	// PriceSnapshot is the event price copied at admission. It is never re-synced
	// with the event, so revenue reports stay stable after price changes.
	PriceSnapshot float64   `json:"price"`
	RegisteredAt  time.Time `json:"registered_at"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewRegistration returns a pending, unpaid registration. The repository fills
// ID and PriceSnapshot during admission.
func NewRegistration(userID, eventID string, now time.Time) *Registration {
	return &Registration{
		UserID:        userID,
		EventID:       eventID,
		Status:        StatusPending,
		PaymentStatus: PaymentUnpaid,
		RegisteredAt:  now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Admission decision reasons.
const (
	ReasonEventFull         = "Event is full"
	ReasonAlreadyRegistered = "Already registered"
)

// AdmissionDecision is the outcome of an availability check.
// swagger:model AdmissionDecision
type AdmissionDecision struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason,omitempty"`
}

// RegisteredUser is a registration joined with the registrant's identity.
type RegisteredUser struct {
	Registration *Registration `json:"registration"`
	User         UserSummary   `json:"user"`
}

// RegisteredEvent is a registration joined with its event.
type RegisteredEvent struct {
	Registration *Registration `json:"registration"`
	Event        *Event        `json:"event"`
}

// SortOrder orders registrations by registration time.
type SortOrder string

const (
	OrderLatest SortOrder = "latest"
	OrderOldest SortOrder = "oldest"
)

// RegisteredEventsFilter narrows a user's registered events.
// Query matches the event title case-insensitively; Category matches exactly.
type RegisteredEventsFilter struct {
	Query    string
	Category string
	Order    SortOrder
}

// RegistrationRepository is the registration ledger.
//
// Admit is the single enforcement point for both invariants. In one atomic
// storage operation it claims a slot on the event only while attending is below
// capacity, copies the event price into reg.PriceSnapshot and inserts reg.
// It returns ErrEventNotFound, ErrEventFull or ErrDuplicateRegistration and
// leaves nothing persisted on any failure.
//
// Cancel moves an active registration to cancelled and releases its slot in the
// same operation. Confirm and MarkPaid return ErrInvalidTransition when the
// registration is not in a state that allows the change.
type RegistrationRepository interface {
	Admit(ctx context.Context, reg *Registration) error
	GetByID(ctx context.Context, id string) (*Registration, error)
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*Registration, error)
	CountActiveByEvent(ctx context.Context, eventID string) (int, error)
	ListByEvent(ctx context.Context, eventID string, params PaginationParams) ([]*RegisteredUser, int, error)
	ListByUser(ctx context.Context, userID string, filter RegisteredEventsFilter, params PaginationParams) ([]*RegisteredEvent, int, error)
	ListByEventIDs(ctx context.Context, eventIDs []string) ([]*Registration, error)
	Confirm(ctx context.Context, id string, at time.Time) (*Registration, error)
	Cancel(ctx context.Context, id string, at time.Time) (*Registration, error)
	MarkPaid(ctx context.Context, id string, at time.Time) (*Registration, error)
}

// AvailabilityService answers whether a user may register for an event right now.
type AvailabilityService interface {
	CheckAvailability(ctx context.Context, eventID, userID string) (*AdmissionDecision, error)
}

// RegistrationService admits and transitions registrations.
type RegistrationService interface {
	Register(ctx context.Context, userID, eventID string) (*Registration, error)
	IsRegistered(ctx context.Context, userID, eventID string) (bool, error)
	Confirm(ctx context.Context, organizerID, registrationID string) (*Registration, error)
	Cancel(ctx context.Context, actorID, registrationID string) (*Registration, error)
	RecordPayment(ctx context.Context, userID, registrationID string) (*Registration, error)
}
