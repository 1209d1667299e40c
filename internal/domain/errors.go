package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by services and storage adapters. Adapters translate
// driver errors into these; anything else is an unexpected failure.
var (
	ErrNotFound                    = errors.New("not found")
	ErrEventNotFound               = fmt.Errorf("event %w", ErrNotFound)
	ErrUserNotFound                = fmt.Errorf("user %w", ErrNotFound)
	ErrRegistrationNotFound        = fmt.Errorf("registration %w", ErrNotFound)
	ErrEventFull                   = errors.New("event is full")
	ErrDuplicateRegistration       = errors.New("already registered")
	ErrInvalidInput                = errors.New("invalid input")
	ErrForbidden                   = errors.New("forbidden")
	ErrInvalidTransition           = errors.New("invalid registration status transition")
	ErrEventHasActiveRegistrations = errors.New("event has active registrations")
	ErrCapacityBelowAttendance     = fmt.Errorf("capacity below current attendance: %w", ErrInvalidInput)
	ErrDuplicateEmail              = errors.New("email already in use")
	ErrInvalidCredentials          = errors.New("invalid email or password")
)

// InvalidInput wraps ErrInvalidInput with a caller-facing message.
func InvalidInput(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}
