package services

import (
	"errors"

	"eventhub/internal/domain"
)

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

// isDomainError reports whether err carries one of the sentinel errors callers
// are expected to branch on.
func isDomainError(err error) bool {
	for _, target := range []error{
		domain.ErrNotFound,
		domain.ErrEventFull,
		domain.ErrDuplicateRegistration,
		domain.ErrInvalidInput,
		domain.ErrForbidden,
		domain.ErrInvalidTransition,
		domain.ErrEventHasActiveRegistrations,
		domain.ErrDuplicateEmail,
		domain.ErrInvalidCredentials,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
