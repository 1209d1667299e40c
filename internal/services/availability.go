package services

import (
	"context"
	"fmt"
	"strings"

	"eventhub/internal/domain"
)

type availabilityService struct {
	eventRepo        domain.EventRepository
	userRepo         domain.UserRepository
	registrationRepo domain.RegistrationRepository
}

// NewAvailabilityService creates the read-only admission checker.
func NewAvailabilityService(
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	registrationRepo domain.RegistrationRepository,
) domain.AvailabilityService {
	return newAvailabilityService(eventRepo, userRepo, registrationRepo)
}

func newAvailabilityService(
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	registrationRepo domain.RegistrationRepository,
) *availabilityService {
	return &availabilityService{
		eventRepo:        eventRepo,
		userRepo:         userRepo,
		registrationRepo: registrationRepo,
	}
}

func (s *availabilityService) CheckAvailability(ctx context.Context, eventID, userID string) (*domain.AdmissionDecision, error) {
	decision, _, _, err := s.check(ctx, eventID, userID)
	return decision, err
}

// check runs the admission checks in order: event exists, user exists, seats
// left, no prior registration. Both counts are advisory; Admit enforces them.
func (s *availabilityService) check(ctx context.Context, eventID, userID string) (*domain.AdmissionDecision, *domain.Event, *domain.User, error) {
	eventID = strings.TrimSpace(eventID)
	userID = strings.TrimSpace(userID)
	if eventID == "" || userID == "" {
		return nil, nil, nil, domain.InvalidInput("event id and user id are required")
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("get event: %w", err)
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("get user: %w", err)
	}

	active, err := s.registrationRepo.CountActiveByEvent(ctx, eventID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("count registrations: %w", err)
	}
	if active >= event.Capacity {
		return &domain.AdmissionDecision{Reason: domain.ReasonEventFull}, event, user, nil
	}

	_, err = s.registrationRepo.GetByEventAndUser(ctx, eventID, userID)
	switch {
	case err == nil:
		return &domain.AdmissionDecision{Reason: domain.ReasonAlreadyRegistered}, event, user, nil
	case !isNotFound(err):
		return nil, nil, nil, fmt.Errorf("get registration: %w", err)
	}

	return &domain.AdmissionDecision{Eligible: true}, event, user, nil
}
