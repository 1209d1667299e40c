package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventhub/internal/domain"
)

type registrationService struct {
	eventRepo        domain.EventRepository
	registrationRepo domain.RegistrationRepository
	availability     *availabilityService
	notifier         domain.RegistrationNotifier
	logger           *slog.Logger
	now              func() time.Time
}

// NewRegistrationService creates the RegistrationService. notifier may be nil.
func NewRegistrationService(
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	registrationRepo domain.RegistrationRepository,
	notifier domain.RegistrationNotifier,
	logger *slog.Logger,
) domain.RegistrationService {
	return &registrationService{
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		availability:     newAvailabilityService(eventRepo, userRepo, registrationRepo),
		notifier:         notifier,
		logger:           logger,
		now:              time.Now,
	}
}

// Register checks availability as a fast path and then admits the user. The
// storage layer re-checks capacity and uniqueness atomically, so a request that
// loses a race after passing the fast path still gets EventFull or
// DuplicateRegistration and nothing is persisted.
func (s *registrationService) Register(ctx context.Context, userID, eventID string) (*domain.Registration, error) {
	decision, event, user, err := s.availability.check(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	if !decision.Eligible {
		s.logger.DebugContext(ctx, "registration rejected", "event_id", event.ID, "user_id", user.ID, "reason", decision.Reason)
		if decision.Reason == domain.ReasonEventFull {
			return nil, domain.ErrEventFull
		}
		return nil, domain.ErrDuplicateRegistration
	}

	reg := domain.NewRegistration(user.ID, event.ID, s.now().UTC())
	if err := s.registrationRepo.Admit(ctx, reg); err != nil {
		if isDomainError(err) {
			s.logger.DebugContext(ctx, "registration rejected at admission", "event_id", event.ID, "user_id", user.ID, "err", err)
			return nil, err
		}
		return nil, fmt.Errorf("admit registration: %w", err)
	}
	s.logger.InfoContext(ctx, "registration admitted",
		"registration_id", reg.ID, "event_id", reg.EventID, "user_id", reg.UserID, "price", reg.PriceSnapshot)

	s.notify(ctx, reg, event, user)
	return reg, nil
}

func (s *registrationService) notify(ctx context.Context, reg *domain.Registration, event *domain.Event, user *domain.User) {
	if s.notifier == nil {
		return
	}
	data := &domain.RegistrationReceivedEmailData{
		Email:          user.Email,
		Name:           user.Name,
		EventTitle:     event.Title,
		EventDateTime:  event.DateTime,
		VenueType:      event.VenueType,
		Location:       event.Location,
		Price:          reg.PriceSnapshot,
		RegistrationID: reg.ID,
	}
	if err := s.notifier.NotifyRegistration(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "registration notification failed", "registration_id", reg.ID, "err", err)
	}
}

func (s *registrationService) IsRegistered(ctx context.Context, userID, eventID string) (bool, error) {
	userID = strings.TrimSpace(userID)
	eventID = strings.TrimSpace(eventID)
	if userID == "" || eventID == "" {
		return false, domain.InvalidInput("event id and user id are required")
	}
	_, err := s.registrationRepo.GetByEventAndUser(ctx, eventID, userID)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("get registration: %w", err)
	}
	return true, nil
}

// Confirm is the organizer's approval of a pending registration.
func (s *registrationService) Confirm(ctx context.Context, organizerID, registrationID string) (*domain.Registration, error) {
	reg, event, err := s.load(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if event.OrganizerID != organizerID {
		return nil, domain.ErrForbidden
	}
	confirmed, err := s.registrationRepo.Confirm(ctx, reg.ID, s.now().UTC())
	if err != nil {
		return nil, s.wrap("confirm registration", err)
	}
	s.logger.InfoContext(ctx, "registration confirmed", "registration_id", reg.ID, "event_id", reg.EventID)
	return confirmed, nil
}

// Cancel may be called by the registrant or the event's organizer. The slot is
// released in the same storage operation.
func (s *registrationService) Cancel(ctx context.Context, actorID, registrationID string) (*domain.Registration, error) {
	reg, event, err := s.load(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if reg.UserID != actorID && event.OrganizerID != actorID {
		return nil, domain.ErrForbidden
	}
	cancelled, err := s.registrationRepo.Cancel(ctx, reg.ID, s.now().UTC())
	if err != nil {
		return nil, s.wrap("cancel registration", err)
	}
	s.logger.InfoContext(ctx, "registration cancelled", "registration_id", reg.ID, "event_id", reg.EventID, "actor_id", actorID)
	return cancelled, nil
}

// RecordPayment marks the registrant's registration as paid once the payment
// provider has reported completion. It does not confirm the registration.
func (s *registrationService) RecordPayment(ctx context.Context, userID, registrationID string) (*domain.Registration, error) {
	reg, _, err := s.load(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if reg.UserID != userID {
		return nil, domain.ErrForbidden
	}
	paid, err := s.registrationRepo.MarkPaid(ctx, reg.ID, s.now().UTC())
	if err != nil {
		return nil, s.wrap("record payment", err)
	}
	s.logger.InfoContext(ctx, "registration paid", "registration_id", reg.ID, "event_id", reg.EventID)
	return paid, nil
}

func (s *registrationService) load(ctx context.Context, registrationID string) (*domain.Registration, *domain.Event, error) {
	registrationID = strings.TrimSpace(registrationID)
	if registrationID == "" {
		return nil, nil, domain.InvalidInput("registration id is required")
	}
	reg, err := s.registrationRepo.GetByID(ctx, registrationID)
	if err != nil {
		return nil, nil, s.wrap("get registration", err)
	}
	event, err := s.eventRepo.GetByID(ctx, reg.EventID)
	if err != nil {
		return nil, nil, s.wrap("get event", err)
	}
	return reg, event, nil
}

func (s *registrationService) wrap(op string, err error) error {
	if isDomainError(err) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
