package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"eventhub/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	contextTimeout time.Duration
	now            func() time.Time
}

func NewEventService(eventRepo domain.EventRepository, timeout time.Duration) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, organizerID string, event *domain.Event) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if organizerID == "" {
		return nil, domain.InvalidInput("event organizer is required")
	}
	if event == nil {
		return nil, domain.InvalidInput("event is required")
	}

	now := s.now().UTC()
	e := domain.NewEvent(organizerID,
		strings.TrimSpace(event.Title),
		strings.TrimSpace(event.Category),
		event.DateTime.UTC(),
		event.VenueType,
		strings.TrimSpace(event.Location),
		event.Price,
		event.Capacity,
		now,
	)
	e.BannerURL = strings.TrimSpace(event.BannerURL)
	e.Description = event.Description
	if err := e.Validate(); err != nil {
		return nil, err
	}

	if err := s.eventRepo.Create(ctx, e); err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("create event: %w", err)
	}
	return e, nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// UpdateEvent applies patch to an event owned by organizerID. Attendance is
// never written here; capacity may not drop below it.
func (s *eventService) UpdateEvent(ctx context.Context, organizerID, eventID string, patch domain.EventPatch) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.owned(ctx, organizerID, eventID)
	if err != nil {
		return nil, err
	}

	patch.Apply(event)
	event.Title = strings.TrimSpace(event.Title)
	event.Category = strings.TrimSpace(event.Category)
	event.Location = strings.TrimSpace(event.Location)
	event.DateTime = event.DateTime.UTC()
	event.UpdatedAt = s.now().UTC()
	if err := event.Validate(); err != nil {
		return nil, err
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, organizerID, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.owned(ctx, organizerID, eventID); err != nil {
		return err
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if isDomainError(err) {
			return err
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (s *eventService) owned(ctx context.Context, organizerID, eventID string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.OrganizerID != organizerID {
		return nil, domain.ErrForbidden
	}
	return event, nil
}
