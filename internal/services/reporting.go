package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"eventhub/internal/domain"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type reportingService struct {
	eventRepo        domain.EventRepository
	registrationRepo domain.RegistrationRepository
	now              func() time.Time
}

// NewReportingService creates the organizer and attendee dashboards service.
func NewReportingService(eventRepo domain.EventRepository, registrationRepo domain.RegistrationRepository) domain.ReportingService {
	return &reportingService{
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		now:              time.Now,
	}
}

// EventSummary counts the organizer's events by time and every registration
// row against them. Revenue sums the price captured at registration time, so a
// later price change does not alter it.
func (s *reportingService) EventSummary(ctx context.Context, organizerID string) (*domain.EventSummary, error) {
	events, err := s.eventRepo.ListByOrganizer(ctx, organizerID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	summary := &domain.EventSummary{TotalEvents: len(events)}
	now := s.now()
	ids := make([]string, 0, len(events))
	for _, e := range events {
		if e.IsUpcoming(now) {
			summary.UpcomingEvents++
		} else {
			summary.PastEvents++
		}
		ids = append(ids, e.ID)
	}
	if len(ids) == 0 {
		return summary, nil
	}

	regs, err := s.registrationRepo.ListByEventIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	var revenue float64
	for _, r := range regs {
		revenue += r.PriceSnapshot
	}
	summary.TotalRegistrations = len(regs)
	summary.TotalRevenue = math.Round(revenue*100) / 100
	return summary, nil
}

// RegisteredUsersForEvent lists the registrants of an event, newest first. Only
// the event's organizer may see them.
func (s *reportingService) RegisteredUsersForEvent(ctx context.Context, organizerID, eventID string, params domain.PaginationParams) ([]*domain.RegisteredUser, int, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if isNotFound(err) {
			return nil, 0, domain.ErrEventNotFound
		}
		return nil, 0, fmt.Errorf("get event: %w", err)
	}
	if event.OrganizerID != organizerID {
		return nil, 0, domain.ErrForbidden
	}
	users, total, err := s.registrationRepo.ListByEvent(ctx, eventID, normalizePagination(params))
	if err != nil {
		return nil, 0, fmt.Errorf("list registered users: %w", err)
	}
	return users, total, nil
}

func (s *reportingService) RegisteredEventsForUser(ctx context.Context, userID string, filter domain.RegisteredEventsFilter, params domain.PaginationParams) ([]*domain.RegisteredEvent, int, error) {
	switch filter.Order {
	case "":
		filter.Order = domain.OrderLatest
	case domain.OrderLatest, domain.OrderOldest:
	default:
		return nil, 0, domain.InvalidInput(`time must be "latest" or "oldest"`)
	}
	filter.Query = strings.TrimSpace(filter.Query)
	filter.Category = strings.TrimSpace(filter.Category)

	events, total, err := s.registrationRepo.ListByUser(ctx, userID, filter, normalizePagination(params))
	if err != nil {
		return nil, 0, fmt.Errorf("list registered events: %w", err)
	}
	return events, total, nil
}

func normalizePagination(p domain.PaginationParams) domain.PaginationParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}
