package domain

import "context"

// EventSummary aggregates an organizer's events and their registrations.
// swagger:model EventSummary
type EventSummary struct {
	TotalEvents        int     `json:"total_events"`
	UpcomingEvents     int     `json:"upcoming_events"`
	PastEvents         int     `json:"past_events"`
	TotalRegistrations int     `json:"total_registrations"`
	TotalRevenue       float64 `json:"total_revenue"`
}

// ReportingService derives dashboards from the registration ledger.
type ReportingService interface {
	EventSummary(ctx context.Context, organizerID string) (*EventSummary, error)
	RegisteredUsersForEvent(ctx context.Context, organizerID, eventID string, params PaginationParams) ([]*RegisteredUser, int, error)
	RegisteredEventsForUser(ctx context.Context, userID string, filter RegisteredEventsFilter, params PaginationParams) ([]*RegisteredEvent, int, error)
}
