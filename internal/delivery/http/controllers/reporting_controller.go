package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/domain"
)

// SummarySuccessResponse is the success response envelope for GET /organizer/summary (200).
type SummarySuccessResponse struct {
	Data  *domain.EventSummary `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// ListRegisteredUsersResponse is the data payload for GET /events/{eventID}/registrations (200).
type ListRegisteredUsersResponse struct {
	Items      []*domain.RegisteredUser `json:"items"`
	Pagination helpers.PaginationMeta   `json:"pagination"`
}

// ListRegisteredUsersSuccessResponse is the success response envelope for GET /events/{eventID}/registrations (200).
type ListRegisteredUsersSuccessResponse struct {
	Data  ListRegisteredUsersResponse `json:"data"`
	Error *helpers.APIError           `json:"error"`
}

// ListRegisteredEventsResponse is the data payload for GET /attendee/registrations (200).
type ListRegisteredEventsResponse struct {
	Items      []*domain.RegisteredEvent `json:"items"`
	Pagination helpers.PaginationMeta    `json:"pagination"`
}

// ListRegisteredEventsSuccessResponse is the success response envelope for GET /attendee/registrations (200).
type ListRegisteredEventsSuccessResponse struct {
	Data  ListRegisteredEventsResponse `json:"data"`
	Error *helpers.APIError            `json:"error"`
}

// ReportingController serves organizer dashboards and attendee registration lists.
type ReportingController struct {
	Logger  *slog.Logger
	Service domain.ReportingService
}

func NewReportingController(logger *slog.Logger, svc domain.ReportingService) *ReportingController {
	return &ReportingController{
		Logger:  logger,
		Service: svc,
	}
}

// Summary godoc
// @Summary Organizer summary
// @Description Event counts (upcoming at or after now, past before now), registration count and revenue from the price captured on each registration.
// @Tags organizer
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.SummarySuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /organizer/summary [get]
func (c *ReportingController) Summary(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	summary, err := c.Service.EventSummary(r.Context(), userID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, summary)
}

// RegisteredUsers godoc
// @Summary List registrants of an event
// @Description Paginated registrations of the event with each registrant's name and email, newest first. Only the organizer can list.
// @Tags organizer
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 10, max 100)"
// @Success 200 {object} controllers.ListRegisteredUsersSuccessResponse "data contains items and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/registrations [get]
func (c *ReportingController) RegisteredUsers(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	params := helpers.ParsePagination(r)
	list, total, err := c.Service.RegisteredUsersForEvent(r.Context(), userID, eventID, params)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	if list == nil {
		list = []*domain.RegisteredUser{}
	}
	meta := helpers.NewPaginationMeta(params.Page, params.PageSize, total)
	helpers.WriteJSONSuccess(w, http.StatusOK, ListRegisteredUsersResponse{Items: list, Pagination: meta})
}

// RegisteredEvents godoc
// @Summary List my registered events
// @Description Paginated registrations of the authenticated user joined with their events.
// @Tags attendee
// @Produce json
// @Security BearerAuth
// @Param q query string false "Case-insensitive substring of the event title"
// @Param category query string false "Exact event category"
// @Param time query string false "latest (default) or oldest, by registration time"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 10, max 100)"
// @Success 200 {object} controllers.ListRegisteredEventsSuccessResponse "data contains items and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /attendee/registrations [get]
func (c *ReportingController) RegisteredEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	filter := domain.RegisteredEventsFilter{
		Query:    strings.TrimSpace(q.Get("q")),
		Category: strings.TrimSpace(q.Get("category")),
		Order:    domain.SortOrder(strings.ToLower(strings.TrimSpace(q.Get("time")))),
	}
	params := helpers.ParsePagination(r)
	list, total, err := c.Service.RegisteredEventsForUser(r.Context(), userID, filter, params)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	if list == nil {
		list = []*domain.RegisteredEvent{}
	}
	meta := helpers.NewPaginationMeta(params.Page, params.PageSize, total)
	helpers.WriteJSONSuccess(w, http.StatusOK, ListRegisteredEventsResponse{Items: list, Pagination: meta})
}
