package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
)

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Title       string           `json:"title"`
	Category    string           `json:"category"`
	DateTime    time.Time        `json:"date_time"`
	VenueType   domain.VenueType `json:"venue_type"`
	Location    string           `json:"location"`
	Price       float64          `json:"price"`
	Capacity    int              `json:"capacity"`
	BannerURL   string           `json:"banner_url"`
	Description string           `json:"description"`
}

// Validate implements Validator.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, "title is required")
	}
	if strings.TrimSpace(c.Category) == "" {
		errs = append(errs, "category is required")
	}
	if c.DateTime.IsZero() {
		errs = append(errs, "date_time is required")
	}
	if !c.VenueType.Valid() {
		errs = append(errs, `venue_type must be "online" or "in-person"`)
	}
	if c.Price < 0 {
		errs = append(errs, "price must be >= 0")
	}
	if c.Capacity < 0 {
		errs = append(errs, "capacity must be >= 0")
	}
	return errs
}

func (c CreateEventRequest) event() *domain.Event {
	return &domain.Event{
		Title:       c.Title,
		Category:    c.Category,
		DateTime:    c.DateTime,
		VenueType:   c.VenueType,
		Location:    c.Location,
		Price:       c.Price,
		Capacity:    c.Capacity,
		BannerURL:   c.BannerURL,
		Description: c.Description,
	}
}

// UpdateEventRequest is the request body for PATCH /events/{eventID}. All fields are optional.
type UpdateEventRequest struct {
	Title       *string           `json:"title"`
	Category    *string           `json:"category"`
	DateTime    *time.Time        `json:"date_time"`
	VenueType   *domain.VenueType `json:"venue_type"`
	Location    *string           `json:"location"`
	Price       *float64          `json:"price"`
	Capacity    *int              `json:"capacity"`
	BannerURL   *string           `json:"banner_url"`
	Description *string           `json:"description"`
}

// Validate implements Validator.
func (u UpdateEventRequest) Validate() []string {
	var errs []string
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		errs = append(errs, "title cannot be empty")
	}
	if u.VenueType != nil && !u.VenueType.Valid() {
		errs = append(errs, `venue_type must be "online" or "in-person"`)
	}
	if u.Price != nil && *u.Price < 0 {
		errs = append(errs, "price must be >= 0")
	}
	if u.Capacity != nil && *u.Capacity < 0 {
		errs = append(errs, "capacity must be >= 0")
	}
	return errs
}

func (u UpdateEventRequest) patch() domain.EventPatch {
	return domain.EventPatch{
		Title:       u.Title,
		Category:    u.Category,
		DateTime:    u.DateTime,
		VenueType:   u.VenueType,
		Location:    u.Location,
		Price:       u.Price,
		Capacity:    u.Capacity,
		BannerURL:   u.BannerURL,
		Description: u.Description,
	}
}

// EventSuccessResponse is the success response envelope for single-event endpoints.
type EventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// DeleteEventResponse is the data payload for DELETE /events/{eventID} (200).
type DeleteEventResponse struct {
	Status string `json:"status"`
}

// DeleteEventSuccessResponse is the success response envelope for DELETE /events/{eventID} (200).
type DeleteEventSuccessResponse struct {
	Data  DeleteEventResponse `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// AvailabilityResponse is the data payload for GET /events/{eventID}/availability.
type AvailabilityResponse struct {
	EventID   string `json:"event_id"`
	Capacity  int    `json:"capacity"`
	Attending int    `json:"attending"`
	SeatsLeft int    `json:"seats_left"`
	// Eligible and Reason are only set for an authenticated caller.
	Eligible *bool  `json:"eligible,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// AvailabilitySuccessResponse is the success response envelope for GET /events/{eventID}/availability (200).
type AvailabilitySuccessResponse struct {
	Data  AvailabilityResponse `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// EventController handles event management and availability.
type EventController struct {
	Logger       *slog.Logger
	Service      domain.EventService
	Availability domain.AvailabilityService
}

func NewEventController(logger *slog.Logger, svc domain.EventService, availability domain.AvailabilityService) *EventController {
	return &EventController{
		Logger:       logger,
		Service:      svc,
		Availability: availability,
	}
}

// CreateEvent godoc
// @Summary Create an event
// @Description Creates an event owned by the authenticated user. Attendance starts at zero.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateEventRequest true "Event data"
// @Success 201 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.CreateEvent(r.Context(), userID, req.event())
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// GetEvent godoc
// @Summary Get an event
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}
	event, err := c.Service.GetEvent(r.Context(), eventID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Partially update an event. Only the organizer can update. Capacity cannot drop below current attendance.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body UpdateEventRequest true "Fields to update"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.UpdateEvent(r.Context(), userID, eventID, req.patch())
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Delete an event and its cancelled registrations. Only the organizer can delete, and only while no registration holds a seat.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.DeleteEventSuccessResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (active registrations)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := c.Service.DeleteEvent(r.Context(), userID, eventID); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteEventResponse{Status: "deleted"})
}

// GetAvailability godoc
// @Summary Event availability
// @Description Seats left for an event. With a bearer token the response also says whether the caller may register and, if not, why. The answer is advisory; registration re-checks atomically.
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.AvailabilitySuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/availability [get]
func (c *EventController) GetAvailability(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventID")
	if !ok {
		return
	}
	event, err := c.Service.GetEvent(r.Context(), eventID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	resp := AvailabilityResponse{
		EventID:   event.ID,
		Capacity:  event.Capacity,
		Attending: event.Attending,
		SeatsLeft: event.SeatsLeft(),
	}
	if userID, ok := middleware.UserIDFromContext(r.Context()); ok {
		decision, err := c.Availability.CheckAvailability(r.Context(), eventID, userID)
		if err != nil {
			writeServiceError(c.Logger, w, r, err)
			return
		}
		resp.Eligible = &decision.Eligible
		resp.Reason = decision.Reason
	}
	w.Header().Set("Cache-Control", "no-store")
	helpers.WriteJSONSuccess(w, http.StatusOK, resp)
}
