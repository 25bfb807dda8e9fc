package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"eventseating/internal/delivery/http/helpers"
	"eventseating/internal/delivery/http/middleware"
	"eventseating/internal/domain"
)

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Name      string `json:"name"`
	Date      string `json:"date" example:"2026-11-02"`
	StartTime string `json:"start_time" example:"18:00"`
	EndTime   string `json:"end_time" example:"22:00"`
	Location  string `json:"location"`
}

// Validate implements Validator. Returns error messages for required and format rules.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if c.Name == "" {
		errs = append(errs, "name is required")
	}
	if c.Date == "" {
		errs = append(errs, "date is required")
	} else if _, err := time.Parse(domain.DateLayout, c.Date); err != nil {
		errs = append(errs, "date must be YYYY-MM-DD")
	}
	if c.StartTime == "" {
		errs = append(errs, "start_time is required")
	}
	if c.EndTime == "" {
		errs = append(errs, "end_time is required")
	}
	return errs
}

// EventSuccessResponse is the success response envelope for a single event.
type EventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListEventsResponse is the data of GET /events.
type ListEventsResponse struct {
	Events     []*domain.Event        `json:"events"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListEventsSuccessResponse is the success response envelope for GET /events (200).
type ListEventsSuccessResponse struct {
	Data  ListEventsResponse `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// RSVPBreakdownSuccessResponse is the success response envelope for GET /organizer/rsvp-breakdown (200).
type RSVPBreakdownSuccessResponse struct {
	Data  []domain.EventRSVPCount `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

// PlatformStatisticsSuccessResponse is the success response envelope for GET /admin/statistics (200).
type PlatformStatisticsSuccessResponse struct {
	Data  *domain.PlatformStatistics `json:"data"`
	Error *helpers.APIError          `json:"error"`
}

// OrganizerSummarySuccessResponse is the success response envelope for GET /organizer/summary (200).
type OrganizerSummarySuccessResponse struct {
	Data  *domain.OrganizerSummary `json:"data"`
	Error *helpers.APIError        `json:"error"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateEvent godoc
// @Summary Create a new event
// @Description Create an event. The authenticated organizer becomes the owner. Times are HH:MM; an end time earlier than the start time means the event ends the next day.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} controllers.EventSuccessResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	date, _ := time.Parse(domain.DateLayout, req.Date)
	now := time.Now()
	event := domain.NewEvent(userID, req.Name, date, req.StartTime, req.EndTime, req.Location, now, now)
	if err := c.Service.CreateEvent(r.Context(), event); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// ListMyEvents godoc
// @Summary List my events
// @Description Returns the authenticated organizer's events, newest date first.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (1-based)"
// @Param page_size query int false "Page size (default 50, max 200)"
// @Success 200 {object} controllers.ListEventsSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListMyEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	page := helpers.ParsePagination(r)
	events, total, err := c.Service.ListMyEvents(r.Context(), userID, page)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListEventsResponse{
		Events:     events,
		Pagination: helpers.NewPaginationMeta(page, total),
	})
}

// ListAllEvents godoc
// @Summary List every event (admin)
// @Description Returns events of all organizers, newest date first.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (1-based)"
// @Param page_size query int false "Page size (default 50, max 200)"
// @Success 200 {object} controllers.ListEventsSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (admin role required)"
// @Router /admin/events [get]
func (c *EventController) ListAllEvents(w http.ResponseWriter, r *http.Request) {
	page := helpers.ParsePagination(r)
	events, total, err := c.Service.ListAllEvents(r.Context(), page)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListEventsResponse{
		Events:     events,
		Pagination: helpers.NewPaginationMeta(page, total),
	})
}

// PlatformStatistics godoc
// @Summary Platform statistics (admin)
// @Description Event, organizer and RSVP totals with a per-event RSVP breakdown.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.PlatformStatisticsSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (admin role required)"
// @Router /admin/statistics [get]
func (c *EventController) PlatformStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := c.Service.PlatformStatistics(r.Context())
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, stats)
}

// GetEvent godoc
// @Summary Get an event by ID
// @Description Returns one of the authenticated organizer's events.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	event, err := c.Service.GetEvent(r.Context(), r.PathValue("eventID"), userID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// UpdateEventRequest is the request body for PATCH /events/{eventID}. All fields optional; omitted fields are unchanged.
type UpdateEventRequest struct {
	Name      *string `json:"name"`
	Date      *string `json:"date" example:"2026-11-02"`
	StartTime *string `json:"start_time" example:"18:00"`
	EndTime   *string `json:"end_time" example:"22:00"`
	Location  *string `json:"location"`
}

// Validate implements Validator.
func (u UpdateEventRequest) Validate() []string {
	var errs []string
	if u.Date != nil {
		if _, err := time.Parse(domain.DateLayout, *u.Date); err != nil {
			errs = append(errs, "date must be YYYY-MM-DD")
		}
	}
	return errs
}

func (u UpdateEventRequest) patch() domain.EventPatch {
	p := domain.EventPatch{
		Name:      u.Name,
		StartTime: u.StartTime,
		EndTime:   u.EndTime,
		Location:  u.Location,
	}
	if u.Date != nil {
		d, _ := time.Parse(domain.DateLayout, *u.Date)
		p.Date = &d
	}
	return p
}

// UpdateEvent godoc
// @Summary Update event details
// @Description Updates name, date, times or location. Only the event owner can update.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body UpdateEventRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	event, err := c.Service.UpdateEvent(r.Context(), r.PathValue("eventID"), userID, req.patch())
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Deletes the event with its invitees, guests and seating. Allowed for the owner or an admin.
// @Tags events
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 204 "No Content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	admin := principal.HasRole(domain.RoleAdmin)
	if err := c.Service.DeleteEvent(r.Context(), r.PathValue("eventID"), principal.UserID, admin); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	if admin {
		c.Logger.InfoContext(r.Context(), "event deleted", "event_id", r.PathValue("eventID"), "by", principal.UserID, "admin", true)
	}
	w.WriteHeader(http.StatusNoContent)
}

// OrganizerSummary godoc
// @Summary Organizer dashboard figures
// @Description Totals across the organizer's events: events, upcoming events, guests, accepted, checked in and attendance rate (checked in / accepted).
// @Tags organizer
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.OrganizerSummarySuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /organizer/summary [get]
func (c *EventController) OrganizerSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	sum, err := c.Service.OrganizerSummary(r.Context(), userID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, sum)
}

// RSVPBreakdown godoc
// @Summary RSVPs per event
// @Description Accepted, declined and total RSVPs for each of the organizer's events, most responses first.
// @Tags organizer
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.RSVPBreakdownSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /organizer/rsvp-breakdown [get]
func (c *EventController) RSVPBreakdown(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	counts, err := c.Service.RSVPBreakdown(r.Context(), userID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, counts)
}
