package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"eventseating/internal/delivery/http/helpers"
	"eventseating/internal/domain"
)

// SubmitRSVPRequest is the request body for POST /rsvp.
type SubmitRSVPRequest struct {
	EventID    string `json:"event_id"`
	Email      string `json:"email_address"`
	RSVPStatus string `json:"rsvp_status" enums:"accepted,declined"`
}

// Validate implements Validator.
func (s SubmitRSVPRequest) Validate() []string {
	var errs []string
	if s.EventID == "" {
		errs = append(errs, "event_id is required")
	}
	if strings.TrimSpace(s.Email) == "" {
		errs = append(errs, "email_address is required")
	}
	if !domain.RSVPStatus(s.RSVPStatus).Valid() {
		errs = append(errs, "rsvp_status must be accepted or declined")
	}
	return errs
}

// AccessCodeRequest is the request body for endpoints keyed by a credential.
type AccessCodeRequest struct {
	AccessCode string `json:"access_code"`
}

// Validate implements Validator.
func (a AccessCodeRequest) Validate() []string {
	if strings.TrimSpace(a.AccessCode) == "" {
		return []string{"access_code is required"}
	}
	return nil
}

// GuestSuccessResponse is the success response envelope for a single guest.
type GuestSuccessResponse struct {
	Data  *domain.Guest     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// InvitationViewSuccessResponse is the success response envelope for GET /guests/{code} (200).
type InvitationViewSuccessResponse struct {
	Data  *domain.InvitationView `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

// ListGuestsResponse is the data of GET /events/{eventID}/guests.
type ListGuestsResponse struct {
	Guests     []*domain.Guest        `json:"guests"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListGuestsSuccessResponse is the success response envelope for GET /events/{eventID}/guests (200).
type ListGuestsSuccessResponse struct {
	Data  ListGuestsResponse `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

type GuestController struct {
	Logger  *slog.Logger
	Service domain.GuestService
}

func NewGuestController(logger *slog.Logger, svc domain.GuestService) *GuestController {
	return &GuestController{
		Logger:  logger,
		Service: svc,
	}
}

// SubmitRSVP godoc
// @Summary Respond to an invitation
// @Description Records an invitee's accept or decline and issues their access credential. A confirmation email with the QR code is sent in the background.
// @Tags rsvp
// @Accept json
// @Produce json
// @Param body body SubmitRSVPRequest true "RSVP"
// @Success 201 {object} controllers.GuestSuccessResponse "data contains the guest with access_code and qr_code"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (event or invitee)"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already responded)"
// @Failure 502 {object} helpers.APIResponse "error.code: dependency_failure"
// @Router /rsvp [post]
func (c *GuestController) SubmitRSVP(w http.ResponseWriter, r *http.Request) {
	var req SubmitRSVPRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	guest, err := c.Service.SubmitRSVP(r.Context(), req.EventID, req.Email, domain.RSVPStatus(req.RSVPStatus))
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, guest)
}

// LookupByCode godoc
// @Summary Look up an invitation by access code
// @Tags rsvp
// @Produce json
// @Param code path string true "Access code"
// @Success 200 {object} controllers.InvitationViewSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /guests/{code} [get]
func (c *GuestController) LookupByCode(w http.ResponseWriter, r *http.Request) {
	view, err := c.Service.LookupByCode(r.Context(), r.PathValue("code"))
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, view)
}

// CancelRSVP godoc
// @Summary Cancel an RSVP
// @Description Cancels the RSVP held by the access code and releases its seat.
// @Tags rsvp
// @Accept json
// @Produce json
// @Param body body AccessCodeRequest true "Access code"
// @Success 200 {object} controllers.GuestSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already cancelled)"
// @Router /guests/cancel [post]
func (c *GuestController) CancelRSVP(w http.ResponseWriter, r *http.Request) {
	var req AccessCodeRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	guest, err := c.Service.CancelRSVP(r.Context(), req.AccessCode)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, guest)
}

// ListGuests godoc
// @Summary List an event's guests
// @Description Every RSVP for the event with seat and check-in state.
// @Tags guests
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param page query int false "Page (1-based)"
// @Param page_size query int false "Page size (default 50, max 200)"
// @Success 200 {object} controllers.ListGuestsSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/guests [get]
func (c *GuestController) ListGuests(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	page := helpers.ParsePagination(r)
	guests, total, err := c.Service.ListGuests(r.Context(), r.PathValue("eventID"), userID, page)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListGuestsResponse{
		Guests:     guests,
		Pagination: helpers.NewPaginationMeta(page, total),
	})
}
