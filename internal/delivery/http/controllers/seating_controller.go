package controllers

import (
	"log/slog"
	"net/http"

	"eventseating/internal/delivery/http/helpers"
	"eventseating/internal/domain"
)

// SeatingLayoutRequest is the body of POST and PUT /events/{eventID}/seating.
// Exactly one pair must be set: table_count with seats_per_table, or number_of_rows with seats_per_row.
type SeatingLayoutRequest struct {
	TableCount    *int `json:"table_count"`
	SeatsPerTable *int `json:"seats_per_table"`
	NumberOfRows  *int `json:"number_of_rows"`
	SeatsPerRow   *int `json:"seats_per_row"`
}

// AssignSeatRequest is the body of PUT /events/{eventID}/seating/guests/{guestID}.
// An empty seat_number sends the guest back to the unassigned pool. With evict set, a
// guest already on the seat is unseated in the same step; otherwise an occupied seat is a conflict.
type AssignSeatRequest struct {
	SeatNumber string `json:"seat_number" example:"Table 1 - Seat 2"`
	Evict      bool   `json:"evict"`
}

// SwapSeatsRequest is the body of POST /events/{eventID}/seating/swap.
type SwapSeatsRequest struct {
	GuestA string `json:"guest_a"`
	GuestB string `json:"guest_b"`
}

// Validate implements Validator.
func (s SwapSeatsRequest) Validate() []string {
	var errs []string
	if s.GuestA == "" || s.GuestB == "" {
		errs = append(errs, "guest_a and guest_b are required")
	} else if s.GuestA == s.GuestB {
		errs = append(errs, "guest_a and guest_b must differ")
	}
	return errs
}

// SeatingConfigurationSuccessResponse is the success response envelope for POST /events/{eventID}/seating (201).
type SeatingConfigurationSuccessResponse struct {
	Data  *domain.SeatingConfiguration `json:"data"`
	Error *helpers.APIError            `json:"error"`
}

// ConfigurationUpdateSuccessResponse is the success response envelope for PUT /events/{eventID}/seating (200).
type ConfigurationUpdateSuccessResponse struct {
	Data  *domain.ConfigurationUpdate `json:"data"`
	Error *helpers.APIError           `json:"error"`
}

// SeatingViewSuccessResponse is the success response envelope for GET /events/{eventID}/seating (200).
type SeatingViewSuccessResponse struct {
	Data  *domain.SeatingView `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// AutoAssignSuccessResponse is the success response envelope for POST /events/{eventID}/seating/auto-assign (200).
type AutoAssignSuccessResponse struct {
	Data  *domain.AutoAssignResult `json:"data"`
	Error *helpers.APIError        `json:"error"`
}

// SeatMoveSuccessResponse is the success response envelope for PUT /events/{eventID}/seating/guests/{guestID} (200).
type SeatMoveSuccessResponse struct {
	Data  *domain.SeatMove  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type SeatingController struct {
	Logger  *slog.Logger
	Service domain.SeatingService
}

func NewSeatingController(logger *slog.Logger, svc domain.SeatingService) *SeatingController {
	return &SeatingController{
		Logger:  logger,
		Service: svc,
	}
}

// decodeShape reads a SeatingLayoutRequest and turns it into a shape, writing 400 on failure.
func decodeShape(w http.ResponseWriter, r *http.Request) (domain.Shape, bool) {
	var req SeatingLayoutRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return nil, false
	}
	shape, err := domain.NewShape(req.TableCount, req.SeatsPerTable, req.NumberOfRows, req.SeatsPerRow)
	if err != nil {
		helpers.WriteDomainError(w, err)
		return nil, false
	}
	return shape, true
}

// CreateConfiguration godoc
// @Summary Create the seating layout
// @Description Creates the event's single seating layout. Fails with conflict when one already exists.
// @Tags seating
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body SeatingLayoutRequest true "Layout"
// @Success 201 {object} controllers.SeatingConfigurationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /events/{eventID}/seating [post]
func (c *SeatingController) CreateConfiguration(w http.ResponseWriter, r *http.Request) {
	shape, ok := decodeShape(w, r)
	if !ok {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	cfg, err := c.Service.CreateConfiguration(r.Context(), r.PathValue("eventID"), userID, shape)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, cfg)
}

// UpdateConfiguration godoc
// @Summary Replace the seating layout
// @Description Replaces the layout. Assignments to seats that no longer exist are cleared in the same transaction; switching between tables and rows clears them all.
// @Tags seating
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body SeatingLayoutRequest true "Layout"
// @Success 200 {object} controllers.ConfigurationUpdateSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/seating [put]
func (c *SeatingController) UpdateConfiguration(w http.ResponseWriter, r *http.Request) {
	shape, ok := decodeShape(w, r)
	if !ok {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	update, err := c.Service.UpdateConfiguration(r.Context(), r.PathValue("eventID"), userID, shape)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, update)
}

// GetSeatingView godoc
// @Summary Seating overview
// @Description The layout, every seat label in order and the event's guests with their seats.
// @Tags seating
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.SeatingViewSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/seating [get]
func (c *SeatingController) GetSeatingView(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	view, err := c.Service.GetSeatingView(r.Context(), r.PathValue("eventID"), userID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, view)
}

// AutoAssign godoc
// @Summary Auto-assign seats
// @Description Places unseated accepted guests on free seats in layout order. Guests already seated keep their seats. Running it again with nothing new to place changes nothing.
// @Tags seating
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.AutoAssignSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (retry with fresh data)"
// @Router /events/{eventID}/seating/auto-assign [post]
func (c *SeatingController) AutoAssign(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	result, err := c.Service.AutoAssign(r.Context(), r.PathValue("eventID"), userID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// AssignSeat godoc
// @Summary Assign or move a guest
// @Description Puts the guest on seat_number. An empty seat_number unassigns. With evict, whoever holds the seat is unseated in the same transaction.
// @Tags seating
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param guestID path string true "Guest ID (UUID)"
// @Param body body AssignSeatRequest true "Seat"
// @Success 200 {object} controllers.SeatMoveSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (unknown seat)"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (seat occupied)"
// @Router /events/{eventID}/seating/guests/{guestID} [put]
func (c *SeatingController) AssignSeat(w http.ResponseWriter, r *http.Request) {
	var req AssignSeatRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	eventID, guestID := r.PathValue("eventID"), r.PathValue("guestID")
	if req.Evict && req.SeatNumber != "" {
		move, err := c.Service.MoveGuest(r.Context(), eventID, userID, guestID, req.SeatNumber)
		if err != nil {
			writeServiceError(c.Logger, w, r, err)
			return
		}
		helpers.WriteJSONSuccess(w, http.StatusOK, move)
		return
	}
	if err := c.Service.AssignSeat(r.Context(), eventID, userID, guestID, req.SeatNumber); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	move := &domain.SeatMove{GuestID: guestID}
	if req.SeatNumber != "" {
		move.SeatLabel = &req.SeatNumber
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, move)
}

// VacateSeat godoc
// @Summary Unseat a guest
// @Tags seating
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param guestID path string true "Guest ID (UUID)"
// @Success 204 "No Content"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/seating/guests/{guestID} [delete]
func (c *SeatingController) VacateSeat(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := c.Service.VacateSeat(r.Context(), r.PathValue("eventID"), userID, r.PathValue("guestID")); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SwapSeats godoc
// @Summary Swap two guests' seats
// @Description Exchanges the seats of two guests in one transaction. Either may be unseated.
// @Tags seating
// @Accept json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body SwapSeatsRequest true "Guests"
// @Success 204 "No Content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/seating/swap [post]
func (c *SeatingController) SwapSeats(w http.ResponseWriter, r *http.Request) {
	var req SwapSeatsRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := c.Service.SwapSeats(r.Context(), r.PathValue("eventID"), userID, req.GuestA, req.GuestB); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
