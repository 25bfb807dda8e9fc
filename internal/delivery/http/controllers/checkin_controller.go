package controllers

import (
	"log/slog"
	"net/http"

	"eventseating/internal/delivery/http/helpers"
	"eventseating/internal/domain"
)

// CheckInSuccessResponse is the success response envelope for POST /check-in (200).
type CheckInSuccessResponse struct {
	Data  *domain.CheckInResult `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

type CheckInController struct {
	Logger  *slog.Logger
	Service domain.CheckInService
}

func NewCheckInController(logger *slog.Logger, svc domain.CheckInService) *CheckInController {
	return &CheckInController{
		Logger:  logger,
		Service: svc,
	}
}

// CheckIn godoc
// @Summary Check a guest in
// @Description Validates a scanned access code for an event the organizer owns and marks the guest as checked in. Scanning the same code again succeeds with already_checked_in set. Rejected once the event has ended.
// @Tags check-in
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body AccessCodeRequest true "Scanned access code"
// @Success 200 {object} controllers.CheckInSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner or event ended)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /check-in [post]
func (c *CheckInController) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req AccessCodeRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	result, err := c.Service.CheckIn(r.Context(), req.AccessCode, userID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}
