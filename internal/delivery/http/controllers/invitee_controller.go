package controllers

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"sort"

	"eventseating/internal/adapters/csvimport"
	"eventseating/internal/delivery/http/helpers"
	"eventseating/internal/domain"
)

// MaxUploadBytes caps an invitee CSV upload.
const MaxUploadBytes = 5 << 20

// AddInviteeRequest is the request body for POST /events/{eventID}/invitees.
type AddInviteeRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email_address"`
	Category  string `json:"category" enums:"VIP,Regular"`
}

// Validate implements Validator. Field format rules are enforced by the service.
func (a AddInviteeRequest) Validate() []string {
	var errs []string
	if a.Email == "" {
		errs = append(errs, "email_address is required")
	}
	return errs
}

// InviteeSuccessResponse is the success response envelope for POST /events/{eventID}/invitees (201).
type InviteeSuccessResponse struct {
	Data  *domain.Invitee   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListInviteesResponse is the data of GET /events/{eventID}/invitees.
type ListInviteesResponse struct {
	Invitees   []*domain.Invitee      `json:"invitees"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListInviteesSuccessResponse is the success response envelope for GET /events/{eventID}/invitees (200).
type ListInviteesSuccessResponse struct {
	Data  ListInviteesResponse `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// ImportReportSuccessResponse is the success response envelope for POST /events/{eventID}/invitees/import (200).
type ImportReportSuccessResponse struct {
	Data  *domain.ImportReport `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

type InviteeController struct {
	Logger  *slog.Logger
	Service domain.InviteeService
}

func NewInviteeController(logger *slog.Logger, svc domain.InviteeService) *InviteeController {
	return &InviteeController{
		Logger:  logger,
		Service: svc,
	}
}

// AddInvitee godoc
// @Summary Add an invitee
// @Description Adds one person to the event's invitee list and emails them an invitation.
// @Tags invitees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body AddInviteeRequest true "Invitee"
// @Success 201 {object} controllers.InviteeSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already invited)"
// @Router /events/{eventID}/invitees [post]
func (c *InviteeController) AddInvitee(w http.ResponseWriter, r *http.Request) {
	var req AddInviteeRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	inv, err := c.Service.AddInvitee(r.Context(), r.PathValue("eventID"), userID, domain.InviteeCandidate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Category:  req.Category,
	})
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, inv)
}

// ImportInvitees godoc
// @Summary Bulk import invitees from CSV
// @Description Accepts a CSV either as multipart field "file" or as a text/csv body. The header row names the columns first_name, last_name, email_address and category. Well-formed rows are inserted; the rest are reported with their line number.
// @Tags invitees
// @Accept mpfd
// @Accept plain
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param file formData file false "CSV file"
// @Success 200 {object} controllers.ImportReportSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/invitees/import [post]
func (c *InviteeController) ImportInvitees(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	body, closeBody, err := uploadReader(r)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	defer closeBody()

	upload, err := csvimport.Read(body)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			helpers.WriteJSONError(w, http.StatusRequestEntityTooLarge, helpers.ErrCodeBadRequest, "upload is too large")
			return
		}
		writeServiceError(c.Logger, w, r, err)
		return
	}
	report, err := c.Service.ImportInvitees(r.Context(), r.PathValue("eventID"), userID, upload.Candidates)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	report.Failed = append(report.Failed, upload.Failures...)
	sort.SliceStable(report.Failed, func(i, j int) bool { return report.Failed[i].Row < report.Failed[j].Row })
	helpers.WriteJSONSuccess(w, http.StatusOK, report)
}

// uploadReader returns the CSV stream of r: the "file" part of a multipart form, or the raw body.
func uploadReader(r *http.Request) (io.Reader, func(), error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, func() {}, nil
	}
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		return nil, nil, errors.New("invalid multipart form")
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, nil, errors.New(`multipart field "file" is required`)
	}
	return file, func() {
		_ = file.Close()
		_ = r.MultipartForm.RemoveAll()
	}, nil
}

// ListInvitees godoc
// @Summary List invitees
// @Tags invitees
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param page query int false "Page (1-based)"
// @Param page_size query int false "Page size (default 50, max 200)"
// @Success 200 {object} controllers.ListInviteesSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/invitees [get]
func (c *InviteeController) ListInvitees(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	page := helpers.ParsePagination(r)
	invitees, total, err := c.Service.ListInvitees(r.Context(), r.PathValue("eventID"), userID, page)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListInviteesResponse{
		Invitees:   invitees,
		Pagination: helpers.NewPaginationMeta(page, total),
	})
}

// DeleteInvitee godoc
// @Summary Remove an invitee
// @Description Removes the invitee record. An existing RSVP is left untouched.
// @Tags invitees
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param email path string true "Invitee email address (URL-encoded)"
// @Success 204 "No Content"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/invitees/{email} [delete]
func (c *InviteeController) DeleteInvitee(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	email, err := url.PathUnescape(r.PathValue("email"))
	if err != nil || email == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid email")
		return
	}
	if err := c.Service.DeleteInvitee(r.Context(), r.PathValue("eventID"), userID, email); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
