package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"eventseating/internal/delivery/http/helpers"
	"eventseating/internal/delivery/http/middleware"
	"eventseating/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

func asOrganizer(req *http.Request, userID string, roles ...string) *http.Request {
	if len(roles) == 0 {
		roles = []string{domain.RoleOrganizer}
	}
	return req.WithContext(middleware.SetPrincipal(req.Context(), &domain.Principal{UserID: userID, Roles: roles}))
}

// decodeEnvelope decodes the response body; data is re-decoded into dataOut when non-nil.
func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, dataOut any) *helpers.APIError {
	t.Helper()
	var env struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	if dataOut != nil && env.Error == nil {
		require.NoError(t, json.Unmarshal(env.Data, dataOut))
	}
	return env.Error
}

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	err         error
	event       *domain.Event
	events      []*domain.Event
	total       int
	summary     *domain.OrganizerSummary
	counts      []domain.EventRSVPCount
	stats       *domain.PlatformStatistics
	lastCreate  *domain.Event
	lastPage    domain.PaginationParams
	lastPatch   domain.EventPatch
	lastOwnerID string
	lastAdmin   bool
}

func (f *fakeEventService) CreateEvent(ctx context.Context, e *domain.Event) error {
	f.lastCreate = e
	if f.err != nil {
		return f.err
	}
	e.ID = "ev-1"
	return nil
}

func (f *fakeEventService) GetEvent(ctx context.Context, eventID, requesterID string) (*domain.Event, error) {
	f.lastOwnerID = requesterID
	return f.event, f.err
}

func (f *fakeEventService) ListMyEvents(ctx context.Context, ownerID string, page domain.PaginationParams) ([]*domain.Event, int, error) {
	f.lastOwnerID = ownerID
	f.lastPage = page
	return f.events, f.total, f.err
}

func (f *fakeEventService) UpdateEvent(ctx context.Context, eventID, ownerID string, patch domain.EventPatch) (*domain.Event, error) {
	f.lastPatch = patch
	return f.event, f.err
}

func (f *fakeEventService) DeleteEvent(ctx context.Context, eventID, requesterID string, admin bool) error {
	f.lastOwnerID = requesterID
	f.lastAdmin = admin
	return f.err
}

func (f *fakeEventService) OrganizerSummary(ctx context.Context, ownerID string) (*domain.OrganizerSummary, error) {
	return f.summary, f.err
}

func (f *fakeEventService) RSVPBreakdown(ctx context.Context, ownerID string) ([]domain.EventRSVPCount, error) {
	f.lastOwnerID = ownerID
	return f.counts, f.err
}

func (f *fakeEventService) ListAllEvents(ctx context.Context, page domain.PaginationParams) ([]*domain.Event, int, error) {
	f.lastPage = page
	return f.events, f.total, f.err
}

func (f *fakeEventService) PlatformStatistics(ctx context.Context) (*domain.PlatformStatistics, error) {
	return f.stats, f.err
}

// fakeGuestService implements domain.GuestService.
type fakeGuestService struct {
	err        error
	guest      *domain.Guest
	view       *domain.InvitationView
	guests     []*domain.Guest
	total      int
	lastPage   domain.PaginationParams
	lastEmail  string
	lastStatus domain.RSVPStatus
	lastCode   string
}

func (f *fakeGuestService) SubmitRSVP(ctx context.Context, eventID, email string, status domain.RSVPStatus) (*domain.Guest, error) {
	f.lastEmail, f.lastStatus = email, status
	return f.guest, f.err
}

func (f *fakeGuestService) CancelRSVP(ctx context.Context, code string) (*domain.Guest, error) {
	f.lastCode = code
	return f.guest, f.err
}

func (f *fakeGuestService) LookupByCode(ctx context.Context, code string) (*domain.InvitationView, error) {
	f.lastCode = code
	return f.view, f.err
}

func (f *fakeGuestService) ListGuests(ctx context.Context, eventID, ownerID string, page domain.PaginationParams) ([]*domain.Guest, int, error) {
	f.lastPage = page
	return f.guests, f.total, f.err
}

// fakeCheckInService implements domain.CheckInService.
type fakeCheckInService struct {
	err      error
	result   *domain.CheckInResult
	lastCode string
	lastOrg  string
}

func (f *fakeCheckInService) CheckIn(ctx context.Context, code, organizerID string) (*domain.CheckInResult, error) {
	f.lastCode, f.lastOrg = code, organizerID
	return f.result, f.err
}

// fakeInviteeService implements domain.InviteeService.
type fakeInviteeService struct {
	err            error
	report         *domain.ImportReport
	lastCandidate  domain.InviteeCandidate
	lastCandidates []domain.InviteeCandidate
	lastEmail      string
	lastPage       domain.PaginationParams
}

func (f *fakeInviteeService) AddInvitee(ctx context.Context, eventID, ownerID string, c domain.InviteeCandidate) (*domain.Invitee, error) {
	f.lastCandidate = c
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Invitee{ID: "inv-1", EventID: eventID, Email: c.Email}, nil
}

func (f *fakeInviteeService) ImportInvitees(ctx context.Context, eventID, ownerID string, candidates []domain.InviteeCandidate) (*domain.ImportReport, error) {
	f.lastCandidates = candidates
	if f.err != nil {
		return nil, f.err
	}
	if f.report != nil {
		return f.report, nil
	}
	return &domain.ImportReport{Inserted: len(candidates), Failed: []domain.ImportFailure{}}, nil
}

func (f *fakeInviteeService) ListInvitees(ctx context.Context, eventID, ownerID string, page domain.PaginationParams) ([]*domain.Invitee, int, error) {
	f.lastPage = page
	if f.err != nil {
		return nil, 0, f.err
	}
	return []*domain.Invitee{{ID: "inv-1", EventID: eventID, Email: "ada@example.com"}}, 1, nil
}

func (f *fakeInviteeService) DeleteInvitee(ctx context.Context, eventID, ownerID, email string) error {
	f.lastEmail = email
	return f.err
}

// fakeSeatingService implements domain.SeatingService.
type fakeSeatingService struct {
	err       error
	lastShape domain.Shape
	lastCall  string
	lastLabel string
	lastPair  [2]string
	move      *domain.SeatMove
}

func (f *fakeSeatingService) CreateConfiguration(ctx context.Context, eventID, ownerID string, shape domain.Shape) (*domain.SeatingConfiguration, error) {
	f.lastCall, f.lastShape = "create", shape
	if f.err != nil {
		return nil, f.err
	}
	return &domain.SeatingConfiguration{EventID: eventID, Shape: shape}, nil
}

func (f *fakeSeatingService) UpdateConfiguration(ctx context.Context, eventID, ownerID string, shape domain.Shape) (*domain.ConfigurationUpdate, error) {
	f.lastCall, f.lastShape = "update", shape
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ConfigurationUpdate{Configuration: &domain.SeatingConfiguration{EventID: eventID, Shape: shape}, ClearedAssignments: 2}, nil
}

func (f *fakeSeatingService) GetConfiguration(ctx context.Context, eventID, ownerID string) (*domain.SeatingConfiguration, error) {
	return nil, f.err
}

func (f *fakeSeatingService) GetSeatingView(ctx context.Context, eventID, ownerID string) (*domain.SeatingView, error) {
	f.lastCall = "view"
	if f.err != nil {
		return nil, f.err
	}
	shape := domain.RowLayout{Rows: 1, SeatsPerRow: 2}
	return &domain.SeatingView{
		Configuration: &domain.SeatingConfiguration{EventID: eventID, Shape: shape},
		Seats:         shape.Seats(),
		Guests:        []*domain.GuestSeat{},
	}, nil
}

func (f *fakeSeatingService) AutoAssign(ctx context.Context, eventID, ownerID string) (*domain.AutoAssignResult, error) {
	f.lastCall = "auto"
	if f.err != nil {
		return nil, f.err
	}
	return &domain.AutoAssignResult{Assigned: 1, Pairings: []domain.SeatPairing{{GuestID: "g-1", SeatLabel: "Row 1 - Seat 1"}}}, nil
}

func (f *fakeSeatingService) AssignSeat(ctx context.Context, eventID, ownerID, guestID, label string) error {
	f.lastCall, f.lastLabel = "assign", label
	return f.err
}

func (f *fakeSeatingService) MoveGuest(ctx context.Context, eventID, ownerID, guestID, label string) (*domain.SeatMove, error) {
	f.lastCall, f.lastLabel = "move", label
	return f.move, f.err
}

func (f *fakeSeatingService) VacateSeat(ctx context.Context, eventID, ownerID, guestID string) error {
	f.lastCall = "vacate"
	return f.err
}

func (f *fakeSeatingService) SwapSeats(ctx context.Context, eventID, ownerID, guestA, guestB string) error {
	f.lastCall, f.lastPair = "swap", [2]string{guestA, guestB}
	return f.err
}
