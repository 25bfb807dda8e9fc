package controllers

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventseating/internal/delivery/http/helpers"
	"eventseating/internal/domain"
)

func TestEventController_CreateEvent(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setUser    bool
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "created",
			body:       `{"name":"Launch","date":"2026-11-02","start_time":"18:00","end_time":"22:00","location":"Hall A"}`,
			setUser:    true,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing fields",
			body:       `{"name":""}`,
			setUser:    true,
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
		{
			name:       "bad date",
			body:       `{"name":"Launch","date":"02/11/2026","start_time":"18:00","end_time":"22:00"}`,
			setUser:    true,
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
		{
			name:       "unknown field",
			body:       `{"name":"Launch","venue":"x"}`,
			setUser:    true,
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
		{
			name:       "no user",
			body:       `{"name":"Launch","date":"2026-11-02","start_time":"18:00","end_time":"22:00"}`,
			wantStatus: http.StatusUnauthorized,
			wantCode:   helpers.ErrCodeUnauthorized,
		},
		{
			name:       "invalid schedule",
			body:       `{"name":"Launch","date":"2026-11-02","start_time":"18:00","end_time":"18:00"}`,
			setUser:    true,
			serviceErr: domain.InvalidInput("end time must differ from start time"),
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
		{
			name:       "database down",
			body:       `{"name":"Launch","date":"2026-11-02","start_time":"18:00","end_time":"22:00"}`,
			setUser:    true,
			serviceErr: errors.New("connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   helpers.ErrCodeInternalError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeEventService{err: tt.serviceErr}
			ctrl := NewEventController(testLogger, svc)

			req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewBufferString(tt.body))
			if tt.setUser {
				req = asOrganizer(req, "org-1")
			}
			rec := httptest.NewRecorder()
			ctrl.CreateEvent(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var event domain.Event
			apiErr := decodeEnvelope(t, rec, &event)
			if tt.wantCode != "" {
				require.NotNil(t, apiErr)
				assert.Equal(t, tt.wantCode, apiErr.Code)
				if tt.wantStatus == http.StatusInternalServerError {
					assert.Equal(t, "internal server error", apiErr.Message)
				}
				return
			}
			require.Nil(t, apiErr)
			assert.Equal(t, "ev-1", event.ID)
			assert.Equal(t, "org-1", svc.lastCreate.OwnerID)
			assert.Equal(t, "2026-11-02", svc.lastCreate.Date.Format(domain.DateLayout))
		})
	}
}

func TestEventController_ListMyEvents(t *testing.T) {
	svc := &fakeEventService{events: []*domain.Event{{ID: "ev-1"}}, total: 41}
	ctrl := NewEventController(testLogger, svc)

	req := asOrganizer(httptest.NewRequest(http.MethodGet, "/events?page=2&page_size=500", nil), "org-1")
	rec := httptest.NewRecorder()
	ctrl.ListMyEvents(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out ListEventsResponse
	require.Nil(t, decodeEnvelope(t, rec, &out))
	assert.Equal(t, domain.PaginationParams{Page: 2, PageSize: domain.MaxPageSize}, svc.lastPage)
	assert.Equal(t, helpers.PaginationMeta{Page: 2, PageSize: 200, Total: 41, TotalPages: 1}, out.Pagination)
	assert.Len(t, out.Events, 1)
}

func TestEventController_ListAllEvents(t *testing.T) {
	svc := &fakeEventService{events: []*domain.Event{{ID: "ev-1", OwnerID: "org-1"}, {ID: "ev-2", OwnerID: "org-2"}}, total: 120}
	ctrl := NewEventController(testLogger, svc)

	req := asOrganizer(httptest.NewRequest(http.MethodGet, "/admin/events?page=abc&page_size=0", nil), "admin-1", domain.RoleAdmin)
	rec := httptest.NewRecorder()
	ctrl.ListAllEvents(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out ListEventsResponse
	require.Nil(t, decodeEnvelope(t, rec, &out))
	assert.Equal(t, domain.PaginationParams{Page: 1, PageSize: domain.DefaultPageSize}, svc.lastPage)
	assert.Equal(t, helpers.PaginationMeta{Page: 1, PageSize: 50, Total: 120, TotalPages: 3}, out.Pagination)
	assert.Len(t, out.Events, 2)

	svc.err = errors.New("db down")
	rec = httptest.NewRecorder()
	ctrl.ListAllEvents(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestEventController_PlatformStatistics(t *testing.T) {
	svc := &fakeEventService{stats: &domain.PlatformStatistics{
		TotalEvents: 3, TotalOrganizers: 2, TotalRSVPs: 10, AcceptedRSVPs: 7,
		RSVPsPerEvent: []domain.EventRSVPCount{{EventID: "ev-1", EventName: "Launch", Accepted: 7, Declined: 3, Total: 10}},
	}}
	req := asOrganizer(httptest.NewRequest(http.MethodGet, "/admin/statistics", nil), "admin-1", domain.RoleAdmin)
	rec := httptest.NewRecorder()
	NewEventController(testLogger, svc).PlatformStatistics(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var raw map[string]any
	require.Nil(t, decodeEnvelope(t, rec, &raw))
	assert.EqualValues(t, 3, raw["total_events"])
	assert.EqualValues(t, 2, raw["total_organizers"])
	assert.EqualValues(t, 10, raw["total_rsvps"])
	assert.EqualValues(t, 7, raw["total_rsvp_accepted"])
	perEvent, ok := raw["rsvps_per_event"].([]any)
	require.True(t, ok)
	require.Len(t, perEvent, 1)
	assert.Equal(t, "Launch", perEvent[0].(map[string]any)["event_name"])
}

func TestEventController_RSVPBreakdown(t *testing.T) {
	svc := &fakeEventService{counts: []domain.EventRSVPCount{
		{EventID: "ev-1", EventName: "Launch", Accepted: 4, Declined: 1, Total: 5},
		{EventID: "ev-2", EventName: "Quiet", Accepted: 0, Declined: 0, Total: 0},
	}}
	req := asOrganizer(httptest.NewRequest(http.MethodGet, "/organizer/rsvp-breakdown", nil), "org-7")
	rec := httptest.NewRecorder()
	NewEventController(testLogger, svc).RSVPBreakdown(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out []domain.EventRSVPCount
	require.Nil(t, decodeEnvelope(t, rec, &out))
	assert.Equal(t, "org-7", svc.lastOwnerID)
	assert.Equal(t, svc.counts, out)

	rec = httptest.NewRecorder()
	NewEventController(testLogger, svc).RSVPBreakdown(rec, httptest.NewRequest(http.MethodGet, "/organizer/rsvp-breakdown", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEventController_GetEvent(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"found", nil, http.StatusOK},
		{"not owner", domain.ErrNotOwner, http.StatusForbidden},
		{"missing", domain.ErrEventNotFound, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeEventService{event: &domain.Event{ID: "ev-1", Name: "Launch"}, err: tt.err}
			ctrl := NewEventController(testLogger, svc)

			req := httptest.NewRequest(http.MethodGet, "http://test/events/ev-1", nil)
			req.SetPathValue("eventID", "ev-1")
			req = asOrganizer(req, "org-1")
			rec := httptest.NewRecorder()
			ctrl.GetEvent(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "org-1", svc.lastOwnerID)
		})
	}
}

func TestEventController_UpdateEvent(t *testing.T) {
	svc := &fakeEventService{event: &domain.Event{ID: "ev-1", Name: "Relaunch"}}
	ctrl := NewEventController(testLogger, svc)

	req := httptest.NewRequest(http.MethodPatch, "http://test/events/ev-1", bytes.NewBufferString(`{"name":"Relaunch","date":"2026-12-01"}`))
	req.SetPathValue("eventID", "ev-1")
	req = asOrganizer(req, "org-1")
	rec := httptest.NewRecorder()
	ctrl.UpdateEvent(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.lastPatch.Name)
	assert.Equal(t, "Relaunch", *svc.lastPatch.Name)
	require.NotNil(t, svc.lastPatch.Date)
	assert.Equal(t, "2026-12-01", svc.lastPatch.Date.Format(domain.DateLayout))
	assert.Nil(t, svc.lastPatch.StartTime)
}

func TestEventController_DeleteEvent(t *testing.T) {
	t.Run("owner", func(t *testing.T) {
		svc := &fakeEventService{}
		req := httptest.NewRequest(http.MethodDelete, "http://test/events/ev-1", nil)
		req.SetPathValue("eventID", "ev-1")
		req = asOrganizer(req, "org-1")
		rec := httptest.NewRecorder()
		NewEventController(testLogger, svc).DeleteEvent(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.False(t, svc.lastAdmin)
	})
	t.Run("admin", func(t *testing.T) {
		svc := &fakeEventService{}
		req := httptest.NewRequest(http.MethodDelete, "http://test/events/ev-1", nil)
		req.SetPathValue("eventID", "ev-1")
		req = asOrganizer(req, "root", domain.RoleAdmin)
		rec := httptest.NewRecorder()
		NewEventController(testLogger, svc).DeleteEvent(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.True(t, svc.lastAdmin)
	})
	t.Run("unauthenticated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewEventController(testLogger, &fakeEventService{}).DeleteEvent(rec, httptest.NewRequest(http.MethodDelete, "/events/ev-1", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestEventController_OrganizerSummary(t *testing.T) {
	svc := &fakeEventService{summary: &domain.OrganizerSummary{TotalEvents: 3, AcceptedGuests: 4, CheckedIn: 2, AttendanceRate: 0.5}}
	req := asOrganizer(httptest.NewRequest(http.MethodGet, "/organizer/summary", nil), "org-1")
	rec := httptest.NewRecorder()
	NewEventController(testLogger, svc).OrganizerSummary(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var sum domain.OrganizerSummary
	require.Nil(t, decodeEnvelope(t, rec, &sum))
	assert.Equal(t, 0.5, sum.AttendanceRate)
	assert.Equal(t, 3, sum.TotalEvents)
}
