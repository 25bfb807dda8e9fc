package controllers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventseating/internal/delivery/http/helpers"
	"eventseating/internal/domain"
)

const inviteeCSV = "first_name,last_name,email_address,category\n" +
	"Ada,Lovelace,ada@example.com,VIP\n" +
	"Grace,Hopper\n" +
	"Alan,Turing,alan@example.com,Regular\n"

func inviteeRequest(method, target string, body *bytes.Buffer, contentType string) *http.Request {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.SetPathValue("eventID", "ev-1")
	return asOrganizer(req, "org-1")
}

func TestInviteeController_AddInvitee(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := &fakeInviteeService{}
		rec := httptest.NewRecorder()
		body := bytes.NewBufferString(`{"first_name":"Ada","last_name":"Lovelace","email_address":"ada@example.com","category":"VIP"}`)
		NewInviteeController(testLogger, svc).AddInvitee(rec, inviteeRequest(http.MethodPost, "http://test/events/ev-1/invitees", body, "application/json"))

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "VIP", svc.lastCandidate.Category)
	})
	t.Run("duplicate", func(t *testing.T) {
		svc := &fakeInviteeService{err: domain.ErrInviteeExists}
		rec := httptest.NewRecorder()
		body := bytes.NewBufferString(`{"first_name":"Ada","last_name":"Lovelace","email_address":"ada@example.com","category":"VIP"}`)
		NewInviteeController(testLogger, svc).AddInvitee(rec, inviteeRequest(http.MethodPost, "http://test/events/ev-1/invitees", body, "application/json"))

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestInviteeController_ImportRawCSV(t *testing.T) {
	svc := &fakeInviteeService{}
	rec := httptest.NewRecorder()
	req := inviteeRequest(http.MethodPost, "http://test/events/ev-1/invitees/import", bytes.NewBufferString(inviteeCSV), "text/csv")
	NewInviteeController(testLogger, svc).ImportInvitees(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, svc.lastCandidates, 2)
	assert.Equal(t, 2, svc.lastCandidates[0].Row)
	assert.Equal(t, 4, svc.lastCandidates[1].Row)

	var report domain.ImportReport
	require.Nil(t, decodeEnvelope(t, rec, &report))
	assert.Equal(t, 2, report.Inserted)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, 3, report.Failed[0].Row)
}

func TestInviteeController_ImportMergesFailuresByRow(t *testing.T) {
	svc := &fakeInviteeService{report: &domain.ImportReport{
		Inserted: 1,
		Failed:   []domain.ImportFailure{{Row: 4, Email: "alan@example.com", Reason: "duplicate email in upload"}},
	}}
	rec := httptest.NewRecorder()
	req := inviteeRequest(http.MethodPost, "http://test/events/ev-1/invitees/import", bytes.NewBufferString(inviteeCSV), "text/csv")
	NewInviteeController(testLogger, svc).ImportInvitees(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var report domain.ImportReport
	require.Nil(t, decodeEnvelope(t, rec, &report))
	require.Len(t, report.Failed, 2)
	assert.Equal(t, 3, report.Failed[0].Row)
	assert.Equal(t, 4, report.Failed[1].Row)
}

func TestInviteeController_ImportMultipart(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "guests.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(inviteeCSV))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	svc := &fakeInviteeService{}
	rec := httptest.NewRecorder()
	req := inviteeRequest(http.MethodPost, "http://test/events/ev-1/invitees/import", &buf, mw.FormDataContentType())
	NewInviteeController(testLogger, svc).ImportInvitees(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, svc.lastCandidates, 2)
}

func TestInviteeController_ImportRejectsBadUploads(t *testing.T) {
	t.Run("missing column", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := inviteeRequest(http.MethodPost, "http://test/events/ev-1/invitees/import", bytes.NewBufferString("first_name,last_name\nAda,Lovelace\n"), "text/csv")
		NewInviteeController(testLogger, &fakeInviteeService{}).ImportInvitees(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "email_address")
	})
	t.Run("multipart without file", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("note", "x"))
		require.NoError(t, mw.Close())

		rec := httptest.NewRecorder()
		req := inviteeRequest(http.MethodPost, "http://test/events/ev-1/invitees/import", &buf, mw.FormDataContentType())
		NewInviteeController(testLogger, &fakeInviteeService{}).ImportInvitees(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
	t.Run("not owner", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := inviteeRequest(http.MethodPost, "http://test/events/ev-1/invitees/import", bytes.NewBufferString(inviteeCSV), "text/csv")
		NewInviteeController(testLogger, &fakeInviteeService{err: domain.ErrNotOwner}).ImportInvitees(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
	t.Run("too large", func(t *testing.T) {
		big := "first_name,last_name,email_address,category\nAda,Lovelace,ada@example.com," + strings.Repeat("x", MaxUploadBytes+1)
		rec := httptest.NewRecorder()
		req := inviteeRequest(http.MethodPost, "http://test/events/ev-1/invitees/import", bytes.NewBufferString(big), "text/csv")
		NewInviteeController(testLogger, &fakeInviteeService{}).ImportInvitees(rec, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestInviteeController_DeleteInvitee(t *testing.T) {
	svc := &fakeInviteeService{}
	req := inviteeRequest(http.MethodDelete, "http://test/events/ev-1/invitees/ada%40example.com", &bytes.Buffer{}, "")
	req.SetPathValue("email", "ada%40example.com")
	rec := httptest.NewRecorder()
	NewInviteeController(testLogger, svc).DeleteInvitee(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "ada@example.com", svc.lastEmail)
}

func TestInviteeController_ListInvitees(t *testing.T) {
	svc := &fakeInviteeService{}
	req := inviteeRequest(http.MethodGet, "http://test/events/ev-1/invitees?page=-3&page_size=25", &bytes.Buffer{}, "")
	rec := httptest.NewRecorder()
	NewInviteeController(testLogger, svc).ListInvitees(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out ListInviteesResponse
	require.Nil(t, decodeEnvelope(t, rec, &out))
	assert.Equal(t, domain.PaginationParams{Page: 1, PageSize: 25}, svc.lastPage)
	require.Len(t, out.Invitees, 1)
	assert.Equal(t, "ada@example.com", out.Invitees[0].Email)
	assert.Equal(t, helpers.PaginationMeta{Page: 1, PageSize: 25, Total: 1, TotalPages: 1}, out.Pagination)

	svc.err = domain.ErrNotOwner
	rec = httptest.NewRecorder()
	NewInviteeController(testLogger, svc).ListInvitees(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
