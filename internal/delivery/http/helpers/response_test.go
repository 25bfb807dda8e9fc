package helpers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventseating/internal/domain"
)

func TestWriteDomainError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{"not found", domain.ErrGuestNotFound, http.StatusNotFound, ErrCodeNotFound, domain.ErrGuestNotFound.Error()},
		{"conflict", domain.ErrAlreadyResponded, http.StatusConflict, ErrCodeConflict, domain.ErrAlreadyResponded.Error()},
		{"forbidden", domain.ErrEventEnded, http.StatusForbidden, ErrCodeForbidden, domain.ErrEventEnded.Error()},
		{"validation", domain.InvalidInput("name is required"), http.StatusBadRequest, ErrCodeBadRequest, "name is required"},
		{"dependency", fmt.Errorf("%w: boom", domain.ErrCredentialRender), http.StatusBadGateway, ErrCodeDependencyFailure, "an upstream dependency failed, please retry"},
		{"unknown", errors.New("pq: connection refused"), http.StatusInternalServerError, ErrCodeInternalError, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			WriteDomainError(rr, tt.err)

			require.Equal(t, tt.wantStatus, rr.Code)
			var envelope APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			require.NotNil(t, envelope.Error)
			assert.Nil(t, envelope.Data)
			assert.Equal(t, tt.wantCode, envelope.Error.Code)
			assert.Equal(t, tt.wantMessage, envelope.Error.Message)
		})
	}
}

type sampleRequest struct {
	Name string `json:"name"`
}

func (s sampleRequest) Validate() []string {
	if s.Name == "" {
		return []string{"name is required"}
	}
	return nil
}

func TestDecodeAndValidate(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		wantOK bool
	}{
		{"valid", `{"name":"x"}`, true},
		{"empty body", ``, false},
		{"unknown field", `{"name":"x","extra":1}`, false},
		{"fails validation", `{"name":""}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dest sampleRequest

			ok := DecodeAndValidate(rr, req, &dest)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				assert.Equal(t, http.StatusBadRequest, rr.Code)
			}
		})
	}
}
