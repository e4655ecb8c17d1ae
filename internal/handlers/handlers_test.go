package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"moodlens-backend/internal/meeting"
	"moodlens-backend/internal/models"
	"moodlens-backend/internal/services"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp
}

func TestJournalCreateValidation(t *testing.T) {
	h := NewJournalHandler(nil, nil)

	cases := []struct {
		name       string
		body       string
		wantFields []string
	}{
		{
			name:       "blank text",
			body:       `{"text":"   ","mood_rating":5}`,
			wantFields: []string{"text"},
		},
		{
			name:       "mood rating out of range",
			body:       `{"text":"rough day","mood_rating":11}`,
			wantFields: []string{"mood_rating"},
		},
		{
			name:       "both invalid",
			body:       `{"text":"","mood_rating":0}`,
			wantFields: []string{"text", "mood_rating"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/journal", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			h.Create(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			resp := decodeError(t, rec)
			if resp.Error.Code != "VALIDATION_ERROR" {
				t.Errorf("code = %s, want VALIDATION_ERROR", resp.Error.Code)
			}
			for _, field := range tc.wantFields {
				if _, ok := resp.Error.Fields[field]; !ok {
					t.Errorf("missing field error for %q: %v", field, resp.Error.Fields)
				}
			}
		})
	}

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/journal", strings.NewReader("{"))
		rec := httptest.NewRecorder()
		h.Create(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestHandleServiceError(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", &services.ValidationError{Fields: map[string]string{"email": "bad"}}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"conflict", &services.ConflictError{Message: "email taken"}, http.StatusConflict, "CONFLICT"},
		{"not found", &services.NotFoundError{Message: "no such user"}, http.StatusNotFound, "NOT_FOUND"},
		{"unauthorized", &services.UnauthorizedError{Message: "bad credentials"}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"session not found", meeting.ErrSessionNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("X-Request-ID", "req-123")
			rec := httptest.NewRecorder()

			handleServiceError(rec, req, tc.err)

			if rec.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			resp := decodeError(t, rec)
			if resp.Error.Code != tc.wantCode {
				t.Errorf("code = %s, want %s", resp.Error.Code, tc.wantCode)
			}
			if resp.Error.RequestID != "req-123" {
				t.Errorf("request id = %s, want req-123", resp.Error.RequestID)
			}
		})
	}
}
