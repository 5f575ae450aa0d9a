package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/calendarai/calendarai/internal/model"
)

func TestWriteErrorResponse_Format(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		apiErr   *model.APIError
		wantCode string
		wantMsg  string
	}{
		{"bad request", http.StatusBadRequest, model.NewInvalidRequestError("No eventId provided"), "INVALID_REQUEST", "No eventId provided"},
		{"not found", http.StatusNotFound, model.NewNotFoundError("Note not found"), "NOT_FOUND", "Note not found"},
		{"method", http.StatusMethodNotAllowed, model.NewMethodNotAllowedError(), "METHOD_NOT_ALLOWED", "Method Not Allowed"},
		{"unauthorized", http.StatusUnauthorized, model.NewUnauthorizedError("Not signed in"), "UNAUTHORIZED", "Not signed in"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteErrorResponse(w, tt.status, tt.apiErr)

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}

			var body map[string]string
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if body["error"] != tt.wantMsg {
				t.Errorf("error = %q, want %q", body["error"], tt.wantMsg)
			}
			if body["code"] != tt.wantCode {
				t.Errorf("code = %q, want %q", body["code"], tt.wantCode)
			}
			if len(body) != 2 {
				t.Errorf("body has %d fields, want 2: %v", len(body), body)
			}
		})
	}
}

func TestWriteInternalServerError_DefaultMessage(t *testing.T) {
	w := httptest.NewRecorder()
	WriteInternalServerError(w, "")

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Error != "Internal Server Error" || body.Code != "INTERNAL_ERROR" {
		t.Errorf("body = %+v", body)
	}
}

func TestWriteInternalServerError_CustomMessage(t *testing.T) {
	w := httptest.NewRecorder()
	WriteInternalServerError(w, "Failed to fetch events")

	var body ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Error != "Failed to fetch events" {
		t.Errorf("error = %q, want %q", body.Error, "Failed to fetch events")
	}
}
