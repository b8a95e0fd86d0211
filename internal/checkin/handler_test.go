package checkin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/oakpoint-health/checkin-kiosk/internal/visits"
	"github.com/oakpoint-health/checkin-kiosk/pkg/logging"
)

type stubService struct {
	result *CheckInResult
	err    error
}

func (s *stubService) CheckIn(ctx context.Context, req CheckInRequest) (*CheckInResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.result, s.err
}

func postCheckIn(t *testing.T, h *Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/checkin", bytes.NewReader(raw))
	w := httptest.NewRecorder()
	h.CheckIn(w, req)
	return w
}

func TestCheckInHandler_Success(t *testing.T) {
	h := NewHandler(&stubService{result: &CheckInResult{AppointmentID: 42, PatientID: 7}}, nil, logging.Default())

	w := postCheckIn(t, h, CheckInRequest{FirstName: "Jane", LastName: "Doe"})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}

	var result CheckInResult
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.AppointmentID != 42 || result.PatientID != 7 {
		t.Errorf("result = %+v, want appointment 42 / patient 7", result)
	}
}

func TestCheckInHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"patient not found", ErrPatientNotFound, http.StatusNotFound},
		{"appointment not found", ErrAppointmentNotFound, http.StatusNotFound},
		{"already checked in", visits.ErrAlreadyCheckedIn, http.StatusConflict},
		{"directory failure", errors.New("upstream 500"), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&stubService{err: tt.err}, nil, logging.Default())
			w := postCheckIn(t, h, CheckInRequest{FirstName: "Jane", LastName: "Doe"})
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestCheckInHandler_MissingName(t *testing.T) {
	h := NewHandler(&stubService{}, nil, logging.Default())
	w := postCheckIn(t, h, CheckInRequest{FirstName: "Jane"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
	}
}

func TestCheckInHandler_InvalidJSON(t *testing.T) {
	h := NewHandler(&stubService{}, nil, logging.Default())
	req := httptest.NewRequest(http.MethodPost, "/checkin", strings.NewReader("{"))
	w := httptest.NewRecorder()
	h.CheckIn(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}
