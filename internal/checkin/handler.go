package checkin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/oakpoint-health/checkin-kiosk/internal/observability/metrics"
	"github.com/oakpoint-health/checkin-kiosk/internal/visits"
	"github.com/oakpoint-health/checkin-kiosk/pkg/logging"
)

// checkInService keeps the handler testable with a fake service.
type checkInService interface {
	CheckIn(ctx context.Context, req CheckInRequest) (*CheckInResult, error)
}

// Handler handles HTTP requests for kiosk check-in.
type Handler struct {
	svc     checkInService
	metrics *metrics.KioskMetrics
	logger  *logging.Logger
}

// NewHandler creates a new check-in handler.
func NewHandler(svc checkInService, m *metrics.KioskMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, metrics: m, logger: logger}
}

type errorResponse struct {
	Error string `json:"error"`
}

// CheckIn handles POST /checkin requests.
func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req CheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.metrics.ObserveCheckin("bad_request")
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.svc.CheckIn(r.Context(), req)
	if err != nil {
		h.writeCheckInError(w, err)
		return
	}

	h.metrics.ObserveCheckin("success")
	writeJSON(w, http.StatusCreated, result)
}

// writeCheckInError maps the check-in error taxonomy onto HTTP statuses.
// Patient/appointment misses and duplicate check-ins are user-facing;
// everything else is an upstream or operational fault.
func (h *Handler) writeCheckInError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrPatientNotFound):
		h.metrics.ObserveCheckin("patient_not_found")
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "we couldn't find a matching patient, please check the spelling or see the front desk"})
	case errors.Is(err, ErrAppointmentNotFound):
		h.metrics.ObserveCheckin("appointment_not_found")
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no appointment scheduled for today, please see the front desk"})
	case errors.Is(err, visits.ErrAlreadyCheckedIn):
		h.metrics.ObserveCheckin("already_checked_in")
		writeJSON(w, http.StatusConflict, errorResponse{Error: "you are already checked in"})
	case errors.Is(err, ErrInvalidSubmission):
		h.metrics.ObserveCheckin("bad_request")
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	default:
		h.metrics.ObserveCheckin("error")
		h.logger.Error("check-in failed", "error", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "check-in is temporarily unavailable"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
