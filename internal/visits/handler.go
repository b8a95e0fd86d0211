package visits

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/oakpoint-health/checkin-kiosk/internal/observability/metrics"
	"github.com/oakpoint-health/checkin-kiosk/pkg/logging"
)

// Handler exposes the visit timer over HTTP for the staff dashboard.
type Handler struct {
	store   Store
	metrics *metrics.KioskMetrics
	logger  *logging.Logger
}

// NewHandler creates a new visit timer handler.
func NewHandler(store Store, m *metrics.KioskMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, metrics: m, logger: logger}
}

type toggleResponse struct {
	AppointmentID int    `json:"appointment_id"`
	Status        Status `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Toggle handles POST /staff/visits/{appointmentID}/toggle. One press
// advances the visit exactly one lifecycle step.
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	appointmentID, err := strconv.Atoi(chi.URLParam(r, "appointmentID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid appointment id"})
		return
	}

	v, err := h.store.Toggle(r.Context(), appointmentID)
	switch {
	case errors.Is(err, ErrVisitNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no visit for that appointment"})
		return
	case errors.Is(err, ErrInvalidState):
		// Operational fault, not user input: an already-finished visit
		// cannot be toggled again.
		h.logger.Error("toggle from invalid state", "appointment_id", appointmentID, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "visit cannot be toggled from its current state"})
		return
	case err != nil:
		h.logger.Error("toggle failed", "appointment_id", appointmentID, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}

	h.metrics.ObserveToggle(string(v.Status))
	h.logger.Info("visit toggled", "appointment_id", appointmentID, "status", v.Status)
	writeJSON(w, http.StatusOK, toggleResponse{AppointmentID: v.AppointmentID, Status: v.Status})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
