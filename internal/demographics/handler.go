// Package demographics serves the kiosk's "update your information" screen:
// a thin read/write proxy over the directory's patient record, shown to a
// patient right after check-in.
package demographics

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/oakpoint-health/checkin-kiosk/internal/directory"
	"github.com/oakpoint-health/checkin-kiosk/pkg/logging"
)

// Handler handles HTTP requests for patient demographics.
type Handler struct {
	dir    directory.Client
	tokens directory.TokenSource
	logger *logging.Logger
}

// NewHandler creates a new demographics handler.
func NewHandler(dir directory.Client, tokens directory.TokenSource, logger *logging.Logger) *Handler {
	if dir == nil {
		panic("demographics: directory client required")
	}
	if tokens == nil {
		panic("demographics: token source required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{dir: dir, tokens: tokens, logger: logger}
}

type errorResponse struct {
	Error string `json:"error"`
}

// Get handles GET /demographics/{patientID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	patientID, ok := h.patientID(w, r)
	if !ok {
		return
	}

	cred, err := h.tokens.Token(r.Context())
	if err != nil {
		h.writeUpstreamError(w, "resolve credential", err)
		return
	}

	patient, err := h.dir.GetPatient(r.Context(), cred, patientID)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "patient not found"})
			return
		}
		h.writeUpstreamError(w, "get patient", err)
		return
	}

	// The kiosk screen never shows the SSN back.
	patient.SSN = ""
	writeJSON(w, http.StatusOK, patient)
}

// Update handles PUT /demographics/{patientID}. The directory is the system
// of record, so the write goes straight through; nothing is stored locally.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	patientID, ok := h.patientID(w, r)
	if !ok {
		return
	}

	var update directory.PatientUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	// The form always submits the full record, so an empty name is a bad
	// submission, not a field left unchanged.
	if update.FirstName == "" || update.LastName == "" {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "first and last name are required"})
		return
	}

	cred, err := h.tokens.Token(r.Context())
	if err != nil {
		h.writeUpstreamError(w, "resolve credential", err)
		return
	}

	if err := h.dir.UpdatePatient(r.Context(), cred, patientID, update); err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "patient not found"})
			return
		}
		h.writeUpstreamError(w, "update patient", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) patientID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "patientID"))
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid patient id"})
		return 0, false
	}
	return id, true
}

func (h *Handler) writeUpstreamError(w http.ResponseWriter, action string, err error) {
	h.logger.Error("demographics "+action+" failed", "error", err)
	writeJSON(w, http.StatusBadGateway, errorResponse{Error: "demographics are temporarily unavailable"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
