package dashboard

import (
	"encoding/json"
	"net/http"

	"github.com/oakpoint-health/checkin-kiosk/pkg/logging"
)

// Handler serves the staff dashboard JSON.
type Handler struct {
	agg    *Aggregator
	logger *logging.Logger
}

// NewHandler creates a new dashboard handler.
func NewHandler(agg *Aggregator, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{agg: agg, logger: logger}
}

// GetSnapshot returns the live dashboard view.
// GET /staff/dashboard
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.agg.BuildSnapshot(r.Context())
	if err != nil {
		h.logger.Error("failed to build dashboard snapshot", "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		h.logger.Error("failed to encode dashboard snapshot", "error", err)
	}
}
