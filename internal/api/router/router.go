// Package router wires the kiosk's HTTP surface: public patient endpoints,
// JWT-protected staff endpoints, and operational endpoints.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/oakpoint-health/checkin-kiosk/internal/checkin"
	"github.com/oakpoint-health/checkin-kiosk/internal/dashboard"
	"github.com/oakpoint-health/checkin-kiosk/internal/demographics"
	httpmiddleware "github.com/oakpoint-health/checkin-kiosk/internal/http/middleware"
	"github.com/oakpoint-health/checkin-kiosk/internal/visits"
	"github.com/oakpoint-health/checkin-kiosk/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	CheckInHandler      *checkin.Handler
	DemographicsHandler *demographics.Handler
	VisitsHandler       *visits.Handler
	DashboardHandler    *dashboard.Handler
	MetricsHandler      http.Handler
	StaffAuthSecret     string
	CORSAllowedOrigins  []string

	// KioskRateLimit throttles the unauthenticated kiosk endpoints per IP.
	// Zero disables throttling (tests, trusted networks).
	KioskRateLimit float64
	KioskRateBurst int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Public endpoints: the kiosk screen the patient touches.
	r.Group(func(public chi.Router) {
		if cfg.KioskRateLimit > 0 {
			public.Use(httpmiddleware.RateLimit(cfg.KioskRateLimit, cfg.KioskRateBurst))
		}
		if cfg.CheckInHandler != nil {
			public.Post("/checkin", cfg.CheckInHandler.CheckIn)
		}
		if cfg.DemographicsHandler != nil {
			public.Route("/demographics/{patientID}", func(r chi.Router) {
				r.Get("/", cfg.DemographicsHandler.Get)
				r.Put("/", cfg.DemographicsHandler.Update)
			})
		}
	})

	// Staff endpoints (protected by HMAC JWT).
	r.Route("/staff", func(staff chi.Router) {
		staff.Use(httpmiddleware.StaffJWT(cfg.StaffAuthSecret))
		if cfg.DashboardHandler != nil {
			staff.Get("/dashboard", cfg.DashboardHandler.GetSnapshot)
		}
		if cfg.VisitsHandler != nil {
			staff.Post("/visits/{appointmentID}/toggle", cfg.VisitsHandler.Toggle)
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
