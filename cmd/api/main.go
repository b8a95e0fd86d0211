package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oakpoint-health/checkin-kiosk/internal/api/router"
	"github.com/oakpoint-health/checkin-kiosk/internal/app/bootstrap"
	"github.com/oakpoint-health/checkin-kiosk/internal/checkin"
	appconfig "github.com/oakpoint-health/checkin-kiosk/internal/config"
	"github.com/oakpoint-health/checkin-kiosk/internal/dashboard"
	"github.com/oakpoint-health/checkin-kiosk/internal/demographics"
	"github.com/oakpoint-health/checkin-kiosk/internal/observability/metrics"
	"github.com/oakpoint-health/checkin-kiosk/internal/visits"
	"github.com/oakpoint-health/checkin-kiosk/pkg/logging"
)

func main() {
	// Load .env for local development; a missing file is fine.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting checkin-kiosk API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	loc, err := time.LoadLocation(cfg.ClinicTZ)
	if err != nil {
		logger.Error("invalid CLINIC_TZ", "tz", cfg.ClinicTZ, "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Backends
	store, closeStore := bootstrap.BuildVisitStore(ctx, cfg, logger)
	defer closeStore()

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	dirClient, err := bootstrap.BuildDirectoryClient(cfg)
	if err != nil {
		logger.Error("failed to build directory client", "error", err)
		os.Exit(1)
	}
	tokens := bootstrap.BuildTokenSource(cfg, redisClient)

	// Metrics
	registry := prometheus.NewRegistry()
	kioskMetrics := metrics.NewKioskMetrics(registry)
	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	// Handlers
	checkInSvc := checkin.NewService(dirClient, tokens, store, loc, logger)
	aggregator := dashboard.NewAggregator(store, dirClient, tokens, kioskMetrics, loc, logger)

	routerCfg := &router.Config{
		Logger:              logger,
		CheckInHandler:      checkin.NewHandler(checkInSvc, kioskMetrics, logger),
		DemographicsHandler: demographics.NewHandler(dirClient, tokens, logger),
		VisitsHandler:       visits.NewHandler(store, kioskMetrics, logger),
		DashboardHandler:    dashboard.NewHandler(aggregator, logger),
		MetricsHandler:      metricsHandler,
		StaffAuthSecret:     cfg.StaffJWTSecret,
		CORSAllowedOrigins:  splitOrigins(cfg.CORSAllowedOrigins),
		KioskRateLimit:      cfg.KioskRateLimit,
		KioskRateBurst:      cfg.KioskRateBurst,
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.New(routerCfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
