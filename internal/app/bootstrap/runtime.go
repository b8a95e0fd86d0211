// Package bootstrap wires process-level dependencies from configuration:
// the visit store, the Redis client, and the directory client with its
// token source. Everything degrades explicitly; a missing backend returns
// nil or an in-memory fallback, never a half-built client.
package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/oakpoint-health/checkin-kiosk/internal/config"
	"github.com/oakpoint-health/checkin-kiosk/internal/directory"
	"github.com/oakpoint-health/checkin-kiosk/internal/visits"
	"github.com/oakpoint-health/checkin-kiosk/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		return nil
	}
	return client
}

// BuildVisitStore connects Postgres when DATABASE_URL is set, otherwise it
// falls back to the in-memory store. The fallback keeps a single-kiosk
// deployment runnable with no infrastructure, at the cost of losing state
// on restart.
func BuildVisitStore(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (visits.Store, func()) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg == nil || strings.TrimSpace(cfg.DatabaseURL) == "" {
		logger.Warn("DATABASE_URL not set, using in-memory visit store")
		return visits.NewMemoryStore(), func() {}
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Warn("postgres not available, using in-memory visit store", "error", err)
		return visits.NewMemoryStore(), func() {}
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Warn("postgres ping failed, using in-memory visit store", "error", err)
		return visits.NewMemoryStore(), func() {}
	}
	return visits.NewPostgresStore(pool), pool.Close
}

// BuildTokenSource returns the directory credential source. With Redis
// available the static token is cached there so every kiosk process shares
// one entry; without it the static source serves directly.
func BuildTokenSource(cfg *appconfig.Config, redisClient *redis.Client) directory.TokenSource {
	static := directory.NewStaticTokenSource(cfg.DirectoryAccessToken)
	if redisClient == nil {
		return static
	}
	return directory.NewRedisTokenSource(redisClient, "", static.Token)
}

// BuildDirectoryClient constructs the HTTP client for the external clinic
// directory.
func BuildDirectoryClient(cfg *appconfig.Config) (*directory.HTTPClient, error) {
	return directory.NewHTTPClient(directory.Config{
		BaseURL: cfg.DirectoryBaseURL,
		Timeout: cfg.DirectoryTimeout,
	})
}
