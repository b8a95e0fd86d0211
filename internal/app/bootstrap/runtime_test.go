package bootstrap

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	appconfig "github.com/oakpoint-health/checkin-kiosk/internal/config"
	"github.com/oakpoint-health/checkin-kiosk/internal/directory"
	"github.com/oakpoint-health/checkin-kiosk/internal/visits"
	"github.com/oakpoint-health/checkin-kiosk/pkg/logging"
)

func TestBuildRedisClientDisabled(t *testing.T) {
	if client := BuildRedisClient(context.Background(), &appconfig.Config{}, nil, false); client != nil {
		t.Fatalf("expected nil client with no redis address")
	}
}

func TestBuildRedisClientVerified(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &appconfig.Config{RedisAddr: mr.Addr()}

	client := BuildRedisClient(context.Background(), cfg, nil, true)
	if client == nil {
		t.Fatalf("expected client for reachable redis")
	}
	defer func() { _ = client.Close() }()
}

func TestBuildRedisClientVerifyFailure(t *testing.T) {
	logger := logging.New("error")
	cfg := &appconfig.Config{RedisAddr: "127.0.0.1:1"}

	if client := BuildRedisClient(context.Background(), cfg, logger, true); client != nil {
		t.Fatalf("expected nil client when ping fails")
	}
}

func TestBuildVisitStoreFallsBackToMemory(t *testing.T) {
	logger := logging.New("error")
	store, closeFn := BuildVisitStore(context.Background(), &appconfig.Config{}, logger)
	defer closeFn()

	if _, ok := store.(*visits.MemoryStore); !ok {
		t.Fatalf("expected in-memory store without DATABASE_URL, got %T", store)
	}
}

func TestBuildTokenSourceStaticWithoutRedis(t *testing.T) {
	cfg := &appconfig.Config{DirectoryAccessToken: "tok"}

	src := BuildTokenSource(cfg, nil)
	if _, ok := src.(*directory.StaticTokenSource); !ok {
		t.Fatalf("expected static token source, got %T", src)
	}

	cred, err := src.Token(context.Background())
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if cred.AccessToken != "tok" {
		t.Fatalf("AccessToken = %q", cred.AccessToken)
	}
}

func TestBuildTokenSourceCachesInRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &appconfig.Config{DirectoryAccessToken: "tok", RedisAddr: mr.Addr()}

	client := BuildRedisClient(context.Background(), cfg, nil, true)
	if client == nil {
		t.Fatalf("expected redis client")
	}
	defer func() { _ = client.Close() }()

	src := BuildTokenSource(cfg, client)
	if _, ok := src.(*directory.RedisTokenSource); !ok {
		t.Fatalf("expected redis token source, got %T", src)
	}

	cred, err := src.Token(context.Background())
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if cred.AccessToken != "tok" {
		t.Fatalf("AccessToken = %q", cred.AccessToken)
	}
	if !mr.Exists("kiosk:directory:token") {
		t.Fatalf("expected token cached in redis")
	}
}

func TestBuildDirectoryClientRequiresBaseURL(t *testing.T) {
	if _, err := BuildDirectoryClient(&appconfig.Config{}); err == nil {
		t.Fatalf("expected error without DIRECTORY_BASE_URL")
	}
}
