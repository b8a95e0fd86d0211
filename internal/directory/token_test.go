package directory

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestStaticTokenSource(t *testing.T) {
	src := NewStaticTokenSource("secret")
	cred, err := src.Token(context.Background())
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if cred.AccessToken != "secret" {
		t.Errorf("AccessToken = %q, want secret", cred.AccessToken)
	}

	empty := NewStaticTokenSource("")
	if _, err := empty.Token(context.Background()); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestRedisTokenSource_RefreshesOnMiss(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	refreshes := 0
	src := NewRedisTokenSource(rdb, "", func(ctx context.Context) (Credential, error) {
		refreshes++
		return Credential{AccessToken: "fresh", Expiry: time.Now().Add(time.Hour)}, nil
	})

	cred, err := src.Token(context.Background())
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if cred.AccessToken != "fresh" {
		t.Errorf("AccessToken = %q, want fresh", cred.AccessToken)
	}
	if refreshes != 1 {
		t.Errorf("refreshes = %d, want 1", refreshes)
	}

	// Second call must be served from the cache.
	if _, err := src.Token(context.Background()); err != nil {
		t.Fatalf("cached Token failed: %v", err)
	}
	if refreshes != 1 {
		t.Errorf("refreshes after cache hit = %d, want 1", refreshes)
	}
}

func TestRedisTokenSource_RefreshesNearExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	now := time.Now()
	stale, _ := json.Marshal(cachedToken{AccessToken: "stale", Expiry: now.Add(5 * time.Second)})
	if err := rdb.Set(context.Background(), "kiosk:directory:token", stale, 0).Err(); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	src := NewRedisTokenSource(rdb, "", func(ctx context.Context) (Credential, error) {
		return Credential{AccessToken: "fresh", Expiry: now.Add(time.Hour)}, nil
	})

	// Inside the expiry margin the stale token must not be reused.
	cred, err := src.Token(context.Background())
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if cred.AccessToken != "fresh" {
		t.Errorf("AccessToken = %q, want fresh", cred.AccessToken)
	}
}

func TestRedisTokenSource_RefreshFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	boom := errors.New("provider down")
	src := NewRedisTokenSource(rdb, "", func(ctx context.Context) (Credential, error) {
		return Credential{}, boom
	})

	if _, err := src.Token(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Token = %v, want wrapped provider error", err)
	}
}

func TestRedisTokenSource_NoRefresherConfigured(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	src := NewRedisTokenSource(rdb, "", nil)
	if _, err := src.Token(context.Background()); err == nil {
		t.Fatal("expected error when cache is empty and no refresher is set")
	}
}
