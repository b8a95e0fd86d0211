package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenSource resolves the bearer credential for directory calls. The kiosk
// resolves it once per inbound request and threads it through explicitly.
type TokenSource interface {
	Token(ctx context.Context) (Credential, error)
}

// StaticTokenSource returns a fixed credential, typically loaded from the
// environment. It never expires from the kiosk's point of view.
type StaticTokenSource struct {
	cred Credential
}

func NewStaticTokenSource(accessToken string) *StaticTokenSource {
	return &StaticTokenSource{cred: Credential{AccessToken: accessToken}}
}

func (s *StaticTokenSource) Token(ctx context.Context) (Credential, error) {
	if s.cred.AccessToken == "" {
		return Credential{}, errors.New("directory: no access token configured")
	}
	return s.cred, nil
}

// RefreshFunc obtains a fresh credential from the identity provider.
type RefreshFunc func(ctx context.Context) (Credential, error)

// RedisTokenSource caches the credential in Redis so every kiosk process
// shares one token and refreshes happen once per expiry, not per request.
type RedisTokenSource struct {
	rdb     *redis.Client
	key     string
	refresh RefreshFunc

	// expiryMargin refreshes slightly before the provider's deadline.
	expiryMargin time.Duration
	now          func() time.Time
}

type cachedToken struct {
	AccessToken string    `json:"access_token"`
	Expiry      time.Time `json:"expiry"`
}

func NewRedisTokenSource(rdb *redis.Client, key string, refresh RefreshFunc) *RedisTokenSource {
	if key == "" {
		key = "kiosk:directory:token"
	}
	return &RedisTokenSource{
		rdb:          rdb,
		key:          key,
		refresh:      refresh,
		expiryMargin: 30 * time.Second,
		now:          time.Now,
	}
}

func (s *RedisTokenSource) Token(ctx context.Context) (Credential, error) {
	raw, err := s.rdb.Get(ctx, s.key).Result()
	if err == nil {
		var cached cachedToken
		if jsonErr := json.Unmarshal([]byte(raw), &cached); jsonErr == nil {
			if cached.Expiry.IsZero() || s.now().Add(s.expiryMargin).Before(cached.Expiry) {
				return Credential{AccessToken: cached.AccessToken, Expiry: cached.Expiry}, nil
			}
		}
	} else if err != redis.Nil {
		return Credential{}, fmt.Errorf("directory: token cache read: %w", err)
	}

	if s.refresh == nil {
		return Credential{}, errors.New("directory: token expired and no refresher configured")
	}

	cred, err := s.refresh(ctx)
	if err != nil {
		return Credential{}, fmt.Errorf("directory: token refresh: %w", err)
	}

	payload, err := json.Marshal(cachedToken{AccessToken: cred.AccessToken, Expiry: cred.Expiry})
	if err != nil {
		return Credential{}, fmt.Errorf("directory: token cache encode: %w", err)
	}

	ttl := time.Duration(0)
	if !cred.Expiry.IsZero() {
		ttl = cred.Expiry.Sub(s.now())
		if ttl <= 0 {
			return Credential{}, errors.New("directory: refreshed token already expired")
		}
	}
	if err := s.rdb.Set(ctx, s.key, payload, ttl).Err(); err != nil {
		return Credential{}, fmt.Errorf("directory: token cache write: %w", err)
	}
	return cred, nil
}
