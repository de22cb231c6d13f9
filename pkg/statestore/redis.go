package statestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "oauth_state:"

// RedisStore keeps state tokens in a shared Redis so multiple server
// instances can validate callbacks issued by any of them. GETDEL makes
// consumption atomic and Redis key TTL bounds memory without a sweep.
type RedisStore struct {
	client *redis.Client
	cfg    Config
}

// NewRedisStore creates a Redis-backed state store.
func NewRedisStore(client *redis.Client, cfg Config) *RedisStore {
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Minute
	}
	return &RedisStore{client: client, cfg: cfg}
}

// Issue generates and stores a new single-use token for the provider.
func (s *RedisStore) Issue(ctx context.Context, providerName string, meta Metadata) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}

	now := time.Now()
	payload, err := json.Marshal(entry{
		Provider:  providerName,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.cfg.TTL),
		Metadata:  meta,
	})
	if err != nil {
		return "", err
	}

	if err := s.client.Set(ctx, redisKeyPrefix+token, payload, s.cfg.TTL).Err(); err != nil {
		return "", fmt.Errorf("store state token: %w", err)
	}
	return token, nil
}

// ValidateAndConsume fetches and deletes the token in one GETDEL round
// trip, then checks provider, expiry and metadata binding.
func (s *RedisStore) ValidateAndConsume(ctx context.Context, providerName, token string, meta Metadata) error {
	payload, err := s.client.GetDel(ctx, redisKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrInvalidState
		}
		return fmt.Errorf("consume state token: %w", err)
	}

	var e entry
	if err := json.Unmarshal(payload, &e); err != nil {
		return fmt.Errorf("malformed state entry: %w", err)
	}
	return e.check(providerName, meta, time.Now(), s.cfg.StrictBinding)
}

// Close is a no-op; the Redis client is owned by the caller.
func (s *RedisStore) Close() error {
	return nil
}

var _ Store = (*RedisStore)(nil)
