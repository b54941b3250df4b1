package profile

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/flaglab/flagkit/pkg/config"
)

// RedisConfig configures the Redis-backed store. Fields are populated from
// environment variables via github.com/caarlos0/env.
type RedisConfig struct {
	ConnectionURL  string        `env:"PROFILE_REDIS_URL" envDefault:"redis://localhost:6379/0"` // URL in the format "redis://:password@localhost:6379/0"
	KeyPrefix      string        `env:"PROFILE_REDIS_KEY_PREFIX" envDefault:"flagkit:profile:"`
	TTL            time.Duration `env:"PROFILE_REDIS_TTL" envDefault:"720h"` // 0 disables expiry
	RetryAttempts  int           `env:"PROFILE_REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"PROFILE_REDIS_RETRY_INTERVAL" envDefault:"5s"`
	ConnectTimeout time.Duration `env:"PROFILE_REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
}

// ErrRedisNotReady indicates the Redis server did not accept a connection
// within the configured retry budget.
var ErrRedisNotReady = errors.New("redis did not become ready within the given time period")

// ConnectRedis establishes a Redis connection for the profile store,
// retrying per the configuration.
func ConnectRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	opt, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrRedisNotReady, err)
	}

	for i := 0; i < cfg.RetryAttempts; i++ {
		client := redis.NewClient(opt)
		if err := client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		_ = client.Close()

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrRedisNotReady, ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}
	return nil, ErrRedisNotReady
}

// RedisStore persists profiles as one hash per user:
// HSET <prefix><userID> <experimentID> <variationID>.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
}

// NewRedisStore wraps an existing Redis client. The config supplies the key
// prefix and TTL; connection settings on it are ignored here.
func NewRedisStore(client redis.UniversalClient, cfg RedisConfig) *RedisStore {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "flagkit:profile:"
	}
	return &RedisStore{client: client, keyPrefix: prefix, ttl: cfg.TTL}
}

// NewRedisStoreFromEnv loads RedisConfig from the environment (PROFILE_REDIS_*
// variables), connects, and returns the store.
func NewRedisStoreFromEnv(ctx context.Context) (*RedisStore, error) {
	var cfg RedisConfig
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}
	client, err := ConnectRedis(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewRedisStore(client, cfg), nil
}

func (s *RedisStore) key(userID string) string { return s.keyPrefix + userID }

// Lookup reads the user's decision hash.
func (s *RedisStore) Lookup(ctx context.Context, userID string) (Profile, error) {
	if userID == "" {
		return Profile{}, ErrEmptyUserID
	}

	decisions, err := s.client.HGetAll(ctx, s.key(userID)).Result()
	if err != nil {
		return Profile{}, errors.Join(ErrLookupFailed, err)
	}
	if len(decisions) == 0 {
		return NewProfile(userID), nil
	}
	return Profile{UserID: userID, Decisions: decisions}, nil
}

// Save upserts the profile's decisions into the user's hash and refreshes
// the TTL when one is configured.
func (s *RedisStore) Save(ctx context.Context, p Profile) error {
	if p.UserID == "" {
		return ErrEmptyUserID
	}
	if len(p.Decisions) == 0 {
		return nil
	}

	fields := make([]any, 0, len(p.Decisions)*2)
	for experimentID, variationID := range p.Decisions {
		fields = append(fields, experimentID, variationID)
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.key(p.UserID), fields...)
	if s.ttl > 0 {
		pipe.Expire(ctx, s.key(p.UserID), s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Join(ErrSaveFailed, err)
	}
	return nil
}
