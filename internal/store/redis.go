// Package store provides the Redis-backed second-level result cache shared
// between analyzer processes.
package store

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"jobanalyzer/internal/config"
	"jobanalyzer/internal/errors"
)

const connectTimeout = 5 * time.Second

// commander is the subset of *redis.Client the store needs.
type commander interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// RedisStore implements analyzer.SharedCache on top of Redis string keys.
type RedisStore struct {
	client commander
	prefix string
	logger *errors.Logger
}

// NewRedisStore connects to the configured Redis URL and verifies the
// connection with a PING.
func NewRedisStore(ctx context.Context, cfg config.SharedCacheConfig, logger *errors.Logger) (*RedisStore, error) {
	if cfg.URL == "" {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "shared cache URL is required", nil)
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "failed to parse redis url", err)
	}

	s := newRedisStore(redis.NewClient(opts), cfg.KeyPrefix, logger)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := s.client.Ping(pingCtx).Err(); err != nil {
		_ = s.client.Close()
		return nil, errors.NewNetworkError(errors.ErrCodeCacheUnavailable, "failed to connect to redis", err).
			WithContext("addr", opts.Addr)
	}

	logger.Info("Shared cache connected", "addr", opts.Addr, "db", opts.DB, "key_prefix", cfg.KeyPrefix)
	return s, nil
}

func newRedisStore(client commander, prefix string, logger *errors.Logger) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, logger: logger}
}

func (s *RedisStore) key(k string) string {
	return s.prefix + k
}

// Get returns the cached bytes for key. A missing key is not an error.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %q: %w", key, err)
	}
	return data, true, nil
}

// Set stores value under key. A zero ttl keeps the key until evicted.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// Healthy pings Redis.
func (s *RedisStore) Healthy(ctx context.Context) bool {
	return s.client.Ping(ctx).Err() == nil
}

func (s *RedisStore) Close() error {
	s.logger.Debug("Closing shared cache connection")
	return s.client.Close()
}
