package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// redisStore implements Store backed by Redis. Backend failures are logged
// and reported as misses so callers stay unaware the cache is down.
type redisStore struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewRedisStore creates a Redis-backed cache store. Connectivity is probed
// once at startup; a failed probe is logged but does not prevent use, since
// Redis may come up later.
func NewRedisStore(ctx context.Context, addr, password string, db int, logger zerolog.Logger) Store {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	logger = logger.With().Str("component", "cache").Logger()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", addr).Msg("redis unreachable at startup, cache will degrade to misses")
	} else {
		logger.Info().Str("addr", addr).Msg("redis cache connected")
	}

	return &redisStore{
		client: client,
		logger: logger,
	}
}

// Get returns the cached payload for key, or false on miss or backend error.
func (s *redisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	value, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("cache get failed, treating as miss")
		}
		return nil, false
	}
	return value, true
}

// Set stores value under key with the given TTL. Failures are logged only.
func (s *redisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
}

// Delete removes the named keys. Failures are logged only.
func (s *redisStore) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn().Err(err).Strs("keys", keys).Msg("cache delete failed")
	}
}

// DeletePrefix scans for keys under prefix and removes them in batches.
func (s *redisStore) DeletePrefix(ctx context.Context, prefix string) {
	iter := s.client.Scan(ctx, 0, prefix+"*", 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= 100 {
			s.Delete(ctx, keys...)
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		s.logger.Warn().Err(err).Str("prefix", prefix).Msg("cache prefix scan failed")
		return
	}
	if len(keys) > 0 {
		s.Delete(ctx, keys...)
	}
}
