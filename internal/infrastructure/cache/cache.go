// Package cache memoizes serialized search results. The primary backend is
// Redis; when it is unreachable at construction or any individual call
// fails, operations silently degrade to a bounded in-process fallback.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss indicates the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

const keyPrefix = "rge:guide:"

type Store struct {
	primary  *redis.Client
	fallback *memoryStore
	logger   *slog.Logger
}

// NewStore connects to Redis and probes it. A failed probe is not an
// error: the store starts degraded and serves from the in-process fallback.
func NewStore(redisURL string, logger *slog.Logger) *Store {
	store := &Store{
		fallback: newMemoryStore(defaultMaxEntries),
		logger:   logger,
	}
	if redisURL == "" {
		return store
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.Warn("cache_redis_url_invalid", "error", err)
		return store
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("cache_redis_unreachable", "error", err)
		_ = client.Close()
		return store
	}

	store.primary = client
	logger.Info("cache_redis_connected")
	return store
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	cacheKey := keyPrefix + key

	if s.primary != nil {
		val, err := s.primary.Get(ctx, cacheKey).Bytes()
		if err == nil {
			return val, nil
		}
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("cache_redis_get_failed", "error", err)
		}
	}

	val, ok := s.fallback.get(cacheKey)
	if !ok {
		return nil, ErrCacheMiss
	}
	return val, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	cacheKey := keyPrefix + key

	if s.primary != nil {
		err := s.primary.Set(ctx, cacheKey, value, ttl).Err()
		if err == nil {
			return
		}
		s.logger.Warn("cache_redis_set_failed", "error", err)
	}
	s.fallback.set(cacheKey, value, ttl)
}

func (s *Store) Delete(ctx context.Context, key string) {
	cacheKey := keyPrefix + key

	if s.primary != nil {
		if err := s.primary.Del(ctx, cacheKey).Err(); err != nil {
			s.logger.Warn("cache_redis_delete_failed", "error", err)
		}
	}
	s.fallback.delete(cacheKey)
}

// PrimaryAvailable reports whether the Redis backend survived the
// construction probe.
func (s *Store) PrimaryAvailable() bool {
	return s.primary != nil
}

// FallbackSize returns the entry count of the in-process fallback.
func (s *Store) FallbackSize() int {
	return s.fallback.size()
}

func (s *Store) Close() error {
	if s.primary != nil {
		return s.primary.Close()
	}
	return nil
}

// Key derives a fixed-length cache key from arbitrary-length semantic
// parts. Raw identifiers are never used as literal keys.
func Key(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

func (s *Store) Key(parts ...string) string {
	return Key(parts...)
}
