// Package respcache is the session-scoped response cache sitting between the
// generation gateway and the hosted model. The cache is a performance
// optimization, never a correctness requirement: every storage failure
// degrades to a miss on read and a logged no-op on write, and is never
// surfaced to the caller.
package respcache

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"

	"github.com/packsmith-labs/packsmith/internal/utils/redis"
)

// Store maps derived cache keys to opaque serialized values.
type Store interface {
	// Get returns the stored value and true on a hit. Unseen keys, corrupt
	// stored values, and storage unavailability all return ("", false).
	Get(ctx context.Context, key string) (string, bool)
	// Set stores value under key. Failures are swallowed and logged.
	Set(ctx context.Context, key, value string)
}

// Memory is a process-local Store backed by a map. Used in tests and as the
// fallback when redis is unreachable at startup.
type Memory struct {
	mu sync.RWMutex
	m  map[string]string
}

func NewMemory() *Memory {
	return &Memory{m: make(map[string]string)}
}

func (c *Memory) Get(_ context.Context, key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.m[key]
	return v, ok
}

func (c *Memory) Set(_ context.Context, key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = value
}

// RedisStore is a Store backed by redis with a session TTL. Values are
// zstd-compressed before SET; generation results compress well and sessions
// can hold many of them.
type RedisStore struct {
	client  redis.RedisInterface
	ttl     time.Duration
	encoder *zstd.Encoder
}

func NewRedisStore(client redis.RedisInterface, ttl time.Duration) (*RedisStore, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	return &RedisStore{client: client, ttl: ttl, encoder: enc}, nil
}

func (c *RedisStore) Get(ctx context.Context, key string) (string, bool) {
	raw, err := c.client.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache read failed, treating as miss")
		return "", false
	}
	if raw == "" {
		return "", false
	}

	r, err := zstd.NewReader(bytes.NewReader([]byte(raw)))
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cached value corrupt, treating as miss")
		return "", false
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cached value corrupt, treating as miss")
		return "", false
	}
	return string(out), true
}

func (c *RedisStore) Set(ctx context.Context, key, value string) {
	compressed := c.encoder.EncodeAll([]byte(value), nil)
	if err := c.client.Set(ctx, key, string(compressed), c.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache write failed, value not cached")
	}
}
