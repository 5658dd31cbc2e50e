// Package redis provides a Redis client for interacting with Redis
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/packsmith-labs/packsmith/internal/config"
)

type Redis struct {
	client rueidis.Client
	cfg    *config.RedisEnvConfig
}

type RedisInterface interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

func NewRedis(cfg *config.RedisEnvConfig) (*Redis, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort)},
		Password:    cfg.RedisPassword,
		SelectDB:    cfg.RedisDB,
	})
	if err != nil {
		return nil, err
	}

	return &Redis{
		client: client,
		cfg:    cfg,
	}, nil
}

// Get returns the value for key, or "" when the key does not exist.
func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	resp := r.client.Do(ctx, r.client.B().Get().Key(key).Build())
	if err := resp.Error(); err != nil {
		if rueidis.IsRedisNil(err) {
			return "", nil
		}
		return "", err
	}
	return resp.ToString()
}

func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl > 0 {
		return r.client.Do(ctx, r.client.B().Set().Key(key).Value(value).Ex(ttl).Build()).Error()
	}
	return r.client.Do(ctx, r.client.B().Set().Key(key).Value(value).Build()).Error()
}
