// Package config defines environment configuration structs and loaders.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type AppConfig struct {
	ServerEnvConfig
	RedisEnvConfig
	ModelAPIEnvConfig
	GatewayEnvConfig
	SessionEnvConfig
}

func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ServerEnvConfig configures the HTTP surface.
type ServerEnvConfig struct {
	Address       string `env:"SERVER_ADDRESS" envDefault:"127.0.0.1"`
	Port          int    `env:"SERVER_PORT" envDefault:"8080"`
	BodySizeLimit int    `env:"SERVER_BODY_LIMIT" envDefault:"52428800"`
}

// RedisEnvConfig configures the Redis connection backing the response cache.
type RedisEnvConfig struct {
	RedisHost     string `env:"REDIS_HOST" envDefault:"127.0.0.1"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
}

// ModelAPIEnvConfig configures access to the hosted generation service.
type ModelAPIEnvConfig struct {
	ModelAPIUrl    string        `env:"MODEL_API_URL" envDefault:"http://localhost:5100"`
	ModelAPIKey    string        `env:"MODEL_API_KEY"`
	ModelName      string        `env:"MODEL_NAME" envDefault:"packsmith-large"`
	ClientTimeout  time.Duration `env:"MODEL_CLIENT_TIMEOUT" envDefault:"120s"`
	RetryMax       int           `env:"MODEL_RETRY_MAX" envDefault:"2"`
	RetryWaitMin   time.Duration `env:"MODEL_RETRY_WAIT_MIN" envDefault:"500ms"`
	RetryWaitMax   time.Duration `env:"MODEL_RETRY_WAIT_MAX" envDefault:"10s"`
	GenTemperature float64       `env:"MODEL_TEMPERATURE" envDefault:"0.7"`
}

// GatewayEnvConfig configures generation-result caching.
type GatewayEnvConfig struct {
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"12h"`
}

// SessionEnvConfig configures the in-memory upload sessions.
type SessionEnvConfig struct {
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"2h"`
}
