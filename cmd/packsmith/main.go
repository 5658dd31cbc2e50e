package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/packsmith-labs/packsmith/internal/config"
	"github.com/packsmith-labs/packsmith/internal/gateway"
	"github.com/packsmith-labs/packsmith/internal/generator"
	"github.com/packsmith-labs/packsmith/internal/respcache"
	"github.com/packsmith-labs/packsmith/internal/server"
	"github.com/packsmith-labs/packsmith/internal/utils/logger"
	"github.com/packsmith-labs/packsmith/internal/utils/redis"
)

func main() {
	logger.Init()
	log.Info().Msg("Starting packsmith...")

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env not loaded; continuing with existing environment")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load environment configuration")
	}

	model, err := generator.NewModelAPI(&cfg.ModelAPIEnvConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init model api client")
	}

	var cache respcache.Store
	if r, err := redis.NewRedis(&cfg.RedisEnvConfig); err != nil {
		log.Error().Err(err).Msg("failed to init redis client, falling back to in-memory cache")
		cache = respcache.NewMemory()
	} else {
		store, err := respcache.NewRedisStore(r, cfg.CacheTTL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init redis response cache")
		}
		cache = store
	}

	gw := gateway.New(model, cache)
	srv := server.NewServer(cfg, gw)

	go func() {
		if err := srv.Listen(); err != nil {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	if err := srv.Shutdown(); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}
